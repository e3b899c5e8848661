package rules

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// Built-in issue codes.
const (
	CodeRecommendedAPIVersion   = "k8s001"
	CodeEmptyAPIVersion         = "k8s002"
	CodeAlphaAPIVersion         = "k8s003"
	CodeDeploymentNoContainers  = "k8s004"
	CodeCronJobNoContainers     = "k8s005"
	CodeCommandOverride         = "k8s006"
	CodeLatestTag               = "k8s007"
	CodeRenamedEnvVariable      = "k8s008"
	CodeDuplicatedResource      = "k8s009"
	CodeDuplicatedEnvVariable   = "k8s010"
	CodeConfigMapNotFound       = "k8s011"
	CodeVariableNotInConfigMap  = "k8s012"
	CodeUnusedConfigMapVariable = "k8s013"
	CodeMalformedContainer      = "k8s014"
)

const (
	refRecommendedVersions = "https://kubernetes.io/docs/reference/using-api/deprecation-guide/"
	refAlphaLevel          = "https://kubernetes.io/docs/concepts/overview/kubernetes-api/#api-versioning"
	refCronJobRecommended  = "https://kubernetes.io/docs/concepts/workloads/controllers/cron-jobs/"
	refContainerImage      = "https://kubernetes.io/docs/concepts/configuration/overview/#container-images"
)

// CatalogEntry is the static description of a built-in issue code.
type CatalogEntry struct {
	Code        string
	Severity    models.Severity
	Opinionated bool
	Summary     string
}

var catalog = map[string]CatalogEntry{
	CodeRecommendedAPIVersion:   {CodeRecommendedAPIVersion, models.SeverityModerate, false, "Recommended apiVersion for resource kind isn't used"},
	CodeEmptyAPIVersion:         {CodeEmptyAPIVersion, models.SeverityBreakable, false, "ApiVersion is empty"},
	CodeAlphaAPIVersion:         {CodeAlphaAPIVersion, models.SeverityHigh, false, "ApiVersion's level should not be alpha"},
	CodeDeploymentNoContainers:  {CodeDeploymentNoContainers, models.SeverityBreakable, false, "Deployment without containers"},
	CodeCronJobNoContainers:     {CodeCronJobNoContainers, models.SeverityBreakable, false, "CronJob without containers"},
	CodeCommandOverride:         {CodeCommandOverride, models.SeverityMinor, true, "Deployment container overrides image command"},
	CodeLatestTag:               {CodeLatestTag, models.SeverityHigh, false, "Container uses latest tag"},
	CodeRenamedEnvVariable:      {CodeRenamedEnvVariable, models.SeverityModerate, true, "Env variable renamed from ConfigMap key"},
	CodeDuplicatedResource:      {CodeDuplicatedResource, models.SeverityBreakable, false, "Duplicated resource of same kind and name"},
	CodeDuplicatedEnvVariable:   {CodeDuplicatedEnvVariable, models.SeverityMinor, false, "Duplicated env variable in container"},
	CodeConfigMapNotFound:       {CodeConfigMapNotFound, models.SeverityModerate, true, "Referenced ConfigMap not found locally"},
	CodeVariableNotInConfigMap:  {CodeVariableNotInConfigMap, models.SeverityBreakable, false, "Referenced key not found at ConfigMap"},
	CodeUnusedConfigMapVariable: {CodeUnusedConfigMapVariable, models.SeverityMinor, false, "ConfigMap variable is never used"},
	CodeMalformedContainer:      {CodeMalformedContainer, models.SeverityBreakable, false, "Container specification is invalid"},
}

// Catalog returns the built-in issue codes sorted by code.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(catalog))
	for _, e := range catalog {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// BuiltinCodes returns every built-in issue code, sorted.
func BuiltinCodes() []string {
	codes := make([]string, 0, len(catalog))
	for _, e := range Catalog() {
		codes = append(codes, e.Code)
	}
	return codes
}

// newIssue fills severity and opinionated from the catalog so every
// constructor stays consistent with the code it reports.
func newIssue(code, short, long, foundAt string, refs ...string) models.Issue {
	entry := catalog[code]
	if refs == nil {
		refs = []string{}
	}
	return models.Issue{
		Severity:         entry.Severity,
		Code:             code,
		ShortDescription: short,
		LongDescription:  long,
		FoundAt:          foundAt,
		References:       refs,
		Opinionated:      entry.Opinionated,
	}
}

func recommendedAPIVersionIssue(file, apiVersion, kind, recommended string) models.Issue {
	refs := []string{refRecommendedVersions}
	if kind == models.KindCronJob {
		refs = append(refs, refCronJobRecommended)
	}
	return newIssue(CodeRecommendedAPIVersion,
		"Recommended apiVersion for resource kind isn't used",
		fmt.Sprintf("Recommended apiVersion for resource kind '%s' is '%s'. Got '%s'.", kind, recommended, apiVersion),
		file, refs...)
}

func emptyAPIVersionIssue(file string) models.Issue {
	return newIssue(CodeEmptyAPIVersion,
		"ApiVersion is empty",
		"ApiVersion is empty. That will break the k8s operation.",
		file)
}

func alphaAPIVersionIssue(file string) models.Issue {
	return newIssue(CodeAlphaAPIVersion,
		"ApiVersion's level should not be alpha.",
		"ApiVersion's level should not be alpha, since it's disabled by default, may be buggy and support for feature may be dropped at any time without notice.",
		file, refAlphaLevel)
}

func deploymentWithoutContainersIssue(file, name string) models.Issue {
	return newIssue(CodeDeploymentNoContainers,
		"Any resource of kind deployment must spec at least one container.",
		fmt.Sprintf("Resource of kind deployment named '%s' must spec at least one container.", name),
		file)
}

func cronJobWithoutContainersIssue(file, name string) models.Issue {
	return newIssue(CodeCronJobNoContainers,
		"Any resource of kind cronjob must spec at least one container.",
		fmt.Sprintf("Resource of kind cronjob named '%s' must spec at least one container.", name),
		file)
}

func commandOverrideIssue(file, workload, container, cmdArgs string) models.Issue {
	return newIssue(CodeCommandOverride,
		"Any resource of kind deployment shouldn't override image command",
		fmt.Sprintf("Any resource of kind deployment shouldn't override image command, since it can be misleading. Found container '%s' at '%s' with '%s'.", container, workload, cmdArgs),
		file)
}

func latestTagIssue(file, workload, container, image string) models.Issue {
	return newIssue(CodeLatestTag,
		"Containers should not use latest tag.",
		fmt.Sprintf("Containers should not use latest tag, since it makes rollbacks hard or impossible to do. Found container '%s' at '%s' with '%s'.", container, workload, image),
		file, refContainerImage)
}

func renamedEnvVariableIssue(file, workload, container, variable, key, configMap string) models.Issue {
	return newIssue(CodeRenamedEnvVariable,
		"Containers should not change configmap env name.",
		fmt.Sprintf("Container '%s' at '%s' has variable '%s' extracted from configmap '%s' key '%s'. Renaming variables may be misleading and is not recommended.", container, workload, variable, configMap, key),
		file)
}

func duplicatedResourceIssue(firstFile, secondFile, name, kind string) models.Issue {
	foundAt := firstFile
	if firstFile != secondFile {
		foundAt = firstFile + ", " + secondFile
	}
	return newIssue(CodeDuplicatedResource,
		"Duplicated resources of same name and kind",
		fmt.Sprintf("Found duplicated resource of kind '%s' and name '%s'.", kind, name),
		foundAt)
}

func duplicatedEnvVariableIssue(file, workload, container, variable string) models.Issue {
	return newIssue(CodeDuplicatedEnvVariable,
		fmt.Sprintf("Duplicated env variable '%s' for container %s.", variable, container),
		fmt.Sprintf("Found duplicated variable '%s' in container '%s' at '%s'.", variable, container, workload),
		file)
}

func configMapNotFoundIssue(file, workload, container, variable, configMap string) models.Issue {
	return newIssue(CodeConfigMapNotFound,
		fmt.Sprintf("ConfigMap '%s' not found locally.", configMap),
		fmt.Sprintf("ConfigMap '%s' referred by variable '%s' in container '%s' at %s was not found locally.", configMap, variable, container, workload),
		file)
}

func variableNotInConfigMapIssue(file, workload, container, variable, key, configMap string) models.Issue {
	return newIssue(CodeVariableNotInConfigMap,
		fmt.Sprintf("Referred variable '%s' not found at '%s'.", key, configMap),
		fmt.Sprintf("Container '%s' at '%s' has variable '%s' that refers inexistent configmap '%s' key '%s'.", container, workload, variable, configMap, key),
		file)
}

func unusedConfigMapVariableIssue(file, key, configMap string) models.Issue {
	desc := fmt.Sprintf("Variable '%s' of configmap '%s' isn't used.", key, configMap)
	return newIssue(CodeUnusedConfigMapVariable, desc, desc, file)
}

func malformedContainerIssue(file, workload string, raw any) models.Issue {
	content, err := json.Marshal(raw)
	if err != nil {
		content = []byte(fmt.Sprintf("%v", raw))
	}
	return newIssue(CodeMalformedContainer,
		fmt.Sprintf("Container found in '%s' appears to be invalid. Check for lines with content %s.", workload, content),
		fmt.Sprintf("Container found in '%s' appears to be invalid (maybe an indentation problem?). Check for lines with content %s.", workload, content),
		file)
}
