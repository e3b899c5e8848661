package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// ── k8s004 ───────────────────────────────────────────────────────────────────

// K8SDeploymentNoContainersRule fires for each Deployment whose pod template
// declares no containers.
type K8SDeploymentNoContainersRule struct{}

func (r K8SDeploymentNoContainersRule) ID() string   { return CodeDeploymentNoContainers }
func (r K8SDeploymentNoContainersRule) Name() string { return "Deployment Without Containers" }

func (r K8SDeploymentNoContainersRule) Evaluate(ctx RuleContext) []models.Issue {
	return emptyWorkloads(ctx, models.KindDeployment, deploymentWithoutContainersIssue)
}

// ── k8s005 ───────────────────────────────────────────────────────────────────

// K8SCronJobNoContainersRule fires for each CronJob whose job template
// declares no containers.
type K8SCronJobNoContainersRule struct{}

func (r K8SCronJobNoContainersRule) ID() string   { return CodeCronJobNoContainers }
func (r K8SCronJobNoContainersRule) Name() string { return "CronJob Without Containers" }

func (r K8SCronJobNoContainersRule) Evaluate(ctx RuleContext) []models.Issue {
	return emptyWorkloads(ctx, models.KindCronJob, cronJobWithoutContainersIssue)
}

func emptyWorkloads(ctx RuleContext, kind string, build func(file, name string) models.Issue) []models.Issue {
	var issues []models.Issue
	for _, w := range ctx.Workloads.Workloads {
		if w.Kind == kind && len(w.Containers) == 0 {
			issues = append(issues, build(w.Record.Path, w.Name))
		}
	}
	return issues
}

// ── k8s014 ───────────────────────────────────────────────────────────────────

// K8SMalformedContainerRule fires for each container entry without an image.
type K8SMalformedContainerRule struct{}

func (r K8SMalformedContainerRule) ID() string   { return CodeMalformedContainer }
func (r K8SMalformedContainerRule) Name() string { return "Malformed Container Specification" }

func (r K8SMalformedContainerRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, m := range ctx.Workloads.Malformed {
		issues = append(issues, malformedContainerIssue(m.File, m.WorkloadName, m.Raw))
	}
	return issues
}

// ── k8s006 ───────────────────────────────────────────────────────────────────

// K8SCommandOverrideRule fires for each Deployment container that sets
// command. CronJob containers are expected to override it and are skipped.
type K8SCommandOverrideRule struct{}

func (r K8SCommandOverrideRule) ID() string   { return CodeCommandOverride }
func (r K8SCommandOverrideRule) Name() string { return "Deployment Overrides Image Command" }

func (r K8SCommandOverrideRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, c := range ctx.Workloads.Containers {
		if c.WorkloadKind != models.KindDeployment || c.Command == nil {
			continue
		}
		line := strings.Join(c.Command, " ")
		if c.Args != nil {
			line += " " + strings.Join(c.Args, " ")
		}
		issues = append(issues, commandOverrideIssue(c.File, c.WorkloadName, c.Name, line))
	}
	return issues
}

// ── k8s007 ───────────────────────────────────────────────────────────────────

// K8SLatestTagRule fires for each container whose image ends with ":latest".
type K8SLatestTagRule struct{}

func (r K8SLatestTagRule) ID() string   { return CodeLatestTag }
func (r K8SLatestTagRule) Name() string { return "Container Uses Latest Tag" }

func (r K8SLatestTagRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, c := range ctx.Workloads.Containers {
		if strings.HasSuffix(c.Image, ":latest") {
			issues = append(issues, latestTagIssue(c.File, c.WorkloadName, c.Name, c.Image))
		}
	}
	return issues
}

// ── k8s008 ───────────────────────────────────────────────────────────────────

// K8SRenamedEnvVariableRule fires once per env entry whose ConfigMap key
// differs from the variable name.
type K8SRenamedEnvVariableRule struct{}

func (r K8SRenamedEnvVariableRule) ID() string   { return CodeRenamedEnvVariable }
func (r K8SRenamedEnvVariableRule) Name() string { return "Env Variable Renamed From ConfigMap Key" }

func (r K8SRenamedEnvVariableRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, c := range ctx.Workloads.Containers {
		for _, env := range c.Env {
			ref := env.ConfigMapRef
			if ref == nil || ref.Key == env.Name {
				continue
			}
			issues = append(issues, renamedEnvVariableIssue(
				c.File, c.WorkloadName, c.Name, env.Name, ref.Key, ref.Name))
		}
	}
	return issues
}

// ── k8s010 ───────────────────────────────────────────────────────────────────

// K8SDuplicatedEnvVariableRule fires for every repeated env name inside one
// container. The first occurrence is not reported.
type K8SDuplicatedEnvVariableRule struct{}

func (r K8SDuplicatedEnvVariableRule) ID() string   { return CodeDuplicatedEnvVariable }
func (r K8SDuplicatedEnvVariableRule) Name() string { return "Duplicated Env Variable" }

func (r K8SDuplicatedEnvVariableRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, c := range ctx.Workloads.Containers {
		seen := make(map[string]struct{}, len(c.Env))
		for _, env := range c.Env {
			if _, dup := seen[env.Name]; dup {
				issues = append(issues, duplicatedEnvVariableIssue(c.File, c.WorkloadName, c.Name, env.Name))
				continue
			}
			seen[env.Name] = struct{}{}
		}
	}
	return issues
}
