// Package kubernetes_core provides the built-in manifest rule pack.
package kubernetes_core

import "github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"

// New returns the built-in manifest rules in evaluation order: apiVersion
// checks first, then resource and container checks, then the ConfigMap
// cross-reference checks that read the variable graph.
func New() []rules.Rule {
	return []rules.Rule{
		// apiVersion
		rules.K8SRecommendedAPIVersionRule{}, // k8s001
		rules.K8SEmptyAPIVersionRule{},       // k8s002
		rules.K8SAlphaAPIVersionRule{},       // k8s003

		// resources
		rules.K8SDuplicatedResourceRule{},     // k8s009
		rules.K8SDeploymentNoContainersRule{}, // k8s004
		rules.K8SCronJobNoContainersRule{},    // k8s005
		rules.K8SMalformedContainerRule{},     // k8s014

		// containers
		rules.K8SCommandOverrideRule{},       // k8s006
		rules.K8SLatestTagRule{},             // k8s007
		rules.K8SRenamedEnvVariableRule{},    // k8s008
		rules.K8SDuplicatedEnvVariableRule{}, // k8s010

		// variables
		rules.K8SConfigMapNotFoundRule{},       // k8s011
		rules.K8SVariableNotInConfigMapRule{},  // k8s012
		rules.K8SUnusedConfigMapVariableRule{}, // k8s013
	}
}

// NewRegistry returns a registry preloaded with the built-in pack.
func NewRegistry() *rules.Registry {
	return rules.NewRegistry(New()...)
}
