package rules

import (
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	certificatesv1 "k8s.io/api/certificates/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	policyv1 "k8s.io/api/policy/v1"
	rbacv1 "k8s.io/api/rbac/v1"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// recommendedAPIVersions maps a kind to the stable group/version it should be
// declared with. Kinds absent from the table are never reported by k8s001.
var recommendedAPIVersions = map[string]string{
	"CertificateSigningRequest": certificatesv1.SchemeGroupVersion.String(),
	"ClusterRole":               rbacv1.SchemeGroupVersion.String(),
	"ClusterRoleBinding":        rbacv1.SchemeGroupVersion.String(),
	"ComponentStatus":           corev1.SchemeGroupVersion.String(),
	"ConfigMap":                 corev1.SchemeGroupVersion.String(),
	"ControllerRevision":        appsv1.SchemeGroupVersion.String(),
	"CronJob":                   batchv1.SchemeGroupVersion.String(),
	"DaemonSet":                 appsv1.SchemeGroupVersion.String(),
	"Deployment":                appsv1.SchemeGroupVersion.String(),
	"Endpoints":                 corev1.SchemeGroupVersion.String(),
	"Event":                     corev1.SchemeGroupVersion.String(),
	"HorizontalPodAutoscaler":   autoscalingv2.SchemeGroupVersion.String(),
	"Ingress":                   networkingv1.SchemeGroupVersion.String(),
	"IngressClass":              networkingv1.SchemeGroupVersion.String(),
	"Job":                       batchv1.SchemeGroupVersion.String(),
	"LimitRange":                corev1.SchemeGroupVersion.String(),
	"Namespace":                 corev1.SchemeGroupVersion.String(),
	"NetworkPolicy":             networkingv1.SchemeGroupVersion.String(),
	"Node":                      corev1.SchemeGroupVersion.String(),
	"PersistentVolume":          corev1.SchemeGroupVersion.String(),
	"PersistentVolumeClaim":     corev1.SchemeGroupVersion.String(),
	"Pod":                       corev1.SchemeGroupVersion.String(),
	"PodDisruptionBudget":       policyv1.SchemeGroupVersion.String(),
	"PodTemplate":               corev1.SchemeGroupVersion.String(),
	"ReplicaSet":                appsv1.SchemeGroupVersion.String(),
	"ReplicationController":     corev1.SchemeGroupVersion.String(),
	"ResourceQuota":             corev1.SchemeGroupVersion.String(),
	"Role":                      rbacv1.SchemeGroupVersion.String(),
	"RoleBinding":               rbacv1.SchemeGroupVersion.String(),
	"Secret":                    corev1.SchemeGroupVersion.String(),
	"Service":                   corev1.SchemeGroupVersion.String(),
	"ServiceAccount":            corev1.SchemeGroupVersion.String(),
	"StatefulSet":               appsv1.SchemeGroupVersion.String(),
}

// ── k8s001 ───────────────────────────────────────────────────────────────────

// K8SRecommendedAPIVersionRule fires for each resource whose kind has a known
// recommended apiVersion that differs from the declared one.
type K8SRecommendedAPIVersionRule struct{}

func (r K8SRecommendedAPIVersionRule) ID() string { return CodeRecommendedAPIVersion }
func (r K8SRecommendedAPIVersionRule) Name() string {
	return "Recommended apiVersion Not Used"
}

func (r K8SRecommendedAPIVersionRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, res := range ctx.Resources {
		kind, apiVersion := res.Kind(), res.APIVersion()
		recommended, ok := recommendedAPIVersions[kind]
		if !ok || apiVersion == recommended {
			continue
		}
		issues = append(issues, recommendedAPIVersionIssue(res.Path, apiVersion, kind, recommended))
	}
	return issues
}

// ── k8s002 ───────────────────────────────────────────────────────────────────

// K8SEmptyAPIVersionRule fires for each resource with a missing or empty apiVersion.
type K8SEmptyAPIVersionRule struct{}

func (r K8SEmptyAPIVersionRule) ID() string   { return CodeEmptyAPIVersion }
func (r K8SEmptyAPIVersionRule) Name() string { return "Empty apiVersion" }

func (r K8SEmptyAPIVersionRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, res := range ctx.Resources {
		if res.APIVersion() == "" {
			issues = append(issues, emptyAPIVersionIssue(res.Path))
		}
	}
	return issues
}

// ── k8s003 ───────────────────────────────────────────────────────────────────

// K8SAlphaAPIVersionRule fires for each resource declared with an alpha
// apiVersion, which is disabled by default and may change without notice.
type K8SAlphaAPIVersionRule struct{}

func (r K8SAlphaAPIVersionRule) ID() string   { return CodeAlphaAPIVersion }
func (r K8SAlphaAPIVersionRule) Name() string { return "Alpha apiVersion" }

func (r K8SAlphaAPIVersionRule) Evaluate(ctx RuleContext) []models.Issue {
	var issues []models.Issue
	for _, res := range ctx.Resources {
		if strings.Contains(res.APIVersion(), "alpha") {
			issues = append(issues, alphaAPIVersionIssue(res.Path))
		}
	}
	return issues
}
