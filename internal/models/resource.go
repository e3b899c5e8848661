package models

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ResourceRecord is one logical Kubernetes resource taken from a manifest file.
// Several records may share a Path when a file holds multiple documents or a
// List wrapper. Object is the decoded document tree and must not be modified.
type ResourceRecord struct {
	// Path is the source file (or cluster location) the record came from.
	Path string

	// Object is the decoded document. It may be partial: missing kind or
	// metadata are passed through as-is and accessors return "".
	Object map[string]any
}

// Kind returns the resource kind, or "" when absent.
func (r ResourceRecord) Kind() string { return nestedString(r.Object, "kind") }

// APIVersion returns the resource apiVersion, or "" when absent or not a string.
func (r ResourceRecord) APIVersion() string { return nestedString(r.Object, "apiVersion") }

// Name returns metadata.name, or "".
func (r ResourceRecord) Name() string { return nestedString(r.Object, "metadata", "name") }

// WorkloadName returns a top-level name when one is set, falling back to
// metadata.name. Workload messages use it.
func (r ResourceRecord) WorkloadName() string {
	if n := nestedString(r.Object, "name"); n != "" {
		return n
	}
	return r.Name()
}

// Namespace returns metadata.namespace, or "".
func (r ResourceRecord) Namespace() string { return nestedString(r.Object, "metadata", "namespace") }

func nestedString(obj map[string]any, fields ...string) string {
	if obj == nil {
		return ""
	}
	v, found, err := unstructured.NestedString(obj, fields...)
	if err != nil || !found {
		return ""
	}
	return v
}

// Resource kinds the analysis handles specially.
const (
	KindDeployment = "Deployment"
	KindCronJob    = "CronJob"
	KindConfigMap  = "ConfigMap"
	KindList       = "List"
)

// ConfigMapKeyRef points an environment variable at one key of a ConfigMap.
type ConfigMapKeyRef struct {
	Name string
	Key  string
}

// EnvVarRef is one env entry of a container. At most one of Value and
// ConfigMapRef is set; neither means the variable cannot be resolved locally
// (secret or field references, or a malformed entry).
type EnvVarRef struct {
	Name         string
	Value        *string
	ConfigMapRef *ConfigMapKeyRef
}

// ContainerRecord is a container derived from a workload for a single
// analysis pass.
type ContainerRecord struct {
	// File is the manifest path of the owning workload.
	File string

	// WorkloadKind is KindDeployment or KindCronJob.
	WorkloadKind string

	// WorkloadName is the owning workload's name.
	WorkloadName string

	Name    string
	Image   string
	Command []string
	Args    []string
	Env     []EnvVarRef
}

// ConfigMapRecord holds the keys and values defined by one ConfigMap.
type ConfigMapRecord struct {
	Name   string
	Path   string
	Keys   sets.Set[string]
	Values map[string]string
}

// ResolvedVariable is the outcome of resolving an EnvVarRef. Value is nil
// whenever Solved is false.
type ResolvedVariable struct {
	Solved bool    `json:"solved"`
	Value  *string `json:"value,omitempty"`
}
