package rules

import (
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// containerPaths locates the pod container list inside each workload kind.
var containerPaths = map[string][]string{
	models.KindDeployment: {"spec", "template", "spec", "containers"},
	models.KindCronJob:    {"spec", "jobTemplate", "spec", "template", "spec", "containers"},
}

// Workload is a Deployment or CronJob with its raw container entries.
type Workload struct {
	Record models.ResourceRecord
	Kind   string
	Name   string

	// Containers are the raw entries of the pod container list; empty when
	// the list is absent, empty or not a list.
	Containers []any
}

// MalformedContainer is a container entry without an image, usually the
// result of an indentation mistake. It is excluded from every other check.
type MalformedContainer struct {
	File         string
	WorkloadName string
	Raw          any
}

// WorkloadView is the container-level view of a unit.
type WorkloadView struct {
	// Workloads lists Deployments first, then CronJobs, each in record order.
	Workloads []Workload

	// Containers holds every well-formed container in workload order.
	Containers []models.ContainerRecord

	// Malformed holds the container entries that lack an image.
	Malformed []MalformedContainer
}

// ExtractWorkloads builds the container view of resources. Missing fields
// degrade to empty values; extraction never fails.
func ExtractWorkloads(resources []models.ResourceRecord) WorkloadView {
	var view WorkloadView
	for _, kind := range []string{models.KindDeployment, models.KindCronJob} {
		for _, r := range resources {
			if r.Kind() != kind {
				continue
			}
			raw, _, _ := unstructured.NestedFieldNoCopy(r.Object, containerPaths[kind]...)
			items, _ := raw.([]any)
			w := Workload{Record: r, Kind: kind, Name: r.WorkloadName(), Containers: items}
			view.Workloads = append(view.Workloads, w)

			for _, item := range items {
				c, ok := parseContainer(item)
				if !ok {
					view.Malformed = append(view.Malformed, MalformedContainer{
						File:         r.Path,
						WorkloadName: w.Name,
						Raw:          item,
					})
					continue
				}
				c.File = r.Path
				c.WorkloadKind = kind
				c.WorkloadName = w.Name
				view.Containers = append(view.Containers, c)
			}
		}
	}
	return view
}

// parseContainer converts a raw container entry. It reports false when the
// entry is not a map or has no image.
func parseContainer(item any) (models.ContainerRecord, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return models.ContainerRecord{}, false
	}
	image, _ := m["image"].(string)
	if image == "" {
		return models.ContainerRecord{}, false
	}
	name, _ := m["name"].(string)
	c := models.ContainerRecord{
		Name:    name,
		Image:   image,
		Command: stringList(m["command"]),
		Args:    stringList(m["args"]),
	}
	if envs, ok := m["env"].([]any); ok {
		for _, e := range envs {
			if ref, ok := parseEnvVar(e); ok {
				c.Env = append(c.Env, ref)
			}
		}
	}
	return c, true
}

// parseEnvVar decodes one env entry through the typed corev1.EnvVar and falls
// back to field access when the entry does not convert cleanly.
func parseEnvVar(item any) (models.EnvVarRef, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return models.EnvVarRef{}, false
	}

	var ev corev1.EnvVar
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(m, &ev); err == nil {
		ref := models.EnvVarRef{Name: ev.Name}
		if raw, has := m["value"]; has && raw != nil {
			v := ev.Value
			ref.Value = &v
		}
		if ev.ValueFrom != nil && ev.ValueFrom.ConfigMapKeyRef != nil {
			ref.ConfigMapRef = &models.ConfigMapKeyRef{
				Name: ev.ValueFrom.ConfigMapKeyRef.Name,
				Key:  ev.ValueFrom.ConfigMapKeyRef.Key,
			}
		}
		return ref, true
	}

	ref := models.EnvVarRef{Name: scalarString(m["name"])}
	if v, has := m["value"]; has && v != nil {
		s := scalarString(v)
		ref.Value = &s
	}
	if cm, ok, _ := unstructured.NestedMap(m, "valueFrom", "configMapKeyRef"); ok {
		ref.ConfigMapRef = &models.ConfigMapKeyRef{
			Name: scalarString(cm["name"]),
			Key:  scalarString(cm["key"]),
		}
	}
	return ref, true
}

// ExtractConfigMaps builds a record per ConfigMap resource in record order.
// Data values that are not strings are formatted as text.
func ExtractConfigMaps(resources []models.ResourceRecord) []models.ConfigMapRecord {
	var maps []models.ConfigMapRecord
	for _, r := range resources {
		if r.Kind() != models.KindConfigMap {
			continue
		}
		cm := models.ConfigMapRecord{
			Name:   r.Name(),
			Path:   r.Path,
			Keys:   sets.New[string](),
			Values: make(map[string]string),
		}
		data, _ := r.Object["data"].(map[string]any)
		for k, v := range data {
			cm.Keys.Insert(k)
			cm.Values[k] = scalarString(v)
		}
		maps = append(maps, cm)
	}
	return maps
}

// stringList accepts a string or a list of scalars. A nil value yields nil so
// callers can tell an absent field from an empty list.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, scalarString(item))
		}
		return out
	default:
		return []string{scalarString(t)}
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
