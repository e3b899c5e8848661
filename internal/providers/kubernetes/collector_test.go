package kubernetes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/fake"
)

var testInfo = ClusterInfo{ContextName: "kind-dev", Namespace: "default"}

// makeDeployment is a test helper that builds an apps/v1 Deployment with the
// given containers.
func makeDeployment(namespace, name string, containers ...corev1.Container) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{Spec: corev1.PodSpec{Containers: containers}},
		},
	}
}

// makeCronJob is a test helper that builds a batch/v1 CronJob.
func makeCronJob(namespace, name string, containers ...corev1.Container) *batchv1.CronJob {
	return &batchv1.CronJob{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: batchv1.CronJobSpec{
			Schedule: "*/5 * * * *",
			JobTemplate: batchv1.JobTemplateSpec{Spec: batchv1.JobSpec{
				Template: corev1.PodTemplateSpec{Spec: corev1.PodSpec{Containers: containers}},
			}},
		},
	}
}

// makeConfigMap is a test helper that builds a ConfigMap.
func makeConfigMap(namespace, name string, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data:       data,
	}
}

func TestCollectNamespace_OrderAndKinds(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(
		makeDeployment("default", "web", corev1.Container{Name: "web", Image: "nginx:1.27"}),
		makeDeployment("default", "api", corev1.Container{Name: "api", Image: "api:2"}),
		makeCronJob("default", "cleanup", corev1.Container{Name: "cleanup", Image: "busybox:1"}),
		makeConfigMap("default", "settings", map[string]string{"A": "1"}),
		makeConfigMap("other", "ignored", nil),
	)

	data, err := CollectNamespace(context.Background(), fakeClient, testInfo, "default")
	require.NoError(t, err)

	var locations []string
	for _, o := range data.Objects {
		locations = append(locations, o.Location)
	}
	assert.Equal(t, []string{
		"cluster:kind-dev/default/ConfigMap/settings",
		"cluster:kind-dev/default/Deployment/api",
		"cluster:kind-dev/default/Deployment/web",
		"cluster:kind-dev/default/CronJob/cleanup",
	}, locations)
	assert.Equal(t, "cluster:kind-dev/default", data.Location())
}

func TestCollectNamespace_SkipsRootCAConfigMap(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(
		makeConfigMap("default", "kube-root-ca.crt", map[string]string{"ca.crt": "-----BEGIN CERTIFICATE-----"}),
		makeConfigMap("default", "settings", map[string]string{"A": "1"}),
	)

	data, err := CollectNamespace(context.Background(), fakeClient, testInfo, "default")
	require.NoError(t, err)
	require.Len(t, data.Objects, 1)
	assert.Equal(t, "cluster:kind-dev/default/ConfigMap/settings", data.Objects[0].Location)
}

func TestCollectNamespace_TypeMetaSet(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(
		makeDeployment("default", "api", corev1.Container{Name: "api", Image: "api:2"}),
		makeCronJob("default", "cleanup", corev1.Container{Name: "cleanup", Image: "busybox:1"}),
		makeConfigMap("default", "settings", map[string]string{"A": "1"}),
	)

	data, err := CollectNamespace(context.Background(), fakeClient, testInfo, "default")
	require.NoError(t, err)
	require.Len(t, data.Objects, 3)

	want := map[string]string{"ConfigMap": "v1", "Deployment": "apps/v1", "CronJob": "batch/v1"}
	for _, o := range data.Objects {
		kind := o.Object["kind"].(string)
		assert.Equal(t, want[kind], o.Object["apiVersion"], kind)
		_, hasStatus := o.Object["status"]
		assert.False(t, hasStatus, kind)
	}
}

func TestCollectNamespace_ContainerFieldsPreserved(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(
		makeDeployment("default", "api", corev1.Container{
			Name:    "api",
			Image:   "api:latest",
			Command: []string{"/bin/api"},
			Env: []corev1.EnvVar{
				{Name: "MODE", Value: "prod"},
				{Name: "DB_HOST", ValueFrom: &corev1.EnvVarSource{
					ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: "settings"},
						Key:                  "DB_HOST",
					},
				}},
			},
		}),
	)

	data, err := CollectNamespace(context.Background(), fakeClient, testInfo, "default")
	require.NoError(t, err)
	require.Len(t, data.Objects, 1)

	containers, found, err := unstructured.NestedSlice(data.Objects[0].Object, "spec", "template", "spec", "containers")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, containers, 1)

	c := containers[0].(map[string]any)
	assert.Equal(t, "api:latest", c["image"])
	env := c["env"].([]any)
	require.Len(t, env, 2)
	ref, found, err := unstructured.NestedString(env[1].(map[string]any), "valueFrom", "configMapKeyRef", "name")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "settings", ref)
}

func TestCollectNamespace_Empty(t *testing.T) {
	data, err := CollectNamespace(context.Background(), fake.NewSimpleClientset(), testInfo, "default")
	require.NoError(t, err)
	assert.Empty(t, data.Objects)
}

func TestListNamespaces_Sorted(t *testing.T) {
	fakeClient := fake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "prod"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
	)

	names, err := ListNamespaces(context.Background(), fakeClient)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "kube-system", "prod"}, names)
}
