package kubernetes

import (
	"context"
	"fmt"
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sclient "k8s.io/client-go/kubernetes"
)

// CollectNamespace reads the ConfigMaps, Deployments and CronJobs of
// namespace and converts each into its manifest form.
//
// Every listing is attempted in turn; an error from any aborts the collection.
// The clientset parameter is an interface so tests can inject a fake clientset.
func CollectNamespace(ctx context.Context, clientset k8sclient.Interface, info ClusterInfo, namespace string) (*NamespaceData, error) {
	data := &NamespaceData{ClusterInfo: info, Namespace: namespace}

	configMaps, err := collectConfigMaps(ctx, clientset, namespace)
	if err != nil {
		return nil, fmt.Errorf("collect configmaps in %q: %w", namespace, err)
	}
	deployments, err := collectDeployments(ctx, clientset, namespace)
	if err != nil {
		return nil, fmt.Errorf("collect deployments in %q: %w", namespace, err)
	}
	cronJobs, err := collectCronJobs(ctx, clientset, namespace)
	if err != nil {
		return nil, fmt.Errorf("collect cronjobs in %q: %w", namespace, err)
	}

	for _, group := range [][]runtime.Object{configMaps, deployments, cronJobs} {
		for _, obj := range group {
			converted, err := toManifest(obj)
			if err != nil {
				return nil, err
			}
			data.Objects = append(data.Objects, NamespaceObject{
				Location: fmt.Sprintf("%s/%s/%s", data.Location(), converted.kind, converted.name),
				Object:   converted.object,
			})
		}
	}
	return data, nil
}

// ListNamespaces returns the names of all namespaces, sorted.
func ListNamespaces(ctx context.Context, clientset k8sclient.Interface) ([]string, error) {
	nsList, err := clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	names := make([]string, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		names = append(names, ns.Name)
	}
	sort.Strings(names)
	return names, nil
}

// rootCAConfigMap is published into every namespace by the control plane.
const rootCAConfigMap = "kube-root-ca.crt"

func collectConfigMaps(ctx context.Context, clientset k8sclient.Interface, namespace string) ([]runtime.Object, error) {
	list, err := clientset.CoreV1().ConfigMaps(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	objs := make([]runtime.Object, 0, len(list.Items))
	for i := range list.Items {
		cm := &list.Items[i]
		if cm.Name == rootCAConfigMap {
			continue
		}
		cm.SetGroupVersionKind(corev1.SchemeGroupVersion.WithKind("ConfigMap"))
		objs = append(objs, cm)
	}
	return objs, nil
}

func collectDeployments(ctx context.Context, clientset k8sclient.Interface, namespace string) ([]runtime.Object, error) {
	list, err := clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	objs := make([]runtime.Object, 0, len(list.Items))
	for i := range list.Items {
		d := &list.Items[i]
		d.SetGroupVersionKind(appsv1.SchemeGroupVersion.WithKind("Deployment"))
		objs = append(objs, d)
	}
	return objs, nil
}

func collectCronJobs(ctx context.Context, clientset k8sclient.Interface, namespace string) ([]runtime.Object, error) {
	list, err := clientset.BatchV1().CronJobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	objs := make([]runtime.Object, 0, len(list.Items))
	for i := range list.Items {
		cj := &list.Items[i]
		cj.SetGroupVersionKind(batchv1.SchemeGroupVersion.WithKind("CronJob"))
		objs = append(objs, cj)
	}
	return objs, nil
}

type manifestObject struct {
	kind   string
	name   string
	object map[string]any
}

// toManifest converts a typed object to an unstructured tree. List items
// carry no TypeMeta, so the caller sets the GVK first. Server-populated
// status and managedFields are dropped to match what a manifest declares.
func toManifest(obj runtime.Object) (manifestObject, error) {
	gvk := obj.GetObjectKind().GroupVersionKind()
	tree, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return manifestObject{}, fmt.Errorf("convert %s: %w", gvk.Kind, err)
	}
	delete(tree, "status")
	meta, _ := tree["metadata"].(map[string]any)
	if meta != nil {
		delete(meta, "managedFields")
	}
	name, _ := meta["name"].(string)
	tree["apiVersion"] = gvk.GroupVersion().String()
	tree["kind"] = gvk.Kind
	return manifestObject{kind: gvk.Kind, name: name, object: tree}, nil
}
