package kubernetes

// ClusterInfo identifies a Kubernetes cluster and the kubeconfig context used
// to connect to it.
type ClusterInfo struct {
	// ContextName is the kubeconfig context name used to connect.
	ContextName string

	// Server is the Kubernetes API server URL resolved from the kubeconfig.
	Server string

	// Namespace is the default namespace of the context, "default" when unset.
	Namespace string
}

// NamespaceObject is one live object converted to its manifest form.
type NamespaceObject struct {
	// Location names the object as "cluster:<context>/<namespace>/<Kind>/<name>".
	Location string

	// Object is the unstructured manifest with apiVersion and kind set.
	Object map[string]any
}

// NamespaceData is the manifest view of one namespace: its ConfigMaps,
// Deployments and CronJobs, in that order and sorted by name within a kind.
type NamespaceData struct {
	ClusterInfo ClusterInfo
	Namespace   string
	Objects     []NamespaceObject
}

// Location returns the analysis unit name of the namespace.
func (d *NamespaceData) Location() string {
	return unitLocation(d.ClusterInfo.ContextName, d.Namespace)
}

func unitLocation(contextName, namespace string) string {
	return "cluster:" + contextName + "/" + namespace
}
