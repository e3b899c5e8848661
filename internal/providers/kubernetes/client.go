package kubernetes

import k8sclient "k8s.io/client-go/kubernetes"

// KubeClientProvider creates kubernetes clientsets for named kubeconfig contexts.
// It abstracts kubeconfig loading so callers and tests can inject any clientset
// without touching the filesystem.
type KubeClientProvider interface {
	// ClientsetForContext returns a clientset and the resolved ClusterInfo for
	// the given kubeconfig context. Pass an empty string to use the current
	// context from the loaded kubeconfig.
	ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error)
}

// DefaultKubeClientProvider loads kubeconfig from Kubeconfig, $KUBECONFIG or
// ~/.kube/config, in that order, and builds a real kubernetes clientset.
type DefaultKubeClientProvider struct {
	// Kubeconfig is an explicit kubeconfig path; empty uses the defaults.
	Kubeconfig string
}

// NewDefaultKubeClientProvider returns a provider backed by the kubeconfig at
// path, or the system kubeconfig when path is empty.
func NewDefaultKubeClientProvider(path string) *DefaultKubeClientProvider {
	return &DefaultKubeClientProvider{Kubeconfig: path}
}

// ClientsetForContext implements KubeClientProvider.
func (p *DefaultKubeClientProvider) ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error) {
	path := p.Kubeconfig
	if path == "" {
		path = resolveKubeconfigPath()
	}
	return LoadClientset(path, contextName)
}
