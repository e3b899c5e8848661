package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	kube "github.com/pankaj-dahiya-devops/manifest-lint/internal/providers/kubernetes"
)

// ClusterOptions selects the live objects to validate.
type ClusterOptions struct {
	// ContextName is the kubeconfig context to connect to.
	// An empty string means use the current context.
	ContextName string

	// Namespaces lists the namespaces to read, each one analysis unit.
	// Empty means the default namespace of the context.
	Namespaces []string

	// AllNamespaces reads every namespace of the cluster.
	AllNamespaces bool
}

// ValidateCluster connects to the cluster, converts the ConfigMaps,
// Deployments and CronJobs of each selected namespace into manifest form and
// analyses every namespace as one unit.
func (e *Engine) ValidateCluster(ctx context.Context, provider kube.KubeClientProvider, copts ClusterOptions, opts Options) *models.ValidationResult {
	start := time.Now()
	clientset, info, err := provider.ClientsetForContext(copts.ContextName)
	if err != nil {
		return e.finish(e.fail(fmt.Errorf("connect to cluster: %w", err)), start)
	}
	e.logger.Info("connected to cluster", zap.String("context", info.ContextName), zap.String("server", info.Server))

	namespaces := copts.Namespaces
	switch {
	case copts.AllNamespaces:
		namespaces, err = kube.ListNamespaces(ctx, clientset)
		if err != nil {
			return e.finish(e.fail(err), start)
		}
	case len(namespaces) == 0:
		namespaces = []string{info.Namespace}
	}

	units := make([]manifest.LoadedUnit, 0, len(namespaces))
	for _, ns := range namespaces {
		data, err := kube.CollectNamespace(ctx, clientset, info, ns)
		if err != nil {
			return e.finish(e.fail(err), start)
		}
		units = append(units, convertNamespaceData(data))
	}

	return e.ValidateUnits(ctx, units, opts)
}

// convertNamespaceData translates the provider-layer NamespaceData into a
// decoded unit: one file per live object, named by its cluster location.
func convertNamespaceData(data *kube.NamespaceData) manifest.LoadedUnit {
	unit := manifest.LoadedUnit{Dir: data.Location()}
	for _, o := range data.Objects {
		unit.Files = append(unit.Files, manifest.File{
			Path:      o.Location,
			Documents: []any{o.Object},
		})
	}
	return unit
}
