package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/engine"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/policy"
	kube "github.com/pankaj-dahiya-devops/manifest-lint/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rulepacks/kubernetes_core"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/version"
)

// newKubeProvider builds the cluster client provider. Tests replace it with a
// provider backed by a fake clientset.
var newKubeProvider = func(kubeconfig string) kube.KubeClientProvider {
	return kube.NewDefaultKubeClientProvider(kubeconfig)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mlint",
		Short:         "Kubernetes manifest validator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	root.AddCommand(newClusterCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var (
		flags runFlags
		path  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every manifest directory below a path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.setup(cmd, path)
			if err != nil {
				return err
			}
			defer func() { _ = r.logger.Sync() }()

			result := r.engine.Validate(cmd.Context(), r.opts)
			return r.report(cmd, result)
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Root of the manifest tree to validate")
	flags.register(cmd)
	return cmd
}

func newClusterCmd() *cobra.Command {
	var (
		flags      runFlags
		copts      engine.ClusterOptions
		kubeconfig string
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Validate ConfigMaps, Deployments and CronJobs of live namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.setup(cmd, "")
			if err != nil {
				return err
			}
			defer func() { _ = r.logger.Sync() }()

			if !cmd.Flags().Changed("kubeconfig") && r.user.Cluster.Kubeconfig != "" {
				kubeconfig = r.user.Cluster.Kubeconfig
			}
			if !cmd.Flags().Changed("context") && r.user.Cluster.Context != "" {
				copts.ContextName = r.user.Cluster.Context
			}

			result := r.engine.ValidateCluster(cmd.Context(), newKubeProvider(kubeconfig), copts, r.opts)
			return r.report(cmd, result)
		},
	}

	cmd.Flags().StringVar(&copts.ContextName, "context", "", "Kubeconfig context (default: current context)")
	cmd.Flags().StringSliceVar(&copts.Namespaces, "namespace", nil, "Namespace(s) to validate (default: namespace of the context)")
	cmd.Flags().BoolVar(&copts.AllNamespaces, "all-namespaces", false, "Validate every namespace of the cluster")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	flags.register(cmd)
	return cmd
}

func newRulesCmd() *cobra.Command {
	var policyPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules and the rules added by a policy file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := kubernetes_core.NewRegistry()
			if _, err := loadAndApplyPolicy(cmd, policyPath, registry); err != nil {
				return err
			}
			printRules(cmd.OutOrStdout(), registry.Snapshot().Rules())
			return nil
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file whose overrides and custom rules are listed too")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// printRules renders the rule list. Severity and summary come from the
// built-in catalog; custom rules show their registered name instead.
func printRules(w io.Writer, infos []rules.RuleInfo) {
	entries := make(map[string]rules.CatalogEntry)
	for _, e := range rules.Catalog() {
		entries[e.Code] = e
	}

	fmt.Fprintf(w, "%-10s  %-10s  %-8s  %s\n", "CODE", "SEVERITY", "ENABLED", "DESCRIPTION")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, info := range infos {
		sev, desc := "-", info.Name
		if e, ok := entries[info.Code]; ok {
			sev, desc = string(e.Severity), e.Summary
			if e.Opinionated {
				desc += " (opinionated)"
			}
		}
		enabled := "yes"
		if !info.Enabled {
			enabled = "no"
		}
		fmt.Fprintf(w, "%-10s  %-10s  %-8s  %s\n", info.Code, sev, enabled, desc)
	}
}

// loadAndApplyPolicy loads, validates and applies the policy file at path to
// registry. An empty path is a no-op and returns a nil config.
func loadAndApplyPolicy(cmd *cobra.Command, path string, registry *rules.Registry) (*policy.PolicyConfig, error) {
	if path == "" {
		return nil, nil
	}
	cfg, err := policy.LoadPolicy(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if errs := policy.Validate(cfg, rules.BuiltinCodes()); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("invalid policy %s:\n  %s", path, strings.Join(msgs, "\n  "))
	}
	if _, err := policy.Apply(cmd.Context(), cfg, registry); err != nil {
		return nil, fmt.Errorf("apply policy: %w", err)
	}
	return cfg, nil
}

// validLevel reports whether level is a severity level threshold.
func validLevel(level int) bool {
	return level >= 0 && level <= models.MaxLevel
}
