package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/policy"
	kube "github.com/pankaj-dahiya-devops/manifest-lint/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// defaultPolicyFile is the policy file doctor looks for when --policy is not set.
const defaultPolicyFile = "mlint.yaml"

// DoctorResult is the structured output of mlint doctor. It can be serialised
// to JSON via --format=json or rendered as a human-readable list (default).
type DoctorResult struct {
	Manifests struct {
		Path  string `json:"path"`
		Units int    `json:"units"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	} `json:"manifests"`

	Kubernetes struct {
		Checked      bool   `json:"checked"`
		KubeconfigOK bool   `json:"kubeconfig_ok"`
		Context      string `json:"context,omitempty"`
		APIReachable bool   `json:"api_reachable"`
		Error        string `json:"error,omitempty"`
	} `json:"kubernetes"`

	Policy struct {
		Path    string   `json:"path"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorOptions selects what runDoctor checks.
type doctorOptions struct {
	path       string
	policyPath string
	cluster    bool
	format     string
}

func newDoctorCmd() *cobra.Command {
	var (
		opts       doctorOptions
		kubeconfig string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runDoctor(cmd.Context(), newKubeProvider(kubeconfig), cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", ".", "Root of the manifest tree to check")
	cmd.Flags().StringVar(&opts.policyPath, "policy", defaultPolicyFile, "Policy file to check (optional)")
	cmd.Flags().BoolVar(&opts.cluster, "cluster", false, "Also check kubeconfig and API reachability")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVar(&opts.format, "format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures. Callers must inspect
// result.OverallHealthy to determine whether the environment is healthy.
func runDoctor(ctx context.Context, kubeProvider kube.KubeClientProvider, w io.Writer, opts doctorOptions) (DoctorResult, error) {
	result := collectDoctorResult(ctx, kubeProvider, opts)

	switch opts.format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering.
func collectDoctorResult(ctx context.Context, kubeProvider kube.KubeClientProvider, opts doctorOptions) DoctorResult {
	var result DoctorResult

	// Manifests: discovery over the tree.
	result.Manifests.Path = opts.path
	units, err := manifest.FindManifestsByDirectory(opts.path)
	if err != nil {
		result.Manifests.Error = err.Error()
	} else {
		result.Manifests.OK = true
		result.Manifests.Units = len(units)
	}

	// Kubernetes: kubeconfig load → context → API reachability probe.
	if opts.cluster {
		result.Kubernetes.Checked = true
		clientset, info, err := kubeProvider.ClientsetForContext("")
		if err != nil {
			result.Kubernetes.Error = err.Error()
		} else {
			result.Kubernetes.KubeconfigOK = true
			result.Kubernetes.Context = info.ContextName
			_, err = clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1})
			if err != nil {
				result.Kubernetes.Error = err.Error()
			} else {
				result.Kubernetes.APIReachable = true
			}
		}
	}

	// Policy: stat → load → validate (file is optional).
	result.Policy.Path = opts.policyPath
	_, statErr := os.Stat(opts.policyPath)
	if statErr == nil {
		result.Policy.Present = true
		cfg, loadErr := policy.LoadPolicy(opts.policyPath)
		if loadErr != nil {
			result.Policy.Errors = []string{loadErr.Error()}
		} else {
			errs := policy.Validate(cfg, rules.BuiltinCodes())
			if len(errs) == 0 {
				result.Policy.Valid = true
			} else {
				for _, e := range errs {
					result.Policy.Errors = append(result.Policy.Errors, e.Error())
				}
			}
		}
	} else if !os.IsNotExist(statErr) {
		// Stat error other than "not found": treat as present but unreadable.
		result.Policy.Present = true
		result.Policy.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.Manifests.OK &&
		(!result.Kubernetes.Checked || (result.Kubernetes.KubeconfigOK && result.Kubernetes.APIReachable)) &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintf(w, "\nManifests (path: %s):\n", result.Manifests.Path)
	if result.Manifests.OK {
		doctorPrint(w, "Discovery", "OK", fmt.Sprintf("%d unit(s)", result.Manifests.Units))
	} else {
		doctorPrint(w, "Discovery", "FAIL", result.Manifests.Error)
	}

	if result.Kubernetes.Checked {
		fmt.Fprintln(w, "\nKubernetes:")
		if !result.Kubernetes.KubeconfigOK {
			doctorPrint(w, "Kubeconfig", "FAIL", result.Kubernetes.Error)
			doctorPrint(w, "Current Context", "FAIL", "skipped")
			doctorPrint(w, "API Reachable", "FAIL", "skipped")
		} else {
			doctorPrint(w, "Kubeconfig", "OK", "")
			doctorPrint(w, "Current Context", "OK", result.Kubernetes.Context)
			if result.Kubernetes.APIReachable {
				doctorPrint(w, "API Reachable", "OK", "")
			} else {
				doctorPrint(w, "API Reachable", "FAIL", result.Kubernetes.Error)
			}
		}
	}

	fmt.Fprintln(w, "\nPolicy:")
	label := result.Policy.Path + " present"
	if !result.Policy.Present {
		doctorPrint(w, label, "Not found (optional)", "")
	} else {
		doctorPrint(w, label, "YES", "")
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
