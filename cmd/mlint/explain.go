package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/engine"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/render"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rulepacks/kubernetes_core"
)

func newExplainCmd() *cobra.Command {
	var (
		path   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "explain <code>",
		Short: "Describe a built-in rule and, with --path, where it fires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			entry := render.FindCatalogEntry(code)

			var issues []models.Issue
			if entry != nil && path != "" {
				eng := engine.NewEngine(kubernetes_core.NewRegistry(), nil, nil)
				opts := engine.DefaultOptions(path)
				opts.MaxLevelAllowed = models.MaxLevel
				result := eng.Validate(cmd.Context(), opts)
				if result.Error != nil {
					return fmt.Errorf("validate %s: %w", path, result.Error)
				}
				issues = result.Issues
			}

			if format == "json" {
				if err := render.WriteExplainJSON(cmd.OutOrStdout(), entry, code, issues); err != nil {
					return err
				}
				if entry == nil {
					return &exitError{code: 1}
				}
				return nil
			}

			if entry == nil {
				return fmt.Errorf("no rule found with code %s", code)
			}
			render.RenderRuleExplanation(cmd.OutOrStdout(), *entry, issues)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Manifest tree whose occurrences of the rule are listed")
	cmd.Flags().StringVar(&format, "format", "text", `Output format: "text" or "json"`)
	return cmd
}
