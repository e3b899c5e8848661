// Package render provides presentation-layer helpers for mlint CLI output.
// It is a pure rendering package: no rule evaluation and no file or cluster access.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/rules"
)

// FindCatalogEntry returns a pointer to the built-in catalog entry for code,
// or nil when no built-in rule reports that code.
func FindCatalogEntry(code string) *rules.CatalogEntry {
	entries := rules.Catalog()
	for i := range entries {
		if entries[i].Code == code {
			return &entries[i]
		}
	}
	return nil
}

// RenderRuleExplanation writes a structured breakdown of a single rule to w.
// issues is the full issue set of a run; only issues whose code matches the
// entry are rendered (strict filtering). Occurrences are grouped by location
// and locations are sorted ascending for stable output.
//
// Example output:
//
//	RULE k8s007 (Severity: HIGH)
//	Summary: Container uses latest tag
//	Opinionated: no
//
//	Occurrences (2):
//
//	  ✓ deploy/api/deployment.yaml
//	    - Containers should not use latest tag.
func RenderRuleExplanation(w io.Writer, entry rules.CatalogEntry, issues []models.Issue) {
	fmt.Fprintf(w, "RULE %s (Severity: %s)\n", entry.Code, entry.Severity)
	fmt.Fprintf(w, "Summary: %s\n", entry.Summary)
	opinionated := "no"
	if entry.Opinionated {
		opinionated = "yes"
	}
	fmt.Fprintf(w, "Opinionated: %s\n", opinionated)
	fmt.Fprintln(w)

	byLocation, locations := groupByLocation(entry.Code, issues)

	total := 0
	for _, group := range byLocation {
		total += len(group)
	}
	fmt.Fprintf(w, "Occurrences (%d):\n", total)

	for _, loc := range locations {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  ✓ %s\n", loc)
		for _, i := range byLocation[loc] {
			fmt.Fprintf(w, "    - %s\n", i.ShortDescription)
		}
	}
}

func groupByLocation(code string, issues []models.Issue) (map[string][]models.Issue, []string) {
	byLocation := make(map[string][]models.Issue)
	var locations []string
	for _, i := range issues {
		if i.Code != code {
			continue
		}
		if _, seen := byLocation[i.FoundAt]; !seen {
			locations = append(locations, i.FoundAt)
		}
		byLocation[i.FoundAt] = append(byLocation[i.FoundAt], i)
	}
	sort.Strings(locations)
	return byLocation, locations
}

// WriteExplainJSON writes the rule explanation as indented JSON to w.
//
// When entry is non-nil, the output is:
//
//	{"rule": { ...entry fields... }, "occurrences": [ ...issues... ]}
//
// When entry is nil (code not found in the catalog), the output is:
//
//	{"error": "No rule found with code X"}
func WriteExplainJSON(w io.Writer, entry *rules.CatalogEntry, code string, issues []models.Issue) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if entry == nil {
		return enc.Encode(map[string]string{
			"error": fmt.Sprintf("No rule found with code %s", code),
		})
	}

	occurrences := []models.Issue{}
	for _, i := range issues {
		if i.Code == entry.Code {
			occurrences = append(occurrences, i)
		}
	}
	return enc.Encode(map[string]any{
		"rule":        entry,
		"occurrences": occurrences,
	})
}
