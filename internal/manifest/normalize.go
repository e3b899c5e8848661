// Package manifest turns a tree of Kubernetes manifest files into ordered
// resource records. It discovers YAML files grouped by directory, decodes
// multi-document files and flattens List wrappers. It never interprets
// resource semantics; that is left to the rules package.
package manifest

import (
	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// File is one manifest file with its decoded documents in file order.
type File struct {
	Path      string
	Documents []any
}

// Normalize flattens files into one record per logical resource, preserving
// first-seen order. A document that is a sequence, or a map of kind List with
// an items sequence, contributes one record per element. Documents that do
// not look like resources are passed through so rules can report them; a
// non-map element produces a record with a nil Object.
func Normalize(files []File) []models.ResourceRecord {
	var records []models.ResourceRecord
	for _, f := range files {
		for _, doc := range f.Documents {
			for _, item := range flatten(doc) {
				obj, _ := item.(map[string]any)
				records = append(records, models.ResourceRecord{Path: f.Path, Object: obj})
			}
		}
	}
	return records
}

func flatten(doc any) []any {
	switch d := doc.(type) {
	case []any:
		return d
	case map[string]any:
		if kind, _ := d["kind"].(string); kind == models.KindList {
			if items, ok := d["items"].([]any); ok {
				return items
			}
		}
	}
	return []any{doc}
}
