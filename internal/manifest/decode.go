package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// DecodeDocuments splits data on YAML document markers and decodes every
// non-empty document into a JSON-compatible tree (maps, slices, strings,
// float64, bool). Document order is preserved.
func DecodeDocuments(data []byte) ([]any, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))

	var docs []any
	for i := 0; ; i++ {
		chunk, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read document %d: %w", i, err)
		}
		if len(bytes.TrimSpace(chunk)) == 0 {
			continue
		}

		var doc any
		if err := yaml.Unmarshal(chunk, &doc); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", i, err)
		}
		if doc == nil {
			continue // comment-only document
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
