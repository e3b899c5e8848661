package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
)

func TestDecodeDocuments_MultiDocument(t *testing.T) {
	docs, err := manifest.DecodeDocuments([]byte(`
apiVersion: v1
kind: ConfigMap
metadata: {name: a}
data: {PORT: 8080}
---
---
# comment only
---
- one
- two
`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first, ok := docs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ConfigMap", first["kind"])
	assert.Equal(t, float64(8080), first["data"].(map[string]any)["PORT"])

	assert.Equal(t, []any{"one", "two"}, docs[1])
}

func TestDecodeDocuments_Empty(t *testing.T) {
	docs, err := manifest.DecodeDocuments(nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDecodeDocuments_InvalidYAML(t *testing.T) {
	_, err := manifest.DecodeDocuments([]byte("kind: ConfigMap\nmetadata: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 0")
}
