package manifest_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/manifest"
)

func TestLoadUnit_KeepsFileOrder(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	var paths []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("cm-%02d.yaml", i)
		files[name] = fmt.Sprintf("apiVersion: v1\nkind: ConfigMap\nmetadata: {name: cm-%02d}\n", i)
		paths = append(paths, filepath.Join(root, name))
	}
	writeFiles(t, root, files)

	loaded, err := manifest.LoadUnit(context.Background(), manifest.Unit{Dir: root, Files: paths})
	require.NoError(t, err)
	assert.Equal(t, root, loaded.Dir)
	require.Len(t, loaded.Files, 20)

	for i, f := range loaded.Files {
		assert.Equal(t, paths[i], f.Path)
		require.Len(t, f.Documents, 1)
		name := f.Documents[0].(map[string]any)["metadata"].(map[string]any)["name"]
		assert.Equal(t, fmt.Sprintf("cm-%02d", i), name)
	}
}

func TestLoadUnit_DecodeErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"good.yaml": "kind: ConfigMap\n",
		"bad.yaml":  "kind: [unclosed\n",
	})

	_, err := manifest.LoadUnit(context.Background(), manifest.Unit{
		Dir:   root,
		Files: []string{filepath.Join(root, "good.yaml"), filepath.Join(root, "bad.yaml")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadUnit_MissingFile(t *testing.T) {
	root := t.TempDir()
	_, err := manifest.LoadUnit(context.Background(), manifest.Unit{
		Dir:   root,
		Files: []string{filepath.Join(root, "gone.yaml")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ")
}
