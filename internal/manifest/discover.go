package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnores are directories never walked, wherever they appear.
var defaultIgnores = []string{
	"node_modules",
	"bin",
	"tmp",
	".git",
	"vendor",
}

var manifestExtensions = []string{".yaml", ".yml"}

// Unit is an analysis unit: the manifest files found directly in one directory.
// ConfigMap references only resolve within a unit.
type Unit struct {
	Dir   string
	Files []string
}

// FindManifestsByDirectory walks root and groups every .yaml/.yml file by its
// parent directory. Units and files keep walk (lexical) order. Default ignored
// directories and the patterns of root/.gitignore are skipped.
func FindManifestsByDirectory(root string) ([]Unit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("access %s: %w", root, err)
	}
	if !info.IsDir() {
		if !isManifest(root) {
			return nil, nil
		}
		return []Unit{{Dir: filepath.Dir(root), Files: []string{root}}}, nil
	}

	matcher := ignore.CompileIgnoreLines(ignorePatterns(root)...)

	var units []Unit
	index := make(map[string]int)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." && matcher.MatchesPath(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isManifest(path) {
			return nil
		}

		dir := filepath.Dir(path)
		i, ok := index[dir]
		if !ok {
			i = len(units)
			index[dir] = i
			units = append(units, Unit{Dir: dir})
		}
		units[i].Files = append(units[i].Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk manifest tree %s: %w", root, err)
	}
	return units, nil
}

// ignorePatterns returns the default ignores plus the lines of root/.gitignore
// when present. An unreadable .gitignore is ignored.
func ignorePatterns(root string) []string {
	patterns := append([]string(nil), defaultIgnores...)
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return patterns
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

func isManifest(path string) bool {
	for _, ext := range manifestExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
