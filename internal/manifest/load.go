package manifest

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds the number of files decoded at once per unit.
const maxConcurrentReads = 8

// LoadedUnit is an analysis unit with its files decoded.
type LoadedUnit struct {
	Dir   string
	Files []File
}

// LoadUnit reads and decodes every file of unit. Files are decoded
// concurrently; the result keeps the unit's file order so normalization stays
// deterministic. The first read or decode error aborts the load.
func LoadUnit(ctx context.Context, unit Unit) (LoadedUnit, error) {
	files := make([]File, len(unit.Files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, path := range unit.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			docs, err := DecodeDocuments(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			files[i] = File{Path: path, Documents: docs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadedUnit{}, err
	}
	return LoadedUnit{Dir: unit.Dir, Files: files}, nil
}
