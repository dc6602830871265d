package analysis

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkSource visits every regular file under root, honouring context
// cancellation between entries. Dot-directories (.git, .windup and friends)
// are skipped so the engine never analyzes its own output.
func WalkSource(ctx context.Context, root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, d)
	})
}

// RelPath renders path relative to root for findings; falls back to the
// original path when it cannot be made relative.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
