// Package fsys lists transmission and photo files from the local filesystem.
package fsys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
)

// PathSource lists the given files and the regular files directly inside the
// given directories. Hidden entries are skipped. It implements
// pipeline.BatchSource.
type PathSource struct {
	Paths []string
}

// NewPathSource returns a PathSource over paths.
func NewPathSource(paths ...string) PathSource {
	return PathSource{Paths: paths}
}

// Files implements pipeline.BatchSource. Directory entries are returned in
// name order; explicit files keep their argument order.
func (s PathSource) Files(ctx context.Context) ([]pipeline.SourceFile, error) {
	var out []pipeline.SourceFile
	for _, p := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, sourceFile(p, info.Name(), info))
			continue
		}
		files, err := listDir(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func listDir(dir string) ([]pipeline.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve dir %s: %w", dir, err)
	}
	folder := filepath.Base(abs)

	out := make([]pipeline.SourceFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || domain.IsHidden(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, sourceFile(filepath.Join(dir, e.Name()), folder+"/"+e.Name(), info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sourceFile(path, relativePath string, info os.FileInfo) pipeline.SourceFile {
	return pipeline.SourceFile{
		Name:         info.Name(),
		RelativePath: relativePath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Read: func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return os.ReadFile(path)
		},
	}
}
