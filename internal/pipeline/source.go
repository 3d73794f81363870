package pipeline

import (
	"context"
	"time"
)

// SourceFile is one selected file whose bytes are fetched lazily.
type SourceFile struct {
	Name         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	Read         func(ctx context.Context) ([]byte, error)
}

// BatchSource lists the files of one user selection.
type BatchSource interface {
	Files(ctx context.Context) ([]SourceFile, error)
}

// StaticSource is an in-memory batch, used for uploads and tests.
type StaticSource []SourceFile

// Files implements BatchSource.
func (s StaticSource) Files(_ context.Context) ([]SourceFile, error) {
	return s, nil
}

// MemoryFile wraps already-loaded content as a SourceFile.
func MemoryFile(name, relativePath string, content []byte) SourceFile {
	return SourceFile{
		Name:         name,
		RelativePath: relativePath,
		Size:         int64(len(content)),
		Read: func(context.Context) ([]byte, error) {
			return content, nil
		},
	}
}
