// Package archive packages renamed photos into a zip container.
package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

// ZipPackager writes outputs as zip entries. It implements
// pipeline.Packager.
type ZipPackager struct {
	now func() time.Time
}

// NewZipPackager stamps entries with the time returned by now.
func NewZipPackager(now func() time.Time) *ZipPackager {
	return &ZipPackager{now: now}
}

// Package writes one stored (uncompressed) entry per output, in order.
func (p *ZipPackager) Package(ctx context.Context, w io.Writer, outputs []domain.Output) error {
	zw := zip.NewWriter(w)
	modified := p.now()

	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     out.Path,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create entry %s: %w", out.Path, err)
		}
		if _, err := fw.Write(out.Content); err != nil {
			return fmt.Errorf("write entry %s: %w", out.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
