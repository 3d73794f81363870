package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
)

// ArchiveService runs one self-contained renamer pass per call, for callers
// that do not keep a selection between requests.
type ArchiveService struct {
	fallbackYear int
	packager     Packager
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewArchiveService creates an ArchiveService.
func NewArchiveService(fallbackYear int, packager Packager, logger *slog.Logger, metrics *observability.Metrics) *ArchiveService {
	return &ArchiveService{
		fallbackYear: fallbackYear,
		packager:     packager,
		logger:       logger,
		metrics:      metrics,
	}
}

// Archive loads src, plans it under label (derived when empty) and writes
// the archive to w.
func (s *ArchiveService) Archive(ctx context.Context, src BatchSource, label string, w io.Writer) (domain.DistributionPlan, error) {
	r := NewRenamer(s.fallbackYear, s.logger, s.metrics)
	if _, err := r.Load(ctx, src); err != nil {
		return domain.DistributionPlan{}, err
	}
	return r.Run(ctx, label, s.packager, w)
}
