package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
)

// ErrNoFiles is returned by Run when nothing has been loaded.
var ErrNoFiles = errors.New("no files loaded")

// Packager writes renamed files into an archive container.
type Packager interface {
	Package(ctx context.Context, w io.Writer, outputs []domain.Output) error
}

// Renamer collects a photo selection and packages it into month slots.
type Renamer struct {
	fallbackYear int
	logger       *slog.Logger
	metrics      *observability.Metrics

	mu    sync.Mutex
	files []domain.File
}

// NewRenamer creates an empty Renamer.
func NewRenamer(fallbackYear int, logger *slog.Logger, metrics *observability.Metrics) *Renamer {
	return &Renamer{
		fallbackYear: fallbackYear,
		logger:       logger,
		metrics:      metrics,
	}
}

// Load reads every non-hidden file from src into the selection and returns
// how many were added. A file that cannot be read fails the whole load, since
// a partial archive would silently renumber the remaining photos.
func (r *Renamer) Load(ctx context.Context, src BatchSource) (int, error) {
	listed, err := src.Files(ctx)
	if err != nil {
		return 0, fmt.Errorf("list renamer files: %w", err)
	}

	loaded := make([]domain.File, 0, len(listed))
	for _, f := range listed {
		if domain.IsHidden(f.Name) {
			continue
		}
		content, err := f.Read(ctx)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", f.Name, err)
		}
		loaded = append(loaded, domain.File{Name: f.Name, RelativePath: f.RelativePath, Content: content})
	}

	r.mu.Lock()
	r.files = append(r.files, loaded...)
	r.mu.Unlock()
	return len(loaded), nil
}

// Len returns the number of loaded files.
func (r *Renamer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// Label is the folder label derived from the loaded selection.
func (r *Renamer) Label() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.FolderLabel(r.files, r.fallbackYear)
}

// Reset drops the loaded selection.
func (r *Renamer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = nil
}

// Plan distributes the loaded files using label, or the derived label when
// label is empty.
func (r *Renamer) Plan(label string) (domain.DistributionPlan, error) {
	r.mu.Lock()
	files := r.files
	if label == "" {
		label = domain.FolderLabel(files, r.fallbackYear)
	}
	r.mu.Unlock()

	return domain.Plan(files, label, r.fallbackYear)
}

// Run plans the loaded files and writes the archive to w.
func (r *Renamer) Run(ctx context.Context, label string, pkg Packager, w io.Writer) (domain.DistributionPlan, error) {
	if r.Len() == 0 {
		return domain.DistributionPlan{}, ErrNoFiles
	}

	plan, err := r.Plan(label)
	if err != nil {
		r.metrics.RenamerErrors.Inc()
		return plan, err
	}

	if err := pkg.Package(ctx, w, plan.Outputs()); err != nil {
		r.metrics.RenamerErrors.Inc()
		return plan, fmt.Errorf("package %s: %w", domain.ArchiveName(plan.Label), err)
	}

	r.metrics.RenamerFiles.Add(float64(len(plan.Assignments)))
	r.logger.Info("archive packaged",
		"label", plan.Label,
		"year", plan.Year,
		"months", len(plan.AvailableMonths),
		"per_month", plan.PerMonth,
		"files", len(plan.Assignments),
	)
	return plan, nil
}
