package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/zeebo/xxh3"
)

// Watcher re-ingests a folder from scratch whenever its listing changes.
type Watcher struct {
	monitor  *Monitor
	source   BatchSource
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	onChange func(BatchSummary)
}

// NewWatcher polls source every interval. onChange, if non-nil, runs after
// each rescan.
func NewWatcher(monitor *Monitor, source BatchSource, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, onChange func(BatchSummary)) *Watcher {
	return &Watcher{
		monitor:  monitor,
		source:   source,
		clock:    clock,
		interval: interval,
		logger:   logger,
		onChange: onChange,
	}
}

// Run scans once immediately and then on every change until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started", "interval", w.interval)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	var last uint64
	first := true
	for {
		files, err := w.source.Files(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("list watched folder failed", "error", err)
		case first || Fingerprint(files) != last:
			last, first = Fingerprint(files), false
			w.rescan(ctx, files)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

func (w *Watcher) rescan(ctx context.Context, files []SourceFile) {
	summary, err := w.monitor.Rescan(ctx, StaticSource(files))
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("rescan failed", "error", err)
		}
		return
	}
	if w.onChange != nil {
		w.onChange(summary)
	}
}

// Fingerprint hashes the names, sizes and modification times of files,
// independent of listing order.
func Fingerprint(files []SourceFile) uint64 {
	lines := make([]string, len(files))
	for i, f := range files {
		lines[i] = f.Name + "\x00" + strconv.FormatInt(f.Size, 10) + "\x00" + strconv.FormatInt(f.ModTime.UnixNano(), 10)
	}
	slices.Sort(lines)
	return xxh3.HashString(strings.Join(lines, "\n"))
}
