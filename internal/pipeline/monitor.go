package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
)

// outcomeFailed labels files whose bytes could not be read.
const outcomeFailed = "failed"

// StatusPublisher receives the station snapshot taken after every batch.
type StatusPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Purger drops memoized state derived from earlier batches.
type Purger interface {
	Purge()
}

// BatchSummary counts what one batch did.
type BatchSummary struct {
	BatchID  string
	Files    int
	Created  int
	Updated  int
	Stale    int
	Skipped  int // rejected names, no date, undecodable
	Failed   int // read errors
	Duration time.Duration
}

// Applied is the number of files that changed the registry.
func (s BatchSummary) Applied() int { return s.Created + s.Updated }

// Monitor ingests batches of transmission files into a station registry.
// Batches are serialized: the merge for one file completes before the next
// file is read.
type Monitor struct {
	registry  *domain.Registry
	clock     clockwork.Clock
	publisher StatusPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	purgers   []Purger

	batchMu sync.Mutex
	ready   atomic.Bool
}

// NewMonitor creates a Monitor. publisher may be nil.
func NewMonitor(registry *domain.Registry, clock clockwork.Clock, publisher StatusPublisher, logger *slog.Logger, metrics *observability.Metrics) *Monitor {
	return &Monitor{
		registry:  registry,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// PurgeOnReset registers p to be purged by Reset. Rescan leaves it intact.
// Call before the monitor is shared.
func (m *Monitor) PurgeOnReset(p Purger) {
	m.purgers = append(m.purgers, p)
}

// CheckReadiness returns nil once at least one batch has been processed.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not processed any batches yet")
	}
	return nil
}

// ProcessBatch ingests every file from src in order. Per-file failures are
// logged and counted; only a listing failure or context cancellation ends
// the batch early, and in the latter case the partial summary is returned.
func (m *Monitor) ProcessBatch(ctx context.Context, src BatchSource) (BatchSummary, error) {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	return m.processLocked(ctx, src)
}

// Rescan clears the registry and ingests src from scratch as one unit.
func (m *Monitor) Rescan(ctx context.Context, src BatchSource) (BatchSummary, error) {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	m.registry.Reset()
	return m.processLocked(ctx, src)
}

func (m *Monitor) processLocked(ctx context.Context, src BatchSource) (BatchSummary, error) {
	start := m.clock.Now()
	summary := BatchSummary{BatchID: uuid.NewString()}
	logger := m.logger.With("batch_id", summary.BatchID)

	files, err := src.Files(ctx)
	if err != nil {
		return summary, fmt.Errorf("list batch files: %w", err)
	}
	summary.Files = len(files)
	m.metrics.BatchSize.Observe(float64(len(files)))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			logger.Info("batch interrupted", "reason", err, "remaining", len(files)-summary.processed())
			m.afterBatch(ctx, logger, &summary, start)
			return summary, err
		}
		m.ingestFile(ctx, logger, f, &summary)
	}

	m.afterBatch(ctx, logger, &summary, start)
	return summary, nil
}

func (m *Monitor) ingestFile(ctx context.Context, logger *slog.Logger, f SourceFile, summary *BatchSummary) {
	content, err := f.Read(ctx)
	if err != nil {
		logger.Warn("read failed, skipping file", "file", f.Name, "error", err)
		m.metrics.FilesIngested.WithLabelValues(outcomeFailed).Inc()
		summary.Failed++
		return
	}

	res := m.registry.Ingest(f.Name, content)
	m.metrics.FilesIngested.WithLabelValues(string(res.Outcome)).Inc()

	switch res.Outcome {
	case domain.OutcomeCreated:
		summary.Created++
	case domain.OutcomeUpdated:
		summary.Updated++
	case domain.OutcomeStale:
		summary.Stale++
	case domain.OutcomeRejectedName:
		summary.Skipped++
		logger.Debug("no station name, skipping file", "file", f.Name)
	case domain.OutcomeNoDate:
		summary.Skipped++
		logger.Info("no date found, skipping file", "file", f.Name, "station", res.Key)
	case domain.OutcomeUndecodable:
		summary.Skipped++
		logger.Info("content not decodable, skipping file", "file", f.Name, "station", res.Key, "error", res.Err)
	}
}

func (s BatchSummary) processed() int {
	return s.Created + s.Updated + s.Stale + s.Skipped + s.Failed
}

func (m *Monitor) afterBatch(ctx context.Context, logger *slog.Logger, summary *BatchSummary, start time.Time) {
	summary.Duration = m.clock.Since(start)
	m.metrics.BatchesProcessed.Inc()
	m.metrics.BatchDuration.Observe(summary.Duration.Seconds())

	snap := m.Snapshot("")
	m.publish(ctx, logger, snap)
	m.ready.Store(true)

	logger.Info("batch processed",
		"files", summary.Files,
		"created", summary.Created,
		"updated", summary.Updated,
		"stale", summary.Stale,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"stations", snap.Total,
		"duration", summary.Duration,
	)
}

func (m *Monitor) publish(ctx context.Context, logger *slog.Logger, snap domain.Snapshot) {
	if m.publisher == nil || snap.Total == 0 {
		return
	}
	// Publishing outlives a cancelled batch so the partial result still goes out.
	if err := m.publisher.Publish(context.WithoutCancel(ctx), snap); err != nil {
		logger.Warn("publish status snapshot failed", "error", err, "stations", snap.Total)
		m.metrics.PublishErrors.Inc()
	}
}

// Snapshot classifies the stations matching filter against the current time
// and refreshes the station gauges when filter is empty.
func (m *Monitor) Snapshot(filter string) domain.Snapshot {
	snap := m.registry.Snapshot(m.clock.Now(), filter)
	if filter == "" {
		m.observe(snap)
	}
	return snap
}

// Reset clears every tracked station.
func (m *Monitor) Reset() {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	m.registry.Reset()
	for _, p := range m.purgers {
		p.Purge()
	}
	m.observe(domain.Snapshot{})
	m.logger.Info("station registry reset")
}

func (m *Monitor) observe(snap domain.Snapshot) {
	m.metrics.StationsTracked.Set(float64(snap.Total))
	m.metrics.StationsByStatus.WithLabelValues(string(domain.StatusOnline)).Set(float64(snap.Online))
	m.metrics.StationsByStatus.WithLabelValues(string(domain.StatusDelayed)).Set(float64(snap.Delayed))
	m.metrics.StationsByStatus.WithLabelValues(string(domain.StatusOffline)).Set(float64(snap.Offline))
}
