package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/station-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/station-monitor/internal/adapter/archive"
	"github.com/couchcryptid/station-monitor/internal/cache"
	"github.com/couchcryptid/station-monitor/internal/config"
	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
)

// Metrics register with the default registry exactly once per process, even
// when several root commands are built.
var processMetrics = sync.OnceValue(observability.NewMetrics)

type commandContext struct {
	configFlag *string
	clock      clockwork.Clock

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		clock:      clockwork.NewRealClock(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// services is the wired object graph shared by every subcommand.
type services struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	monitor   *pipeline.Monitor
	archiver  *pipeline.ArchiveService
	packager  *archive.ZipPackager
	publisher *kafkaadapter.StatusWriter
}

// cliLogger keeps stdout free for command output.
func cliLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLoggerTo(os.Stderr, cfg)
}

func (c *commandContext) services(newLogger func(*config.Config) *slog.Logger) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	metrics := processMetrics()

	dates := cache.NewCachedExtractor(domain.NewExtractor(time.Local), cfg.ExtractCacheSize, metrics.ExtractCache)
	registry := domain.NewRegistry(domain.NewNormalizer(cfg.NoiseTokens), dates, cfg.Thresholds())

	s := &services{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		clock:    c.clock,
		packager: archive.NewZipPackager(c.clock.Now),
	}

	// The interface stays nil when Kafka is off.
	var publisher pipeline.StatusPublisher
	if cfg.KafkaEnabled {
		s.publisher = kafkaadapter.NewStatusWriter(cfg, logger)
		publisher = s.publisher
		logger.Info("status publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaStatusTopic)
	}

	s.monitor = pipeline.NewMonitor(registry, c.clock, publisher, logger, metrics)
	s.monitor.PurgeOnReset(dates)
	s.archiver = pipeline.NewArchiveService(cfg.FallbackYear, s.packager, logger, metrics)
	return s, nil
}

// close releases external connections.
func (s *services) close() {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("kafka writer close error", "error", err)
	}
}
