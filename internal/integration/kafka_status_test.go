//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/station-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/station-monitor/internal/config"
	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
)

const testStatusTopic = "test-station-liveness"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("station-monitor-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(kc); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestMonitorPublishesStatus runs a batch through the monitor with the Kafka
// status writer attached and reads the per-station messages back.
func TestMonitorPublishesStatus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testStatusTopic)

	cfg := &config.Config{
		KafkaEnabled:     true,
		KafkaBrokers:     []string{broker},
		KafkaStatusTopic: testStatusTopic,
	}
	writer := kafka.NewStatusWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	registry := domain.NewRegistry(domain.NewNormalizer(nil), domain.NewExtractor(time.UTC), domain.DefaultThresholds())
	metrics := observability.NewMetricsForTesting()
	mon := pipeline.NewMonitor(registry, clockwork.NewFakeClockAt(now), writer, discardLogger(), metrics)

	summary, err := mon.ProcessBatch(ctx, pipeline.StaticSource{
		pipeline.MemoryFile("NAIROBI_DCP_2024.txt", "", []byte("ok 2025-03-20")),
		pipeline.MemoryFile("KASAMA_MET.log", "", []byte("seen 10/03/2025")),
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Created)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testStatusTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]kafka.StationStatus, 2)
	for len(got) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read status message")

		var st kafka.StationStatus
		require.NoError(t, json.Unmarshal(msg.Value, &st))
		assert.Equal(t, string(msg.Key), st.StationID)
		got[st.StationID] = st
	}

	assert.Equal(t, domain.StatusOnline, got["NAIROBI"].Status)
	assert.Equal(t, "2025-03-20", got["NAIROBI"].Transmission)
	assert.Equal(t, domain.StatusOffline, got["KASAMA MET"].Status)
	assert.True(t, got["KASAMA MET"].EvaluatedAt.Equal(now))
}
