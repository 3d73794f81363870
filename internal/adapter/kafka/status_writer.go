// Package kafka publishes station liveness snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/station-monitor/internal/config"
	"github.com/couchcryptid/station-monitor/internal/domain"
)

// StationStatus is the payload of one status message.
type StationStatus struct {
	StationID    string        `json:"station_id"`
	LastSeen     time.Time     `json:"last_seen"`
	Transmission string        `json:"transmission"`
	Status       domain.Status `json:"status"`
	EvaluatedAt  time.Time     `json:"evaluated_at"`
}

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// StatusWriter produces one keyed message per station for every snapshot.
// It implements pipeline.StatusPublisher.
type StatusWriter struct {
	writer messageWriter
	logger *slog.Logger
}

// NewStatusWriter creates a Kafka producer for the configured status topic.
func NewStatusWriter(cfg *config.Config, logger *slog.Logger) *StatusWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaStatusTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &StatusWriter{writer: w, logger: logger}
}

// Publish writes every station of snap in a single WriteMessages call.
// Keys are station IDs, so a compacted topic keeps the latest status.
func (w *StatusWriter) Publish(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Stations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Stations))
	for i, st := range snap.Stations {
		msg, err := serializeToMessage(st, snap.EvaluatedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write status messages: %w", err)
	}
	w.logger.Debug("status snapshot published", "stations", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *StatusWriter) Close() error {
	return w.writer.Close()
}

func serializeToMessage(st domain.StationView, evaluatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(StationStatus{
		StationID:    st.Key,
		LastSeen:     st.LastSeen,
		Transmission: st.Transmission,
		Status:       st.Status,
		EvaluatedAt:  evaluatedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station status: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(st.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(st.Status)},
			{Key: "evaluated_at", Value: []byte(evaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
