package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/config"
	"github.com/couchcryptid/accident-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	headerDatasetVersion = "dataset_version"
	headerPublishedAt    = "published_at"
)

// Writer produces dataset snapshots to a Kafka topic.
// It implements dashboard.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes snap and writes it keyed by dataset version, so every
// snapshot of one version lands on the same partition.
func (w *Writer) Publish(ctx context.Context, snap dashboard.Snapshot) error {
	msg, err := serializeToMessage(snap, domain.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.Version, err)
	}
	w.logger.Debug("snapshot published",
		"topic", w.writer.Topic,
		"version", snap.Version,
		"bytes", len(msg.Value),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(snap dashboard.Snapshot, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.Version),
		Value: data,
		Headers: []kafkago.Header{
			{Key: headerDatasetVersion, Value: []byte(snap.Version)},
			{Key: headerPublishedAt, Value: []byte(publishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
