package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/dashboard"
	kafkago "github.com/segmentio/kafka-go"
)

// SnapshotMessage is one snapshot read back from the topic.
type SnapshotMessage struct {
	Snapshot    dashboard.Snapshot
	PublishedAt time.Time
	Partition   int
	Offset      int64
	Headers     map[string]string
}

// Reader consumes dataset snapshots from a Kafka topic.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer for topic. An empty groupID reads partition 0
// from the first offset without committing.
func NewReader(brokers []string, topic, groupID string, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// Next blocks until the next snapshot arrives or ctx is done.
func (r *Reader) Next(ctx context.Context) (SnapshotMessage, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return SnapshotMessage{}, fmt.Errorf("read snapshot: %w", err)
	}
	out, err := parseMessage(msg)
	if err != nil {
		r.logger.Warn("undecodable snapshot message",
			"error", err,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return SnapshotMessage{}, err
	}
	return out, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// parseMessage decodes a snapshot message written by Writer.
func parseMessage(msg kafkago.Message) (SnapshotMessage, error) {
	var snap dashboard.Snapshot
	if err := json.Unmarshal(msg.Value, &snap); err != nil {
		return SnapshotMessage{}, fmt.Errorf("decode snapshot at offset %d: %w", msg.Offset, err)
	}

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	out := SnapshotMessage{
		Snapshot:  snap,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Headers:   headers,
	}
	if ts, err := time.Parse(time.RFC3339, headers[headerPublishedAt]); err == nil {
		out.PublishedAt = ts
	}
	return out, nil
}
