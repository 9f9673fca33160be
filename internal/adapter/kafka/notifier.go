// Package kafka publishes per-record notifications to a Kafka topic. The
// notifier is optional and feature-flagged: the store remains the system of
// record, notifications only tell downstream consumers that a new grid
// landed.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/mizulab/dosha-risk-etl/internal/config"
	"github.com/mizulab/dosha-risk-etl/internal/domain"
)

// Notifier produces record summaries to the notification topic.
// It implements pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// NotifyBatch serializes and publishes summaries for multiple stored records
// in a single WriteMessages call.
func (n *Notifier) NotifyBatch(ctx context.Context, recs []domain.DecodedRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(recs))
	for i := range recs {
		msg, err := serializeToMessage(recs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return n.writer.WriteMessages(ctx, msgs...)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a record summary into a Kafka message keyed by
// observation timestamp, so replays of the same record coalesce per key.
func serializeToMessage(rec domain.DecodedRecord) (kafkago.Message, error) {
	summary := domain.Summarize(rec)
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.Observed),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_file", Value: []byte(summary.SourceFile)},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
