package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/forecast-enrichment-service/internal/config"
	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// Writer publishes enriched forecast samples to a Kafka topic.
// It implements pipeline.DatasetLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadDataset serializes each enriched sample into its own message and
// publishes the whole dataset in a single WriteMessages call.
func (w *Writer) LoadDataset(ctx context.Context, ds domain.ForecastDataset) error {
	if len(ds.Samples) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Samples))
	for i := range ds.Samples {
		msg, err := serializeToMessage(ds, ds.Samples[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write forecast messages: %w", err)
	}
	w.logger.Debug("dataset published", "topic", w.writer.Topic, "samples", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an enriched sample into a Kafka message keyed
// by city and slot timestamp, so re-publishing a refreshed forecast compacts
// onto the same keys.
func serializeToMessage(ds domain.ForecastDataset, sample domain.EnrichedSample) (kafkago.Message, error) {
	data, err := json.Marshal(sample)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast sample: %w", err)
	}
	key := fmt.Sprintf("%s|%s", ds.City, sample.Timestamp.UTC().Format(time.RFC3339))
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(ds.City)},
			{Key: "source", Value: []byte(ds.Source)},
			{Key: "retrieved_at", Value: []byte(ds.RetrievedAt.Format(time.RFC3339))},
		},
	}, nil
}
