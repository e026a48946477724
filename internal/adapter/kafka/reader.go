package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fire-weather-index/internal/config"
	"github.com/couchcryptid/fire-weather-index/internal/domain"
)

// Reader consumes raw jobs from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader       *kafkago.Reader
	logger       *slog.Logger
	fetchTimeout time.Duration
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    64 << 20, // jobs carry whole sub-daily series and get large
	})
	return &Reader{
		reader:       r,
		logger:       logger,
		fetchTimeout: cfg.BatchFlushInterval,
	}
}

// ExtractBatch fetches up to batchSize jobs. The first fetch blocks until a
// message arrives or the context ends; subsequent fetches stop filling the
// batch once the flush interval passes, so a slow topic still flushes
// partial batches.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawJob, error) {
	jobs := make([]domain.RawJob, 0, batchSize)

	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, r.mapMessageToRawJob(msg))

	for len(jobs) < batchSize {
		fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			// Timeout means the batch is as full as it gets for now.
			break
		}
		jobs = append(jobs, r.mapMessageToRawJob(msg))
	}

	return jobs, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawJob converts a Kafka message to the domain representation,
// attaching a commit closure bound to this reader's consumer group.
func (r *Reader) mapMessageToRawJob(msg kafkago.Message) domain.RawJob {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawJob{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
