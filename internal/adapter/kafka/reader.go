package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/config"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
)

// Reader consumes raw messages from the source topic as part of a consumer
// group. It implements pipeline.BatchExtractor. Offsets are committed per
// message through the event's Commit callback, never implicitly, so a crash
// mid-batch replays only unacknowledged messages.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaSourceTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, flushInterval: cfg.BatchFlushInterval, logger: logger}
}

// ExtractBatch blocks for the first message, then keeps fetching until the
// batch is full or the flush interval elapses with nothing new. A canceled
// context returns whatever was already fetched.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	events := make([]domain.RawEvent, 0, batchSize)

	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return events, nil
		}
		return nil, fmt.Errorf("fetching first message: %w", err)
	}
	events = append(events, r.mapWithCommit(msg))

	for len(events) < batchSize {
		fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("fetching message: %w", err)
		}
		events = append(events, r.mapWithCommit(msg))
	}

	return events, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) mapWithCommit(msg kafkago.Message) domain.RawEvent {
	event := mapMessageToRawEvent(msg)
	event.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return event
}

// mapMessageToRawEvent converts a Kafka message into the domain's raw event
// shape. The Commit callback is attached separately by the reader.
func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
