// Package events provides Sink implementations for confirmed-write events:
// a Kafka transport and a channel-buffered worker that keeps slow transports
// off the submission path.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"lexseal/internal/ledger"
)

const (
	TopicNotarized = "lexseal.ledger.notarized"
	TopicCommitted = "lexseal.ledger.committed"
	TopicReleased  = "lexseal.ledger.released"
)

// KafkaSink publishes confirmed-write events to Kafka. Produce calls are
// asynchronous; delivery failures are logged, never surfaced to the
// submission path.
type KafkaSink struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafkaSink connects to the given brokers and ensures the event topics
// exist.
func NewKafkaSink(ctx context.Context, brokers []string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopics(ctx, client); err != nil {
		client.Close()
		return nil, err
	}

	return &KafkaSink{client: client, logger: logger}, nil
}

func ensureTopics(ctx context.Context, client *kgo.Client) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 1, 1, nil, TopicNotarized, TopicCommitted, TopicReleased)
	if err != nil {
		return fmt.Errorf("create event topics: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) error {
	if err := s.client.Flush(ctx); err != nil {
		s.client.Close()
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	s.client.Close()
	return nil
}

func (s *KafkaSink) produce(ctx context.Context, topic string, key []byte, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode ledger event", "topic", topic, "error", err)
		return
	}
	record := &kgo.Record{Topic: topic, Key: key, Value: payload}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("deliver ledger event", "topic", topic, "error", err)
		}
	})
}

func (s *KafkaSink) Notarized(ctx context.Context, event ledger.NotarizedEvent) {
	s.produce(ctx, TopicNotarized, event.RunID[:], event)
}

func (s *KafkaSink) Committed(ctx context.Context, event ledger.CommittedEvent) {
	s.produce(ctx, TopicCommitted, event.CommitID[:], event)
}

func (s *KafkaSink) Released(ctx context.Context, event ledger.ReleasedEvent) {
	s.produce(ctx, TopicReleased, event.VersionID[:], event)
}

var _ ledger.Sink = (*KafkaSink)(nil)
