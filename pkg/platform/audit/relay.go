package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// OutboxSource supplies unpublished outbox rows and records successful
// publication. PostgresStore satisfies it.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// producer is the slice of kgo.Client the relay needs.
type producer interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes rows to Kafka. Rows are keyed by
// aggregate ID so all events for one submission land on one partition in
// write order. Rows are marked published only after the broker acknowledges
// the whole batch, so a crash between produce and mark can re-deliver;
// consumers must treat the event ID as the idempotency key.
type Relay struct {
	source   OutboxSource
	client   producer
	topic    string
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

type RelayOption func(*Relay)

func WithRelayInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithRelayBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRelay(source OutboxSource, client producer, topic string, opts ...RelayOption) *Relay {
	r := &Relay{
		source:   source,
		client:   client,
		topic:    topic,
		interval: 5 * time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureTopic creates the audit topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicas int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replicas, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, res := range resp.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Run polls until the context is canceled. One final flush attempt runs on
// shutdown so a clean stop leaves no acknowledged-but-unmarked rows behind.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), r.interval)
			defer cancel()
			if err := r.Flush(flushCtx); err != nil {
				r.logger.Warn("outbox flush on shutdown failed", "error", err)
			}
			return ctx.Err()
		case <-ticker.C:
			if err := r.Flush(ctx); err != nil {
				r.logger.Error("outbox relay failed", "error", err)
			}
		}
	}
}

// Flush publishes one batch of unpublished outbox rows.
func (r *Relay) Flush(ctx context.Context) error {
	rows, err := r.source.FetchUnpublished(ctx, r.batch)
	if err != nil {
		return fmt.Errorf("fetch outbox rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*kgo.Record, len(rows))
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		records[i] = &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.AggregateID),
			Value: row.Payload,
		}
		ids[i] = row.ID
	}

	results := r.client.ProduceSync(ctx, records...)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}

	if err := r.source.MarkPublished(ctx, ids); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	r.logger.Debug("relayed audit events", "count", len(rows), "topic", r.topic)
	return nil
}
