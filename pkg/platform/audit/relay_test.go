package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeSource struct {
	rows      []OutboxRow
	fetchErr  error
	published []uuid.UUID
}

func (f *fakeSource) FetchUnpublished(_ context.Context, limit int) ([]OutboxRow, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeSource) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	f.published = append(f.published, ids...)
	return nil
}

type fakeProducer struct {
	records    []*kgo.Record
	produceErr error
}

func (f *fakeProducer) ProduceSync(_ context.Context, records ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, records...)
	results := make(kgo.ProduceResults, len(records))
	for i, r := range records {
		results[i] = kgo.ProduceResult{Record: r, Err: f.produceErr}
	}
	return results
}

func TestRelay_FlushPublishesAndMarks(t *testing.T) {
	rowA := OutboxRow{ID: uuid.New(), AggregateID: "sub-1", EventType: "submission_created", Payload: []byte(`{"a":1}`)}
	rowB := OutboxRow{ID: uuid.New(), AggregateID: "sub-2", EventType: "will_generated", Payload: []byte(`{"b":2}`)}
	source := &fakeSource{rows: []OutboxRow{rowA, rowB}}
	producer := &fakeProducer{}

	relay := NewRelay(source, producer, "willforge.audit")
	require.NoError(t, relay.Flush(context.Background()))

	require.Len(t, producer.records, 2)
	assert.Equal(t, "willforge.audit", producer.records[0].Topic)
	assert.Equal(t, []byte("sub-1"), producer.records[0].Key)
	assert.Equal(t, rowA.Payload, producer.records[0].Value)
	assert.Equal(t, []uuid.UUID{rowA.ID, rowB.ID}, source.published)
}

func TestRelay_FlushEmptyOutboxIsNoop(t *testing.T) {
	source := &fakeSource{}
	producer := &fakeProducer{}

	relay := NewRelay(source, producer, "willforge.audit")
	require.NoError(t, relay.Flush(context.Background()))

	assert.Empty(t, producer.records)
	assert.Empty(t, source.published)
}

func TestRelay_ProduceFailureLeavesRowsUnmarked(t *testing.T) {
	source := &fakeSource{rows: []OutboxRow{{ID: uuid.New(), AggregateID: "sub-1", Payload: []byte(`{}`)}}}
	producer := &fakeProducer{produceErr: errors.New("broker unavailable")}

	relay := NewRelay(source, producer, "willforge.audit")
	err := relay.Flush(context.Background())

	require.Error(t, err)
	assert.Empty(t, source.published)
}

func TestRelay_BatchSizeLimitsFetch(t *testing.T) {
	var rows []OutboxRow
	for i := 0; i < 10; i++ {
		rows = append(rows, OutboxRow{ID: uuid.New(), AggregateID: "sub", Payload: []byte(`{}`)})
	}
	source := &fakeSource{rows: rows}
	producer := &fakeProducer{}

	relay := NewRelay(source, producer, "willforge.audit", WithRelayBatchSize(3))
	require.NoError(t, relay.Flush(context.Background()))

	assert.Len(t, producer.records, 3)
	assert.Len(t, source.published, 3)
}
