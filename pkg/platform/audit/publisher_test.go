package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willforge/pkg/domain"
)

func TestPublisher_EmitSync(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	pub := NewPublisher(store, WithPublisherClock(func() time.Time { return fixed }))

	err := pub.Emit(context.Background(), Event{
		ActorType:    ActorSystem,
		Action:       ActionWillGenerated,
		ResourceType: "pdf",
		Success:      true,
	})
	require.NoError(t, err)

	events, err := store.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.False(t, got.ID.IsNil())
	assert.Equal(t, fixed, got.Timestamp)
	assert.True(t, got.VerifyIntegrity())
}

func TestPublisher_PreservesProvidedIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)

	id := domain.NewAuditEventID()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err := pub.Emit(context.Background(), Event{
		ID:        id,
		Timestamp: ts,
		ActorType: ActorAdmin,
		ActorID:   "ops",
		Action:    ActionAdminLogin,
		Success:   true,
	})
	require.NoError(t, err)

	events, err := store.ListRecent(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, ts, events[0].Timestamp)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsync(16))

	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Emit(context.Background(), Event{
			ActorType: ActorSystem,
			Action:    ActionChecklistGenerated,
			Success:   true,
		}))
	}
	pub.Close()

	assert.Equal(t, 5, store.Len())
}

func TestMemoryStore_ListBySubmission(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	target := domain.NewSubmissionID()
	other := domain.NewSubmissionID()
	require.NoError(t, store.Append(ctx, Event{SubmissionID: target, Action: ActionSubmissionCreated}))
	require.NoError(t, store.Append(ctx, Event{SubmissionID: other, Action: ActionSubmissionCreated}))
	require.NoError(t, store.Append(ctx, Event{SubmissionID: target, Action: ActionWillGenerated}))

	events, err := store.ListBySubmission(ctx, target)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, ActionWillGenerated, events[0].Action)
	assert.Equal(t, ActionSubmissionCreated, events[1].Action)
}

func TestMemoryStore_ListRecentPagination(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	actions := []Action{ActionSubmissionCreated, ActionWillGenerated, ActionPDFDownloaded, ActionEmailSent}
	for _, a := range actions {
		require.NoError(t, store.Append(ctx, Event{Action: a}))
	}

	page, err := store.ListRecent(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ActionEmailSent, page[0].Action)
	assert.Equal(t, ActionPDFDownloaded, page[1].Action)

	page, err = store.ListRecent(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ActionWillGenerated, page[0].Action)
	assert.Equal(t, ActionSubmissionCreated, page[1].Action)
}
