package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willforge/internal/submission/models"
	"willforge/internal/submission/store"
	"willforge/pkg/domain"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/audit"
	"willforge/pkg/requestcontext"
)

func testAddress(street string) map[string]any {
	return map[string]any{
		"street":   street,
		"suburb":   "Brisbane",
		"state":    "QLD",
		"postcode": "4000",
	}
}

func validPayload() map[string]any {
	return map[string]any{
		"eligibility": map[string]any{
			"confirm_age_over_18":      true,
			"confirm_qld":              true,
			"confirm_not_legal_advice": true,
		},
		"will_maker": map[string]any{
			"full_name":           "John Doe",
			"dob":                 "1980-01-01",
			"occupation":          "Engineer",
			"address":             testAddress("123 Test St"),
			"email":               "john@example.com",
			"phone":               "0400 000 000",
			"relationship_status": "single",
		},
		"has_children": false,
		"dependants": map[string]any{
			"has_other_dependants": false,
		},
		"executors": map[string]any{
			"mode": "one",
			"primary": []any{
				map[string]any{
					"full_name":    "Jane Doe",
					"relationship": "Sister",
					"address":      testAddress("456 Test Ave"),
				},
			},
			"backup": map[string]any{"mode": "none"},
		},
		"distribution": map[string]any{"scheme": "percentages_named"},
		"beneficiaries": []any{
			map[string]any{
				"type":         "individual",
				"full_name":    "Jane Doe",
				"relationship": "Sister",
				"address":      testAddress("456 Test Ave"),
				"gift_role":    "percentage_only",
				"percentage":   100,
			},
		},
		"survivorship": map[string]any{"days": 30},
		"substitution": map[string]any{"rule": "to_their_children"},
		"declarations": map[string]any{
			"confirm_reviewed":        true,
			"confirm_complex_advice":  true,
			"confirm_super_and_joint": true,
			"confirm_signing_witness": true,
		},
	}
}

type fixture struct {
	svc        *Service
	subs       *store.Memory
	auditStore *audit.MemoryStore
	mailer     *fakeMailer
}

type fakeMailer struct {
	recipients []string
	err        error
}

func (f *fakeMailer) SendWillPackage(_ context.Context, recipient string, _ *models.Submission) error {
	if f.err != nil {
		return f.err
	}
	f.recipients = append(f.recipients, recipient)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	subs := store.NewMemory()
	auditStore := audit.NewMemoryStore()
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(subs,
		WithLogger(logger),
		WithAuditPublisher(audit.NewPublisher(auditStore, audit.WithPublisherLogger(logger))),
		WithMailer(mailer),
	)
	return &fixture{svc: svc, subs: subs, auditStore: auditStore, mailer: mailer}
}

func requestCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", "test-agent")
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	return requestcontext.WithTime(ctx, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
}

func (f *fixture) auditActions(t *testing.T) []audit.Action {
	t.Helper()
	events, err := f.auditStore.ListRecent(context.Background(), 100, 0)
	require.NoError(t, err)
	actions := make([]audit.Action, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}
	return actions
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	sub, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)

	assert.Equal(t, models.StatusLocked, sub.Status)
	assert.True(t, sub.IsLocked)
	assert.Equal(t, models.LockReasonGenerationComplete, sub.LockedReason)
	assert.Equal(t, 1, sub.Version)
	assert.NotEmpty(t, sub.PDF)
	assert.NotEmpty(t, sub.Checklist)
	assert.Len(t, sub.PDFSHA256, 64)
	assert.Len(t, sub.ChecklistSHA256, 64)
	assert.NotEmpty(t, sub.PlanJSON)
	assert.Equal(t, "203.0.113.9", sub.IPAddress)

	willSum := sha256.Sum256(sub.PDF)
	assert.Equal(t, hex.EncodeToString(willSum[:]), sub.PDFSHA256)

	stored, err := f.subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLocked, stored.Status)
	assert.Equal(t, sub.PDFSHA256, stored.PDFSHA256)

	actions := f.auditActions(t)
	assert.Contains(t, actions, audit.ActionSubmissionCreated)
	assert.Contains(t, actions, audit.ActionWillGenerated)
}

func TestGenerate_ValidationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	sub, err := f.svc.Generate(ctx, map[string]any{})
	require.Error(t, err)
	assert.Nil(t, sub)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	// The failed attempt is retained.
	list, listErr := f.subs.List(ctx, store.ListFilter{})
	require.NoError(t, listErr)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusError, list[0].Status)
	assert.False(t, list[0].IsLocked)

	assert.Contains(t, f.auditActions(t), audit.ActionValidationFailed)
}

func TestGenerate_DeterministicForPinnedTime(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	first, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)

	assert.Equal(t, first.PDFSHA256, second.PDFSHA256)
	assert.Equal(t, first.PDF, second.PDF)
	assert.Equal(t, first.ChecklistSHA256, second.ChecklistSHA256)
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	sub, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)

	t.Run("serves verified bytes", func(t *testing.T) {
		pdfBytes, hash, err := f.svc.Download(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.PDF, pdfBytes)
		assert.Equal(t, sub.PDFSHA256, hash)
		assert.Contains(t, f.auditActions(t), audit.ActionPDFDownloaded)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := f.svc.Download(ctx, domain.NewSubmissionID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("tampered artifact is never served", func(t *testing.T) {
		tampered, err := f.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		tampered.PDF[100] ^= 0xFF
		require.NoError(t, f.subs.Update(ctx, tampered))

		_, _, err = f.svc.Download(ctx, sub.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeIntegrity))
		assert.Contains(t, f.auditActions(t), audit.ActionIntegrityCheckFailed)
	})
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	sub, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)

	result, err := f.svc.Verify(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, sub.PDFSHA256, result.StoredHash)
	assert.Equal(t, result.StoredHash, result.CurrentHash)

	tampered, err := f.subs.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	tampered.PDF[100] ^= 0xFF
	require.NoError(t, f.subs.Update(ctx, tampered))

	result, err = f.svc.Verify(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.NotEqual(t, result.StoredHash, result.CurrentHash)
}

func TestRegenerate(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	parent, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)

	dup, err := f.svc.Regenerate(ctx, parent.ID)
	require.NoError(t, err)

	assert.NotEqual(t, parent.ID, dup.ID)
	assert.Equal(t, parent.ID, dup.ParentID)
	assert.Equal(t, 2, dup.Version)
	assert.Equal(t, models.StatusLocked, dup.Status)
	assert.Equal(t, parent.PayloadJSON, dup.PayloadJSON)
	// Same payload, same pinned instant, same bytes.
	assert.Equal(t, parent.PDFSHA256, dup.PDFSHA256)

	assert.Contains(t, f.auditActions(t), audit.ActionSubmissionDuplicated)
}

func TestRegenerate_RequiresFinishedSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	_, err := f.svc.Generate(ctx, map[string]any{})
	require.Error(t, err)
	list, err := f.subs.List(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.Regenerate(ctx, list[0].ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestEmail(t *testing.T) {
	t.Run("delivery recorded", func(t *testing.T) {
		f := newFixture(t)
		ctx := requestCtx(t)
		sub, err := f.svc.Generate(ctx, validPayload())
		require.NoError(t, err)

		require.NoError(t, f.svc.Email(ctx, sub.ID, "john@example.com"))

		assert.Equal(t, []string{"john@example.com"}, f.mailer.recipients)
		stored, err := f.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.True(t, stored.EmailSent)
		require.NotNil(t, stored.EmailSentAt)
		assert.Equal(t, "john@example.com", stored.EmailRecipient)
		assert.Contains(t, f.auditActions(t), audit.ActionEmailSent)
	})

	t.Run("failure recorded", func(t *testing.T) {
		f := newFixture(t)
		ctx := requestCtx(t)
		sub, err := f.svc.Generate(ctx, validPayload())
		require.NoError(t, err)

		f.mailer.err = errors.New("smtp unavailable")
		err = f.svc.Email(ctx, sub.ID, "john@example.com")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeEmailDelivery))

		stored, err := f.subs.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.False(t, stored.EmailSent)
		assert.Equal(t, "smtp unavailable", stored.EmailError)
		assert.Contains(t, f.auditActions(t), audit.ActionEmailFailed)
	})

	t.Run("requires generated documents", func(t *testing.T) {
		f := newFixture(t)
		ctx := requestCtx(t)
		_, err := f.svc.Generate(ctx, map[string]any{})
		require.Error(t, err)
		list, err := f.subs.List(ctx, store.ListFilter{})
		require.NoError(t, err)

		err = f.svc.Email(ctx, list[0].ID, "john@example.com")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("requires a recipient", func(t *testing.T) {
		f := newFixture(t)
		ctx := requestCtx(t)
		sub, err := f.svc.Generate(ctx, validPayload())
		require.NoError(t, err)

		err = f.svc.Email(ctx, sub.ID, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	_, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, map[string]any{})
	require.Error(t, err)

	locked, err := f.svc.List(ctx, store.ListFilter{Status: models.StatusLocked})
	require.NoError(t, err)
	assert.Len(t, locked, 1)

	_, err = f.svc.List(ctx, store.ListFilter{Status: models.Status("bogus")})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := requestCtx(t)

	_, err := f.svc.Generate(ctx, validPayload())
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, map[string]any{})
	require.Error(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["total"])
	byStatus := stats["by_status"].(map[string]int)
	assert.Equal(t, 1, byStatus[string(models.StatusLocked)])
	assert.Equal(t, 1, byStatus[string(models.StatusError)])
}
