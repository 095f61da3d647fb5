package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"willforge/internal/submission/models"
	"willforge/pkg/platform/audit"
)

const (
	defaultBatchSize   = 500
	defaultParallelism = 4
	defaultInterval    = 24 * time.Hour
)

// Store is the slice of the submission store the sweeper needs.
type Store interface {
	ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
}

// AuditPublisher records retention actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Report summarizes one sweep.
type Report struct {
	Executed          bool      `json:"executed"`
	Reason            string    `json:"reason,omitempty"`
	DryRun            bool      `json:"dry_run"`
	Cutoff            time.Time `json:"cutoff"`
	Examined          int       `json:"examined"`
	PDFsDeleted       int       `json:"pdfs_deleted"`
	ChecklistsDeleted int       `json:"checklists_deleted"`
	PayloadsDeleted   int       `json:"payloads_deleted"`
	Errors            []string  `json:"errors,omitempty"`
}

// Sweeper applies the retention policy against the submission store.
type Sweeper struct {
	store     Store
	policy    Policy
	logger    *slog.Logger
	auditor   AuditPublisher
	now       func() time.Time
	batchSize int
	interval  time.Duration
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Sweeper) {
		s.auditor = publisher
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func WithBatchSize(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func NewSweeper(store Store, policy Policy, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:     store,
		policy:    policy,
		logger:    slog.Default(),
		now:       time.Now,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on a fixed schedule until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, false); err != nil {
				s.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
			}
		}
	}
}

// Sweep removes expired artifacts per the policy. With dryRun set it only
// reports what a real sweep would remove.
func (s *Sweeper) Sweep(ctx context.Context, dryRun bool) (*Report, error) {
	now := s.now().UTC()
	report := &Report{
		Executed: true,
		DryRun:   dryRun,
		Cutoff:   s.policy.Cutoff(now),
	}

	if !s.policy.AutoDeleteEnabled && !dryRun {
		report.Executed = false
		report.Reason = "auto-delete is disabled"
		return report, nil
	}

	candidates, err := s.store.ListCreatedBefore(ctx, report.Cutoff, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list expired submissions: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultParallelism)

	for _, sub := range candidates {
		if !Eligible(sub, report.Cutoff) {
			continue
		}
		report.Examined++

		g.Go(func() error {
			outcome, err := s.sweepOne(gctx, sub, dryRun)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("submission %s: %v", sub.ID, err))
				return nil
			}
			report.PDFsDeleted += outcome.pdfs
			report.ChecklistsDeleted += outcome.checklists
			report.PayloadsDeleted += outcome.payloads
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !dryRun {
		s.emitSweepCompleted(ctx, report)
	}
	s.logger.InfoContext(ctx, "retention sweep finished",
		"dry_run", dryRun,
		"examined", report.Examined,
		"pdfs_deleted", report.PDFsDeleted,
		"payloads_deleted", report.PayloadsDeleted,
		"errors", len(report.Errors))
	return report, nil
}

type sweepOutcome struct {
	pdfs       int
	checklists int
	payloads   int
	actions    []string
}

func (s *Sweeper) sweepOne(ctx context.Context, sub *models.Submission, dryRun bool) (*sweepOutcome, error) {
	outcome := &sweepOutcome{}

	if s.policy.DeletePDFs {
		if len(sub.PDF) > 0 {
			outcome.pdfs++
			outcome.actions = append(outcome.actions, "pdf_deleted")
			if !dryRun {
				sub.PDF = nil
			}
		}
		if len(sub.Checklist) > 0 {
			outcome.checklists++
			outcome.actions = append(outcome.actions, "checklist_deleted")
			if !dryRun {
				sub.Checklist = nil
			}
		}
	}
	if s.policy.DeletePayloads && len(sub.PayloadJSON) > 2 {
		outcome.payloads++
		outcome.actions = append(outcome.actions, "payload_deleted")
		if !dryRun {
			sub.PayloadJSON = []byte("{}")
		}
	}

	if dryRun || len(outcome.actions) == 0 {
		return outcome, nil
	}

	// The document hashes stay behind so a previously issued will can still
	// be matched against its record.
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	s.emitDeletion(ctx, sub, outcome.actions)
	return outcome, nil
}

func (s *Sweeper) emitDeletion(ctx context.Context, sub *models.Submission, actions []string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		ActorType:    audit.ActorSystem,
		ActorID:      "retention",
		Action:       audit.ActionRetentionDeletion,
		SubmissionID: sub.ID,
		ResourceType: "submission",
		ResourceID:   sub.ID.String(),
		Details: map[string]any{
			"actions":        actions,
			"retention_days": s.policy.RetentionDays,
		},
		Success: true,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record retention deletion",
			"error", err, "submission_id", sub.ID.String())
	}
}

func (s *Sweeper) emitSweepCompleted(ctx context.Context, report *Report) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		ActorType:    audit.ActorSystem,
		ActorID:      "retention",
		Action:       audit.ActionRetentionSweep,
		ResourceType: "retention_policy",
		Details: map[string]any{
			"examined":           report.Examined,
			"pdfs_deleted":       report.PDFsDeleted,
			"checklists_deleted": report.ChecklistsDeleted,
			"payloads_deleted":   report.PayloadsDeleted,
			"error_count":        len(report.Errors),
			"retention_days":     s.policy.RetentionDays,
		},
		Success: len(report.Errors) == 0,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record sweep completion", "error", err)
	}
}
