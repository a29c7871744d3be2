package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juju/retry"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/idnumber"
	"github.com/kurochkinivan/member_uploader/internal/normalizer"
	"github.com/kurochkinivan/member_uploader/internal/reconcile"
)

// rowResult is what one row produced. Every row yields exactly one, whatever failed.
type rowResult struct {
	outcome *domain.RowOutcome
	err     error
}

// jobRun holds the per-job state of a processor.
type jobRun struct {
	proc       *Processor
	log        *slog.Logger
	job        *domain.UploadJob
	headers    normalizer.HeaderMap
	engine     *reconcile.Engine
	normalizer *normalizer.Normalizer
}

// rows processes every row in order. Outcomes are persisted and progress published every
// ProgressEvery rows and once more at the end.
func (r *jobRun) rows(ctx context.Context, rows []domain.RawRow) (domain.JobStatus, int, error) {
	every := r.proc.cfg.ProgressEvery
	buffer := make([]*domain.RowOutcome, 0, every)
	processed := 0

	for _, raw := range rows {
		if err := ctx.Err(); err != nil {
			return "", processed, err
		}

		cancelled, err := r.proc.deps.Tracker.CancelRequested(ctx, r.job.ID)
		if err != nil {
			return "", processed, fmt.Errorf("failed to check cancellation: %w", err)
		}
		if cancelled {
			if err := r.flush(ctx, buffer, processed); err != nil {
				return "", processed, err
			}
			r.log.InfoContext(ctx, "job cancellation observed", slog.Int("rows_processed", processed))
			return domain.StatusCancelled, processed, nil
		}

		res := r.row(ctx, raw)
		if res.err != nil {
			r.log.WarnContext(ctx, "row failed",
				slog.Int("row", raw.Index),
				slog.String("outcome", string(res.outcome.Kind)),
				slog.String("err", res.err.Error()),
			)
		}

		buffer = append(buffer, res.outcome)
		processed++

		if processed%every == 0 {
			if err := r.flush(ctx, buffer, processed); err != nil {
				return "", processed, err
			}
			buffer = buffer[:0]
		}
	}

	if len(buffer) > 0 || processed == 0 {
		if err := r.flush(ctx, buffer, processed); err != nil {
			return "", processed, err
		}
	}

	return domain.StatusCompleted, processed, nil
}

// flush stores buffered outcomes together with the progress counter and extends the lease.
func (r *jobRun) flush(ctx context.Context, buffer []*domain.RowOutcome, processed int) error {
	deps := r.proc.deps

	err := deps.Transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := deps.Outcomes.SaveOutcomes(ctx, r.job.ID, buffer...); err != nil {
			return err
		}
		return deps.Tracker.UpdateProgress(ctx, r.job.ID, processed, r.proc.cfg.Lease)
	})
	if err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}

	r.job.RowsProcessed = processed
	deps.Publisher.Publish(domain.EventJobProgress, r.job.ID, map[string]any{
		"rows_processed":   processed,
		"rows_total":       r.job.TotalRows,
		"progress_percent": r.job.ProgressPercent(),
	})

	return nil
}

func (r *jobRun) row(ctx context.Context, raw domain.RawRow) rowResult {
	rawID := strings.TrimSpace(r.cell(raw, normalizer.FieldIDNumber))
	outcome := &domain.RowOutcome{
		RowIndex:     raw.Index,
		Operation:    domain.OperationNone,
		IDNumber:     normalizer.NormalizeIDNumber(rawID),
		RawIDNumber:  rawID,
		FirstName:    strings.TrimSpace(r.cell(raw, normalizer.FieldFirstName)),
		Surname:      strings.TrimSpace(r.cell(raw, normalizer.FieldSurname)),
		Verification: domain.VerificationNotAttempted,
	}

	rec, err := r.normalizer.Normalize(ctx, raw)
	if err != nil {
		var rowErr *normalizer.RowError
		if errors.As(err, &rowErr) {
			return invalidFormat(outcome, rowErr.Error())
		}
		return databaseError(outcome, "reference lookup failed", err)
	}
	outcome.Record = rec
	outcome.IDNumber = rec.IDNumber
	outcome.FirstName = rec.FirstName
	outcome.Surname = rec.Surname

	check := idnumber.Validate(rec.IDNumber)
	if !check.Valid {
		return invalidFormat(outcome, fmt.Sprintf("%s: %s", check.Reason, check.Message))
	}
	if rec.DateOfBirth == nil {
		birth := check.BirthDate
		rec.DateOfBirth = &birth
	}

	if first, ok := r.engine.Seen(rec.IDNumber); ok && first != raw.Index {
		return duplicate(outcome, first)
	}

	outcome.Verification = r.verify(ctx, rec.IDNumber)

	decision, memberID, err := r.write(ctx, rec)
	if err != nil {
		switch decision.Action {
		case reconcile.ActionCreate:
			outcome.Operation = domain.OperationCreate
		case reconcile.ActionUpdate:
			outcome.Operation = domain.OperationUpdate
		}
		return databaseError(outcome, "member write failed", err)
	}

	outcome.MemberID = &memberID
	switch decision.Action {
	case reconcile.ActionCreate:
		outcome.Kind = domain.OutcomeValidatedNew
		outcome.Operation = domain.OperationCreate
		outcome.Detail = "member created"
	case reconcile.ActionUpdate:
		columns := make([]string, 0, len(decision.Changes))
		for _, c := range decision.Changes {
			columns = append(columns, c.Column)
		}
		outcome.Kind = domain.OutcomeValidatedUpdate
		outcome.Operation = domain.OperationUpdate
		outcome.Detail = "updated " + strings.Join(columns, ", ")
	case reconcile.ActionNoop:
		outcome.Kind = domain.OutcomeValidatedUpdate
		outcome.Operation = domain.OperationNoop
		outcome.Detail = "no changes"
	case reconcile.ActionReject:
		outcome.MemberID = nil
		return duplicate(outcome, decision.DuplicateOf)
	}

	return rowResult{outcome: outcome}
}

func (r *jobRun) cell(raw domain.RawRow, f normalizer.Field) string {
	return raw.Cells[r.headers[f]]
}

// verify makes the best-effort external check. Failures only degrade the row's
// verification state.
func (r *jobRun) verify(ctx context.Context, id string) domain.VerificationState {
	deps := r.proc.deps
	if deps.Verifier == nil {
		return domain.VerificationNotAttempted
	}

	if deps.Limiter != nil {
		if d := deps.Limiter.TryAcquire(); !d.Allowed {
			r.log.DebugContext(ctx, "verification skipped, rate limit reached",
				slog.Duration("retry_after", d.RetryAfter),
			)
			return domain.VerificationRateLimited
		}
	}

	v, err := deps.Verifier.Verify(ctx, id)
	if err != nil {
		r.log.WarnContext(ctx, "verification failed", slog.String("err", err.Error()))
		return domain.VerificationFailed
	}
	if v.Registered {
		return domain.VerificationRegistered
	}

	return domain.VerificationNotRegistered
}

// write reconciles and stores one record in its own transaction, retrying transient
// failures. The decision of the last attempt is returned even on error.
func (r *jobRun) write(ctx context.Context, rec *domain.NormalizedRecord) (reconcile.Decision, int64, error) {
	var (
		deps     = r.proc.deps
		cfg      = r.proc.cfg
		decision reconcile.Decision
		memberID int64
		lastErr  error
	)

	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, cfg.RowTxTimeout)
		defer cancel()

		decision, memberID = reconcile.Decision{}, 0
		lastErr = deps.Transactor.WithTransaction(txCtx, func(ctx context.Context) error {
			d, err := r.engine.Reconcile(rec, func(id string) (*domain.Member, error) {
				return deps.Members.MemberByIDNumber(ctx, id)
			})
			if err != nil {
				return err
			}
			decision = d

			switch d.Action {
			case reconcile.ActionCreate:
				id, err := deps.Members.InsertMember(ctx, reconcile.NewMember(rec))
				if err != nil {
					return fmt.Errorf("failed to insert member: %w", err)
				}
				memberID = id
			case reconcile.ActionUpdate:
				if err := deps.Members.UpdateMember(ctx, d.Existing.ID, d.Changes); err != nil {
					return fmt.Errorf("failed to update member: %w", err)
				}
				memberID = d.Existing.ID
			case reconcile.ActionNoop:
				memberID = d.Existing.ID
			}

			return nil
		})

		return lastErr
	}

	err := retry.Call(retry.CallArgs{
		Func: attempt,
		IsFatalError: func(err error) bool {
			return !deps.IsTransient(err)
		},
		NotifyFunc: func(err error, n int) {
			r.log.DebugContext(ctx, "row write failed, retrying",
				slog.Int("row", rec.RowIndex),
				slog.Int("attempt", n),
				slog.String("err", err.Error()),
			)
		},
		Attempts: cfg.RowRetries + 1,
		Delay:    cfg.RetryDelay,
		Clock:    deps.Clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		if lastErr != nil {
			return decision, 0, lastErr
		}
		return decision, 0, err
	}

	return decision, memberID, nil
}

func invalidFormat(o *domain.RowOutcome, detail string) rowResult {
	o.Kind = domain.OutcomeInvalidFormat
	o.Detail = detail
	return rowResult{outcome: o}
}

func duplicate(o *domain.RowOutcome, firstRow int) rowResult {
	o.Kind = domain.OutcomeDuplicateInFile
	o.Detail = fmt.Sprintf("duplicate of row %d", firstRow)
	return rowResult{outcome: o}
}

func databaseError(o *domain.RowOutcome, detail string, err error) rowResult {
	o.Kind = domain.OutcomeDatabaseError
	o.Detail = detail
	o.ErrorDetail = err.Error()
	return rowResult{outcome: o, err: err}
}
