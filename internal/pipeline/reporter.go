package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/clock"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

// Reporter builds the report of every finished job and only then marks the job terminal.
// The job's lease is held while its report is built.
type Reporter struct {
	log       *slog.Logger
	clock     clock.Clock
	lease     time.Duration
	results   <-chan *domain.JobResult
	outcomes  OutcomeProvider
	finisher  JobFinisher
	builder   ReportBuilder
	publisher Publisher
}

func NewReporter(
	log *slog.Logger,
	clk clock.Clock,
	lease time.Duration,
	results <-chan *domain.JobResult,
	outcomes OutcomeProvider,
	finisher JobFinisher,
	builder ReportBuilder,
	publisher Publisher,
) *Reporter {
	if clk == nil {
		clk = clock.WallClock
	}

	return &Reporter{
		log:       log,
		clock:     clk,
		lease:     lease,
		results:   results,
		outcomes:  outcomes,
		finisher:  finisher,
		builder:   builder,
		publisher: publisher,
	}
}

func (r *Reporter) Run(ctx context.Context) error {
	for {
		select {
		case result, ok := <-r.results:
			if !ok {
				return nil
			}

			log := r.log.With(
				slog.String("job_id", result.Job.ID),
				slog.String("status", string(result.Status)),
				slog.Int("rows_processed", result.RowsProcessed),
			)

			log.InfoContext(ctx, "received job result, generating report")

			if err := r.processResult(ctx, result); err != nil {
				log.ErrorContext(ctx, "failed to finish job", slog.String("err", err.Error()))
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Reporter) processResult(ctx context.Context, result *domain.JobResult) error {
	jobID := result.Job.ID

	release := holdLease(ctx, r.log, r.clock, r.finisher, jobID, r.lease)

	outcomes, err := r.outcomes.Outcomes(ctx, jobID)
	if err != nil {
		release()
		return fmt.Errorf("failed to load outcomes: %w", err)
	}

	artifact, err := r.builder.Build(ctx, result, outcomes)
	release()
	if err != nil {
		summary := fmt.Sprintf("failed to build report: %s", err)
		if failErr := r.finisher.Fail(ctx, jobID, summary); failErr != nil {
			return fmt.Errorf("failed to mark job failed: %w", failErr)
		}
		r.publisher.Publish(domain.EventJobFailed, jobID, map[string]any{"error": summary})
		return nil
	}

	if err := r.finisher.Finish(ctx, jobID, result.Status, artifact.Path(domain.ReportXLSX)); err != nil {
		return fmt.Errorf("failed to mark job %s: %w", result.Status, err)
	}

	payload := map[string]any{
		"rows_processed": result.RowsProcessed,
		"rows_total":     result.Job.TotalRows,
		"duration":       result.Duration().String(),
	}
	for kind, n := range domain.CountByKind(outcomes) {
		payload[string(kind)] = n
	}

	event := domain.EventJobCompleted
	if result.Status == domain.StatusCancelled {
		event = domain.EventJobCancelled
	}
	r.publisher.Publish(event, jobID, payload)

	return nil
}

