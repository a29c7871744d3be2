package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/clock"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/normalizer"
	"github.com/kurochkinivan/member_uploader/internal/reconcile"
	"github.com/kurochkinivan/member_uploader/internal/spreadsheet"
)

const (
	defaultRowTxTimeout = 10 * time.Second
	defaultRetryDelay   = 50 * time.Millisecond
)

type ProcessorConfig struct {
	Lease         time.Duration
	ProgressEvery int
	RowTxTimeout  time.Duration
	RowRetries    int
	RetryDelay    time.Duration
}

// ProcessorDeps are the collaborators shared by every processor. Verifier and Limiter
// may be nil, in which case verification is not attempted.
type ProcessorDeps struct {
	Tracker     JobTracker
	Outcomes    OutcomeStore
	Members     MemberStore
	Lookups     normalizer.LookupResolver
	Transactor  Transactor
	Verifier    Verifier
	Limiter     RateLimiter
	Publisher   Publisher
	Clock       clock.Clock
	IsTransient func(error) bool
}

// Processor runs one job at a time, its rows strictly in order.
type Processor struct {
	log     *slog.Logger
	cfg     ProcessorConfig
	idle    chan<- struct{}
	jobs    <-chan *domain.UploadJob
	results chan<- *domain.JobResult
	deps    ProcessorDeps
}

func NewProcessor(
	log *slog.Logger,
	cfg ProcessorConfig,
	idle chan<- struct{},
	jobs <-chan *domain.UploadJob,
	results chan<- *domain.JobResult,
	deps ProcessorDeps,
) *Processor {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 1
	}
	if cfg.RowTxTimeout <= 0 {
		cfg.RowTxTimeout = defaultRowTxTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.IsTransient == nil {
		deps.IsTransient = func(error) bool { return false }
	}

	return &Processor{
		log:     log,
		cfg:     cfg,
		idle:    idle,
		jobs:    jobs,
		results: results,
		deps:    deps,
	}
}

func (p *Processor) Run(ctx context.Context) error {
	for {
		select {
		case p.idle <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case job, ok := <-p.jobs:
			if !ok {
				return nil
			}

			result, err := p.Process(ctx, job)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				p.log.ErrorContext(ctx, "job left for reclaim",
					slog.String("job_id", job.ID),
					slog.String("err", err.Error()),
				)
				continue
			}
			if result == nil {
				continue
			}

			release := holdLease(ctx, p.log, p.deps.Clock, p.deps.Tracker, job.ID, p.cfg.Lease)
			select {
			case p.results <- result:
				release()
			case <-ctx.Done():
				release()
				return ctx.Err()
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Process runs every row of a claimed job. It returns a nil result when the job failed
// at file level; that failure is already recorded. An error means the job could not be
// tracked and stays processing until its lease expires.
func (p *Processor) Process(ctx context.Context, job *domain.UploadJob) (*domain.JobResult, error) {
	log := p.log.With(slog.String("job_id", job.ID), slog.Int("attempt", job.Attempts))
	started := p.deps.Clock.Now()

	p.deps.Publisher.Publish(domain.EventJobStarted, job.ID, map[string]any{
		"file_name": job.FileName,
		"attempt":   job.Attempts,
	})
	log.InfoContext(ctx, "job started", slog.String("file_name", job.FileName))

	sheet, headers, err := openSheet(job.StoredPath)
	if err != nil {
		return nil, p.fail(ctx, log, job, err)
	}

	if err := p.deps.Outcomes.DeleteOutcomes(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("failed to delete previous outcomes: %w", err)
	}
	if err := p.deps.Tracker.SetTotalRows(ctx, job.ID, sheet.Len()); err != nil {
		return nil, fmt.Errorf("failed to set total rows: %w", err)
	}
	job.TotalRows = sheet.Len()

	run := &jobRun{
		proc:       p,
		log:        log,
		job:        job,
		headers:    headers,
		engine:     reconcile.NewEngine(),
		normalizer: normalizer.New(headers, normalizer.NewCachingResolver(p.deps.Lookups)),
	}

	status, processed, err := run.rows(ctx, sheet.Rows)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "job rows finished",
		slog.String("status", string(status)),
		slog.Int("rows_processed", processed),
		slog.Int("rows_total", job.TotalRows),
	)

	return &domain.JobResult{
		Job:           job,
		Status:        status,
		RowsProcessed: processed,
		StartedAt:     started,
		FinishedAt:    p.deps.Clock.Now(),
	}, nil
}

func openSheet(path string) (*spreadsheet.Sheet, normalizer.HeaderMap, error) {
	sheet, err := spreadsheet.Open(path)
	if err != nil {
		return nil, nil, err
	}

	headers, err := normalizer.MatchHeaders(sheet.Header)
	if err != nil {
		return nil, nil, err
	}

	return sheet, headers, nil
}

// fail records a file-level failure. It returns an error only when the failure could
// not be recorded.
func (p *Processor) fail(ctx context.Context, log *slog.Logger, job *domain.UploadJob, cause error) error {
	log.WarnContext(ctx, "job failed", slog.String("err", cause.Error()))

	if err := p.deps.Tracker.Fail(ctx, job.ID, cause.Error()); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	p.deps.Publisher.Publish(domain.EventJobFailed, job.ID, map[string]any{
		"error": cause.Error(),
	})

	return nil
}
