package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

const TableJobs = "upload_jobs"

var jobColumns = []string{
	"id",
	"file_name",
	"stored_path",
	"uploaded_by",
	"status",
	"total_rows",
	"rows_processed",
	"error_summary",
	"report_path",
	"cancel_requested",
	"attempts",
	"created_at",
	"started_at",
	"completed_at",
	"lease_expires_at",
}

type JobsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewJobsRepository(pool *pgxpool.Pool) *JobsRepository {
	return &JobsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *JobsRepository) CreateJob(ctx context.Context, job *domain.UploadJob) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableJobs).
		Columns(
			"id",
			"file_name",
			"stored_path",
			"uploaded_by",
			"status",
		).
		Values(
			job.ID,
			job.FileName,
			job.StoredPath,
			job.UploadedBy,
			domain.StatusQueued,
		).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if err := db.QueryRow(ctx, sql, args...).Scan(&job.CreatedAt); err != nil {
		return scanRowError(err)
	}
	job.Status = domain.StatusQueued

	return nil
}

// ClaimNext moves the oldest queued job, or a processing job whose lease has expired,
// to processing and returns it. It returns domain.ErrJobNotFound when nothing is claimable.
func (r *JobsRepository) ClaimNext(ctx context.Context, lease time.Duration) (*domain.UploadJob, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableJobs).
		Set("status", domain.StatusProcessing).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("started_at", sq.Expr("COALESCE(started_at, now())")).
		Set("lease_expires_at", sq.Expr("now() + make_interval(secs => ?)", lease.Seconds())).
		Where(sq.Expr(`id = (
			SELECT id FROM `+TableJobs+`
			WHERE status = ? OR (status = ? AND lease_expires_at < now())
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)`, domain.StatusQueued, domain.StatusProcessing)).
		Suffix("RETURNING " + columnList(jobColumns)).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	job, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.UploadJob])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return job, nil
}

func (r *JobsRepository) SetTotalRows(ctx context.Context, jobID string, total int) error {
	return r.updateProcessing(ctx, jobID, map[string]any{
		"total_rows":     total,
		"rows_processed": 0,
	})
}

// UpdateProgress records processed rows and extends the job lease.
func (r *JobsRepository) UpdateProgress(ctx context.Context, jobID string, rowsProcessed int, lease time.Duration) error {
	return r.updateProcessing(ctx, jobID, map[string]any{
		"rows_processed":   sq.Expr("LEAST(?::int, total_rows)", rowsProcessed),
		"lease_expires_at": sq.Expr("now() + make_interval(secs => ?)", lease.Seconds()),
	})
}

// ExtendLease pushes the lease of a processing job forward without touching its progress.
func (r *JobsRepository) ExtendLease(ctx context.Context, jobID string, lease time.Duration) error {
	return r.updateProcessing(ctx, jobID, map[string]any{
		"lease_expires_at": sq.Expr("now() + make_interval(secs => ?)", lease.Seconds()),
	})
}

func (r *JobsRepository) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("cancel_requested").
		From(TableJobs).
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return false, createQueryError(err)
	}

	var requested bool
	if err := db.QueryRow(ctx, sql, args...).Scan(&requested); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrJobNotFound
		}
		return false, scanRowError(err)
	}

	return requested, nil
}

// RequestCancel flags a queued or processing job for cancellation.
func (r *JobsRepository) RequestCancel(ctx context.Context, jobID string) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableJobs).
		Set("cancel_requested", true).
		Where(sq.Eq{
			"id":     jobID,
			"status": []domain.JobStatus{domain.StatusQueued, domain.StatusProcessing},
		}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrInvalid(ctx, jobID)
	}

	return nil
}

func (r *JobsRepository) Fail(ctx context.Context, jobID, summary string) error {
	return r.transition(ctx, jobID, domain.StatusFailed, map[string]any{
		"error_summary":    summary,
		"completed_at":     sq.Expr("now()"),
		"lease_expires_at": nil,
	})
}

// Finish marks a job completed or cancelled once its report exists.
func (r *JobsRepository) Finish(ctx context.Context, jobID string, status domain.JobStatus, reportPath string) error {
	if status != domain.StatusCompleted && status != domain.StatusCancelled {
		return fmt.Errorf("%w: finish with %q", domain.ErrInvalidTransition, status)
	}

	return r.transition(ctx, jobID, status, map[string]any{
		"report_path":      reportPath,
		"completed_at":     sq.Expr("now()"),
		"lease_expires_at": nil,
	})
}

func (r *JobsRepository) JobByID(ctx context.Context, jobID string) (*domain.UploadJob, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(jobColumns...).
		From(TableJobs).
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	job, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.UploadJob])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return job, nil
}

func (r *JobsRepository) Jobs(ctx context.Context, limit, offset uint64) ([]*domain.UploadJob, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableJobs).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	sql, args, err = r.qb.
		Select(jobColumns...).
		From(TableJobs).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, -1, executeQueryError(err)
	}

	jobs, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.UploadJob])
	if err != nil {
		return nil, -1, collectRowsError(err)
	}

	return jobs, total, nil
}

func (r *JobsRepository) updateProcessing(ctx context.Context, jobID string, set map[string]any) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableJobs).
		SetMap(set).
		Where(sq.Eq{"id": jobID, "status": domain.StatusProcessing}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrInvalid(ctx, jobID)
	}

	return nil
}

// transition moves a job to next only from one of its allowed predecessor statuses.
func (r *JobsRepository) transition(ctx context.Context, jobID string, next domain.JobStatus, set map[string]any) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableJobs).
		Set("status", next).
		SetMap(set).
		Where(sq.Eq{"id": jobID, "status": next.Predecessors()}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrInvalid(ctx, jobID)
	}

	return nil
}

func (r *JobsRepository) missingOrInvalid(ctx context.Context, jobID string) error {
	job, err := r.JobByID(ctx, jobID)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: job is %s", domain.ErrInvalidTransition, job.Status)
}
