package pipeline

import (
	"context"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/ratelimit"
)

type JobClaimer interface {
	ClaimNext(ctx context.Context, lease time.Duration) (*domain.UploadJob, error)
}

// LeaseExtender keeps a processing job owned by this process.
type LeaseExtender interface {
	ExtendLease(ctx context.Context, jobID string, lease time.Duration) error
}

type JobTracker interface {
	LeaseExtender
	SetTotalRows(ctx context.Context, jobID string, total int) error
	UpdateProgress(ctx context.Context, jobID string, rowsProcessed int, lease time.Duration) error
	CancelRequested(ctx context.Context, jobID string) (bool, error)
	Fail(ctx context.Context, jobID, summary string) error
}

type JobFinisher interface {
	LeaseExtender
	Finish(ctx context.Context, jobID string, status domain.JobStatus, reportPath string) error
	Fail(ctx context.Context, jobID, summary string) error
}

type OutcomeStore interface {
	DeleteOutcomes(ctx context.Context, jobID string) error
	SaveOutcomes(ctx context.Context, jobID string, outcomes ...*domain.RowOutcome) error
}

type OutcomeProvider interface {
	Outcomes(ctx context.Context, jobID string) ([]*domain.RowOutcome, error)
}

type MemberStore interface {
	MemberByIDNumber(ctx context.Context, idNumber string) (*domain.Member, error)
	InsertMember(ctx context.Context, m *domain.Member) (int64, error)
	UpdateMember(ctx context.Context, id int64, changes []domain.FieldChange) error
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Verifier interface {
	Verify(ctx context.Context, idNumber string) (domain.Verification, error)
}

type RateLimiter interface {
	TryAcquire() ratelimit.Decision
}

type Publisher interface {
	Publish(name domain.EventName, jobID string, payload map[string]any)
}

type ReportBuilder interface {
	Build(ctx context.Context, result *domain.JobResult, outcomes []*domain.RowOutcome) (*domain.ReportArtifact, error)
}
