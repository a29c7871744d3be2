package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/spreadsheet"
)

// DefaultMaxSize is the upload ceiling used when none is configured.
const DefaultMaxSize int64 = 50 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFile = errors.New("unsupported file type, expected .xlsx or .csv")
)

type JobsRepository interface {
	CreateJob(ctx context.Context, job *domain.UploadJob) error
	RequestCancel(ctx context.Context, jobID string) error
}

type Publisher interface {
	Publish(name domain.EventName, jobID string, payload map[string]any)
}

// Service accepts uploaded files and turns them into queued jobs.
type Service struct {
	log       *slog.Logger
	dir       string
	maxSize   int64
	jobs      JobsRepository
	publisher Publisher
}

func NewService(log *slog.Logger, dir string, maxSize int64, jobs JobsRepository, publisher Publisher) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Service{
		log:       log,
		dir:       dir,
		maxSize:   maxSize,
		jobs:      jobs,
		publisher: publisher,
	}
}

func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Accept stores content under the uploads directory and queues a job for it.
func (s *Service) Accept(ctx context.Context, fileName, uploadedBy string, content io.Reader) (*domain.UploadJob, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if !spreadsheet.Supported(fileName) {
		return nil, ErrUnsupportedFile
	}

	job := &domain.UploadJob{
		ID:         uuid.NewString(),
		FileName:   fileName,
		UploadedBy: strings.TrimSpace(uploadedBy),
		Status:     domain.StatusQueued,
	}
	job.StoredPath = filepath.Join(s.dir, job.ID+strings.ToLower(filepath.Ext(fileName)))

	if err := s.store(job.StoredPath, content); err != nil {
		return nil, err
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		_ = os.Remove(job.StoredPath)
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.log.InfoContext(ctx, "file queued",
		slog.String("job_id", job.ID),
		slog.String("file_name", job.FileName),
		slog.String("uploaded_by", job.UploadedBy),
	)
	s.publisher.Publish(domain.EventFileQueued, job.ID, map[string]any{
		"file_name":   job.FileName,
		"uploaded_by": job.UploadedBy,
	})

	return job, nil
}

func (s *Service) store(path string, content io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close upload file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	n, err := io.Copy(f, io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	if n > s.maxSize {
		return ErrFileTooLarge
	}

	return nil
}

// Cancel asks the processor owning the job to stop before its next row.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	if err := s.jobs.RequestCancel(ctx, jobID); err != nil {
		return fmt.Errorf("failed to request cancellation: %w", err)
	}

	s.log.InfoContext(ctx, "job cancellation requested", slog.String("job_id", jobID))
	return nil
}
