package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/intake"
	"github.com/kurochkinivan/member_uploader/internal/ratelimit"
	"github.com/kurochkinivan/member_uploader/internal/report"
)

// multipartOverhead is allowed on top of the file size limit for form boundaries and fields.
const multipartOverhead = 1 << 20

type Uploader interface {
	Accept(ctx context.Context, fileName, uploadedBy string, content io.Reader) (*domain.UploadJob, error)
	Cancel(ctx context.Context, jobID string) error
	MaxSize() int64
}

type JobsRepository interface {
	JobByID(ctx context.Context, jobID string) (*domain.UploadJob, error)
	Jobs(ctx context.Context, limit, offset uint64) ([]*domain.UploadJob, int, error)
}

type OutcomesRepository interface {
	OutcomesByJob(ctx context.Context, jobID string, limit, offset uint64) ([]*domain.RowOutcome, int, error)
}

type RateLimiter interface {
	Status() ratelimit.Status
}

type UploadsHandler struct {
	log                *slog.Logger
	reportsDir         string
	uploader           Uploader
	jobsRepository     JobsRepository
	outcomesRepository OutcomesRepository
	limiter            RateLimiter
}

func NewUploadsHandler(
	log *slog.Logger,
	reportsDir string,
	uploader Uploader,
	jobsRepository JobsRepository,
	outcomesRepository OutcomesRepository,
	limiter RateLimiter,
) *UploadsHandler {
	return &UploadsHandler{
		log:                log,
		reportsDir:         reportsDir,
		uploader:           uploader,
		jobsRepository:     jobsRepository,
		outcomesRepository: outcomesRepository,
		limiter:            limiter,
	}
}

type UploadResponse struct {
	JobID  string           `json:"job_id"`
	Status domain.JobStatus `json:"status"`
}

func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.uploader.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, intake.ErrFileTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	job, err := h.uploader.Accept(r.Context(), header.Filename, r.FormValue("uploaded_by"), file)
	switch {
	case errors.Is(err, intake.ErrFileTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, intake.ErrUnsupportedFile):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusAccepted, UploadResponse{JobID: job.ID, Status: job.Status})
}

type JobResponse struct {
	JobID           string           `json:"job_id"`
	FileName        string           `json:"file_name"`
	UploadedBy      string           `json:"uploaded_by,omitempty"`
	Status          domain.JobStatus `json:"status"`
	ProgressPercent int              `json:"progress_percent"`
	RowsProcessed   int              `json:"rows_processed"`
	RowsTotal       int              `json:"rows_total"`
	ErrorSummary    string           `json:"error_summary,omitempty"`
	CancelRequested bool             `json:"cancel_requested"`
	CreatedAt       time.Time        `json:"created_at"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

func newJobResponse(job *domain.UploadJob) JobResponse {
	return JobResponse{
		JobID:           job.ID,
		FileName:        job.FileName,
		UploadedBy:      job.UploadedBy,
		Status:          job.Status,
		ProgressPercent: job.ProgressPercent(),
		RowsProcessed:   job.RowsProcessed,
		RowsTotal:       job.TotalRows,
		ErrorSummary:    job.ErrorSummary,
		CancelRequested: job.CancelRequested,
		CreatedAt:       job.CreatedAt,
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
	}
}

type GetJobsResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	Pagination Pagination    `json:"pagination"`
}

func (h *UploadsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	offset := (page - 1) * limit

	jobs, total, err := h.jobsRepository.Jobs(r.Context(), limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := GetJobsResponse{
		Jobs:       make([]JobResponse, 0, len(jobs)),
		Pagination: newPagination(page, limit, total),
	}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, newJobResponse(job))
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *UploadsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.job(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, r, http.StatusOK, newJobResponse(job))
}

type GetRowsResponse struct {
	Rows       []*domain.RowOutcome `json:"rows"`
	Pagination Pagination           `json:"pagination"`
}

func (h *UploadsHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, ok := h.job(w, r)
	if !ok {
		return
	}

	offset := (page - 1) * limit

	rows, total, err := h.outcomesRepository.OutcomesByJob(r.Context(), job.ID, limit, offset)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*domain.RowOutcome{}
	}

	h.writeJSON(w, r, http.StatusOK, GetRowsResponse{
		Rows:       rows,
		Pagination: newPagination(page, limit, total),
	})
}

func (h *UploadsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if uuid.Validate(jobID) != nil {
		http.Error(w, domain.ErrJobNotFound.Error(), http.StatusNotFound)
		return
	}

	err := h.uploader.Cancel(r.Context(), jobID)
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

var reportContentTypes = map[domain.ReportFormat]string{
	domain.ReportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	domain.ReportPDF:  "application/pdf",
	domain.ReportCSV:  "text/csv",
}

func (h *UploadsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	format := domain.ReportXLSX
	if f := r.URL.Query().Get("format"); f != "" {
		format = domain.ReportFormat(f)
	}
	contentType, ok := reportContentTypes[format]
	if !ok {
		http.Error(w, "invalid format, must be one of xlsx, pdf, csv", http.StatusBadRequest)
		return
	}

	job, ok := h.job(w, r)
	if !ok {
		return
	}
	if job.Status != domain.StatusCompleted && job.Status != domain.StatusCancelled {
		http.Error(w, "report is not ready, job is "+string(job.Status), http.StatusConflict)
		return
	}

	name := report.FileName(job.ID, format)
	f, err := os.Open(filepath.Join(h.reportsDir, name))
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, stat.ModTime(), f)
}

type RateLimitResponse struct {
	IsLimited      bool      `json:"is_limited"`
	UploadsAllowed bool      `json:"uploads_allowed"`
	CurrentCount   int       `json:"current_count"`
	MaxLimit       int       `json:"max_limit"`
	Remaining      int       `json:"remaining"`
	ResetTime      time.Time `json:"reset_time"`
}

// GetRateLimit reports the verification quota. Uploads are never blocked by it; rows
// beyond the quota are recorded as skipped.
func (h *UploadsHandler) GetRateLimit(w http.ResponseWriter, r *http.Request) {
	status := h.limiter.Status()

	h.writeJSON(w, r, http.StatusOK, RateLimitResponse{
		IsLimited:      status.Limited(),
		UploadsAllowed: true,
		CurrentCount:   status.Current,
		MaxLimit:       status.Max,
		Remaining:      status.Remaining(),
		ResetTime:      status.ResetTime,
	})
}

// job loads the job named in the path and writes the error response when it can't.
func (h *UploadsHandler) job(w http.ResponseWriter, r *http.Request) (*domain.UploadJob, bool) {
	jobID := chi.URLParam(r, "job_id")
	if uuid.Validate(jobID) != nil {
		http.Error(w, domain.ErrJobNotFound.Error(), http.StatusNotFound)
		return nil, false
	}

	job, err := h.jobsRepository.JobByID(r.Context(), jobID)
	if errors.Is(err, domain.ErrJobNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.internalError(w, r, err)
		return nil, false
	}

	return job, true
}

func (h *UploadsHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *UploadsHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("err", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
