package domain

import "time"

type UploadJob struct {
	ID              string     `db:"id"               json:"job_id"`
	FileName        string     `db:"file_name"        json:"file_name"`
	StoredPath      string     `db:"stored_path"      json:"-"`
	UploadedBy      string     `db:"uploaded_by"      json:"uploaded_by"`
	Status          JobStatus  `db:"status"           json:"status"`
	TotalRows       int        `db:"total_rows"       json:"rows_total"`
	RowsProcessed   int        `db:"rows_processed"   json:"rows_processed"`
	ErrorSummary    string     `db:"error_summary"    json:"error_summary,omitempty"`
	ReportPath      string     `db:"report_path"      json:"-"`
	CancelRequested bool       `db:"cancel_requested" json:"cancel_requested"`
	Attempts        int        `db:"attempts"         json:"attempts"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
	StartedAt       *time.Time `db:"started_at"       json:"started_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at"     json:"completed_at,omitempty"`
	LeaseExpiresAt  *time.Time `db:"lease_expires_at" json:"-"`
}

// ProgressPercent is rounded down so that 100 is only reported once every row was attempted.
func (j *UploadJob) ProgressPercent() int {
	if j.TotalRows <= 0 {
		if j.Status.IsTerminal() {
			return 100
		}
		return 0
	}

	return j.RowsProcessed * 100 / j.TotalRows
}

// JobResult is handed from a processor to the reporter once every row was attempted
// or the job was cancelled.
type JobResult struct {
	Job           *UploadJob
	Status        JobStatus // StatusCompleted or StatusCancelled
	RowsProcessed int
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (r *JobResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
