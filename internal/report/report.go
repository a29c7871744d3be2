package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

const (
	SheetSummary        = "Summary"
	SheetInvalidIDs     = "Invalid IDs"
	SheetDatabaseErrors = "Database Errors"
	SheetAllRows        = "All Uploaded Rows"
)

// Sheets is the fixed sheet order of the workbook.
var Sheets = []string{SheetSummary, SheetInvalidIDs, SheetDatabaseErrors, SheetAllRows}

var (
	HeadersSummary        = []string{"Field", "Value"}
	HeadersInvalidIDs     = []string{"Row", "ID Number", "Name", "Surname", "Validation Error"}
	HeadersDatabaseErrors = []string{"Row", "ID Number", "Operation", "Error Message"}
	HeadersAllRows        = []string{
		"Row", "ID Number", "Name", "Surname", "Outcome", "Operation", "Detail", "Member ID",
		"Verification", "Ward", "Voting District", "Province", "Municipality",
		"Subscription", "Membership Amount", "Warnings",
	}
)

// NotProcessed labels the summary count of rows never attempted because of cancellation.
const NotProcessed = "not_processed"

// Builder renders a job's outcomes into the workbook, a PDF summary and a CSV audit
// export inside dir.
type Builder struct {
	log *slog.Logger
	dir string
}

func NewBuilder(log *slog.Logger, dir string) *Builder {
	return &Builder{
		log: log,
		dir: dir,
	}
}

// FileName is the artifact name for a job and format.
func FileName(jobID string, format domain.ReportFormat) string {
	return fmt.Sprintf("report-%s.%s", jobID, format)
}

// Build writes all artifacts. The workbook is required; the PDF and CSV are written
// after it and any failure fails the whole build.
func (b *Builder) Build(ctx context.Context, result *domain.JobResult, outcomes []*domain.RowOutcome) (*domain.ReportArtifact, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	summary := newSummary(result, outcomes)
	artifact := &domain.ReportArtifact{
		JobID: result.Job.ID,
		Files: make(map[domain.ReportFormat]string, 3),
	}

	writers := []struct {
		format domain.ReportFormat
		write  func(path string) error
	}{
		{domain.ReportXLSX, func(path string) error { return writeWorkbook(path, summary, outcomes) }},
		{domain.ReportPDF, func(path string) error { return writePDF(path, summary) }},
		{domain.ReportCSV, func(path string) error { return writeCSV(path, outcomes) }},
	}

	for _, w := range writers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(b.dir, FileName(result.Job.ID, w.format))
		if err := writeAtomic(path, w.write); err != nil {
			return nil, fmt.Errorf("failed to write %s report: %w", w.format, err)
		}
		artifact.Files[w.format] = path

		b.log.DebugContext(ctx, "report file written",
			slog.String("job_id", result.Job.ID),
			slog.String("path", path),
		)
	}

	return artifact, nil
}

// writeAtomic writes to a temporary sibling first so a download never sees a partial file.
func writeAtomic(path string, write func(path string) error) (err error) {
	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".partial" + ext
	defer func() {
		if err != nil {
			err = errors.Join(err, removeIfExists(tmp))
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type summaryLine struct {
	Field string
	Value any
}

type summary struct {
	lines []summaryLine
}

func newSummary(result *domain.JobResult, outcomes []*domain.RowOutcome) *summary {
	job := result.Job
	s := &summary{}
	add := func(field string, value any) {
		s.lines = append(s.lines, summaryLine{Field: field, Value: value})
	}

	add("Job ID", job.ID)
	add("File Name", job.FileName)
	add("Uploaded By", job.UploadedBy)
	add("Status", string(result.Status))
	add("Started At", result.StartedAt.Format(time.DateTime))
	add("Finished At", result.FinishedAt.Format(time.DateTime))
	add("Processing Duration", result.Duration().Round(time.Millisecond).String())
	add("Total Rows", job.TotalRows)
	add("Rows Processed", result.RowsProcessed)

	counts := domain.CountByKind(outcomes)
	for _, kind := range domain.OutcomeKinds {
		add(string(kind), counts[kind])
	}
	if result.Status == domain.StatusCancelled {
		add(NotProcessed, max(job.TotalRows-result.RowsProcessed, 0))
	}

	softFailures := 0
	for _, o := range outcomes {
		if o.Verification.SoftFailure() {
			softFailures++
		}
	}
	add("Verification Warnings", softFailures)

	return s
}

func allRowsRecord(o *domain.RowOutcome) []string {
	var (
		memberID string
		codes    = make([]string, 6)
		warnings string
	)
	if o.MemberID != nil {
		memberID = strconv.FormatInt(*o.MemberID, 10)
	}
	if rec := o.Record; rec != nil {
		codes = []string{
			code(rec.WardID),
			code(rec.VotingDistrictID),
			code(rec.ProvinceID),
			code(rec.MunicipalityID),
			code(rec.SubscriptionTypeID),
			amount(rec.MembershipAmountCents),
		}
		warnings = strings.Join(rec.Warnings, "; ")
	}

	record := []string{
		strconv.Itoa(o.RowIndex),
		o.IDNumber,
		o.FirstName,
		o.Surname,
		string(o.Kind),
		string(o.Operation),
		o.Detail,
		memberID,
		string(o.Verification),
	}
	record = append(record, codes...)

	return append(record, warnings)
}

func code(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func amount(cents *int64) string {
	if cents == nil {
		return ""
	}
	return fmt.Sprintf("%d.%02d", *cents/100, *cents%100)
}
