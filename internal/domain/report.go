package domain

type ReportFormat string

const (
	ReportXLSX ReportFormat = "xlsx"
	ReportPDF  ReportFormat = "pdf"
	ReportCSV  ReportFormat = "csv"
)

type ReportArtifact struct {
	JobID string
	Files map[ReportFormat]string
}

func (a *ReportArtifact) Path(format ReportFormat) string {
	return a.Files[format]
}
