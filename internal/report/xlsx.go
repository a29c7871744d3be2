package report

import (
	"errors"
	"fmt"

	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(path string, s *summary, outcomes []*domain.RowOutcome) (err error) {
	f := excelize.NewFile()
	defer func() { err = errors.Join(err, f.Close()) }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	content := map[string][][]any{
		SheetSummary:        summaryRows(s),
		SheetInvalidIDs:     invalidIDRows(outcomes),
		SheetDatabaseErrors: databaseErrorRows(outcomes),
		SheetAllRows:        allRows(outcomes),
	}
	headers := map[string][]string{
		SheetSummary:        HeadersSummary,
		SheetInvalidIDs:     HeadersInvalidIDs,
		SheetDatabaseErrors: HeadersDatabaseErrors,
		SheetAllRows:        HeadersAllRows,
	}

	for _, name := range Sheets {
		if err := writeSheet(f, name, headers[name], content[name]); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}

	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}

	for i, row := range append([][]any{headerRow}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func summaryRows(s *summary) [][]any {
	rows := make([][]any, 0, len(s.lines))
	for _, l := range s.lines {
		rows = append(rows, []any{l.Field, l.Value})
	}
	return rows
}

func invalidIDRows(outcomes []*domain.RowOutcome) [][]any {
	var rows [][]any
	for _, o := range outcomes {
		if o.Kind != domain.OutcomeInvalidFormat {
			continue
		}
		rows = append(rows, []any{o.RowIndex, o.SubmittedIDNumber(), o.FirstName, o.Surname, o.Detail})
	}
	return rows
}

func databaseErrorRows(outcomes []*domain.RowOutcome) [][]any {
	var rows [][]any
	for _, o := range outcomes {
		if o.Kind != domain.OutcomeDatabaseError {
			continue
		}
		message := o.Detail
		if o.ErrorDetail != "" {
			message = o.Detail + ": " + o.ErrorDetail
		}
		rows = append(rows, []any{o.RowIndex, o.IDNumber, string(o.Operation), message})
	}
	return rows
}

func allRows(outcomes []*domain.RowOutcome) [][]any {
	rows := make([][]any, 0, len(outcomes))
	for _, o := range outcomes {
		record := allRowsRecord(o)
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		row[0] = o.RowIndex
		rows = append(rows, row)
	}
	return rows
}
