package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("spreadsheet has no data rows")
)

// Extensions lists the accepted upload formats.
var Extensions = []string{".xlsx", ".csv"}

func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Sheet is the first worksheet of an upload: a header row and the non-empty data rows
// below it.
type Sheet struct {
	Header []string
	Rows   []domain.RawRow
}

func (s *Sheet) Len() int {
	return len(s.Rows)
}

// Open reads the file at path, choosing the decoder by extension.
func Open(path string) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return build(records)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return decodeCSV(file)
}

func decodeCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return records, nil
}

func build(records [][]string) (*Sheet, error) {
	if len(records) == 0 || blank(records[0]) {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Header: header}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}

		cells := make(map[string]string, len(header))
		for col, h := range header {
			if h == "" {
				continue
			}
			if _, dup := cells[h]; dup {
				continue
			}
			if col < len(rec) {
				cells[h] = strings.TrimSpace(rec[col])
			} else {
				cells[h] = ""
			}
		}

		sheet.Rows = append(sheet.Rows, domain.RawRow{
			Index: len(sheet.Rows) + 1,
			Line:  i + 2,
			Cells: cells,
		})
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrEmptySheet
	}

	return sheet, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
