package normalizer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

// compactDateLayout is tried before serials so that 20240115 isn't read as day 20240115.
const compactDateLayout = "20060102"

// maxExcelSerial is 9999-12-31, the last date a spreadsheet can hold.
const maxExcelSerial = 2958465

var errInvalidAmount = errors.New("invalid amount")

// ParseDate accepts a spreadsheet serial date or one of the common textual layouts and
// returns the calendar date at UTC midnight.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)

	if len(v) == len(compactDateLayout) && isDigits(v) {
		t, err := time.Parse(compactDateLayout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognised date %q", v)
		}
		return t, nil
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return time.Time{}, fmt.Errorf("serial date %q out of range", v)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to convert serial date %q: %w", v, err)
		}
		return truncateDate(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return truncateDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// ParseAmount converts a decimal money value such as "R 1,250.50" into cents.
func ParseAmount(v string) (int64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "R"), "r")
	v = strings.NewReplacer(",", "", " ", "").Replace(v)
	if v == "" {
		return 0, errInvalidAmount
	}

	whole, frac, hasFrac := strings.Cut(v, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasFrac && (frac == "" || len(frac) > 2 || !isDigits(frac))) {
		return 0, errInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errInvalidAmount, err)
	}
	if units > (math.MaxInt64-99)/100 {
		return 0, errInvalidAmount
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	return units*100 + cents, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
