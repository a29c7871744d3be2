package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

// auditRow mirrors the "All Uploaded Rows" sheet.
type auditRow struct {
	Row              int    `csv:"Row"`
	IDNumber         string `csv:"ID Number"`
	Name             string `csv:"Name"`
	Surname          string `csv:"Surname"`
	Outcome          string `csv:"Outcome"`
	Operation        string `csv:"Operation"`
	Detail           string `csv:"Detail"`
	MemberID         string `csv:"Member ID"`
	Verification     string `csv:"Verification"`
	Ward             string `csv:"Ward"`
	VotingDistrict   string `csv:"Voting District"`
	Province         string `csv:"Province"`
	Municipality     string `csv:"Municipality"`
	Subscription     string `csv:"Subscription"`
	MembershipAmount string `csv:"Membership Amount"`
	Warnings         string `csv:"Warnings"`
}

func newAuditRow(o *domain.RowOutcome) auditRow {
	r := allRowsRecord(o)
	return auditRow{
		Row:              o.RowIndex,
		IDNumber:         r[1],
		Name:             r[2],
		Surname:          r[3],
		Outcome:          r[4],
		Operation:        r[5],
		Detail:           r[6],
		MemberID:         r[7],
		Verification:     r[8],
		Ward:             r[9],
		VotingDistrict:   r[10],
		Province:         r[11],
		Municipality:     r[12],
		Subscription:     r[13],
		MembershipAmount: r[14],
		Warnings:         r[15],
	}
}

func writeCSV(path string, outcomes []*domain.RowOutcome) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { err = errors.Join(err, file.Close()) }()

	w := csv.NewWriter(file)
	enc := csvutil.NewEncoder(w)

	if err := enc.EncodeHeader(auditRow{}); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for _, o := range outcomes {
		if err := enc.Encode(newAuditRow(o)); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", o.RowIndex, err)
		}
	}

	w.Flush()
	return w.Error()
}
