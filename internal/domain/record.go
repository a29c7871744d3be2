package domain

import "time"

// RawRow is a single spreadsheet data row. Index is 1-based and counts data rows only,
// Line is the row number in the source sheet.
type RawRow struct {
	Index int
	Line  int
	Cells map[string]string
}

// NormalizedRecord holds a row mapped onto member fields. Every lookup field is either
// a resolved reference id or nil.
type NormalizedRecord struct {
	RowIndex    int        `json:"row_index"`
	IDNumber    string     `json:"id_number"`
	FirstName   string     `json:"first_name"`
	Surname     string     `json:"surname"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CellNumber  string     `json:"cell_number,omitempty"`
	Email       string     `json:"email,omitempty"`
	Address     string     `json:"address,omitempty"`

	GenderID           *int64 `json:"gender_id,omitempty"`
	RaceID             *int64 `json:"race_id,omitempty"`
	CitizenshipID      *int64 `json:"citizenship_id,omitempty"`
	LanguageID         *int64 `json:"language_id,omitempty"`
	OccupationID       *int64 `json:"occupation_id,omitempty"`
	QualificationID    *int64 `json:"qualification_id,omitempty"`
	ProvinceID         *int64 `json:"province_id,omitempty"`
	MunicipalityID     *int64 `json:"municipality_id,omitempty"`
	WardID             *int64 `json:"ward_id,omitempty"`
	VotingDistrictID   *int64 `json:"voting_district_id,omitempty"`
	SubscriptionTypeID *int64 `json:"subscription_type_id,omitempty"`

	MembershipAmountCents *int64     `json:"membership_amount_cents,omitempty"`
	PaymentMethod         string     `json:"payment_method,omitempty"`
	PaymentReference      string     `json:"payment_reference,omitempty"`
	PaymentDate           *time.Time `json:"payment_date,omitempty"`
	DateJoined            *time.Time `json:"date_joined,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}
