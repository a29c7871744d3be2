package domain

import "time"

type Member struct {
	ID          int64      `db:"id"`
	IDNumber    string     `db:"id_number"`
	FirstName   string     `db:"first_name"`
	Surname     string     `db:"surname"`
	DateOfBirth *time.Time `db:"date_of_birth"`
	CellNumber  string     `db:"cell_number"`
	Email       string     `db:"email"`
	Address     string     `db:"address"`

	GenderID           *int64 `db:"gender_id"`
	RaceID             *int64 `db:"race_id"`
	CitizenshipID      *int64 `db:"citizenship_id"`
	LanguageID         *int64 `db:"language_id"`
	OccupationID       *int64 `db:"occupation_id"`
	QualificationID    *int64 `db:"qualification_id"`
	ProvinceID         *int64 `db:"province_id"`
	MunicipalityID     *int64 `db:"municipality_id"`
	WardID             *int64 `db:"ward_id"`
	VotingDistrictID   *int64 `db:"voting_district_id"`
	SubscriptionTypeID *int64 `db:"subscription_type_id"`

	MembershipAmountCents *int64     `db:"membership_amount_cents"`
	PaymentMethod         string     `db:"payment_method"`
	PaymentReference      string     `db:"payment_reference"`
	PaymentDate           *time.Time `db:"payment_date"`
	DateJoined            *time.Time `db:"date_joined"`
}

// FieldChange is a single column update proposed by reconciliation.
type FieldChange struct {
	Column string
	Old    any
	New    any
}
