package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionNoop   Action = "noop"
	ActionReject Action = "reject"
)

// LookupFunc returns the stored member for an id number, or domain.ErrMemberNotFound.
type LookupFunc func(idNumber string) (*domain.Member, error)

type Decision struct {
	Action   Action
	Existing *domain.Member
	Changes  []domain.FieldChange
	// DuplicateOf is the row that first carried the id number, set for ActionReject.
	DuplicateOf int
}

// Engine decides what to do with each row of one upload. It is not safe for
// concurrent use; a processor owns one engine per job.
type Engine struct {
	seen map[string]int
}

func NewEngine() *Engine {
	return &Engine{
		seen: make(map[string]int),
	}
}

// Seen returns the row that first carried id, if any.
func (e *Engine) Seen(id string) (int, bool) {
	row, ok := e.seen[id]
	return row, ok
}

// Reconcile compares a record with the stored member. Reconciling the same row index
// twice is allowed so that a retried transaction is not mistaken for a duplicate.
func (e *Engine) Reconcile(rec *domain.NormalizedRecord, lookup LookupFunc) (Decision, error) {
	if first, ok := e.seen[rec.IDNumber]; ok && first != rec.RowIndex {
		return Decision{Action: ActionReject, DuplicateOf: first}, nil
	}
	e.seen[rec.IDNumber] = rec.RowIndex

	existing, err := lookup(rec.IDNumber)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return Decision{Action: ActionCreate}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("failed to look up member: %w", err)
	}

	changes := Diff(existing, rec)
	if len(changes) == 0 {
		return Decision{Action: ActionNoop, Existing: existing}, nil
	}

	return Decision{Action: ActionUpdate, Existing: existing, Changes: changes}, nil
}

type column struct {
	name     string
	uploaded func(*domain.NormalizedRecord) any
	stored   func(*domain.Member) any
}

// mutableColumns are the member fields an upload may change. Identity fields are never
// updated by a re-upload.
var mutableColumns = []column{
	{"cell_number", func(r *domain.NormalizedRecord) any { return str(r.CellNumber) }, func(m *domain.Member) any { return str(m.CellNumber) }},
	{"email", func(r *domain.NormalizedRecord) any { return str(r.Email) }, func(m *domain.Member) any { return str(m.Email) }},
	{"address", func(r *domain.NormalizedRecord) any { return str(r.Address) }, func(m *domain.Member) any { return str(m.Address) }},
	{"province_id", func(r *domain.NormalizedRecord) any { return i64(r.ProvinceID) }, func(m *domain.Member) any { return i64(m.ProvinceID) }},
	{"municipality_id", func(r *domain.NormalizedRecord) any { return i64(r.MunicipalityID) }, func(m *domain.Member) any { return i64(m.MunicipalityID) }},
	{"ward_id", func(r *domain.NormalizedRecord) any { return i64(r.WardID) }, func(m *domain.Member) any { return i64(m.WardID) }},
	{"voting_district_id", func(r *domain.NormalizedRecord) any { return i64(r.VotingDistrictID) }, func(m *domain.Member) any { return i64(m.VotingDistrictID) }},
	{"subscription_type_id", func(r *domain.NormalizedRecord) any { return i64(r.SubscriptionTypeID) }, func(m *domain.Member) any { return i64(m.SubscriptionTypeID) }},
	{"membership_amount_cents", func(r *domain.NormalizedRecord) any { return i64(r.MembershipAmountCents) }, func(m *domain.Member) any { return i64(m.MembershipAmountCents) }},
	{"payment_method", func(r *domain.NormalizedRecord) any { return str(r.PaymentMethod) }, func(m *domain.Member) any { return str(m.PaymentMethod) }},
	{"payment_reference", func(r *domain.NormalizedRecord) any { return str(r.PaymentReference) }, func(m *domain.Member) any { return str(m.PaymentReference) }},
	{"payment_date", func(r *domain.NormalizedRecord) any { return date(r.PaymentDate) }, func(m *domain.Member) any { return date(m.PaymentDate) }},
}

// Diff lists the mutable columns whose uploaded value differs from the stored one.
// Empty uploaded values never clear stored data.
func Diff(existing *domain.Member, rec *domain.NormalizedRecord) []domain.FieldChange {
	var changes []domain.FieldChange
	for _, c := range mutableColumns {
		next := c.uploaded(rec)
		if next == nil {
			continue
		}
		prev := c.stored(existing)
		if equal(prev, next) {
			continue
		}
		changes = append(changes, domain.FieldChange{Column: c.name, Old: prev, New: next})
	}

	return changes
}

// NewMember builds the row inserted for ActionCreate.
func NewMember(rec *domain.NormalizedRecord) *domain.Member {
	return &domain.Member{
		IDNumber:              rec.IDNumber,
		FirstName:             rec.FirstName,
		Surname:               rec.Surname,
		DateOfBirth:           rec.DateOfBirth,
		CellNumber:            rec.CellNumber,
		Email:                 rec.Email,
		Address:               rec.Address,
		GenderID:              rec.GenderID,
		RaceID:                rec.RaceID,
		CitizenshipID:         rec.CitizenshipID,
		LanguageID:            rec.LanguageID,
		OccupationID:          rec.OccupationID,
		QualificationID:       rec.QualificationID,
		ProvinceID:            rec.ProvinceID,
		MunicipalityID:        rec.MunicipalityID,
		WardID:                rec.WardID,
		VotingDistrictID:      rec.VotingDistrictID,
		SubscriptionTypeID:    rec.SubscriptionTypeID,
		MembershipAmountCents: rec.MembershipAmountCents,
		PaymentMethod:         rec.PaymentMethod,
		PaymentReference:      rec.PaymentReference,
		PaymentDate:           rec.PaymentDate,
		DateJoined:            rec.DateJoined,
	}
}

func str(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func i64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func date(p *time.Time) any {
	if p == nil {
		return nil
	}
	t := *p
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func equal(a, b any) bool {
	ta, okA := a.(time.Time)
	tb, okB := b.(time.Time)
	if okA && okB {
		return ta.Equal(tb)
	}

	return a == b
}
