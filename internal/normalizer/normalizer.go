package normalizer

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

// LookupResolver resolves free-text reference values (e.g. "Gauteng") to ids.
// ok is false when the value is unknown.
type LookupResolver interface {
	Resolve(ctx context.Context, kind domain.LookupKind, value string) (id int64, ok bool, err error)
}

// RowError rejects a single row as invalid_format.
type RowError struct {
	Field   Field
	Value   string
	Message string
}

func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

type Normalizer struct {
	headers  HeaderMap
	resolver LookupResolver
}

func New(headers HeaderMap, resolver LookupResolver) *Normalizer {
	return &Normalizer{
		headers:  headers,
		resolver: resolver,
	}
}

// lookupFields lists the reference fields in resolution order. strict lookups fail the
// row when the value cannot be resolved.
var lookupFields = []struct {
	field  Field
	kind   domain.LookupKind
	strict bool
	target func(*domain.NormalizedRecord) **int64
}{
	{FieldGender, domain.LookupGender, false, func(r *domain.NormalizedRecord) **int64 { return &r.GenderID }},
	{FieldRace, domain.LookupRace, false, func(r *domain.NormalizedRecord) **int64 { return &r.RaceID }},
	{FieldCitizenship, domain.LookupCitizenship, false, func(r *domain.NormalizedRecord) **int64 { return &r.CitizenshipID }},
	{FieldLanguage, domain.LookupLanguage, false, func(r *domain.NormalizedRecord) **int64 { return &r.LanguageID }},
	{FieldOccupation, domain.LookupOccupation, false, func(r *domain.NormalizedRecord) **int64 { return &r.OccupationID }},
	{FieldQualification, domain.LookupQualification, false, func(r *domain.NormalizedRecord) **int64 { return &r.QualificationID }},
	{FieldProvince, domain.LookupProvince, false, func(r *domain.NormalizedRecord) **int64 { return &r.ProvinceID }},
	{FieldMunicipality, domain.LookupMunicipality, false, func(r *domain.NormalizedRecord) **int64 { return &r.MunicipalityID }},
	{FieldWard, domain.LookupWard, true, func(r *domain.NormalizedRecord) **int64 { return &r.WardID }},
	{FieldVotingDistrict, domain.LookupVotingDistrict, true, func(r *domain.NormalizedRecord) **int64 { return &r.VotingDistrictID }},
	{FieldSubscription, domain.LookupSubscriptionType, false, func(r *domain.NormalizedRecord) **int64 { return &r.SubscriptionTypeID }},
}

// Normalize maps a raw row onto member fields. A *RowError means the row is invalid;
// any other error comes from the resolver.
func (n *Normalizer) Normalize(ctx context.Context, raw domain.RawRow) (*domain.NormalizedRecord, error) {
	rec := &domain.NormalizedRecord{
		RowIndex:         raw.Index,
		IDNumber:         NormalizeIDNumber(n.value(raw, FieldIDNumber)),
		FirstName:        cleanName(n.value(raw, FieldFirstName)),
		Surname:          cleanName(n.value(raw, FieldSurname)),
		Address:          collapseSpaces(n.value(raw, FieldAddress)),
		PaymentMethod:    collapseSpaces(n.value(raw, FieldPaymentMethod)),
		PaymentReference: strings.TrimSpace(n.value(raw, FieldPaymentReference)),
	}

	if rec.FirstName == "" {
		return nil, &RowError{Field: FieldFirstName, Message: "is required"}
	}
	if rec.Surname == "" {
		return nil, &RowError{Field: FieldSurname, Message: "is required"}
	}

	rec.CellNumber = NormalizeCellNumber(n.value(raw, FieldCellNumber))
	if rec.CellNumber != "" && len(rec.CellNumber) != 10 {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("cell number %q is not a 10 digit number", rec.CellNumber))
	}

	if email := strings.TrimSpace(n.value(raw, FieldEmail)); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("email %q ignored: not a valid address", email))
		} else {
			rec.Email = strings.ToLower(addr.Address)
		}
	}

	dates := []struct {
		field  Field
		target **time.Time
	}{
		{FieldDateOfBirth, &rec.DateOfBirth},
		{FieldPaymentDate, &rec.PaymentDate},
		{FieldDateJoined, &rec.DateJoined},
	}
	for _, d := range dates {
		v := strings.TrimSpace(n.value(raw, d.field))
		if v == "" {
			continue
		}
		t, err := ParseDate(v)
		if err != nil {
			return nil, &RowError{Field: d.field, Value: v, Message: "is not a valid date"}
		}
		*d.target = &t
	}

	if v := strings.TrimSpace(n.value(raw, FieldMembershipAmount)); v != "" {
		cents, err := ParseAmount(v)
		if err != nil {
			return nil, &RowError{Field: FieldMembershipAmount, Value: v, Message: "is not a valid amount"}
		}
		rec.MembershipAmountCents = &cents
	}

	for _, lf := range lookupFields {
		v := collapseSpaces(n.value(raw, lf.field))
		if v == "" {
			if lf.field == FieldWard {
				return nil, &RowError{Field: lf.field, Message: "is required"}
			}
			continue
		}

		id, ok, err := n.resolver.Resolve(ctx, lf.kind, v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %q: %w", lf.kind, v, err)
		}
		if !ok {
			if lf.strict {
				return nil, &RowError{Field: lf.field, Value: v, Message: "is not a known code"}
			}
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("unknown %s %q left empty", lf.field, v))
			continue
		}
		*lf.target(rec) = &id
	}

	return rec, nil
}

func (n *Normalizer) value(raw domain.RawRow, f Field) string {
	h, ok := n.headers[f]
	if !ok {
		return ""
	}

	return raw.Cells[h]
}

// NormalizeIDNumber strips whitespace and restores leading zeros that a numeric
// spreadsheet cell drops, including values stored in scientific notation.
func NormalizeIDNumber(v string) string {
	v = strings.Join(strings.Fields(v), "")
	if v == "" {
		return ""
	}

	if strings.ContainsAny(v, "eE.") {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f < 1e13 && f == float64(int64(f)) {
			v = strconv.FormatInt(int64(f), 10)
		}
	}

	if len(v) >= 10 && len(v) < 13 && isDigits(v) {
		v = strings.Repeat("0", 13-len(v)) + v
	}

	return v
}

// NormalizeCellNumber keeps digits only and rewrites the +27 country prefix to a
// local leading zero.
func NormalizeCellNumber(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "27"):
		return "0" + digits[2:]
	case len(digits) == 9:
		return "0" + digits
	}

	return digits
}

func cleanName(v string) string {
	return collapseSpaces(v)
}

func collapseSpaces(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func isDigits(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}

	return true
}
