package normalizer

import (
	"fmt"
	"strings"
)

type Field string

const (
	FieldIDNumber         Field = "id_number"
	FieldFirstName        Field = "first_name"
	FieldSurname          Field = "surname"
	FieldDateOfBirth      Field = "date_of_birth"
	FieldCellNumber       Field = "cell_number"
	FieldEmail            Field = "email"
	FieldAddress          Field = "address"
	FieldGender           Field = "gender"
	FieldRace             Field = "race"
	FieldCitizenship      Field = "citizenship"
	FieldLanguage         Field = "language"
	FieldOccupation       Field = "occupation"
	FieldQualification    Field = "qualification"
	FieldProvince         Field = "province"
	FieldMunicipality     Field = "municipality"
	FieldWard             Field = "ward"
	FieldVotingDistrict   Field = "voting_district"
	FieldSubscription     Field = "subscription"
	FieldMembershipAmount Field = "membership_amount"
	FieldPaymentMethod    Field = "payment_method"
	FieldPaymentReference Field = "payment_reference"
	FieldPaymentDate      Field = "payment_date"
	FieldDateJoined       Field = "date_joined"
)

// Headers maps every canonical field to the header spellings accepted for it.
// Matching ignores case, surrounding space, underscores and hyphens, so a new
// synonym only needs an entry here.
var Headers = map[Field][]string{
	FieldIDNumber:         {"ID Number", "ID", "IDNumber", "ID No", "Identity Number"},
	FieldFirstName:        {"Name", "Firstname", "First Name", "Names"},
	FieldSurname:          {"Surname", "Last Name", "Lastname"},
	FieldDateOfBirth:      {"Date of Birth", "DOB", "Birth Date"},
	FieldCellNumber:       {"Cell Number", "Cell", "Cellphone", "Mobile", "Phone"},
	FieldEmail:            {"Email", "E-mail", "Email Address"},
	FieldAddress:          {"Address", "Residential Address", "Street Address"},
	FieldGender:           {"Gender", "Sex"},
	FieldRace:             {"Race"},
	FieldCitizenship:      {"Citizenship", "Nationality"},
	FieldLanguage:         {"Language", "Home Language"},
	FieldOccupation:       {"Occupation"},
	FieldQualification:    {"Qualification", "Highest Qualification"},
	FieldProvince:         {"Province"},
	FieldMunicipality:     {"Municipality", "Local Municipality"},
	FieldWard:             {"Ward", "Ward Code", "Ward Number"},
	FieldVotingDistrict:   {"Voting District", "VD", "VD Code", "Voting District Code", "VD Number"},
	FieldSubscription:     {"Subscription", "Subscription Type", "Membership Type"},
	FieldMembershipAmount: {"Membership Amount", "Amount"},
	FieldPaymentMethod:    {"Payment Method", "Payment Type"},
	FieldPaymentReference: {"Payment Reference", "Reference", "Receipt Number"},
	FieldPaymentDate:      {"Payment Date", "Date Paid"},
	FieldDateJoined:       {"Date Joined", "Membership Date", "Date of Joining"},
}

// RequiredFields must each match a column, otherwise the whole file is rejected.
var RequiredFields = []Field{FieldIDNumber, FieldFirstName, FieldSurname, FieldWard}

// HeaderMap points a canonical field at the original header text of its column.
type HeaderMap map[Field]string

// HeaderError is a file-level error: the sheet cannot be processed at all.
type HeaderError struct {
	Missing []Field
}

func (e *HeaderError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		names = append(names, Headers[f][0])
	}

	return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
}

var aliasIndex = buildAliasIndex(Headers)

func buildAliasIndex(headers map[Field][]string) map[string]Field {
	idx := make(map[string]Field)
	for field, aliases := range headers {
		idx[headerKey(string(field))] = field
		for _, alias := range aliases {
			idx[headerKey(alias)] = field
		}
	}

	return idx
}

// MatchHeaders maps the sheet's header row onto canonical fields. Unknown columns are
// ignored; the first column wins when two headers map to the same field.
func MatchHeaders(header []string) (HeaderMap, error) {
	hm := make(HeaderMap, len(header))
	for _, h := range header {
		field, ok := aliasIndex[headerKey(h)]
		if !ok {
			continue
		}
		if _, taken := hm[field]; !taken {
			hm[field] = h
		}
	}

	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := hm[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}

	return hm, nil
}

func headerKey(h string) string {
	h = strings.ToLower(h)
	h = strings.NewReplacer("_", " ", "-", "", ".", "").Replace(h)

	return strings.Join(strings.Fields(h), " ")
}
