package domain

// LookupKind names a reference table that a spreadsheet value is resolved against.
type LookupKind string

const (
	LookupGender           LookupKind = "gender"
	LookupRace             LookupKind = "race"
	LookupCitizenship      LookupKind = "citizenship"
	LookupLanguage         LookupKind = "language"
	LookupOccupation       LookupKind = "occupation"
	LookupQualification    LookupKind = "qualification"
	LookupProvince         LookupKind = "province"
	LookupMunicipality     LookupKind = "municipality"
	LookupWard             LookupKind = "ward"
	LookupVotingDistrict   LookupKind = "voting_district"
	LookupSubscriptionType LookupKind = "subscription_type"
)

var LookupKinds = []LookupKind{
	LookupGender,
	LookupRace,
	LookupCitizenship,
	LookupLanguage,
	LookupOccupation,
	LookupQualification,
	LookupProvince,
	LookupMunicipality,
	LookupWard,
	LookupVotingDistrict,
	LookupSubscriptionType,
}
