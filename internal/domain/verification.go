package domain

// VerificationState records what happened to the best-effort external voter
// registration check of a row. It never decides the row's outcome kind.
type VerificationState string

const (
	VerificationNotAttempted  VerificationState = "not_attempted"
	VerificationRegistered    VerificationState = "registered"
	VerificationNotRegistered VerificationState = "not_registered"
	VerificationRateLimited   VerificationState = "skipped_rate_limited"
	VerificationFailed        VerificationState = "failed"
)

// SoftFailure reports whether the check was skipped or failed.
func (s VerificationState) SoftFailure() bool {
	return s == VerificationRateLimited || s == VerificationFailed
}

type Verification struct {
	Registered     bool   `json:"registered"`
	VotingDistrict string `json:"voting_district"`
}
