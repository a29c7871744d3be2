package domain

type OutcomeKind string

const (
	OutcomeValidatedNew    OutcomeKind = "validated_new"
	OutcomeValidatedUpdate OutcomeKind = "validated_update"
	OutcomeInvalidFormat   OutcomeKind = "invalid_format"
	OutcomeDuplicateInFile OutcomeKind = "duplicate_in_file"
	OutcomeDatabaseError   OutcomeKind = "database_error"
)

// OutcomeKinds is the fixed reporting order.
var OutcomeKinds = []OutcomeKind{
	OutcomeValidatedNew,
	OutcomeValidatedUpdate,
	OutcomeInvalidFormat,
	OutcomeDuplicateInFile,
	OutcomeDatabaseError,
}

type Operation string

const (
	OperationNone   Operation = "none"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationNoop   Operation = "noop"
)

type RowOutcome struct {
	RowIndex     int               `db:"row_index"     json:"row"`
	Kind         OutcomeKind       `db:"kind"          json:"outcome"`
	Operation    Operation         `db:"operation"     json:"operation"`
	IDNumber     string            `db:"id_number"     json:"id_number"`
	RawIDNumber  string            `db:"raw_id_number" json:"raw_id_number,omitempty"`
	FirstName    string            `db:"first_name"    json:"first_name"`
	Surname      string            `db:"surname"       json:"surname"`
	Detail       string            `db:"detail"        json:"detail,omitempty"`
	ErrorDetail  string            `db:"error_detail"  json:"error_detail,omitempty"`
	MemberID     *int64            `db:"member_id"     json:"member_id,omitempty"`
	Verification VerificationState `db:"verification"  json:"verification"`
	Record       *NormalizedRecord `db:"record"        json:"record,omitempty"`
}

// SubmittedIDNumber is the ID number as it appeared in the uploaded cell.
func (o *RowOutcome) SubmittedIDNumber() string {
	if o.RawIDNumber != "" {
		return o.RawIDNumber
	}
	return o.IDNumber
}

func (o *RowOutcome) Succeeded() bool {
	return o.Kind == OutcomeValidatedNew || o.Kind == OutcomeValidatedUpdate
}

// CountByKind returns counts for every kind, including zero counts.
func CountByKind(outcomes []*RowOutcome) map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int, len(OutcomeKinds))
	for _, kind := range OutcomeKinds {
		counts[kind] = 0
	}
	for _, o := range outcomes {
		counts[o.Kind]++
	}

	return counts
}
