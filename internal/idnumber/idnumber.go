// Package idnumber validates 13-digit national identity numbers.
//
// Layout: YYMMDD SSSS C Z, where digits 0-5 are the birth date, 6-9 the serial,
// 10-11 citizenship and race markers, and 12 the check digit over digits 0-11.
package idnumber

import "time"

const Length = 13

// CenturyPivot decides the century when the serial does not: YY <= CenturyPivot
// is read as 20YY, anything above as 19YY.
const CenturyPivot = 25

type Reason string

const (
	ReasonNone     Reason = ""
	ReasonFormat   Reason = "format_error"
	ReasonChecksum Reason = "checksum_error"
)

type Result struct {
	Valid     bool
	Reason    Reason
	Message   string
	BirthDate time.Time
}

func invalid(reason Reason, msg string) Result {
	return Result{Reason: reason, Message: msg}
}

// Validate checks the shape, birth date and check digit of id.
func Validate(id string) Result {
	if len(id) != Length {
		return invalid(ReasonFormat, "id number must have exactly 13 digits")
	}
	for i := 0; i < Length; i++ {
		if id[i] < '0' || id[i] > '9' {
			return invalid(ReasonFormat, "id number must contain digits only")
		}
	}

	birth, ok := BirthDate(id)
	if !ok {
		return invalid(ReasonFormat, "id number does not start with a valid YYMMDD birth date")
	}

	if CheckDigit(id[:12]) != id[12] {
		return invalid(ReasonChecksum, "id number check digit does not match")
	}

	return Result{Valid: true, BirthDate: birth}
}

// BirthDate decodes digits 0-5. The century is 2000 when the first serial digit is 0,
// otherwise it follows CenturyPivot. ok is false for impossible dates.
func BirthDate(id string) (time.Time, bool) {
	if len(id) < 7 {
		return time.Time{}, false
	}

	yy := twoDigits(id[0:2])
	month := twoDigits(id[2:4])
	day := twoDigits(id[4:6])
	if yy < 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := 1900 + yy
	if id[6] == '0' || yy <= CenturyPivot {
		year = 2000 + yy
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}

	return date, true
}

// CheckDigit computes the check digit for the first 12 digits of an id number:
// digits at even positions are added as-is, digits at odd positions are doubled
// (minus 9 when above 9), and the result is (10 - sum%10) % 10.
func CheckDigit(first12 string) byte {
	sum := 0
	for i := 0; i < 12 && i < len(first12); i++ {
		d := int(first12[i] - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}

	return byte('0' + (10-sum%10)%10)
}

func twoDigits(s string) int {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return -1
	}

	return int(s[0]-'0')*10 + int(s[1]-'0')
}
