package normalizer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver struct {
	codes map[domain.LookupKind]map[string]int64
	err   error
}

func (r *mapResolver) Resolve(_ context.Context, kind domain.LookupKind, value string) (int64, bool, error) {
	if r.err != nil {
		return 0, false, r.err
	}
	id, ok := r.codes[kind][strings.ToLower(value)]
	return id, ok, nil
}

func newResolver() *mapResolver {
	return &mapResolver{codes: map[domain.LookupKind]map[string]int64{
		domain.LookupWard:           {"79800001": 11},
		domain.LookupVotingDistrict: {"97090012": 21},
		domain.LookupProvince:       {"gauteng": 3},
		domain.LookupGender:         {"female": 2},
	}}
}

var sheetHeader = []string{
	" id number ", "First_Name", "SURNAME", "Ward Code", "VD", "Province", "Gender",
	"Cell", "E-mail", "Amount", "Date Joined", "Unrelated",
}

func row(cells ...string) domain.RawRow {
	m := make(map[string]string, len(cells))
	for i, c := range cells {
		m[sheetHeader[i]] = c
	}
	return domain.RawRow{Index: 1, Line: 2, Cells: m}
}

func TestMatchHeaders(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders(sheetHeader)
	require.NoError(t, err)

	assert.Equal(t, " id number ", hm[normalizer.FieldIDNumber])
	assert.Equal(t, "First_Name", hm[normalizer.FieldFirstName])
	assert.Equal(t, "SURNAME", hm[normalizer.FieldSurname])
	assert.Equal(t, "Ward Code", hm[normalizer.FieldWard])
	assert.Equal(t, "VD", hm[normalizer.FieldVotingDistrict])
	assert.Equal(t, "E-mail", hm[normalizer.FieldEmail])
	assert.NotContains(t, hm, normalizer.FieldAddress)
}

func TestMatchHeaders_MissingRequired(t *testing.T) {
	t.Parallel()

	_, err := normalizer.MatchHeaders([]string{"Name", "Surname", "Cell"})

	var herr *normalizer.HeaderError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, []normalizer.Field{normalizer.FieldIDNumber, normalizer.FieldWard}, herr.Missing)
	assert.Contains(t, err.Error(), "ID Number")
}

func TestMatchHeaders_FirstColumnWins(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders([]string{"ID", "Name", "Surname", "Ward", "ID Number"})
	require.NoError(t, err)
	assert.Equal(t, "ID", hm[normalizer.FieldIDNumber])
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders(sheetHeader)
	require.NoError(t, err)
	n := normalizer.New(hm, newResolver())

	rec, err := n.Normalize(context.Background(), row(
		"8001015009087", "  Thandi ", "Mokoena", "79800001", "97090012", "Gauteng", "Female",
		"+27 82 555 1234", "Thandi@Example.COM", "R 1,250.50", "2024-03-01", "x",
	))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.RowIndex)
	assert.Equal(t, "8001015009087", rec.IDNumber)
	assert.Equal(t, "Thandi", rec.FirstName)
	assert.Equal(t, "0825551234", rec.CellNumber)
	assert.Equal(t, "thandi@example.com", rec.Email)
	require.NotNil(t, rec.WardID)
	assert.EqualValues(t, 11, *rec.WardID)
	require.NotNil(t, rec.VotingDistrictID)
	assert.EqualValues(t, 21, *rec.VotingDistrictID)
	require.NotNil(t, rec.ProvinceID)
	assert.EqualValues(t, 3, *rec.ProvinceID)
	require.NotNil(t, rec.MembershipAmountCents)
	assert.EqualValues(t, 125050, *rec.MembershipAmountCents)
	require.NotNil(t, rec.DateJoined)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *rec.DateJoined)
	assert.Empty(t, rec.Warnings)
}

func TestNormalize_RowErrors(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders(sheetHeader)
	require.NoError(t, err)
	n := normalizer.New(hm, newResolver())

	tests := []struct {
		name  string
		row   domain.RawRow
		field normalizer.Field
	}{
		{
			name:  "unknown ward",
			row:   row("8001015009087", "A", "B", "123", "", "", "", "", "", "", "", ""),
			field: normalizer.FieldWard,
		},
		{
			name:  "empty ward",
			row:   row("8001015009087", "A", "B", "", "", "", "", "", "", "", "", ""),
			field: normalizer.FieldWard,
		},
		{
			name:  "unknown voting district",
			row:   row("8001015009087", "A", "B", "79800001", "1", "", "", "", "", "", "", ""),
			field: normalizer.FieldVotingDistrict,
		},
		{
			name:  "missing surname",
			row:   row("8001015009087", "A", " ", "79800001", "", "", "", "", "", "", "", ""),
			field: normalizer.FieldSurname,
		},
		{
			name:  "bad amount",
			row:   row("8001015009087", "A", "B", "79800001", "", "", "", "", "", "12.345", "", ""),
			field: normalizer.FieldMembershipAmount,
		},
		{
			name:  "bad date",
			row:   row("8001015009087", "A", "B", "79800001", "", "", "", "", "", "", "31/31/2024", ""),
			field: normalizer.FieldDateJoined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := n.Normalize(context.Background(), tt.row)

			var rerr *normalizer.RowError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.field, rerr.Field)
		})
	}
}

func TestNormalize_SoftLookupsBecomeWarnings(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders(sheetHeader)
	require.NoError(t, err)
	n := normalizer.New(hm, newResolver())

	rec, err := n.Normalize(context.Background(), row(
		"8001015009087", "A", "B", "79800001", "", "Atlantis", "", "", "not-an-email", "", "", "",
	))
	require.NoError(t, err)

	assert.Nil(t, rec.ProvinceID)
	assert.Empty(t, rec.Email)
	assert.Len(t, rec.Warnings, 2)
}

func TestNormalize_ResolverFailure(t *testing.T) {
	t.Parallel()

	hm, err := normalizer.MatchHeaders(sheetHeader)
	require.NoError(t, err)
	boom := errors.New("connection refused")
	n := normalizer.New(hm, &mapResolver{err: boom})

	_, err = n.Normalize(context.Background(), row(
		"8001015009087", "A", "B", "79800001", "", "", "", "", "", "", "", "",
	))

	require.ErrorIs(t, err, boom)
	var rerr *normalizer.RowError
	assert.False(t, errors.As(err, &rerr))
}

func TestNormalizeIDNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "8001015009087", normalizer.NormalizeIDNumber(" 800101 5009 087 "))
	assert.Equal(t, "8001015009087", normalizer.NormalizeIDNumber("8.001015009087E+12"))
	assert.Equal(t, "0002295009087", normalizer.NormalizeIDNumber("2295009087"))
	assert.Equal(t, "12ab", normalizer.NormalizeIDNumber("12ab"))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, v := range []string{"2024-03-01", "01/03/2024", "1/3/2024", "1 March 2024", "45352"} {
		got, err := normalizer.ParseDate(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, v)
	}

	got, err := normalizer.ParseDate("20240115")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	for _, v := range []string{"yesterday", "0", "3000000", "20241350"} {
		_, err := normalizer.ParseDate(v)
		assert.Error(t, err, v)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"150":      15000,
		"150.5":    15050,
		"R150.50":  15050,
		"1,000.00": 100000,
		".75":      75,
		"R 2 500":  250000,
	}
	for in, want := range tests {
		got, err := normalizer.ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "-5", "1.", "200000000000000000", "9223372036854775807"} {
		_, err := normalizer.ParseAmount(in)
		assert.Error(t, err, in)
	}
}
