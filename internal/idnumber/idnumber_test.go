package idnumber_test

import (
	"fmt"
	"math/rand"
	"testing"
	"testing/quick"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/idnumber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_KnownNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		id     string
		valid  bool
		reason idnumber.Reason
		birth  time.Time
	}{
		{"valid 1980s", "8001015009087", true, idnumber.ReasonNone, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"bad check digit", "8001015009088", false, idnumber.ReasonChecksum, time.Time{}},
		{"too short", "800101500908", false, idnumber.ReasonFormat, time.Time{}},
		{"too long", "80010150090870", false, idnumber.ReasonFormat, time.Time{}},
		{"letters", "80010150090A7", false, idnumber.ReasonFormat, time.Time{}},
		{"empty", "", false, idnumber.ReasonFormat, time.Time{}},
		{"month 13", withCheck("801301500908"), false, idnumber.ReasonFormat, time.Time{}},
		{"30 february", withCheck("800230500908"), false, idnumber.ReasonFormat, time.Time{}},
		{"day zero", withCheck("800100500908"), false, idnumber.ReasonFormat, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := idnumber.Validate(tt.id)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.valid {
				assert.Equal(t, tt.birth, got.BirthDate)
			} else {
				assert.NotEmpty(t, got.Message)
			}
		})
	}
}

func TestBirthDate_Century(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		year int
	}{
		{"8001010009087", 2080}, // first serial digit 0 always means 2000s
		{"8001015009087", 1980},
		{"2501015009087", 2025},
		{"2601015009087", 1926},
		{"0002295009087", 2000}, // leap day in 2000
	}

	for _, tt := range tests {
		got, ok := idnumber.BirthDate(tt.id)
		require.True(t, ok, tt.id)
		assert.Equal(t, tt.year, got.Year(), tt.id)
	}

	_, ok := idnumber.BirthDate("9902295009087")
	assert.False(t, ok, "1999 is not a leap year")
}

func TestValidate_ValidChecksumProperty(t *testing.T) {
	t.Parallel()

	property := func(seed int64) bool {
		id := randomValidID(rand.New(rand.NewSource(seed)))
		return idnumber.Validate(id).Valid
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 2000}))
}

func TestValidate_CheckDigitMutationProperty(t *testing.T) {
	t.Parallel()

	property := func(seed int64, delta uint8) bool {
		id := randomValidID(rand.New(rand.NewSource(seed)))

		d := int(id[12]-'0') + int(delta%9) + 1
		mutated := id[:12] + string(byte('0'+d%10))

		got := idnumber.Validate(mutated)
		return !got.Valid && got.Reason == idnumber.ReasonChecksum
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 2000}))
}

func TestValidate_AnySingleDigitMutationIsRejected(t *testing.T) {
	t.Parallel()

	property := func(seed int64, pos uint8, delta uint8) bool {
		id := []byte(randomValidID(rand.New(rand.NewSource(seed))))

		i := int(pos) % idnumber.Length
		d := int(id[i]-'0') + int(delta%9) + 1
		id[i] = byte('0' + d%10)

		return !idnumber.Validate(string(id)).Valid
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 5000}))
}

func TestValidate_Deterministic(t *testing.T) {
	t.Parallel()

	first := idnumber.Validate("8001015009087")
	for range 10 {
		assert.Equal(t, first, idnumber.Validate("8001015009087"))
	}
}

func randomValidID(rng *rand.Rand) string {
	first12 := fmt.Sprintf("%02d%02d%02d%04d%d%d",
		rng.Intn(100),
		rng.Intn(12)+1,
		rng.Intn(28)+1,
		rng.Intn(10000),
		rng.Intn(2),
		rng.Intn(10),
	)

	return withCheck(first12)
}

func withCheck(first12 string) string {
	return first12 + string(idnumber.CheckDigit(first12))
}
