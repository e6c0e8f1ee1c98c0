package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatitude(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"blank", "", nil},
		{"whitespace", "   ", nil},
		{"missing token", "missing", nil},
		{"missing token mixed case", "Missing", nil},
		{"unparsable", "north-ish", nil},
		{"out of range high", "95.0", nil},
		{"out of range low", "-90.5", nil},
		{"boundary", "90", f(90)},
		{"rounded to 7 digits", "12.34567891234", f(12.3456789)},
		{"rounds up", "8.12345675", f(8.1234568)},
		{"plain value", "8.5", f(8.5)},
		{"negative", "-12.25", f(-12.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLatitude(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseLongitude_Range(t *testing.T) {
	assert.Nil(t, ParseLongitude("180.1"))
	assert.Nil(t, ParseLongitude("-181"))
	require.NotNil(t, ParseLongitude("-180"))
	require.NotNil(t, ParseLongitude("179.9999999"))
}

func TestNormalizeFreeText(t *testing.T) {
	tests := []struct {
		raw  string
		want *string
	}{
		{"", nil},
		{"  ", nil},
		{"No", nil},
		{"no", nil},
		{"N/A", nil},
		{"n/a", nil},
		{"UNICEF", s("UNICEF")},
		{"  World Bank  ", s("World Bank")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFreeText(tt.raw))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want *string
	}{
		{"", nil},
		{"no", nil},
		{"N/A", nil},
		{"Missing", nil},
		// Verbatim: leading zeros and non-numeric remarks survive.
		{"076123456", s("076123456")},
		{"Closed", s("Closed")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw))
		})
	}
}

func TestParseDate(t *testing.T) {
	utc := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"blank", "", nil},
		{"no token", "no", nil},
		{"missing token", "MISSING", nil},
		{"na token", "n/a", nil},
		{"garbage", "sometime next year", nil},
		{"iso", "2024-12-31", utc(2024, time.December, 31)},
		{"slash day first", "31/12/2024", utc(2024, time.December, 31)},
		{"month name", "02-Jan-2025", utc(2025, time.January, 2)},
		{"long month name", "January 2, 2025", utc(2025, time.January, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(*tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseDate_RFC3339FallbackNormalizedToUTC(t *testing.T) {
	got := ParseDate("2024-06-01T12:00:00+03:00")
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC), *got)
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }
