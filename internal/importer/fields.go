package importer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Coordinate bounds.
const (
	LatitudeMin  = -90
	LatitudeMax  = 90
	LongitudeMin = -180
	LongitudeMax = 180
)

// coordinatePrecision is the number of fractional digits kept for stored
// coordinates. In-range values are rounded, never rejected.
const coordinatePrecision = 7

func isBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

func matchesToken(raw string, tokens ...string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, token := range tokens {
		if strings.EqualFold(trimmed, token) {
			return true
		}
	}
	return false
}

// ParseCoordinate normalizes a raw coordinate. Blank values, the literal
// "missing", unparsable text and out-of-range values all become nil; the
// record itself is never rejected over a coordinate.
func ParseCoordinate(raw string, min, max float64) *float64 {
	if isBlank(raw) || matchesToken(raw, "missing") {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	if value < min || value > max {
		return nil
	}
	factor := math.Pow10(coordinatePrecision)
	rounded := math.Round(value*factor) / factor
	return &rounded
}

// ParseLatitude normalizes a raw latitude.
func ParseLatitude(raw string) *float64 {
	return ParseCoordinate(raw, LatitudeMin, LatitudeMax)
}

// ParseLongitude normalizes a raw longitude.
func ParseLongitude(raw string) *float64 {
	return ParseCoordinate(raw, LongitudeMin, LongitudeMax)
}

// NormalizeFreeText maps blank, "no" and "n/a" to nil and returns trimmed
// text otherwise. Used for partner/project names and similar columns.
func NormalizeFreeText(raw string) *string {
	if isBlank(raw) || matchesToken(raw, "no", "n/a") {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	return &trimmed
}

// NormalizePhone maps blank, "no", "n/a" and "missing" to nil and otherwise
// returns the value verbatim. No format validation: source sheets carry
// leading zeros and non-numeric remarks like "Closed".
func NormalizePhone(raw string) *string {
	if isBlank(raw) || matchesToken(raw, "no", "n/a", "missing") {
		return nil
	}
	value := raw
	return &value
}

// Known date layouts, tried in order before the generic fallback.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate normalizes a raw date. Blank and the placeholder tokens become
// nil; otherwise the known layouts are tried in order with an RFC3339
// fallback, and total failure yields nil rather than an error. Dates without
// an explicit zone are taken as UTC.
func ParseDate(raw string) *time.Time {
	if isBlank(raw) || matchesToken(raw, "no", "missing", "n/a") {
		return nil
	}
	trimmed := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		utc := parsed.UTC()
		return &utc
	}
	return nil
}
