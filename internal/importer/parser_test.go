package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords_HeaderOrderIndependent(t *testing.T) {
	input := strings.Join([]string{
		"District,Facility ID,State,Latitude,Region,Facility Name",
		"Bo Central,HF-001,Southern,8.1234,Bo,Bo Government Hospital",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "HF-001", records[0].ExternalID)
	assert.Equal(t, "Southern", records[0].State)
	assert.Equal(t, "Bo", records[0].Region)
	assert.Equal(t, "Bo Central", records[0].District)
	assert.Equal(t, "8.1234", records[0].Latitude)
	assert.Equal(t, "Bo Government Hospital", records[0].FacilityName)
}

func TestParseRecords_HeaderMatchingIsCaseInsensitive(t *testing.T) {
	input := strings.Join([]string{
		"FACILITY ID, state ,Facility Type",
		"HF-002,Eastern,Clinic",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "HF-002", records[0].ExternalID)
	assert.Equal(t, "Eastern", records[0].State)
	assert.Equal(t, "Clinic", records[0].FacilityType)
}

func TestParseRecords_StripsByteOrderMark(t *testing.T) {
	// Excel and Sheets CSV exports start with a UTF-8 BOM; it must not
	// become part of the first header name.
	input := "\ufeff" + strings.Join([]string{
		"Facility ID,Facility Name,State",
		"HF-001,Alpha Clinic,Northern",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "HF-001", records[0].ExternalID)
	assert.Equal(t, "Alpha Clinic", records[0].FacilityName)
	assert.Equal(t, "Northern", records[0].State)
}

func TestParseRecords_UnknownAndMissingColumns(t *testing.T) {
	// "Comments" is unknown, every other expected column is missing.
	input := strings.Join([]string{
		"Facility ID,Comments",
		"HF-003,left by a field officer",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "HF-003", records[0].ExternalID)
	assert.Empty(t, records[0].State)
	assert.Empty(t, records[0].FacilityType)
	assert.Empty(t, records[0].Partners[0].Name)
}

func TestParseRecords_ShortRowsArePadded(t *testing.T) {
	input := strings.Join([]string{
		"Facility ID,State,Region,District",
		"HF-004,Northern",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Northern", records[0].State)
	assert.Empty(t, records[0].Region)
	assert.Empty(t, records[0].District)
}

func TestParseRecords_PartnerColumns(t *testing.T) {
	input := strings.Join([]string{
		"Facility ID,Partner 1,Partner 1 End Date,Partner 6,Partner 6 End Date",
		"HF-005,UNICEF,2024-12-31,WHO,2025-06-30",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "UNICEF", records[0].Partners[0].Name)
	assert.Equal(t, "2024-12-31", records[0].Partners[0].EndDate)
	assert.Equal(t, "WHO", records[0].Partners[5].Name)
	assert.Empty(t, records[0].Partners[2].Name)
}

func TestParseRecords_RowNumbersAndIdentifier(t *testing.T) {
	input := strings.Join([]string{
		"Facility ID,State",
		"HF-006,Western",
		",Western",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Row)
	assert.Equal(t, "HF-006", records[0].Identifier())
	assert.Equal(t, 2, records[1].Row)
	assert.Equal(t, "row 2", records[1].Identifier())
}

func TestParseRecords_EmptyFile(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseRecords_HeaderOnly(t *testing.T) {
	records, err := ParseRecords(strings.NewReader("Facility ID,State\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}
