package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column names expected in the header row. Matching is case-insensitive and
// ignores surrounding whitespace; column order is irrelevant.
const (
	colExternalID        = "facility id"
	colLatitude          = "latitude"
	colLongitude         = "longitude"
	colState             = "state"
	colRegion            = "region"
	colDistrict          = "district"
	colFacilityName      = "facility name"
	colFacilityType      = "facility type"
	colOwnership         = "ownership"
	colOperationalStatus = "operational status"
	colInChargeName      = "in charge name"
	colInChargeNumber    = "in charge number"
)

func partnerNameCol(slot int) string {
	return fmt.Sprintf("partner %d", slot)
}

func partnerEndDateCol(slot int) string {
	return fmt.Sprintf("partner %d end date", slot)
}

func rowIdentifier(row int) string {
	return fmt.Sprintf("row %d", row)
}

// ParseRecords decodes a delimited UTF-8 file with a header row into a
// materialized slice of FacilityRecords. Unknown columns are ignored and
// missing columns yield empty fields; neither aborts parsing. The result is
// materialized, not streamed, because reconciliation makes multiple passes
// over the same data.
func ParseRecords(r io.Reader) ([]FacilityRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	// Excel and Sheets prefix their CSV exports with a UTF-8 BOM, which
	// would otherwise become part of the first header cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := []FacilityRecord{}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rowIdentifier(rowNum+1), err)
		}
		rowNum++

		record := FacilityRecord{
			Row:               rowNum,
			ExternalID:        strings.TrimSpace(field(row, colExternalID)),
			Latitude:          field(row, colLatitude),
			Longitude:         field(row, colLongitude),
			State:             field(row, colState),
			Region:            field(row, colRegion),
			District:          field(row, colDistrict),
			FacilityName:      strings.TrimSpace(field(row, colFacilityName)),
			FacilityType:      field(row, colFacilityType),
			Ownership:         field(row, colOwnership),
			OperationalStatus: field(row, colOperationalStatus),
			InChargeName:      field(row, colInChargeName),
			InChargeNumber:    field(row, colInChargeNumber),
		}
		for slot := 1; slot <= PartnerSlots; slot++ {
			record.Partners[slot-1] = PartnerField{
				Name:    field(row, partnerNameCol(slot)),
				EndDate: field(row, partnerEndDateCol(slot)),
			}
		}
		records = append(records, record)
	}

	return records, nil
}
