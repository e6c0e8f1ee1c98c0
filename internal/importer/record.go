// Package importer turns a delimited facility dataset into flat records and
// normalizes the raw field values found in source spreadsheets.
package importer

// PartnerSlots mirrors the number of partner column pairs in the source file.
const PartnerSlots = 6

// PartnerField is one raw partner/project column pair.
type PartnerField struct {
	Name    string
	EndDate string
}

// FacilityRecord is one row of the source file, untouched except for the
// header-name mapping. All values are raw text; normalization happens later
// so that skip reporting can quote what the file actually said.
type FacilityRecord struct {
	Row               int // 1-based position in the file, excluding the header
	ExternalID        string
	Latitude          string
	Longitude         string
	State             string
	Region            string
	District          string
	FacilityName      string
	FacilityType      string
	Ownership         string
	OperationalStatus string
	Partners          [PartnerSlots]PartnerField
	InChargeName      string
	InChargeNumber    string
}

// Identifier names the record in skip reports: the external id when present,
// otherwise the row position.
func (r *FacilityRecord) Identifier() string {
	if r.ExternalID != "" {
		return r.ExternalID
	}
	return rowIdentifier(r.Row)
}
