package entities

// SkippedRecord explains why one import record was rejected. Identifier is
// the record's external facility id when present, otherwise its row position.
type SkippedRecord struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// ImportReport summarizes one bulk-import run. The lookup counts are the
// distinct values seen in the file, whether newly created or reused.
type ImportReport struct {
	States              int             `json:"states"`
	Regions             int             `json:"regions"`
	Districts           int             `json:"districts"`
	FacilityTypes       int             `json:"facility_types"`
	Ownerships          int             `json:"ownerships"`
	OperationalStatuses int             `json:"operational_statuses"`
	Inserted            int             `json:"inserted"`
	Updated             int             `json:"updated"`
	Skipped             int             `json:"skipped"`
	SkipReasons         []SkippedRecord `json:"skip_reasons"`
}

// AddSkip records one rejected record.
func (r *ImportReport) AddSkip(identifier, reason string) {
	r.Skipped++
	r.SkipReasons = append(r.SkipReasons, SkippedRecord{Identifier: identifier, Reason: reason})
}

// CapReasons returns a copy of the report with at most n skip reasons, for
// transport to callers. The Skipped count is left untouched.
func (r *ImportReport) CapReasons(n int) *ImportReport {
	capped := *r
	if n >= 0 && len(r.SkipReasons) > n {
		capped.SkipReasons = r.SkipReasons[:n]
	}
	return &capped
}
