package entities

import "time"

// PartnerSlots is the number of partner/project column pairs carried by the
// source dataset.
const PartnerSlots = 6

// PartnerSupport is one implementing-partner engagement: a free-text partner
// or project name and an optional end date.
type PartnerSupport struct {
	Name    *string    `json:"name,omitempty" db:"name"`
	EndDate *time.Time `json:"end_date,omitempty" db:"end_date"`
}

// HealthFacility is a single health facility tied into the geography tree
// through its district and into the flat lookups by foreign key.
//
// Latitude and Longitude are nullable; when present they are rounded to at
// most 7 fractional digits. ExternalFacilityID is the dataset-wide unique
// identifier records are matched on during import.
type HealthFacility struct {
	ID                  int64                          `json:"id" db:"id"`
	ExternalFacilityID  string                         `json:"external_facility_id" db:"external_facility_id"`
	Name                string                         `json:"name" db:"name"`
	Latitude            *float64                       `json:"latitude,omitempty" db:"latitude"`
	Longitude           *float64                       `json:"longitude,omitempty" db:"longitude"`
	DistrictID          int64                          `json:"district_id" db:"district_id"`
	FacilityTypeID      int64                          `json:"facility_type_id" db:"facility_type_id"`
	OwnershipID         int64                          `json:"ownership_id" db:"ownership_id"`
	OperationalStatusID int64                          `json:"operational_status_id" db:"operational_status_id"`
	Partners            [PartnerSlots]PartnerSupport   `json:"partners" db:"-"`
	InChargeName        *string                        `json:"in_charge_name,omitempty" db:"in_charge_name"`
	InChargeNumber      *string                        `json:"in_charge_number,omitempty" db:"in_charge_number"`
	CreatedAt           time.Time                      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time                      `json:"updated_at" db:"updated_at"`
}
