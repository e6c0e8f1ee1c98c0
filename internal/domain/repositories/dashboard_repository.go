package repositories

import "context"

// NameCount is one aggregation bucket.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardSummary aggregates registry-wide counts for the dashboard.
type DashboardSummary struct {
	TotalFacilities     int         `json:"total_facilities"`
	TotalStates         int         `json:"total_states"`
	TotalRegions        int         `json:"total_regions"`
	TotalDistricts      int         `json:"total_districts"`
	MissingCoordinates  int         `json:"missing_coordinates"`
	ByFacilityType      []NameCount `json:"by_facility_type"`
	ByOwnership         []NameCount `json:"by_ownership"`
	ByOperationalStatus []NameCount `json:"by_operational_status"`
	ByState             []NameCount `json:"by_state"`
}

// DashboardRepository runs the aggregation queries behind the dashboard.
type DashboardRepository interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}
