package entities

import "time"

// State is the root of the administrative-geography tree. Its code is the
// raw text taken from the source dataset and is the state's identity during
// import reconciliation.
type State struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Region belongs to exactly one State. Unique on (state_id, name).
type Region struct {
	ID        int64     `json:"id" db:"id"`
	StateID   int64     `json:"state_id" db:"state_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// District belongs to exactly one Region. Unique on (region_id, name).
type District struct {
	ID        int64     `json:"id" db:"id"`
	RegionID  int64     `json:"region_id" db:"region_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
