package entities

import "time"

// LookupValue is a flat reference row (facility type, ownership, operational
// status). Its name is unique and immutable once created: lookup rows are
// inserted lazily during import and never updated or deleted by the pipeline.
type LookupValue struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
