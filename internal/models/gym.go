package models

import "time"

// Gym is the root of the tenancy tree. Boxers and class templates belong to
// exactly one gym; a gym that still owns either cannot be deleted.
type Gym struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
