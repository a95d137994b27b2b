package models

import "time"

// Boxer is an athlete record. PublicID is the stable identifier shared
// outside the club (links, exports); it is distinct from the row id.
// DisplayName is the legacy combined "First Last" field kept for older
// records imported from the previous system.
type Boxer struct {
	ID          string     `db:"id" json:"id"`
	PublicID    string     `db:"public_id" json:"public_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DisplayName string     `db:"display_name" json:"display_name"`
	ParentName  string     `db:"parent_name" json:"parent_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	GymID       string     `db:"gym_id" json:"gym_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// BoxerDetail joins gym metadata onto a boxer row for listings.
type BoxerDetail struct {
	Boxer
	GymName string `db:"gym_name" json:"gym_name"`
}

// BoxerFilter scopes boxer listings. Search terms are ANDed and each term is
// matched case-insensitively against first, last and parent names.
type BoxerFilter struct {
	Search   string
	Page     int
	PageSize int
}

// BulkBoxerRow is one entry of a bulk import payload.
type BulkBoxerRow struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	ParentName  string     `json:"parent_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// BulkBoxerRowError reports a rejected bulk import row.
type BulkBoxerRowError struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
