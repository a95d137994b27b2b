package models

import "time"

// Enrollment links a boxer to a class template. At most one row exists per
// (class_id, boxer_id) pair.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	BoxerID   string    `db:"boxer_id" json:"boxer_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RosterEntry is an enrollment joined with boxer identity for roster views.
type RosterEntry struct {
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	BoxerID      string `db:"boxer_id" json:"boxer_id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	DisplayName  string `db:"display_name" json:"display_name"`
}
