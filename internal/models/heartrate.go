package models

import "time"

// HeartRate is a resting heart-rate sample in beats per minute.
type HeartRate struct {
	ID         string    `db:"id" json:"id"`
	BoxerID    string    `db:"boxer_id" json:"boxer_id"`
	Bpm        int       `db:"bpm" json:"bpm"`
	Notes      string    `db:"notes" json:"notes"`
	MeasuredAt time.Time `db:"measured_at" json:"measured_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// HeartRateLatest pairs a boxer with their most recent sample, if any.
type HeartRateLatest struct {
	BoxerID   string     `db:"boxer_id" json:"boxer_id"`
	BoxerName string     `db:"boxer_name" json:"boxer_name"`
	Bpm       *int       `db:"bpm" json:"bpm,omitempty"`
	Measured  *time.Time `db:"measured_at" json:"measured_at,omitempty"`
}
