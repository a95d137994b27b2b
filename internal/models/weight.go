package models

import "time"

// Weight is a body-weight sample. History keeps every sample; writes coming
// through the attendance flow pin the time-of-day so that same-day samples
// collide and the latest write for the day wins.
type Weight struct {
	ID         string    `db:"id" json:"id"`
	BoxerID    string    `db:"boxer_id" json:"boxer_id"`
	MeasuredAt time.Time `db:"measured_at" json:"measured_at"`
	Kg         float64   `db:"kg" json:"kg"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WeightDay is the last sample of one calendar day.
type WeightDay struct {
	Date string  `json:"date"`
	Kg   float64 `json:"kg"`
}

// WeightProgress summarises a boxer's weight history per day.
type WeightProgress struct {
	Days    []WeightDay `json:"days"`
	Min     *float64    `json:"min,omitempty"`
	Max     *float64    `json:"max,omitempty"`
	Avg     *float64    `json:"avg,omitempty"`
	Delta   *float64    `json:"delta,omitempty"`
	AboveFW *int        `json:"above_fighting_weight,omitempty"`
}
