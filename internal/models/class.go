package models

import "time"

// ClassTemplate is a recurring class offering, not a single meeting.
// Recurrence holds an RRULE string expanded on demand for the calendar;
// StartHour/StartMinute/DurationMinutes place occurrences whose rule does
// not declare BYHOUR/BYMINUTE.
type ClassTemplate struct {
	ID              string    `db:"id" json:"id"`
	GymID           string    `db:"gym_id" json:"gym_id"`
	Title           string    `db:"title" json:"title"`
	Description     *string   `db:"description" json:"description,omitempty"`
	Recurrence      *string   `db:"recurrence" json:"recurrence,omitempty"`
	StartHour       int       `db:"start_hour" json:"start_hour"`
	StartMinute     int       `db:"start_minute" json:"start_minute"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ClassOccurrence is one materialized session of a class template within a
// calendar window, with headline attendance counts.
type ClassOccurrence struct {
	ClassID       string    `json:"class_id"`
	ClassTitle    string    `json:"class_title"`
	Date          string    `json:"date"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PresentCount  int       `json:"present_count"`
	EnrolledCount int       `json:"enrolled_count"`
}
