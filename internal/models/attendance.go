package models

import "time"

// AttendanceStatus is the wire-level status for an attendance mark. Stored
// rows carry two booleans instead: is_present, and is_excused which is only
// meaningful when is_present is false.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is one row per (boxer, calendar date, class template). A boxer
// can have independent marks in two classes on the same day, never two rows
// for the same key.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	BoxerID   string    `db:"boxer_id" json:"boxer_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Date      time.Time `db:"date" json:"date"`
	IsPresent bool      `db:"is_present" json:"is_present"`
	IsExcused bool      `db:"is_excused" json:"is_excused"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Status derives the wire status from the stored booleans.
func (a Attendance) Status() AttendanceStatus {
	if a.IsPresent {
		return AttendanceStatusPresent
	}
	if a.IsExcused {
		return AttendanceStatusExcused
	}
	return AttendanceStatusAbsent
}

// AttendanceRecord extends a row with boxer and class metadata.
type AttendanceRecord struct {
	Attendance
	BoxerFirstName string  `db:"first_name" json:"boxer_first_name"`
	BoxerLastName  string  `db:"last_name" json:"boxer_last_name"`
	ClassTitle     *string `db:"class_title" json:"class_title,omitempty"`
}

// AttendanceFilter scopes attendance listings.
type AttendanceFilter struct {
	BoxerIDs []string
	ClassID  string
	Date     *time.Time
	DateFrom *time.Time
	DateTo   *time.Time
	Present  *bool
	Search   string
	Page     int
	PageSize int
}

// AttendanceSummary aggregates counts for one boxer. PresentPct is
// present/total, ExcusedPct is excused/absent; both are zero when their
// denominator is zero.
type AttendanceSummary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Excused    int     `json:"excused"`
	PresentPct float64 `json:"present_pct"`
	AbsentPct  float64 `json:"absent_pct"`
	ExcusedPct float64 `json:"excused_pct"`
}

// SweepResult reports a bulk mark-remaining-absent pass.
type SweepResult struct {
	ClassID string `json:"class_id"`
	Date    string `json:"date"`
	Swept   int    `json:"swept"`
	Skipped int    `json:"skipped"`
}
