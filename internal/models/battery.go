package models

import (
	"strings"
	"time"
)

// BatteryTest is a named fitness metric ("40m sprint"), optionally scoped to
// the coach who created it. Unit drives the better-direction rule: time
// units rank lower-is-better, everything else higher-is-better.
type BatteryTest struct {
	ID           string    `db:"id" json:"id"`
	CoachID      *string   `db:"coach_id" json:"coach_id,omitempty"`
	Name         string    `db:"name" json:"name"`
	Unit         string    `db:"unit" json:"unit"`
	Description  *string   `db:"description" json:"description,omitempty"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

var timeUnits = map[string]struct{}{
	"s": {}, "sec": {}, "secs": {}, "second": {}, "seconds": {},
	"ms": {}, "millisecond": {}, "milliseconds": {},
	"min": {}, "mins": {}, "minute": {}, "minutes": {},
	"h": {}, "hr": {}, "hrs": {}, "hour": {}, "hours": {},
}

// LowerIsBetter reports whether smaller values rank higher for this test.
func (t BatteryTest) LowerIsBetter() bool {
	_, ok := timeUnits[strings.ToLower(strings.TrimSpace(t.Unit))]
	return ok
}

// TestResult stores up to three sub-measurements for one (boxer, test,
// phase) key; the triple is unique.
type TestResult struct {
	ID        string    `db:"id" json:"id"`
	BoxerID   string    `db:"boxer_id" json:"boxer_id"`
	TestID    string    `db:"test_id" json:"test_id"`
	Phase     Phase     `db:"phase" json:"phase"`
	Value1    *float64  `db:"value1" json:"value1,omitempty"`
	Value2    *float64  `db:"value2" json:"value2,omitempty"`
	Value3    *float64  `db:"value3" json:"value3,omitempty"`
	Notes     string    `db:"notes" json:"notes"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Values returns the recorded sub-measurements, nils skipped.
func (r TestResult) Values() []float64 {
	out := make([]float64, 0, 3)
	for _, v := range []*float64{r.Value1, r.Value2, r.Value3} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// ImprovementVerdict classifies a preparation-vs-peak comparison.
type ImprovementVerdict string

const (
	ImprovementNoData   ImprovementVerdict = "no_data"
	ImprovementNoChange ImprovementVerdict = "no_change"
	ImprovementImproved ImprovementVerdict = "improved"
	ImprovementWorse    ImprovementVerdict = "worse"
)

// Improvement reports how a boxer's best result moved between the
// preparation and peak phases.
type Improvement struct {
	Verdict     ImprovementVerdict `json:"verdict"`
	Delta       *float64           `json:"delta,omitempty"`
	Preparation *float64           `json:"preparation,omitempty"`
	Peak        *float64           `json:"peak,omitempty"`
	Unit        string             `json:"unit"`
}

// TestRankingRow is one boxer's best score for a ranking table.
type TestRankingRow struct {
	BoxerID   string  `json:"boxer_id"`
	BoxerName string  `json:"boxer_name"`
	Best      float64 `json:"best"`
}
