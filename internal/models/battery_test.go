package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerIsBetterFollowsUnit(t *testing.T) {
	lower := []string{"s", "sec", "Seconds", " MIN ", "ms", "hours"}
	for _, unit := range lower {
		assert.True(t, BatteryTest{Unit: unit}.LowerIsBetter(), "unit=%q", unit)
	}

	higher := []string{"reps", "kg", "cm", "points", ""}
	for _, unit := range higher {
		assert.False(t, BatteryTest{Unit: unit}.LowerIsBetter(), "unit=%q", unit)
	}
}

func TestResultValuesSkipNils(t *testing.T) {
	v1, v3 := 4.8, 5.1
	result := TestResult{Value1: &v1, Value3: &v3}
	assert.Equal(t, []float64{4.8, 5.1}, result.Values())

	assert.Empty(t, TestResult{Notes: "sick that week"}.Values())
}
