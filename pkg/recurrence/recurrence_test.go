package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandWeeklyWithDefaults(t *testing.T) {
	// Mondays and Wednesdays in the first week of March 2024.
	occ, err := Expand("FREQ=WEEKLY;BYDAY=MO,WE", date(2024, time.March, 1), date(2024, time.March, 10), 18, 30, 90)
	require.NoError(t, err)
	require.Len(t, occ, 2) // Mon Mar 4 and Wed Mar 6

	require.Equal(t, time.Date(2024, time.March, 4, 18, 30, 0, 0, time.UTC), occ[0].Start)
	require.Equal(t, time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC), occ[0].End)
	for _, o := range occ {
		require.Equal(t, 18, o.Start.Hour())
		require.Equal(t, 30, o.Start.Minute())
		require.Equal(t, 90*time.Minute, o.End.Sub(o.Start))
	}
}

func TestExpandHonorsDeclaredHourMinute(t *testing.T) {
	occ, err := Expand("FREQ=DAILY;BYHOUR=7;BYMINUTE=15", date(2024, time.March, 1), date(2024, time.March, 3), 18, 0, 60)
	require.NoError(t, err)
	require.Len(t, occ, 3)
	for _, o := range occ {
		require.Equal(t, 7, o.Start.Hour())
		require.Equal(t, 15, o.Start.Minute())
	}
}

func TestExpandDeterministic(t *testing.T) {
	first, err := Expand("FREQ=WEEKLY;BYDAY=TU,TH", date(2024, time.January, 1), date(2024, time.February, 1), 19, 0, 60)
	require.NoError(t, err)
	second, err := Expand("FREQ=WEEKLY;BYDAY=TU,TH", date(2024, time.January, 1), date(2024, time.February, 1), 19, 0, 60)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.NotEmpty(t, first)
}

func TestExpandWindowInclusive(t *testing.T) {
	occ, err := Expand("FREQ=DAILY", date(2024, time.March, 1), date(2024, time.March, 1), 10, 0, 30)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	require.Equal(t, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), occ[0].Start)
}

func TestExpandMalformedRule(t *testing.T) {
	_, err := Expand("FREQ=SOMETIMES", date(2024, time.March, 1), date(2024, time.March, 31), 18, 0, 60)
	require.Error(t, err)

	_, err = Expand("", date(2024, time.March, 1), date(2024, time.March, 31), 18, 0, 60)
	require.Error(t, err)
}
