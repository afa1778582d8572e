package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSortedKeys(t *testing.T) {
	m := map[time.Time]string{
		time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC): "march",
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC): "january",
		time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC): "february",
	}

	asc := GetSortedKeys(m, true)
	assert.Equal(t, time.January, asc[0].Month())
	assert.Equal(t, time.March, asc[2].Month())

	desc := GetSortedKeys(m, false)
	assert.Equal(t, time.March, desc[0].Month())
}

func TestMonthlyIntervalsCoversRangeWithoutGaps(t *testing.T) {
	start := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)

	intervals := MonthlyIntervals(start, end)
	assert.Len(t, intervals, 4)
	assert.Equal(t, start, intervals[0].Start)
	assert.Equal(t, end, intervals[len(intervals)-1].End)
	for i := 1; i < len(intervals); i++ {
		assert.Equal(t, intervals[i-1].End, intervals[i].Start)
		assert.Equal(t, 1, intervals[i].Start.Day(), "interior intervals start on the 1st")
	}
}

func TestMonthlyIntervalsSingleMonth(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)

	intervals := MonthlyIntervals(start, end)
	assert.Len(t, intervals, 1)
	assert.Equal(t, start, intervals[0].Start)
	assert.Equal(t, end, intervals[0].End)
}

func TestMonthlyIntervalsEmptyRange(t *testing.T) {
	now := time.Now()
	assert.Empty(t, MonthlyIntervals(now, now))
}
