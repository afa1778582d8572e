package utils

import (
	"sort"
	"time"
)

func SortDates(dates []time.Time, asc bool) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		if asc {
			return dates[i].Before(dates[j])
		}
		return dates[i].After(dates[j])
	})
	return dates
}

func GetSortedKeys[T any](m map[time.Time]T, asc bool) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return SortDates(keys, asc)
}

// Interval is a half-open [Start, End) time window.
type Interval struct {
	Start time.Time
	End   time.Time
}

// MonthlyIntervals splits [start, end] into calendar-month windows. The first
// window starts at start, the last ends at end; both may be partial months.
func MonthlyIntervals(start, end time.Time) []Interval {
	var intervals []Interval
	cursor := start
	for cursor.Before(end) {
		next := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, cursor.Location()).AddDate(0, 1, 0)
		if next.After(end) {
			next = end
		}
		intervals = append(intervals, Interval{Start: cursor, End: next})
		cursor = next
	}
	return intervals
}
