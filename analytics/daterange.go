// Package analytics reduces fetched restaurant records into dashboard metrics.
//
// Every function here is a pure single pass over its inputs: no I/O, no shared
// state, no errors. Missing numbers count as zero and every ratio is guarded so
// empty input yields zero metrics.
package analytics

import (
	"errors"
	"time"
)

type RangeKey string

const (
	RangeToday     RangeKey = "today"
	RangeYesterday RangeKey = "yesterday"
	RangeWeek      RangeKey = "week"
	RangeMonth     RangeKey = "month"
	RangeYear      RangeKey = "year"
	RangeCustom    RangeKey = "custom"
)

var ErrUnknownRange = errors.New("unknown date range")

// Range is a window of instants. Named ranges are half-open [Start, End).
// Custom ranges keep the caller's End as an inclusive bound.
type Range struct {
	Key       RangeKey
	Start     time.Time
	End       time.Time
	Inclusive bool
}

// Contains reports whether t falls inside r.
func (r Range) Contains(t time.Time) bool {
	if t.Before(r.Start) {
		return false
	}
	if r.Inclusive {
		return !t.After(r.End)
	}
	return t.Before(r.End)
}

// Resolve turns a named key into a calendar window relative to now, in now's location.
// Weeks start on Sunday.
func Resolve(key RangeKey, now time.Time) (Range, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch key {
	case RangeToday:
		return Range{Key: key, Start: today, End: today.AddDate(0, 0, 1)}, nil
	case RangeYesterday:
		return Range{Key: key, Start: today.AddDate(0, 0, -1), End: today}, nil
	case RangeWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return Range{Key: key, Start: start, End: start.AddDate(0, 0, 7)}, nil
	case RangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Key: key, Start: start, End: start.AddDate(0, 1, 0)}, nil
	case RangeYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Range{Key: key, Start: start, End: start.AddDate(1, 0, 0)}, nil
	}
	return Range{}, ErrUnknownRange
}

// Custom passes start and end through unchanged. End is inclusive.
func Custom(start, end time.Time) Range {
	return Range{Key: RangeCustom, Start: start, End: end, Inclusive: true}
}
