package domain

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Interval is an inclusive range of calendar days. Start is the first instant
// of its day and End the last second of its day, both in UTC.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an Interval spanning the calendar days of start and end.
// Only the calendar date of each argument matters; the start and end are not
// reordered, a start day after the end day is rejected with ErrReversedInterval.
func NewInterval(start, end time.Time) (Interval, error) {
	s := startOfDay(start)
	e := startOfDay(end)
	if s.After(e) {
		return Interval{}, fmt.Errorf("%w: %s after %s", ErrReversedInterval,
			s.Format(DisplayDateLayout), e.Format(DisplayDateLayout))
	}
	return Interval{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Second)}, nil
}

// SingleDay returns the one-day interval containing date.
func SingleDay(date time.Time) Interval {
	s := startOfDay(date)
	return Interval{Start: s, End: s.AddDate(0, 0, 1).Add(-time.Second)}
}

// Length is the elapsed time between Start and End.
func (i Interval) Length() time.Duration {
	return i.End.Sub(i.Start)
}

// IsSingleDay reports whether the interval covers a single calendar day.
func (i Interval) IsSingleDay() bool {
	return i.Length() < day
}

// Contains reports whether t falls inside the interval, both ends included.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Days is the number of calendar days covered.
func (i Interval) Days() int {
	return int(i.Length()/day) + 1
}

func (i Interval) String() string {
	if i.IsSingleDay() {
		return i.Start.Format(DisplayDateLayout)
	}
	return i.Start.Format(DisplayDateLayout) + " - " + i.End.Format(DisplayDateLayout)
}

// startOfDay keeps the calendar date as seen in t's own location and
// rebuilds it at midnight UTC, so dates from different sources compare equal.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
