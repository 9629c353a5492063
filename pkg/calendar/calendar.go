// Package calendar works with civil dates: a day on the calendar with no
// time of day. Dates are represented as time.Time at midnight UTC so they
// compare and serialize predictably regardless of the reporting timezone.
package calendar

import (
	"errors"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidRange = errors.New("range start is after range end")

// Day returns the calendar day of t as observed in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// Date builds a civil date and reports whether the components name a real day.
func Date(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func AddDays(d time.Time, n int) time.Time {
	return Day(d).AddDate(0, 0, n)
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d time.Time) time.Time {
	d = Day(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func EndOfMonth(d time.Time) time.Time {
	return StartOfMonth(d).AddDate(0, 1, -1)
}

func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

func Format(d time.Time) string {
	return Day(d).Format(Layout)
}

// Range is an inclusive span of calendar days.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func NewRange(from, to time.Time) (Range, error) {
	r := Range{From: Day(from), To: Day(to)}
	if r.From.After(r.To) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

func (r Range) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Days counts the days in the range, both ends included.
func (r Range) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.To.Sub(r.From).Hours()/24) + 1
}
