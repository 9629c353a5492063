package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayUsesLocation(t *testing.T) {
	mx, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	// 02:00 UTC on the 12th is still the 11th in Mexico City.
	now := time.Date(2024, time.March, 12, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-12", Format(Today(now, nil)))
	assert.Equal(t, "2024-03-11", Format(Today(now, mx)))
}

func TestDate(t *testing.T) {
	d, ok := Date(2024, time.February, 29)
	assert.True(t, ok)
	assert.Equal(t, "2024-02-29", Format(d))

	_, ok = Date(2023, time.February, 29)
	assert.False(t, ok)

	_, ok = Date(2024, time.April, 31)
	assert.False(t, ok)
}

func TestWeekAndMonthBoundaries(t *testing.T) {
	tests := []struct {
		day   string
		week  string
		month string
		end   string
	}{
		{"2024-03-12", "2024-03-11", "2024-03-01", "2024-03-31"},
		{"2024-03-11", "2024-03-11", "2024-03-01", "2024-03-31"},
		{"2024-03-17", "2024-03-11", "2024-03-01", "2024-03-31"},
		{"2024-03-01", "2024-02-26", "2024-03-01", "2024-03-31"},
		{"2024-02-10", "2024-02-05", "2024-02-01", "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d, err := Parse(tt.day)
			require.NoError(t, err)

			assert.Equal(t, tt.week, Format(StartOfWeek(d)))
			assert.Equal(t, tt.month, Format(StartOfMonth(d)))
			assert.Equal(t, tt.end, Format(EndOfMonth(d)))
		})
	}
}

func TestRange(t *testing.T) {
	from, _ := Parse("2024-03-01")
	to, _ := Parse("2024-03-31")

	r, err := NewRange(from, to)
	require.NoError(t, err)

	assert.True(t, r.Valid())
	assert.Equal(t, 31, r.Days())
	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to.Add(23*time.Hour)))
	assert.False(t, r.Contains(AddDays(to, 1)))

	_, err = NewRange(to, from)
	assert.ErrorIs(t, err, ErrInvalidRange)

	assert.Equal(t, 0, Range{}.Days())
}
