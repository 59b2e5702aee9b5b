package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewInterval_NormalizesToDayBoundaries(t *testing.T) {
	start := time.Date(2020, 2, 24, 18, 30, 0, 0, time.UTC)
	end := time.Date(2020, 3, 1, 9, 0, 0, 0, time.UTC)

	iv, err := NewInterval(start, end)
	require.NoError(t, err)

	assert.Equal(t, date(2020, 2, 24), iv.Start)
	assert.Equal(t, time.Date(2020, 3, 1, 23, 59, 59, 0, time.UTC), iv.End)
	assert.Equal(t, 7, iv.Days())
	assert.False(t, iv.IsSingleDay())
}

func TestNewInterval_SameDayIsSingleDay(t *testing.T) {
	d := time.Date(2020, 4, 10, 15, 0, 0, 0, time.UTC)

	iv, err := NewInterval(d, d)
	require.NoError(t, err)

	assert.True(t, iv.IsSingleDay())
	assert.Equal(t, 24*time.Hour-time.Second, iv.Length())
	assert.Equal(t, 1, iv.Days())
	assert.Equal(t, iv, SingleDay(d))
}

func TestNewInterval_Reversed(t *testing.T) {
	_, err := NewInterval(date(2020, 3, 2), date(2020, 3, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReversedInterval))
}

func TestInterval_ContainsBothEnds(t *testing.T) {
	pairs := [][2]time.Time{
		{date(2020, 2, 24), date(2020, 2, 24)},
		{date(2020, 2, 24), date(2020, 2, 25)},
		{date(2020, 2, 24), date(2021, 7, 1)},
		{date(2019, 12, 31), date(2020, 1, 1)},
	}
	for _, p := range pairs {
		iv, err := NewInterval(p[0], p[1])
		require.NoError(t, err)

		assert.True(t, iv.Contains(p[0]), "start %s", p[0])
		assert.True(t, iv.Contains(p[1]), "end %s", p[1])
		assert.True(t, iv.Contains(p[1].Add(18*time.Hour)), "evening of the end day")
		assert.False(t, iv.Contains(p[0].Add(-time.Second)))
		assert.False(t, iv.Contains(p[1].AddDate(0, 0, 1)))

		if p[1].Sub(p[0]) >= 24*time.Hour {
			assert.False(t, iv.IsSingleDay())
		} else {
			assert.True(t, iv.IsSingleDay())
		}
	}
}

func TestInterval_CalendarDayFromOwnLocation(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	// 00:30 in Rome is still the previous day in UTC.
	d := time.Date(2020, 3, 10, 0, 30, 0, 0, rome)

	iv := SingleDay(d)
	assert.Equal(t, date(2020, 3, 10), iv.Start)
}

func TestInterval_String(t *testing.T) {
	iv, err := NewInterval(date(2020, 2, 24), date(2020, 3, 1))
	require.NoError(t, err)

	assert.Equal(t, "24/02/2020 - 01/03/2020", iv.String())
	assert.Equal(t, "24/02/2020", SingleDay(date(2020, 2, 24)).String())
}
