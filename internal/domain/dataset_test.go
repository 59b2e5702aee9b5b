package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLazio = Location{Name: "lazio", Tier: TierRegion}

func testDates() []time.Time {
	return []time.Time{
		time.Date(2020, 2, 24, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 25, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 26, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 27, 18, 0, 0, 0, time.UTC),
	}
}

func TestNewDataset_Valid(t *testing.T) {
	series := map[string][]float64{
		"tamponi":     {10, 20, 30, 40},
		"totale_casi": {1, 2, 3, 4},
	}

	ds, err := NewDataset(testLazio, SingleDay(date(2020, 2, 24)), testDates(), series)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"tamponi", "totale_casi"}, ds.Stats())
	for name, want := range series {
		got, err := ds.Values(name)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
	assert.Equal(t, testDates(), ds.Dates())
}

func TestNewDataset_NoDates(t *testing.T) {
	_, err := NewDataset(testLazio, Interval{}, nil, map[string][]float64{"tamponi": {}})
	assert.True(t, errors.Is(err, ErrNoDates))
}

func TestNewDataset_LengthMismatch(t *testing.T) {
	tests := map[string][]float64{
		"shorter": {1, 2, 3},
		"longer":  {1, 2, 3, 4, 5},
		"empty":   {},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			series := map[string][]float64{
				"tamponi":     {1, 2, 3, 4},
				"totale_casi": values,
			}
			_, err := NewDataset(testLazio, Interval{}, testDates(), series)
			assert.True(t, errors.Is(err, ErrLengthMismatch))
		})
	}
}

func TestNewDataset_EmptyIsValid(t *testing.T) {
	ds, err := NewDataset(testLazio, Interval{}, []time.Time{}, map[string][]float64{"tamponi": {}})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.HasStat("tamponi"))
}

func TestDataset_Set(t *testing.T) {
	ds, err := NewDataset(testLazio, Interval{}, testDates(), nil)
	require.NoError(t, err)
	assert.Empty(t, ds.Stats())

	require.NoError(t, ds.Set("deceduti", []float64{0, 1, 1, 2}))
	assert.True(t, ds.HasStat("deceduti"))

	err = ds.Set("deceduti", []float64{0, 1})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	got, _ := ds.Values("deceduti")
	assert.Equal(t, []float64{0, 1, 1, 2}, got, "failed assignment keeps the old series")

	assert.Error(t, ds.Set(DateField, []float64{1, 2, 3, 4}))
}

func TestDataset_GetData_FiltersByInterval(t *testing.T) {
	dates := []time.Time{
		time.Date(2020, 3, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 5, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 2, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 28, 18, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 3, 18, 0, 0, 0, time.UTC),
	}
	ds, err := NewDataset(testLazio, Interval{}, dates, map[string][]float64{
		"tamponi": {1, 5, 2, -1, 3},
	})
	require.NoError(t, err)

	iv, err := NewInterval(date(2020, 3, 1), date(2020, 3, 3))
	require.NoError(t, err)

	got, err := ds.GetData("tamponi", iv)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1, 2, 3}, got); diff != "" {
		t.Errorf("GetData mismatch (-want +got):\n%s", diff)
	}

	got, err = ds.GetData("tamponi", SingleDay(date(2020, 3, 5)))
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, got)
}

func TestDataset_GetData_UnknownStat(t *testing.T) {
	ds, err := NewDataset(testLazio, Interval{}, testDates(), map[string][]float64{
		"totale_casi": {1, 2, 3, 4},
	})
	require.NoError(t, err)

	_, err = ds.GetData("tamponi", SingleDay(date(2020, 2, 24)))
	var unavailable *StatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "tamponi", unavailable.Stat)
	assert.Equal(t, []string{"totale_casi"}, unavailable.Available)
	assert.Contains(t, err.Error(), "Lazio")
}
