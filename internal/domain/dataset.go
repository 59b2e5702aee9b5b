package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateField is the name of the mandatory date column.
const DateField = "data"

// Dataset holds infection statistics for one location and interval as
// parallel arrays aligned by date. Every series has exactly one value per date.
type Dataset struct {
	Location Location
	Interval Interval

	dates  []time.Time
	series map[string][]float64
}

// NewDataset validates that dates are present and that every series has the
// same length as dates. The series slices are kept as given.
func NewDataset(loc Location, interval Interval, dates []time.Time, series map[string][]float64) (*Dataset, error) {
	if dates == nil {
		return nil, ErrNoDates
	}
	d := &Dataset{
		Location: loc,
		Interval: interval,
		dates:    dates,
		series:   make(map[string][]float64, len(series)),
	}
	for name, values := range series {
		if err := d.Set(name, values); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	return len(d.dates)
}

// Dates returns the date array.
func (d *Dataset) Dates() []time.Time {
	return d.dates
}

// Stats returns the available statistic names in alphabetical order.
func (d *Dataset) Stats() []string {
	names := make([]string, 0, len(d.series))
	for name := range d.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasStat reports whether the dataset carries a series for stat.
func (d *Dataset) HasStat(stat string) bool {
	_, ok := d.series[stat]
	return ok
}

// Values returns the full series for stat.
func (d *Dataset) Values(stat string) ([]float64, error) {
	values, ok := d.series[stat]
	if !ok {
		return nil, d.unavailable(stat)
	}
	return values, nil
}

// Set stores values under stat. The length must match the date array.
func (d *Dataset) Set(stat string, values []float64) error {
	if stat == DateField {
		return fmt.Errorf("series name %q is reserved for dates", DateField)
	}
	if len(values) != len(d.dates) {
		return fmt.Errorf("%w: %q has %d values, dataset has %d dates",
			ErrLengthMismatch, stat, len(values), len(d.dates))
	}
	d.series[stat] = values
	return nil
}

// GetData returns the values of stat whose dates fall inside interval,
// in their original order.
func (d *Dataset) GetData(stat string, interval Interval) ([]float64, error) {
	values, err := d.Values(stat)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(values))
	for i, date := range d.dates {
		if interval.Contains(date) {
			out = append(out, values[i])
		}
	}
	return out, nil
}

func (d *Dataset) unavailable(stat string) *StatUnavailableError {
	return &StatUnavailableError{Stat: stat, Location: d.Location, Available: d.Stats()}
}
