package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataUnavailable means the upstream table does not exist for the
	// requested tier and date.
	ErrDataUnavailable = errors.New("data unavailable")

	ErrReversedInterval = errors.New("interval start is after its end")
	ErrNoDates          = errors.New("dataset has no associated dates")
	ErrLengthMismatch   = errors.New("dataset series lengths are inconsistent")
)

// StatUnavailableError reports a statistic missing from a dataset, together
// with the statistics the dataset does provide.
type StatUnavailableError struct {
	Stat      string
	Location  Location
	Available []string
}

func (e *StatUnavailableError) Error() string {
	return fmt.Sprintf("statistic %q not available for %s (%s); available: %s",
		e.Stat, e.Location, e.Location.Tier, strings.Join(e.Available, ", "))
}
