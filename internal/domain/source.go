package domain

import "context"

// DatasetSource downloads the statistics of a location over an interval.
type DatasetSource interface {
	// Download fetches and filters the upstream table. It returns an error
	// wrapping ErrDataUnavailable when the table does not exist for the
	// location's tier and the interval.
	Download(ctx context.Context, loc Location, interval Interval) (*Dataset, error)
}
