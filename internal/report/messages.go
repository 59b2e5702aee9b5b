package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/infection-report-service/internal/domain"
)

// Message translates a failure the user can act on into text. It reports
// false for any other error.
func Message(err error) (string, bool) {
	var noData *NoDataError
	if errors.As(err, &noData) {
		return fmt.Sprintf("There is no data for '%s' on %s. Try another date or another place.\n\n"+
			"See /help for more information.", noData.Location.Title(), noData.Interval), true
	}

	var unavailable *domain.StatUnavailableError
	if errors.As(err, &unavailable) {
		labels := make([]string, len(unavailable.Available))
		for i, stat := range unavailable.Available {
			labels[i] = strings.ToLower(domain.StatLabel(stat))
		}
		return fmt.Sprintf("'%s' is not published for %s %s. Available statistics: %s.",
			strings.ToLower(domain.StatLabel(unavailable.Stat)), unavailable.Location.Tier,
			unavailable.Location.Title(), strings.Join(labels, ", ")), true
	}

	return "", false
}
