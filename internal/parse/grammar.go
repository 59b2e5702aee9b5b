package parse

import (
	"regexp"
	"strings"
)

// Request grammar. Changing any of these changes what users can type.
const (
	LocationPattern = `[a-z][a-z \-']*?`
	DatePattern     = `(?:[0-9]+[a-z0-9 \-\\/]+?(?:[0-9]{2,4})?|[a-z' ]+?)`
	IntervalPattern = DatePattern + `\s?-\s?` + DatePattern
	StatPattern     = `[a-z ]+`

	// DefaultDate is substituted when a report request has no date.
	DefaultDate = "today"
)

var (
	reportRequest = regexp.MustCompile(`(?i)^(` + LocationPattern + `)(?:,\s?(` + DatePattern + `))?$`)
	trendRequest  = regexp.MustCompile(`(?i)^(` + StatPattern + `)(?:,\s?(` + LocationPattern + `))?(?:,\s?(` + IntervalPattern + `))?$`)
	intervalField = regexp.MustCompile(`(?i)^\s*(` + DatePattern + `)\s?-\s?(` + DatePattern + `)\s*$`)
)

func splitReport(text string) ([]string, bool) {
	m := reportRequest.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, false
	}
	date := m[2]
	if date == "" {
		date = DefaultDate
	}
	return []string{m[1], date}, true
}

func trendSplitter(country, epidemicStart string) Splitter {
	return func(text string) ([]string, bool) {
		m := trendRequest.FindStringSubmatch(strings.TrimSpace(text))
		if m == nil {
			return nil, false
		}
		location, interval := m[2], m[3]
		if location == "" {
			location = country
		}
		if interval == "" {
			interval = epidemicStart + " - " + DefaultDate
		}
		return []string{m[1], location, interval}, true
	}
}

func splitInterval(text string) ([]string, bool) {
	m := intervalField.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return []string{m[1], m[2]}, true
}
