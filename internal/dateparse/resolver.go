// Package dateparse resolves free-form date phrases ("yesterday",
// "24 february 2020", "18/07/2020") relative to an injected clock.
package dateparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	dps "github.com/markusmobius/go-dateparser"
)

// ErrNoDate is returned when a phrase cannot be resolved.
var ErrNoDate = errors.New("no date found")

// Day-first numeric layouts, tried before natural-language parsing so that
// "05/07/2020" is always the 5th of July.
var numericLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
	"02.01.2006",
}

// Resolver adapts go-dateparser to the parse.DateResolver interface.
type Resolver struct {
	parser    *dps.Parser
	languages []string
	clock     clockwork.Clock
}

// New returns a resolver for the given language codes, e.g. "en", "it".
func New(languages []string, clock clockwork.Clock) *Resolver {
	return &Resolver{
		parser:    &dps.Parser{},
		languages: languages,
		clock:     clock,
	}
}

// Resolve returns the date described by text as midnight UTC of the calendar
// day it names in the clock's location.
func (r *Resolver) Resolve(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrNoDate
	}
	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}

	now := r.clock.Now()
	d, err := r.parser.Parse(&dps.Configuration{
		Languages:       r.languages,
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrNoDate, text, err)
	}
	if d.Time.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNoDate, text)
	}
	y, m, day := d.Time.In(now.Location()).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
}
