package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
)

// DateResolver resolves a natural-language date phrase.
type DateResolver interface {
	Resolve(text string) (time.Time, error)
}

type dateConverter struct {
	resolver DateResolver
}

func (c dateConverter) Convert(text string) (time.Time, error) {
	t, err := c.resolver.Resolve(strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, &ConversionError{Kind: KindField, Text: text, Err: err}
	}
	return t, nil
}

func (dateConverter) RenderError(failure *ConversionError, _ string) string {
	return fmt.Sprintf("I don't recognise '%s' as a valid date. Try simple words like 'today' or "+
		"'yesterday', or write the date in full as in '18 July 2020'.\n\nSee /help for more information.",
		strings.TrimSpace(failure.Text))
}

type locationConverter struct {
	ref *domain.Reference
}

func (c locationConverter) Convert(text string) (domain.Location, error) {
	loc, ok := c.ref.Locate(text)
	if !ok {
		return domain.Location{}, &ConversionError{Kind: KindField, Text: text}
	}
	return loc, nil
}

func (c locationConverter) RenderError(_ *ConversionError, text string) string {
	country := domain.Location{Name: c.ref.Country(), Tier: domain.TierCountry}
	return fmt.Sprintf("I don't recognise '%s' as a valid place. Try the name of a province, of a region "+
		"or '%s'.\n\nSee /help for more information.", strings.TrimSpace(text), country.Title())
}

type statConverter struct {
	ref *domain.Reference
}

func (c statConverter) Convert(text string) (string, error) {
	name := strings.Join(strings.Fields(strings.ToLower(text)), "_")
	if !c.ref.IsStat(name) {
		return "", &ConversionError{Kind: KindField, Text: text}
	}
	return name, nil
}

func (statConverter) RenderError(_ *ConversionError, text string) string {
	return fmt.Sprintf("I don't recognise '%s' as a valid statistic.", strings.TrimSpace(text))
}
