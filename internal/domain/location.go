package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the administrative level of a place.
type Tier int

const (
	TierCountry Tier = iota + 1
	TierRegion
	TierProvince
)

func (t Tier) String() string {
	switch t {
	case TierCountry:
		return "country"
	case TierRegion:
		return "region"
	case TierProvince:
		return "province"
	default:
		return "unknown"
	}
}

// Location is a canonical place name together with its tier.
// Name is always lower-case and alias-resolved.
type Location struct {
	Name string
	Tier Tier
}

// NewLocation builds a Location, normalizing the name to lower case.
func NewLocation(name string, tier Tier) Location {
	return Location{Name: NormalizeName(name), Tier: tier}
}

// Title renders the name for display, upper-casing the first letter after
// every separator: "emilia-romagna" -> "Emilia-Romagna",
// "valle d'aosta" -> "Valle D'Aosta", "p.a. bolzano" -> "P.A. Bolzano".
func (l Location) Title() string {
	// A Caser keeps state between calls and must not be shared.
	caser := cases.Title(language.Italian)

	var b strings.Builder
	start := 0
	for i, r := range l.Name {
		if !isNameSeparator(r) {
			continue
		}
		b.WriteString(caser.String(l.Name[start:i]))
		b.WriteRune(r)
		start = i + utf8.RuneLen(r)
	}
	b.WriteString(caser.String(l.Name[start:]))
	return b.String()
}

func isNameSeparator(r rune) bool {
	switch r {
	case ' ', '-', '\'', '’', '.':
		return true
	}
	return false
}

func (l Location) String() string {
	return l.Title()
}

// NormalizeName lower-cases a place name and collapses surrounding blanks.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ResolveAlias maps an alternate spelling to its canonical name.
// Names without an alias are returned unchanged.
func ResolveAlias(name string, aliases map[string]string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}
