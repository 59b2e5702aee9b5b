package domain

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	locationsFile = "locations.yaml"
	statsFile     = "stats.yaml"
)

//go:embed assets/locations.yaml assets/stats.yaml
var assets embed.FS

// Reference is the read-only registry of places and statistics. It is loaded
// once at start-up and shared by the parsers and the dataset source.
type Reference struct {
	country       string
	regions       map[string]struct{}
	provinces     map[string]struct{}
	aliases       map[string]string
	stats         map[string]string
	epidemicStart string
}

type locationsDoc struct {
	Country   string            `yaml:"country"`
	Regions   []string          `yaml:"regions"`
	Provinces []string          `yaml:"provinces"`
	Aliases   map[string]string `yaml:"aliases"`
}

type statsDoc struct {
	EpidemicStart string            `yaml:"epidemic_start"`
	Fields        map[string]string `yaml:"fields"`
}

// DefaultReference loads the reference documents bundled with the binary.
func DefaultReference() (*Reference, error) {
	locations, err := assets.ReadFile("assets/" + locationsFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s: %w", locationsFile, err)
	}
	stats, err := assets.ReadFile("assets/" + statsFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s: %w", statsFile, err)
	}
	return LoadReference(locations, stats)
}

// LoadReferenceDir loads locations.yaml and stats.yaml from dir.
func LoadReferenceDir(dir string) (*Reference, error) {
	locations, err := os.ReadFile(filepath.Join(dir, locationsFile))
	if err != nil {
		return nil, err
	}
	stats, err := os.ReadFile(filepath.Join(dir, statsFile))
	if err != nil {
		return nil, err
	}
	return LoadReference(locations, stats)
}

// LoadReference parses and validates the two reference documents.
func LoadReference(locations, stats []byte) (*Reference, error) {
	var ld locationsDoc
	if err := yaml.Unmarshal(locations, &ld); err != nil {
		return nil, fmt.Errorf("parse %s: %w", locationsFile, err)
	}
	var sd statsDoc
	if err := yaml.Unmarshal(stats, &sd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", statsFile, err)
	}

	r := &Reference{
		country:       NormalizeName(ld.Country),
		regions:       toSet(ld.Regions),
		provinces:     toSet(ld.Provinces),
		aliases:       make(map[string]string, len(ld.Aliases)),
		stats:         make(map[string]string, len(sd.Fields)),
		epidemicStart: sd.EpidemicStart,
	}
	for alias, name := range ld.Aliases {
		r.aliases[NormalizeName(alias)] = NormalizeName(name)
	}
	for field, desc := range sd.Fields {
		r.stats[field] = desc
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reference) validate() error {
	var errs []error
	if r.country == "" {
		errs = append(errs, errors.New("country is required"))
	}
	if len(r.regions) == 0 {
		errs = append(errs, errors.New("regions are required"))
	}
	if len(r.provinces) == 0 {
		errs = append(errs, errors.New("provinces are required"))
	}
	if len(r.stats) == 0 {
		errs = append(errs, errors.New("at least one statistic field is required"))
	}
	if _, ok := r.stats[DateField]; ok {
		errs = append(errs, fmt.Errorf("%q is the date column, not a statistic", DateField))
	}
	if r.epidemicStart == "" {
		errs = append(errs, errors.New("epidemic_start is required"))
	}
	for name := range r.regions {
		if _, ok := r.provinces[name]; ok {
			errs = append(errs, fmt.Errorf("%q is both a region and a province", name))
		}
		if name == r.country {
			errs = append(errs, fmt.Errorf("%q is both the country and a region", name))
		}
	}
	if _, ok := r.provinces[r.country]; ok {
		errs = append(errs, fmt.Errorf("%q is both the country and a province", r.country))
	}
	for alias, name := range r.aliases {
		if r.isCanonical(alias) {
			errs = append(errs, fmt.Errorf("alias %q shadows a canonical name", alias))
		}
		if !r.isCanonical(name) {
			errs = append(errs, fmt.Errorf("alias %q points to unknown place %q", alias, name))
		}
	}
	return errors.Join(errs...)
}

func (r *Reference) isCanonical(name string) bool {
	if name == r.country {
		return true
	}
	if _, ok := r.regions[name]; ok {
		return true
	}
	_, ok := r.provinces[name]
	return ok
}

// Country is the canonical country name.
func (r *Reference) Country() string { return r.country }

// EpidemicStart is the date phrase the trend history starts from.
func (r *Reference) EpidemicStart() string { return r.epidemicStart }

// Resolve applies the alias table to a normalized name.
func (r *Reference) Resolve(name string) string {
	return ResolveAlias(NormalizeName(name), r.aliases)
}

// Locate resolves aliases and classifies name into a tier.
func (r *Reference) Locate(name string) (Location, bool) {
	name = r.Resolve(name)
	switch {
	case name == r.country:
		return Location{Name: name, Tier: TierCountry}, true
	case contains(r.regions, name):
		return Location{Name: name, Tier: TierRegion}, true
	case contains(r.provinces, name):
		return Location{Name: name, Tier: TierProvince}, true
	default:
		return Location{}, false
	}
}

// IsStat reports whether field is a known statistic column.
func (r *Reference) IsStat(field string) bool {
	_, ok := r.stats[field]
	return ok
}

// StatDescription returns the human description of a statistic.
func (r *Reference) StatDescription(field string) string {
	return r.stats[field]
}

// StatNames returns all known statistic fields, sorted.
func (r *Reference) StatNames() []string {
	return sortedKeys(r.stats)
}

// Regions returns the region names, sorted.
func (r *Reference) Regions() []string {
	return sortedKeys(r.regions)
}

// Provinces returns the province names, sorted.
func (r *Reference) Provinces() []string {
	return sortedKeys(r.provinces)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[NormalizeName(n)] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
