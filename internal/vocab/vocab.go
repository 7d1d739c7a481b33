package vocab

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Canonical institution categories as they appear in the published ranking.
const (
	CategoryPublic  = "Public"
	CategoryPrivate = "Privé"
)

//go:embed cities.yaml specialties.yaml institutions.yaml
var dataFS embed.FS

// City is one entry of the coordinate table used for distance search.
// Names are not unique: homonyms are told apart by department.
type City struct {
	Name       string  `yaml:"name"`
	Department string  `yaml:"department"`
	Lat        float64 `yaml:"lat"`
	Lon        float64 `yaml:"lon"`
}

// Specialty is one ranked medical specialty, with the informal aliases
// users reach for ("cardio", "maternité").
type Specialty struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Institution is one establishment of the published ranking.
type Institution struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	City     string `yaml:"city"`
}

// Vocab holds the controlled vocabularies every validator resolves against.
// Loaded once from the embedded YAML files; immutable afterwards.
type Vocab struct {
	cities       []City
	specialties  []Specialty
	institutions []Institution

	cityIndex map[string][]City
	specIndex map[string]string
	instIndex map[string]Institution
}

var (
	loadOnce sync.Once
	loaded   *Vocab
	loadErr  error
)

// Load parses the embedded vocabularies. Safe for concurrent use; the
// parse runs once. An error here is a deployment defect and should abort
// startup.
func Load() (*Vocab, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse()
	})
	return loaded, loadErr
}

func parse() (*Vocab, error) {
	v := &Vocab{
		cityIndex: make(map[string][]City),
		specIndex: make(map[string]string),
		instIndex: make(map[string]Institution),
	}

	if err := readYAML("cities.yaml", &v.cities); err != nil {
		return nil, err
	}
	if err := readYAML("specialties.yaml", &v.specialties); err != nil {
		return nil, err
	}
	if err := readYAML("institutions.yaml", &v.institutions); err != nil {
		return nil, err
	}

	for _, c := range v.cities {
		key := Fold(c.Name)
		v.cityIndex[key] = append(v.cityIndex[key], c)
	}
	for _, s := range v.specialties {
		v.specIndex[Fold(s.Name)] = s.Name
		for _, alias := range s.Aliases {
			v.specIndex[Fold(alias)] = s.Name
		}
	}
	for _, inst := range v.institutions {
		if inst.Category != CategoryPublic && inst.Category != CategoryPrivate {
			return nil, fmt.Errorf("institutions.yaml: %q has unknown category %q", inst.Name, inst.Category)
		}
		v.instIndex[Fold(inst.Name)] = inst
	}

	return v, nil
}

func readYAML[T any](name string, out *[]T) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if len(*out) == 0 {
		return fmt.Errorf("parse %s: no entries", name)
	}
	return nil
}

// Cities returns the full coordinate table.
func (v *Vocab) Cities() []City { return v.cities }

// FindCities returns every city whose folded name matches, in file order.
// More than one entry means the name is ambiguous (homonym departments).
func (v *Vocab) FindCities(name string) []City {
	return v.cityIndex[Fold(name)]
}

// CityLabel renders a city unambiguously: the plain name, or
// "Name (Department)" when the name has homonyms.
func (v *Vocab) CityLabel(c City) string {
	if len(v.cityIndex[Fold(c.Name)]) > 1 {
		return fmt.Sprintf("%s (%s)", c.Name, c.Department)
	}
	return c.Name
}

// CityByLabel resolves a location label back to a coordinate entry. It
// accepts both plain unique names and the "Name (Department)" form
// produced by CityLabel. Ambiguous plain names resolve to nothing.
func (v *Vocab) CityByLabel(label string) (City, bool) {
	name, dept := label, ""
	if i := strings.LastIndex(label, " ("); i > 0 && strings.HasSuffix(label, ")") {
		name, dept = label[:i], label[i+2:len(label)-1]
	}
	matches := v.FindCities(name)
	if dept != "" {
		for _, c := range matches {
			if Fold(c.Department) == Fold(dept) {
				return c, true
			}
		}
		return City{}, false
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return City{}, false
}

// Specialties returns the ranked specialty list.
func (v *Vocab) Specialties() []Specialty { return v.specialties }

// CanonicalSpecialty resolves a name or alias to the canonical specialty.
func (v *Vocab) CanonicalSpecialty(name string) (string, bool) {
	s, ok := v.specIndex[Fold(name)]
	return s, ok
}

// Institutions returns the ranked establishment list.
func (v *Vocab) Institutions() []Institution { return v.institutions }

// FindInstitution resolves an establishment by exact folded name.
func (v *Vocab) FindInstitution(name string) (Institution, bool) {
	inst, ok := v.instIndex[Fold(name)]
	return inst, ok
}

// categoryVariants maps the spellings users type to the canonical category.
var categoryVariants = map[string]string{
	"public":              CategoryPublic,
	"publique":            CategoryPublic,
	"publics":             CategoryPublic,
	"hopital":             CategoryPublic,
	"hopital public":      CategoryPublic,
	"chu":                 CategoryPublic,
	"prive":               CategoryPrivate,
	"privee":              CategoryPrivate,
	"prives":              CategoryPrivate,
	"clinique":            CategoryPrivate,
	"clinique privee":     CategoryPrivate,
	"hopital prive":       CategoryPrivate,
	"etablissement prive": CategoryPrivate,
}

// NormalizeCategory maps a free-text category mention to Public/Privé.
func NormalizeCategory(s string) (string, bool) {
	c, ok := categoryVariants[Fold(s)]
	return c, ok
}
