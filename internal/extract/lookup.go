package extract

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lookup.yaml
var defaultLookupYAML []byte

// LookupTable holds the closed name lists used as matching fallbacks. They
// change with the market, not with the extraction algorithm, so they live
// in data.
type LookupTable struct {
	Insurers            []string `yaml:"insurers"`
	TPAs                []string `yaml:"tpas"`
	PlanTypes           []string `yaml:"plan_types"`
	CoverageTypes       []string `yaml:"coverage_types"`
	DiscountLabels      []string `yaml:"discount_labels"`
	RegistrationLabels  []string `yaml:"registration_labels"`
	MiscellaneousLabels []string `yaml:"miscellaneous_labels"`
}

var defaultLookup = sync.OnceValues(func() (*LookupTable, error) {
	return ParseLookupTable(defaultLookupYAML)
})

// DefaultLookupTable returns a copy of the embedded table.
func DefaultLookupTable() *LookupTable {
	t, err := defaultLookup()
	if err != nil {
		panic(fmt.Sprintf("embedded lookup table: %v", err))
	}
	return t.clone()
}

// LoadLookupTable reads a YAML table from path. Sections missing from the
// file keep their embedded defaults. An empty path returns the defaults.
func LoadLookupTable(path string) (*LookupTable, error) {
	if path == "" {
		return DefaultLookupTable(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup table: %w", err)
	}
	t, err := ParseLookupTable(b)
	if err != nil {
		return nil, err
	}
	return t.withDefaults(DefaultLookupTable()), nil
}

func ParseLookupTable(b []byte) (*LookupTable, error) {
	var t LookupTable
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse lookup table: %w", err)
	}
	for _, list := range [][]string{t.Insurers, t.TPAs, t.PlanTypes, t.CoverageTypes, t.DiscountLabels, t.RegistrationLabels, t.MiscellaneousLabels} {
		for _, name := range list {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("parse lookup table: empty entry")
			}
		}
	}
	return &t, nil
}

func (t *LookupTable) withDefaults(d *LookupTable) *LookupTable {
	pick := func(v, def []string) []string {
		if len(v) == 0 {
			return def
		}
		return v
	}
	return &LookupTable{
		Insurers:            pick(t.Insurers, d.Insurers),
		TPAs:                pick(t.TPAs, d.TPAs),
		PlanTypes:           pick(t.PlanTypes, d.PlanTypes),
		CoverageTypes:       pick(t.CoverageTypes, d.CoverageTypes),
		DiscountLabels:      pick(t.DiscountLabels, d.DiscountLabels),
		RegistrationLabels:  pick(t.RegistrationLabels, d.RegistrationLabels),
		MiscellaneousLabels: pick(t.MiscellaneousLabels, d.MiscellaneousLabels),
	}
}

func (t *LookupTable) clone() *LookupTable {
	cp := func(s []string) []string { return append([]string(nil), s...) }
	return &LookupTable{
		Insurers:            cp(t.Insurers),
		TPAs:                cp(t.TPAs),
		PlanTypes:           cp(t.PlanTypes),
		CoverageTypes:       cp(t.CoverageTypes),
		DiscountLabels:      cp(t.DiscountLabels),
		RegistrationLabels:  cp(t.RegistrationLabels),
		MiscellaneousLabels: cp(t.MiscellaneousLabels),
	}
}

var nameSeparators = regexp.MustCompile(`[\s-]+`)

// namePattern turns a table entry into a pattern fragment.
func namePattern(name string) string {
	words := nameSeparators.Split(strings.TrimSpace(name), -1)
	for i, w := range words {
		optionalDot := strings.HasSuffix(w, ".")
		w = regexp.QuoteMeta(strings.TrimSuffix(w, "."))
		if optionalDot {
			w += `\.?`
		}
		words[i] = w
	}
	return strings.Join(words, `[\s-]*`)
}

// alternation joins entries, keeping table order.
func alternation(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = namePattern(n)
	}
	return `(?:` + strings.Join(parts, "|") + `)`
}
