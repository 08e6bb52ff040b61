package attribute

import (
	"maps"
	"slices"
)

// CompatibilityRule reports whether a candidate value satisfies a requested one.
type CompatibilityRule func(requested, candidate any) bool

// DisambiguationRule picks the preferred values among several compatible
// candidates. requested is nil when the consumer did not ask for the attribute.
// It returns the indexes into candidates to keep; returning nothing keeps all.
type DisambiguationRule func(requested any, candidates []any) []int

// Rule attaches matching policy to one attribute name. Either func may be nil.
type Rule struct {
	Attribute    string
	Compatible   CompatibilityRule
	Disambiguate DisambiguationRule
}

// Schema holds the matching rules for a set of attributes. A Schema is
// immutable once built and safe for concurrent use.
type Schema struct {
	compatible   map[string]CompatibilityRule
	disambiguate map[string]DisambiguationRule
}

// NewSchema builds a schema from rules. Later rules for the same attribute
// replace earlier ones.
func NewSchema(rules ...Rule) *Schema {
	s := &Schema{
		compatible:   make(map[string]CompatibilityRule),
		disambiguate: make(map[string]DisambiguationRule),
	}
	for _, r := range rules {
		if r.Compatible != nil {
			s.compatible[r.Attribute] = r.Compatible
		}
		if r.Disambiguate != nil {
			s.disambiguate[r.Attribute] = r.Disambiguate
		}
	}
	return s
}

// DefaultSchema matches every attribute by equality.
func DefaultSchema() *Schema {
	return NewSchema()
}

// Attributes returns the names that carry at least one rule, sorted.
func (s *Schema) Attributes() []string {
	names := slices.Collect(maps.Keys(s.compatible))
	for name := range s.disambiguate {
		if _, ok := s.compatible[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsCompatible reports whether candidate satisfies every requested attribute
// it carries. Attributes the candidate does not carry are ignored.
func (s *Schema) IsCompatible(requested, candidate Container) bool {
	for _, e := range requested.entries {
		cv, ok := candidate.Lookup(e.name)
		if !ok {
			continue
		}
		if !s.valueCompatible(e.name, e.value, cv) {
			return false
		}
	}
	return true
}

func (s *Schema) valueCompatible(name string, requested, candidate any) bool {
	if requested == candidate {
		return true
	}
	rule, ok := s.compatible[name]
	if !ok {
		return false
	}
	return rule(requested, candidate)
}

// Match returns the indexes of the candidates compatible with requested,
// narrowed to the preferred ones when more than one is compatible. The result
// is in candidate order; more than one index means the match is ambiguous.
func (s *Schema) Match(requested Container, candidates []Container) []int {
	var matches []int
	for i, c := range candidates {
		if s.IsCompatible(requested, c) {
			matches = append(matches, i)
		}
	}
	if len(matches) <= 1 {
		return matches
	}
	return s.Disambiguate(requested, candidates, matches)
}

// Disambiguate narrows the candidates selected by indexes. It never returns an
// empty result for a non-empty input.
func (s *Schema) Disambiguate(requested Container, candidates []Container, indexes []int) []int {
	remaining := slices.Clone(indexes)

	for _, name := range s.disambiguationOrder(requested) {
		if len(remaining) <= 1 {
			return remaining
		}
		rule := s.disambiguate[name]
		var (
			holders []int
			values  []any
		)
		for _, i := range remaining {
			if v, ok := candidates[i].Lookup(name); ok {
				holders = append(holders, i)
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		reqValue, asked := requested.Lookup(name)
		keep := rule(reqValue, values)
		if len(keep) == 0 {
			continue
		}
		narrowed := make([]int, 0, len(remaining))
		for _, k := range keep {
			if k >= 0 && k < len(holders) {
				narrowed = append(narrowed, holders[k])
			}
		}
		// A rule for an attribute nobody asked for only ranks the candidates
		// carrying it.
		if !asked {
			for _, i := range remaining {
				if !candidates[i].Has(name) {
					narrowed = append(narrowed, i)
				}
			}
		}
		if len(narrowed) > 0 {
			slices.Sort(narrowed)
			remaining = slices.Compact(narrowed)
		}
	}

	remaining = keepBest(remaining, func(i int) int {
		provided := 0
		for _, e := range requested.entries {
			if candidates[i].Has(e.name) {
				provided++
			}
		}
		return provided
	})
	return keepBest(remaining, func(i int) int {
		extra := 0
		for _, e := range candidates[i].entries {
			if !requested.Has(e.name) {
				extra++
			}
		}
		return -extra
	})
}

// disambiguationOrder lists requested attributes with a rule first, in name
// order, followed by the remaining ruled attributes.
func (s *Schema) disambiguationOrder(requested Container) []string {
	var order []string
	for _, e := range requested.entries {
		if _, ok := s.disambiguate[e.name]; ok {
			order = append(order, e.name)
		}
	}
	var rest []string
	for name := range s.disambiguate {
		if !requested.Has(name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}

func keepBest(indexes []int, score func(int) int) []int {
	if len(indexes) <= 1 {
		return indexes
	}
	best := score(indexes[0])
	for _, i := range indexes[1:] {
		best = max(best, score(i))
	}
	kept := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if score(i) == best {
			kept = append(kept, i)
		}
	}
	return kept
}
