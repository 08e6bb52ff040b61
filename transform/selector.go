package transform

import (
	"slices"
	"strconv"
	"strings"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

type selector struct {
	registry     *Registry
	requested    attribute.Container
	allowNoMatch bool
}

// chain is a path from one candidate variant through zero or more transforms.
type chain struct {
	source int
	steps  []Transform
	result attribute.Container
}

func (c chain) uses(t Transform) bool {
	return slices.ContainsFunc(c.steps, func(s Transform) bool { return s.Name == t.Name })
}

func (c chain) names() string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name
	}
	return strings.Join(names, " -> ")
}

func (s *selector) Select(owner component.Identifier, candidates []artifact.ResolvedVariant) artifact.ResolvedArtifactSet {
	attrs := make([]attribute.Container, len(candidates))
	for i, c := range candidates {
		attrs[i] = c.Attributes
	}

	r := s.registry
	matches := r.schema.Match(s.requested, attrs)
	switch len(matches) {
	case 1:
		return candidates[matches[0]].ArtifactSet()
	case 0:
	default:
		return artifact.Broken(&artifact.AmbiguousVariantError{
			Component: owner,
			Requested: s.requested,
			Matches:   pick(attrs, matches),
		})
	}

	chains := s.findChains(attrs)
	switch len(chains) {
	case 0:
		if s.allowNoMatch {
			return artifact.Empty
		}
		return artifact.Broken(&artifact.NoMatchingVariantError{
			Component:  owner,
			Requested:  s.requested,
			Candidates: attrs,
		})
	case 1:
	default:
		results := make([]attribute.Container, len(chains))
		indexes := make([]int, len(chains))
		for i, c := range chains {
			results[i] = c.result
			indexes[i] = i
		}
		best := r.schema.Disambiguate(s.requested, results, indexes)
		if len(best) != 1 {
			return artifact.Broken(&artifact.AmbiguousVariantError{
				Component: owner,
				Requested: s.requested,
				Matches:   pick(results, best),
			})
		}
		chains = []chain{chains[best[0]]}
	}

	c := chains[0]
	r.logger.Debug("transform chain selected",
		"component", displayName(owner),
		"requested", s.requested.String(),
		"source", candidates[c.source].Name,
		"chain", c.names())
	return &transformedSet{
		source: candidates[c.source].ArtifactSet(),
		steps:  c.steps,
	}
}

// findChains returns the shortest chains whose result is compatible with the
// request. Chains from the same source with the same result are collapsed to
// the first one found.
func (s *selector) findChains(attrs []attribute.Container) []chain {
	r := s.registry
	if len(r.transforms) == 0 || r.maxChainLength == 0 {
		return nil
	}

	frontier := make([]chain, len(attrs))
	for i, a := range attrs {
		frontier[i] = chain{source: i, result: a}
	}

	for depth := 1; depth <= r.maxChainLength && len(frontier) > 0; depth++ {
		var next, found []chain
		seen := make(map[string]bool)
		for _, c := range frontier {
			for _, t := range r.transforms {
				if c.uses(t) || !r.schema.IsCompatible(t.From, c.result) {
					continue
				}
				result := c.result.Merge(t.To)
				if result.Equal(c.result) {
					continue
				}
				key := strconv.Itoa(c.source) + "|" + result.Key()
				if seen[key] {
					continue
				}
				seen[key] = true

				extended := chain{
					source: c.source,
					steps:  append(slices.Clip(c.steps), t),
					result: result,
				}
				if r.schema.IsCompatible(s.requested, result) {
					found = append(found, extended)
				} else {
					next = append(next, extended)
				}
			}
		}
		if len(found) > 0 {
			return found
		}
		frontier = next
	}
	return nil
}

func pick(cs []attribute.Container, indexes []int) []attribute.Container {
	out := make([]attribute.Container, len(indexes))
	for i, idx := range indexes {
		out[i] = cs[idx]
	}
	return out
}

func displayName(id component.Identifier) string {
	if id == nil {
		return "<unknown>"
	}
	return id.DisplayName()
}
