package attribute

import "github.com/albertocavalcante/go-artifactset/internal/version"

// CompatibleWhen returns a rule accepting a candidate value when fn does.
// Values of any other type than T are rejected.
func CompatibleWhen[T comparable](a Attribute[T], fn func(requested, candidate T) bool) Rule {
	return Rule{
		Attribute: a.name,
		Compatible: func(requested, candidate any) bool {
			r, ok := requested.(T)
			if !ok {
				return false
			}
			c, ok := candidate.(T)
			if !ok {
				return false
			}
			return fn(r, c)
		},
	}
}

// PreferWhen returns a rule keeping the candidate values for which better
// reports no other candidate is preferred. hasRequested is false when the
// consumer did not ask for the attribute.
func PreferWhen[T comparable](a Attribute[T], better func(requested T, hasRequested bool, x, y T) bool) Rule {
	return Rule{
		Attribute: a.name,
		Disambiguate: func(requested any, candidates []any) []int {
			r, hasRequested := requested.(T)
			var keep []int
			for i, cv := range candidates {
				c, ok := cv.(T)
				if !ok {
					continue
				}
				beaten := false
				for j, ov := range candidates {
					o, ok := ov.(T)
					if ok && i != j && better(r, hasRequested, o, c) {
						beaten = true
						break
					}
				}
				if !beaten {
					keep = append(keep, i)
				}
			}
			return keep
		},
	}
}

// Merge combines the compatibility and disambiguation halves of rules for the
// same attribute.
func Merge(rules ...Rule) Rule {
	var merged Rule
	for _, r := range rules {
		merged.Attribute = r.Attribute
		if r.Compatible != nil {
			merged.Compatible = r.Compatible
		}
		if r.Disambiguate != nil {
			merged.Disambiguate = r.Disambiguate
		}
	}
	return merged
}

// VersionRule treats a candidate whose version is not newer than the requested
// one as compatible, and prefers the highest compatible version. It fits
// attributes such as a target runtime version.
func VersionRule(a Attribute[string]) Rule {
	return Merge(
		CompatibleWhen(a, func(requested, candidate string) bool {
			return version.Compare(candidate, requested) <= 0
		}),
		PreferWhen(a, func(_ string, _ bool, x, y string) bool {
			return version.Compare(x, y) > 0
		}),
	)
}
