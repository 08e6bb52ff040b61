// Package transform chooses the variant of a component that satisfies a
// requested set of attributes, bridging incompatible variants with chains of
// registered artifact transforms.
//
// A Registry is the selector factory handed to artifact.NewResolved and
// artifact.NewBuildDependenciesOnly:
//
//	reg, err := transform.NewRegistry(attribute.DefaultSchema(), []transform.Transform{{
//		Name:   "unzip",
//		From:   attribute.Strings(map[string]string{"format": "jar"}),
//		To:     attribute.Strings(map[string]string{"format": "classes"}),
//		Action: unzip,
//	}})
//
// When exactly one candidate variant is compatible with the request it is
// used as is. Otherwise the registry searches breadth-first for the shortest
// chain of transforms leading from a candidate to a compatible set of
// attributes. Selection never fails synchronously: ambiguity and mismatches
// are returned as artifact.Broken sets and reported when artifacts are
// visited.
//
// Selectors are cached per (requested attributes, allowNoMatchingVariant)
// pair; a Registry is safe for concurrent use.
package transform
