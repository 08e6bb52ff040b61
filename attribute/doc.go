// Package attribute provides the value types used to describe what a consumer
// requests and what each variant of a component offers.
//
// # Attributes and Containers
//
// An [Attribute] is a named, typed key. A [Container] is an immutable mapping
// from attribute name to value, kept sorted by name so two containers with the
// same entries always render and compare identically:
//
//	format := attribute.Of[string]("format")
//	requested := attribute.With(attribute.Empty(), format, "jar")
//
// Containers are compared attribute by attribute only; there is no ordering
// between whole containers.
//
// # Matching
//
// A [Schema] decides whether a candidate container is compatible with a
// requested one and narrows several compatible candidates down to the preferred
// ones:
//
//   - An attribute missing from the candidate is compatible with anything.
//   - An attribute present on both sides is compared with the rule registered
//     for its name, or by equality when there is none.
//   - Values of different types are never compatible.
//
// Disambiguation applies the registered per-attribute rules first, then
// prefers candidates that provide more of the requested attributes, then
// candidates carrying fewer attributes that were not requested. Rules for
// requested attributes run first, in name order. A rule for an attribute the
// request does not name only ranks the candidates that carry it; candidates
// without the attribute are kept.
package attribute
