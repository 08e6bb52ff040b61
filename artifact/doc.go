// Package artifact selects artifacts out of an already resolved dependency
// graph and answers two questions about the selection separately:
//
//   - which build tasks must run before the artifacts exist
//     ([ResolvedArtifactSet.CollectBuildDependencies]), and
//   - what the artifact files actually are
//     ([ResolvedArtifactSet.VisitArtifacts]).
//
// # Lazy Sets
//
// A [ResolvedArtifactSet] is a lazy value. Building one never touches the file
// system or downloads anything; only visiting its artifacts does. Collecting
// build dependencies is CPU-only, idempotent and never reports data failures
// other than the aggregate unresolved-dependency failure of a selection.
//
// Sets compose: [Composite] forwards both operations to every member in a
// stable order, and a failing member never stops its siblings from being
// visited. Failures reach the caller through the visitor, never as a return
// value.
//
// # Visited and Selected Sets
//
// Graph resolution produces two read-only tables, [VisitedArtifactsResults]
// (component variants) and [VisitedFileDependencyResults] (local files). A
// [Visited] artifact set binds them with the unresolved dependencies of the
// resolution. Calling [Visited.Select] narrows it to one request:
//
//	visited := artifact.NewBuildDependenciesOnly(results, selectors)
//	selected := visited.Select(nil, requested, nil, false)
//	selected.CollectBuildDependencies(visitor)
//
// Select is pure and cannot fail; variant-matching problems surface only when
// artifacts are visited.
//
// A build-dependencies-only selection cannot visit artifacts: its
// VisitArtifacts returns a [*UsageError] wrapping [ErrArtifactsNotResolved].
// That is the only error ever returned synchronously by this package.
//
// # Thread Safety
//
// Tables, sets and selections are immutable after construction and safe for
// concurrent use. Visitors are called on the caller's goroutine.
package artifact
