// Package artifactset assembles the lazily resolved artifacts of one
// dependency configuration.
//
// Graph resolution produces, for a configuration, the candidate variants of
// every resolved component, the local file dependencies, and the dependencies
// that could not be resolved. New turns that outcome into a visited artifact
// set that can be narrowed by requested attributes and then asked two separate
// questions:
//
//   - which tasks must run before the artifacts exist (CollectBuildDependencies),
//   - which files the artifacts are (VisitArtifacts).
//
// The first question never resolves files and never fails: problems are
// reported to the visitor. The second one is only available when the set is
// built with WithArtifactsResolved.
//
// # Quick Start
//
//	set, err := artifactset.New(artifactset.Resolution{
//		Configuration: artifactset.Configuration{Project: ":app", Name: "compile"},
//		Components:    components,
//		Unresolved:    unresolved,
//	})
//	if err != nil {
//		return err
//	}
//	selected := set.Select(nil, attribute.Strings(map[string]string{"format": "jar"}), nil, false)
//	selected.CollectBuildDependencies(visitor)
//
// Snapshots of a resolution can be loaded with the snapshot package, and
// visitor output rendered with the report package.
//
// # Thread Safety
//
// Visited and selected sets are immutable and safe for concurrent use.
package artifactset

import (
	"fmt"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/component"
	"github.com/albertocavalcante/go-artifactset/transform"
)

// Configuration identifies a resolved dependency configuration.
type Configuration struct {
	// Project is the owning project path, such as ":app". It may be empty.
	Project string
	Name    string
}

// String returns the qualified configuration name, e.g. ":app:compile".
func (c Configuration) String() string {
	switch c.Project {
	case "":
		return c.Name
	case ":":
		return ":" + c.Name
	default:
		return c.Project + ":" + c.Name
	}
}

// Resolution is the outcome of resolving one configuration's dependency graph.
type Resolution struct {
	Configuration Configuration
	// Components are the resolved components in graph traversal order.
	Components []artifact.ComponentVariants
	Files      []artifact.FileDependency
	Unresolved []component.UnresolvedDependency
	// Transforms bridge requested attributes no variant carries directly.
	Transforms []transform.Transform
}

// Validate reports structural problems that would make selection meaningless.
func (r Resolution) Validate() error {
	if r.Configuration.Name == "" {
		return fmt.Errorf("%w: configuration name is empty", ErrInvalidResolution)
	}
	seen := make(map[component.Identifier]bool, len(r.Components))
	for i, c := range r.Components {
		if c.ID == nil {
			return fmt.Errorf("%w: component %d has no identifier", ErrInvalidResolution, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: component %s listed twice", ErrInvalidResolution, c.ID.DisplayName())
		}
		seen[c.ID] = true
	}
	for _, u := range r.Unresolved {
		if u.Problem == nil {
			return fmt.Errorf("%w: unresolved dependency %s has no cause", ErrInvalidResolution, u.Dependency)
		}
	}
	return nil
}

// New returns the visited artifact set of res.
//
// By default the set only supports collecting build dependencies; pass
// WithArtifactsResolved(true) for a set whose selections can visit artifacts.
func New(res Resolution, opts ...Option) (*artifact.Visited, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	registry, err := transform.NewRegistry(cfg.schema, res.Transforms,
		transform.WithCacheSize(cfg.selectorCacheSize),
		transform.WithMaxChainLength(cfg.maxTransformChain),
		transform.WithLogger(cfg.log()),
	)
	if err != nil {
		return nil, fmt.Errorf("build transform registry: %w", err)
	}

	results := artifact.Results{
		Configuration: res.Configuration,
		Unresolved:    res.Unresolved,
		Artifacts:     artifact.NewVisitedArtifactsResults(res.Components),
		Files:         artifact.NewVisitedFileDependencyResults(res.Files),
	}
	setOpts := []artifact.Option{
		artifact.WithLogger(cfg.log()),
		artifact.WithUnresolvedFiltering(cfg.dependencyFilterApplied),
	}

	kind := artifact.BuildDependenciesOnly
	if cfg.artifactsResolved {
		kind = artifact.ArtifactsResolved
	}
	cfg.log().Debug("visited artifact set assembled",
		"configuration", res.Configuration.String(),
		"kind", kind.String(),
		"components", len(res.Components),
		"files", len(res.Files),
		"unresolved", len(res.Unresolved),
		"transforms", len(res.Transforms))

	if cfg.artifactsResolved {
		return artifact.NewResolved(results, registry, setOpts...), nil
	}
	return artifact.NewBuildDependenciesOnly(results, registry, setOpts...), nil
}
