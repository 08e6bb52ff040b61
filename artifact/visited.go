package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

// SelectedArtifactSet is one narrowed request against a resolution.
type SelectedArtifactSet interface {
	// CollectBuildDependencies reports the unresolved-dependency failure, if
	// any, then the tasks of every selected artifact. It never returns early.
	CollectBuildDependencies(v BuildDependenciesVisitor)

	// VisitArtifacts reports the selected artifacts to v. Data failures go to
	// v; the returned error is reserved for usage errors.
	VisitArtifacts(ctx context.Context, v ArtifactVisitor) error
}

// VisitedArtifactSet is the handle to one graph resolution's outcome.
type VisitedArtifactSet interface {
	Select(dependencyFilter DependencyFilter, requested attribute.Container, componentFilter ComponentFilter, allowNoMatchingVariant bool) SelectedArtifactSet
}

// Kind tells which operations the selections of a Visited set support.
type Kind int

const (
	// BuildDependenciesOnly selections can only collect build dependencies.
	BuildDependenciesOnly Kind = iota
	// ArtifactsResolved selections can also visit artifacts.
	ArtifactsResolved
)

func (k Kind) String() string {
	switch k {
	case BuildDependenciesOnly:
		return "build-dependencies-only"
	case ArtifactsResolved:
		return "artifacts-resolved"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Results gathers what graph resolution hands to this package.
type Results struct {
	// Configuration identifies the resolved configuration in failures.
	Configuration fmt.Stringer
	Unresolved    []component.UnresolvedDependency
	Artifacts     ArtifactResults
	Files         ArtifactResults
}

// Option configures a Visited set.
type Option func(*options)

type options struct {
	logger           *slog.Logger
	filterUnresolved bool
}

// WithLogger sets the logger for selection diagnostics. Without it the set
// is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithUnresolvedFiltering controls whether the dependency filter passed to
// Select narrows the unresolved dependencies reported by the selection. It is
// on by default.
func WithUnresolvedFiltering(enabled bool) Option {
	return func(o *options) {
		o.filterUnresolved = enabled
	}
}

// Visited is a VisitedArtifactSet over immutable resolution results.
type Visited struct {
	kind          Kind
	configuration string
	unresolved    []component.UnresolvedDependency
	artifacts     ArtifactResults
	files         ArtifactResults
	selectors     SelectorFactory
	opts          options
}

var (
	_ VisitedArtifactSet  = (*Visited)(nil)
	_ SelectedArtifactSet = (*BuildDependenciesOnlySelection)(nil)
	_ SelectedArtifactSet = (*ResolvedSelection)(nil)
)

// NewBuildDependenciesOnly returns a set whose selections answer which tasks
// must run, without ever resolving artifact files.
func NewBuildDependenciesOnly(res Results, selectors SelectorFactory, opts ...Option) *Visited {
	return newVisited(BuildDependenciesOnly, res, selectors, opts)
}

// NewResolved returns a set whose selections also visit artifacts.
func NewResolved(res Results, selectors SelectorFactory, opts ...Option) *Visited {
	return newVisited(ArtifactsResolved, res, selectors, opts)
}

func newVisited(kind Kind, res Results, selectors SelectorFactory, opts []Option) *Visited {
	o := options{filterUnresolved: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	v := &Visited{
		kind:       kind,
		unresolved: slices.Clone(res.Unresolved),
		artifacts:  res.Artifacts,
		files:      res.Files,
		selectors:  selectors,
		opts:       o,
	}
	if res.Configuration != nil {
		v.configuration = res.Configuration.String()
	}
	if v.artifacts == nil {
		v.artifacts = noResults{}
	}
	if v.files == nil {
		v.files = noResults{}
	}
	return v
}

// Kind returns the kind of selections this set produces.
func (v *Visited) Kind() Kind {
	return v.kind
}

// Select narrows the resolution to one request. It performs no I/O and cannot
// fail; selection failures surface when artifacts are visited.
//
// dependencyFilter narrows the unresolved dependencies that the selection
// reports, unless disabled with WithUnresolvedFiltering(false).
func (v *Visited) Select(dependencyFilter DependencyFilter, requested attribute.Container, componentFilter ComponentFilter, allowNoMatchingVariant bool) SelectedArtifactSet {
	selector := v.selectors.VariantSelector(requested, allowNoMatchingVariant)
	s := selection{
		configuration: v.configuration,
		unresolved:    v.unresolvedFor(dependencyFilter),
		artifacts:     v.artifacts.Select(componentFilter, selector).Artifacts,
		files:         v.files.Select(componentFilter, selector).Artifacts,
		logger:        v.opts.logger,
	}
	v.opts.logger.Debug("selected artifacts",
		"configuration", v.configuration,
		"kind", v.kind.String(),
		"requested", requested.String(),
		"allowNoMatchingVariant", allowNoMatchingVariant,
		"unresolved", len(s.unresolved))
	if v.kind == BuildDependenciesOnly {
		return &BuildDependenciesOnlySelection{selection: s}
	}
	return &ResolvedSelection{selection: s}
}

func (v *Visited) unresolvedFor(filter DependencyFilter) []component.UnresolvedDependency {
	if filter == nil || !v.opts.filterUnresolved {
		return v.unresolved
	}
	var kept []component.UnresolvedDependency
	for _, u := range v.unresolved {
		if filter(u.Dependency) {
			kept = append(kept, u)
		}
	}
	return kept
}

type selection struct {
	configuration string
	unresolved    []component.UnresolvedDependency
	artifacts     ResolvedArtifactSet
	files         ResolvedArtifactSet
	logger        *slog.Logger
}

// failure builds the aggregate failure for the unresolved dependencies, or
// returns nil when there are none.
func (s *selection) failure() error {
	if len(s.unresolved) == 0 {
		return nil
	}
	causes := make([]error, len(s.unresolved))
	for i, u := range s.unresolved {
		causes[i] = &UnresolvedDependencyError{Dependency: u.Dependency, Err: u.Problem}
	}
	s.logger.Debug("reporting unresolved dependencies",
		"configuration", s.configuration,
		"count", len(causes))
	return &ResolveError{Configuration: s.configuration, Causes: causes}
}

// CollectBuildDependencies reports the aggregate unresolved failure, if any,
// then the tasks of the selected artifacts and files.
func (s *selection) CollectBuildDependencies(v BuildDependenciesVisitor) {
	if err := s.failure(); err != nil {
		v.VisitFailure(err)
	}
	s.artifacts.CollectBuildDependencies(v)
	s.files.CollectBuildDependencies(v)
}

// BuildDependenciesOnlySelection can tell which tasks must run but cannot
// visit artifacts: the files were never resolved for it.
type BuildDependenciesOnlySelection struct {
	selection
}

// VisitArtifacts always returns a *UsageError wrapping ErrArtifactsNotResolved
// and never calls v.
func (s *BuildDependenciesOnlySelection) VisitArtifacts(context.Context, ArtifactVisitor) error {
	s.logger.Error("artifacts visited on a build-dependencies-only selection",
		"configuration", s.configuration)
	return &UsageError{Op: "VisitArtifacts", Err: ErrArtifactsNotResolved}
}

// ResolvedSelection supports both operations.
type ResolvedSelection struct {
	selection
}

// VisitArtifacts reports the aggregate unresolved failure first, if any, then
// the selected artifacts and files. It always returns nil.
func (s *ResolvedSelection) VisitArtifacts(ctx context.Context, v ArtifactVisitor) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := s.failure(); err != nil {
		v.VisitFailure(err)
	}
	Composite(s.artifacts, s.files).VisitArtifacts(ctx, v)
	return nil
}

type noResults struct{}

func (noResults) Select(ComponentFilter, VariantSelector) SelectedArtifactResults {
	return SelectedArtifactResults{Artifacts: Empty}
}
