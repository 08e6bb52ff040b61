package artifact

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

// ArtifactTypeAttribute is derived from a local file's extension unless the
// file dependency declares it.
var ArtifactTypeAttribute = attribute.Of[string]("artifactType")

// ComponentFilter selects components. A nil filter selects every component.
type ComponentFilter func(component.Identifier) bool

// DependencyFilter selects declared dependencies. A nil filter selects every
// dependency.
type DependencyFilter func(component.Dependency) bool

// ResolvedVariant is one alternative set of artifacts a component exposes.
type ResolvedVariant struct {
	Name       string
	Attributes attribute.Container
	Artifacts  []ResolvableArtifact
}

// ArtifactSet returns the variant's artifacts as a lazy set.
func (v ResolvedVariant) ArtifactSet() ResolvedArtifactSet {
	return NewArtifactSet(v.Attributes, v.Artifacts...)
}

// VariantSelector picks the artifacts of one component for a fixed request.
// Select must not fail: a selection problem is returned as a Broken set.
type VariantSelector interface {
	Select(owner component.Identifier, candidates []ResolvedVariant) ResolvedArtifactSet
}

// SelectorFactory returns the selector for one (requested attributes,
// allowNoMatchingVariant) request.
type SelectorFactory interface {
	VariantSelector(requested attribute.Container, allowNoMatchingVariant bool) VariantSelector
}

// SelectedArtifactResults is the outcome of narrowing a results table.
type SelectedArtifactResults struct {
	Artifacts ResolvedArtifactSet
}

// ArtifactResults is a read-only table produced by graph resolution.
type ArtifactResults interface {
	Select(filter ComponentFilter, selector VariantSelector) SelectedArtifactResults
}

// ComponentVariants lists the candidate variants of one resolved component.
type ComponentVariants struct {
	ID       component.Identifier
	Variants []ResolvedVariant
}

// VisitedArtifactsResults holds the candidate variants of every resolved
// component, in graph traversal order.
type VisitedArtifactsResults struct {
	components []ComponentVariants
}

// NewVisitedArtifactsResults copies components into a new table.
func NewVisitedArtifactsResults(components []ComponentVariants) *VisitedArtifactsResults {
	copied := make([]ComponentVariants, len(components))
	for i, c := range components {
		variants := make([]ResolvedVariant, len(c.Variants))
		for j, v := range c.Variants {
			v.Artifacts = slices.Clone(v.Artifacts)
			variants[j] = v
		}
		copied[i] = ComponentVariants{ID: c.ID, Variants: variants}
	}
	return &VisitedArtifactsResults{components: copied}
}

// Len returns the number of components.
func (r *VisitedArtifactsResults) Len() int {
	return len(r.components)
}

// Select applies filter and selector to every component, keeping traversal
// order.
func (r *VisitedArtifactsResults) Select(filter ComponentFilter, selector VariantSelector) SelectedArtifactResults {
	sets := make([]ResolvedArtifactSet, 0, len(r.components))
	for _, c := range r.components {
		if filter != nil && !filter(c.ID) {
			continue
		}
		sets = append(sets, selector.Select(c.ID, c.Variants))
	}
	return SelectedArtifactResults{Artifacts: Composite(sets...)}
}

// FileDependency is a dependency resolved straight to local files.
type FileDependency struct {
	// ID identifies the file collection. A nil ID is never filtered out.
	ID         component.Identifier
	Files      []string
	Attributes attribute.Container
	BuiltBy    []TaskDependency
}

// VisitedFileDependencyResults holds the local file dependencies of a
// resolution, in declaration order.
type VisitedFileDependencyResults struct {
	deps []FileDependency
}

// NewVisitedFileDependencyResults copies deps into a new table.
func NewVisitedFileDependencyResults(deps []FileDependency) *VisitedFileDependencyResults {
	copied := make([]FileDependency, len(deps))
	for i, d := range deps {
		d.Files = slices.Clone(d.Files)
		d.BuiltBy = slices.Clone(d.BuiltBy)
		copied[i] = d
	}
	return &VisitedFileDependencyResults{deps: copied}
}

// Len returns the number of file dependencies.
func (r *VisitedFileDependencyResults) Len() int {
	return len(r.deps)
}

// Select offers each file to selector as a single-variant candidate. The
// producing tasks of a file dependency are reported once, whatever the
// selector picks.
func (r *VisitedFileDependencyResults) Select(filter ComponentFilter, selector VariantSelector) SelectedArtifactResults {
	sets := make([]ResolvedArtifactSet, 0, len(r.deps))
	for _, d := range r.deps {
		if d.ID != nil && filter != nil && !filter(d.ID) {
			continue
		}
		files := make([]ResolvedArtifactSet, 0, len(d.Files))
		for _, f := range d.Files {
			owner := d.ID
			if owner == nil {
				owner = component.OpaqueIdentifier{Name: f}
			}
			variant := ResolvedVariant{
				Name:       filepath.Base(f),
				Attributes: fileAttributes(d.Attributes, f),
				Artifacts: []ResolvableArtifact{&Artifact{
					Identifier: ArtifactIdentifier{Component: owner, Name: filepath.Base(f)},
					Path:       f,
				}},
			}
			files = append(files, selector.Select(owner, []ResolvedVariant{variant}))
		}
		sets = append(sets, &fileDependencySet{
			tasks:    NewTaskSet(d.BuiltBy...),
			selected: Composite(files...),
		})
	}
	return SelectedArtifactResults{Artifacts: Composite(sets...)}
}

func fileAttributes(declared attribute.Container, file string) attribute.Container {
	if declared.Has(ArtifactTypeAttribute.Name()) {
		return declared
	}
	ext := strings.TrimPrefix(filepath.Ext(file), ".")
	if ext == "" {
		return declared
	}
	return attribute.With(declared, ArtifactTypeAttribute, ext)
}

type fileDependencySet struct {
	tasks    ResolvedArtifactSet
	selected ResolvedArtifactSet
}

func (s *fileDependencySet) CollectBuildDependencies(v BuildDependenciesVisitor) {
	s.tasks.CollectBuildDependencies(v)
	s.selected.CollectBuildDependencies(v)
}

func (s *fileDependencySet) VisitArtifacts(ctx context.Context, v ArtifactVisitor) {
	s.selected.VisitArtifacts(ctx, v)
}
