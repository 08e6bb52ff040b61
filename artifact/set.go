package artifact

import (
	"context"
	"slices"

	"github.com/albertocavalcante/go-artifactset/attribute"
)

// ResolvedArtifactSet is a lazy set of artifacts.
type ResolvedArtifactSet interface {
	// CollectBuildDependencies reports the tasks producing the artifacts. It
	// never resolves files and is safe to call repeatedly.
	CollectBuildDependencies(v BuildDependenciesVisitor)

	// VisitArtifacts resolves the artifacts and reports each one, or its
	// failure, to v. The order is stable across calls on the same set. It
	// stops issuing callbacks once ctx is done.
	VisitArtifacts(ctx context.Context, v ArtifactVisitor)
}

// Empty is the set without artifacts.
var Empty ResolvedArtifactSet = emptySet{}

type emptySet struct{}

func (emptySet) CollectBuildDependencies(BuildDependenciesVisitor) {}
func (emptySet) VisitArtifacts(context.Context, ArtifactVisitor)   {}

// Composite returns a set forwarding both operations to every member, in
// order. Nested composites are flattened and empty members dropped.
func Composite(sets ...ResolvedArtifactSet) ResolvedArtifactSet {
	var members []ResolvedArtifactSet
	for _, s := range sets {
		switch s := s.(type) {
		case nil, emptySet:
		case *compositeSet:
			members = append(members, s.members...)
		default:
			members = append(members, s)
		}
	}
	switch len(members) {
	case 0:
		return Empty
	case 1:
		return members[0]
	}
	return &compositeSet{members: members}
}

type compositeSet struct {
	members []ResolvedArtifactSet
}

func (c *compositeSet) CollectBuildDependencies(v BuildDependenciesVisitor) {
	for _, m := range c.members {
		m.CollectBuildDependencies(v)
	}
}

func (c *compositeSet) VisitArtifacts(ctx context.Context, v ArtifactVisitor) {
	for _, m := range c.members {
		if ctx.Err() != nil {
			return
		}
		m.VisitArtifacts(ctx, v)
	}
}

// Broken returns a set that has no build dependencies and reports err once
// each time its artifacts are visited. It defers a selection failure until
// the artifacts are actually needed.
func Broken(err error) ResolvedArtifactSet {
	return brokenSet{err: err}
}

type brokenSet struct {
	err error
}

func (brokenSet) CollectBuildDependencies(BuildDependenciesVisitor) {}

func (b brokenSet) VisitArtifacts(ctx context.Context, v ArtifactVisitor) {
	if ctx.Err() != nil {
		return
	}
	v.VisitFailure(b.err)
}

// NewArtifactSet returns a set of artifacts that all carry the given variant
// attributes.
func NewArtifactSet(attributes attribute.Container, artifacts ...ResolvableArtifact) ResolvedArtifactSet {
	if len(artifacts) == 0 {
		return Empty
	}
	return &artifactSet{attributes: attributes, artifacts: slices.Clone(artifacts)}
}

type artifactSet struct {
	attributes attribute.Container
	artifacts  []ResolvableArtifact
}

func (s *artifactSet) CollectBuildDependencies(v BuildDependenciesVisitor) {
	for _, a := range s.artifacts {
		for _, task := range a.BuildDependencies() {
			v.VisitDependency(task)
		}
	}
}

func (s *artifactSet) VisitArtifacts(ctx context.Context, v ArtifactVisitor) {
	for _, a := range s.artifacts {
		if ctx.Err() != nil {
			return
		}
		file, err := a.File(ctx)
		if err != nil {
			v.VisitFailure(&ArtifactResolveError{Artifact: a.ID(), Err: err})
			continue
		}
		v.VisitArtifact(ResolvedArtifact{ID: a.ID(), Attributes: s.attributes, File: file})
	}
}

// NewTaskSet returns a set without artifacts that reports the given tasks as
// build dependencies.
func NewTaskSet(tasks ...TaskDependency) ResolvedArtifactSet {
	if len(tasks) == 0 {
		return Empty
	}
	return taskSet(slices.Clone(tasks))
}

type taskSet []TaskDependency

func (t taskSet) CollectBuildDependencies(v BuildDependenciesVisitor) {
	for _, task := range t {
		v.VisitDependency(task)
	}
}

func (taskSet) VisitArtifacts(context.Context, ArtifactVisitor) {}
