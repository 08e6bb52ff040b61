package transform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/albertocavalcante/go-artifactset/artifact"
)

// transformedSet applies a chain of transforms to the artifacts of a source
// variant. Its build dependencies are those of the source.
type transformedSet struct {
	source artifact.ResolvedArtifactSet
	steps  []Transform
}

func (s *transformedSet) CollectBuildDependencies(v artifact.BuildDependenciesVisitor) {
	s.source.CollectBuildDependencies(v)
}

func (s *transformedSet) VisitArtifacts(ctx context.Context, v artifact.ArtifactVisitor) {
	s.source.VisitArtifacts(ctx, &chainVisitor{ctx: ctx, steps: s.steps, next: v})
}

// chainVisitor runs every source artifact through the chain before handing
// the outputs to next. Source failures pass through untouched.
type chainVisitor struct {
	ctx   context.Context
	steps []Transform
	next  artifact.ArtifactVisitor
}

func (c *chainVisitor) VisitArtifact(a artifact.ResolvedArtifact) {
	inputs := []artifact.ResolvedArtifact{a}
	for _, step := range c.steps {
		var outputs []artifact.ResolvedArtifact
		for _, in := range inputs {
			if c.ctx.Err() != nil {
				return
			}
			files, err := step.Action.Apply(c.ctx, in)
			if err != nil {
				c.next.VisitFailure(&artifact.ArtifactResolveError{
					Artifact: in.ID,
					Err:      fmt.Errorf("transform %s: %w", step.Name, err),
				})
				continue
			}
			attrs := in.Attributes.Merge(step.To)
			for _, f := range files {
				outputs = append(outputs, artifact.ResolvedArtifact{
					ID: artifact.ArtifactIdentifier{
						Component: in.ID.Component,
						Name:      filepath.Base(f),
					},
					Attributes: attrs,
					File:       f,
				})
			}
		}
		inputs = outputs
	}
	for _, out := range inputs {
		if c.ctx.Err() != nil {
			return
		}
		c.next.VisitArtifact(out)
	}
}

func (c *chainVisitor) VisitFailure(err error) {
	c.next.VisitFailure(err)
}
