package artifact

import (
	"context"
	"errors"
	"sync"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

// recorder implements both visitors and keeps every notification in order.
type recorder struct {
	mu        sync.Mutex
	events    []string
	tasks     []TaskDependency
	artifacts []ResolvedArtifact
	failures  []error
}

func (r *recorder) VisitDependency(task TaskDependency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	r.events = append(r.events, "task "+string(task))
}

func (r *recorder) VisitArtifact(a ResolvedArtifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, a)
	r.events = append(r.events, "artifact "+a.ID.String())
}

func (r *recorder) VisitFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
	r.events = append(r.events, "failure "+err.Error())
}

func (r *recorder) files() []string {
	files := make([]string, len(r.artifacts))
	for i, a := range r.artifacts {
		files[i] = a.File
	}
	return files
}

// schemaSelectors is a minimal SelectorFactory: direct attribute matching,
// no transforms.
type schemaSelectors struct {
	schema *attribute.Schema
}

func (f schemaSelectors) VariantSelector(requested attribute.Container, allowNoMatch bool) VariantSelector {
	return schemaSelector{schema: f.schema, requested: requested, allowNoMatch: allowNoMatch}
}

type schemaSelector struct {
	schema       *attribute.Schema
	requested    attribute.Container
	allowNoMatch bool
}

func (s schemaSelector) Select(owner component.Identifier, candidates []ResolvedVariant) ResolvedArtifactSet {
	attrs := make([]attribute.Container, len(candidates))
	for i, c := range candidates {
		attrs[i] = c.Attributes
	}
	switch matches := s.schema.Match(s.requested, attrs); len(matches) {
	case 1:
		return candidates[matches[0]].ArtifactSet()
	case 0:
		if s.allowNoMatch {
			return Empty
		}
		return Broken(&NoMatchingVariantError{Component: owner, Requested: s.requested, Candidates: attrs})
	default:
		return Broken(&AmbiguousVariantError{Component: owner, Requested: s.requested})
	}
}

func defaultSelectors() SelectorFactory {
	return schemaSelectors{schema: attribute.DefaultSchema()}
}

type configName string

func (c configName) String() string { return string(c) }

func jar(id component.Identifier, name string, tasks ...TaskDependency) *Artifact {
	return &Artifact{
		Identifier: ArtifactIdentifier{Component: id, Name: name},
		Path:       "/repo/" + name,
		BuiltBy:    tasks,
	}
}

func failing(id component.Identifier, name string, err error) *Artifact {
	return &Artifact{
		Identifier: ArtifactIdentifier{Component: id, Name: name},
		Resolver: ResolverFunc(func(context.Context, ArtifactIdentifier) (string, error) {
			return "", err
		}),
	}
}

func jarVariant(artifacts ...ResolvableArtifact) ResolvedVariant {
	return ResolvedVariant{
		Name:       "jar",
		Attributes: attribute.Strings(map[string]string{"format": "jar"}),
		Artifacts:  artifacts,
	}
}

var errNetwork = errors.New("network timeout")
