package artifact

import (
	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

// TaskDependency names a build task that must run before an artifact exists,
// for example ":lib:jar".
type TaskDependency string

// ArtifactIdentifier identifies one artifact of a component.
type ArtifactIdentifier struct {
	Component component.Identifier
	Name      string
}

// String returns "name (component)".
func (id ArtifactIdentifier) String() string {
	if id.Component == nil {
		return id.Name
	}
	return id.Name + " (" + id.Component.DisplayName() + ")"
}

// ResolvedArtifact is an artifact whose file is available.
type ResolvedArtifact struct {
	ID         ArtifactIdentifier
	Attributes attribute.Container
	File       string
}

// BuildDependenciesVisitor receives the tasks required by a set. It may be
// called any number of times, and a failure may arrive between dependencies;
// more dependencies can follow a failure.
type BuildDependenciesVisitor interface {
	VisitDependency(task TaskDependency)
	VisitFailure(err error)
}

// ArtifactVisitor receives one notification per resolved artifact or per
// failure.
type ArtifactVisitor interface {
	VisitArtifact(a ResolvedArtifact)
	VisitFailure(err error)
}
