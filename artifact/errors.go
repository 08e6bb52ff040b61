package artifact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

var (
	// ErrArtifactsNotResolved is returned when artifacts are visited on a
	// selection restricted to build dependencies.
	ErrArtifactsNotResolved = errors.New("artifacts have not been resolved")

	// ErrNoFile indicates an artifact that has neither a path nor a resolver.
	ErrNoFile = errors.New("artifact has no file")
)

// UsageError reports a call that the receiver does not support. It signals a
// programming mistake by the caller, not a resolution problem.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return "artifact: " + e.Op + ": " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ResolveError aggregates every failure of one configuration. Each cause is
// kept as is, in order.
type ResolveError struct {
	Configuration string
	Causes        []error
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("could not resolve all dependencies for configuration '%s'", e.Configuration)
	if len(e.Causes) == 1 {
		return msg + ": " + e.Causes[0].Error()
	}
	return fmt.Sprintf("%s: %d failures", msg, len(e.Causes))
}

// Unwrap returns the causes so errors.Is and errors.As can reach each of them.
func (e *ResolveError) Unwrap() []error {
	return e.Causes
}

// UnresolvedDependencyError is the cause recorded for one unresolved dependency.
type UnresolvedDependencyError struct {
	Dependency component.Dependency
	Err        error
}

func (e *UnresolvedDependencyError) Error() string {
	if e.Err == nil {
		return "could not resolve " + e.Dependency.String()
	}
	return "could not resolve " + e.Dependency.String() + ": " + e.Err.Error()
}

func (e *UnresolvedDependencyError) Unwrap() error {
	return e.Err
}

// NoMatchingVariantError reports that no variant of a component, and no
// transform chain, satisfies the requested attributes.
type NoMatchingVariantError struct {
	Component  component.Identifier
	Requested  attribute.Container
	Candidates []attribute.Container
}

func (e *NoMatchingVariantError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no variants of %s match %s: component has no variants", displayName(e.Component), e.Requested)
	}
	return fmt.Sprintf("no variants of %s match %s; candidates: %s",
		displayName(e.Component), e.Requested, joinContainers(e.Candidates))
}

// AmbiguousVariantError reports several equally preferred matches.
type AmbiguousVariantError struct {
	Component component.Identifier
	Requested attribute.Container
	Matches   []attribute.Container
}

func (e *AmbiguousVariantError) Error() string {
	return fmt.Sprintf("more than one variant of %s matches %s: %s",
		displayName(e.Component), e.Requested, joinContainers(e.Matches))
}

// ArtifactResolveError reports an artifact whose file could not be resolved.
type ArtifactResolveError struct {
	Artifact ArtifactIdentifier
	Err      error
}

func (e *ArtifactResolveError) Error() string {
	return "could not resolve artifact " + e.Artifact.String() + ": " + e.Err.Error()
}

func (e *ArtifactResolveError) Unwrap() error {
	return e.Err
}

func displayName(id component.Identifier) string {
	if id == nil {
		return "<unknown>"
	}
	return id.DisplayName()
}

func joinContainers(cs []attribute.Container) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
