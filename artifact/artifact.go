package artifact

import (
	"context"
	"slices"
)

// ResolvableArtifact is an artifact whose file may still need resolving.
type ResolvableArtifact interface {
	ID() ArtifactIdentifier
	// BuildDependencies returns the tasks producing the artifact. It must not
	// resolve the file.
	BuildDependencies() []TaskDependency
	// File resolves the artifact file. It may block on external I/O.
	File(ctx context.Context) (string, error)
}

// Resolver materializes artifact files, for example by downloading them or
// looking them up in a cache.
type Resolver interface {
	ResolveArtifact(ctx context.Context, id ArtifactIdentifier) (string, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(ctx context.Context, id ArtifactIdentifier) (string, error)

// ResolveArtifact calls f(ctx, id).
func (f ResolverFunc) ResolveArtifact(ctx context.Context, id ArtifactIdentifier) (string, error) {
	return f(ctx, id)
}

// Artifact is the standard ResolvableArtifact. Its file is Path, unless a
// Resolver is set.
type Artifact struct {
	Identifier ArtifactIdentifier
	Path       string
	BuiltBy    []TaskDependency
	Resolver   Resolver
}

// ID returns the artifact identifier.
func (a *Artifact) ID() ArtifactIdentifier {
	return a.Identifier
}

// BuildDependencies returns a copy of BuiltBy.
func (a *Artifact) BuildDependencies() []TaskDependency {
	return slices.Clone(a.BuiltBy)
}

// File returns Path, or asks the Resolver when one is set.
func (a *Artifact) File(ctx context.Context) (string, error) {
	if a.Resolver != nil {
		return a.Resolver.ResolveArtifact(ctx, a.Identifier)
	}
	if a.Path == "" {
		return "", ErrNoFile
	}
	return a.Path, nil
}
