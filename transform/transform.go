package transform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
)

// Action produces the output files of one transform step for one input
// artifact.
type Action interface {
	Apply(ctx context.Context, in artifact.ResolvedArtifact) ([]string, error)
}

// ActionFunc adapts a function to Action.
type ActionFunc func(ctx context.Context, in artifact.ResolvedArtifact) ([]string, error)

// Apply calls f.
func (f ActionFunc) Apply(ctx context.Context, in artifact.ResolvedArtifact) ([]string, error) {
	return f(ctx, in)
}

// Transform converts artifacts carrying From attributes into artifacts
// carrying To attributes. To is merged over the input attributes, so only the
// attributes that change need to be listed.
type Transform struct {
	Name   string
	From   attribute.Container
	To     attribute.Container
	Action Action
}

func (t Transform) String() string {
	return fmt.Sprintf("%s %s -> %s", t.Name, t.From, t.To)
}

func (t Transform) validate() error {
	if t.Name == "" {
		return errors.New("transform name is empty")
	}
	if t.Action == nil {
		return fmt.Errorf("transform %q has no action", t.Name)
	}
	if t.To.IsEmpty() {
		return fmt.Errorf("transform %q produces no attributes", t.Name)
	}
	return nil
}

// RenameAction returns an action that maps each input file to a sibling
// path with suffix appended. It performs no I/O; callers that need the output
// to exist should wrap it.
func RenameAction(suffix string) Action {
	return ActionFunc(func(_ context.Context, in artifact.ResolvedArtifact) ([]string, error) {
		if in.File == "" {
			return nil, errors.New("input artifact has no file")
		}
		base := strings.TrimSuffix(in.File, filepath.Ext(in.File))
		return []string{base + suffix}, nil
	})
}
