// Package component provides identities for resolved graph nodes and the
// dependency coordinates that point at them.
//
// All identifier types are comparable values: two identifiers are the same
// node exactly when they are ==, including when held in an [Identifier]
// interface. Constructors validate their input; zero values are invalid.
package component

import (
	"fmt"
	"regexp"
	"strings"
)

// Identifier identifies a resolved node in the dependency graph.
type Identifier interface {
	// DisplayName returns a human-readable form used in diagnostics.
	DisplayName() string
	String() string
}

// coordinate parts must match: [A-Za-z0-9_]([A-Za-z0-9._-]*)
var coordinateRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._+-]*$`)

// project paths must match: :segment(:segment)* or a lone ":" for the root
var projectPathRegex = regexp.MustCompile(`^:$|^(:[A-Za-z0-9_][A-Za-z0-9._-]*)+$`)

// ModuleIdentifier identifies a published module version.
type ModuleIdentifier struct {
	Group   string
	Module  string
	Version string
}

// NewModule returns a validated module identifier.
func NewModule(group, module, version string) (ModuleIdentifier, error) {
	for _, part := range []struct{ kind, value string }{
		{"group", group}, {"module", module}, {"version", version},
	} {
		if part.value == "" {
			return ModuleIdentifier{}, fmt.Errorf("module %s cannot be empty", part.kind)
		}
		if !coordinateRegex.MatchString(part.value) {
			return ModuleIdentifier{}, fmt.Errorf("invalid module %s %q", part.kind, part.value)
		}
	}
	return ModuleIdentifier{Group: group, Module: module, Version: version}, nil
}

// DisplayName returns group:module:version.
func (m ModuleIdentifier) DisplayName() string {
	return m.Group + ":" + m.Module + ":" + m.Version
}

func (m ModuleIdentifier) String() string { return m.DisplayName() }

// ProjectIdentifier identifies a project of the current build.
type ProjectIdentifier struct {
	Path string
}

// NewProject returns a validated project identifier such as ":lib" or ":".
func NewProject(path string) (ProjectIdentifier, error) {
	if !projectPathRegex.MatchString(path) {
		return ProjectIdentifier{}, fmt.Errorf("invalid project path %q: must look like :a:b", path)
	}
	return ProjectIdentifier{Path: path}, nil
}

// DisplayName returns "project :path".
func (p ProjectIdentifier) DisplayName() string {
	return "project " + p.Path
}

func (p ProjectIdentifier) String() string { return p.DisplayName() }

// OpaqueIdentifier identifies a node with no structure beyond its name, such
// as a local file collection.
type OpaqueIdentifier struct {
	Name string
}

// DisplayName returns the name.
func (o OpaqueIdentifier) DisplayName() string {
	return o.Name
}

func (o OpaqueIdentifier) String() string { return o.Name }

// Parse reads an identifier written as ":path" (project), "group:module:version"
// (module), or anything else non-empty (opaque).
func Parse(s string) (Identifier, error) {
	switch {
	case s == "":
		return nil, fmt.Errorf("component identifier cannot be empty")
	case strings.HasPrefix(s, ":"):
		p, err := NewProject(s)
		if err != nil {
			return nil, err
		}
		return p, nil
	case strings.Count(s, ":") == 2:
		parts := strings.Split(s, ":")
		m, err := NewModule(parts[0], parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		return m, nil
	case strings.Contains(s, ":"):
		return nil, fmt.Errorf("invalid component identifier %q: want group:module:version or :path", s)
	default:
		return OpaqueIdentifier{Name: s}, nil
	}
}

// MustParse is like Parse but panics on error. Use only for constants/tests.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}
