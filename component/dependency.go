package component

import (
	"fmt"
	"strings"
)

// Dependency is a declared reference to a component. Version may be empty
// when the declaration leaves it to a constraint elsewhere.
type Dependency struct {
	Group   string
	Name    string
	Version string
}

// ParseDependency reads "group:name" or "group:name:version".
func ParseDependency(s string) (Dependency, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Dependency{}, fmt.Errorf("invalid dependency %q: want group:name[:version]", s)
	}
	d := Dependency{Group: parts[0], Name: parts[1]}
	if len(parts) == 3 {
		d.Version = parts[2]
	}
	if d.Group == "" || d.Name == "" {
		return Dependency{}, fmt.Errorf("invalid dependency %q: group and name are required", s)
	}
	return d, nil
}

// String returns group:name[:version].
func (d Dependency) String() string {
	if d.Version == "" {
		return d.Group + ":" + d.Name
	}
	return d.Group + ":" + d.Name + ":" + d.Version
}

// Matches reports whether id is a module with the same group and name, and the
// same version when d pins one.
func (d Dependency) Matches(id Identifier) bool {
	m, ok := id.(ModuleIdentifier)
	if !ok {
		return false
	}
	return m.Group == d.Group && m.Module == d.Name && (d.Version == "" || d.Version == m.Version)
}

// UnresolvedDependency is a dependency that graph resolution could not
// resolve, together with the reason.
type UnresolvedDependency struct {
	Dependency Dependency
	Problem    error
}

func (u UnresolvedDependency) String() string {
	if u.Problem == nil {
		return u.Dependency.String()
	}
	return u.Dependency.String() + ": " + u.Problem.Error()
}
