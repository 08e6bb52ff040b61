package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bazelbuild/buildtools/build"

	artifactset "github.com/albertocavalcante/go-artifactset"
	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
	"github.com/albertocavalcante/go-artifactset/internal/buildutil"
	"github.com/albertocavalcante/go-artifactset/transform"
)

// Options controls how a snapshot is loaded.
type Options struct {
	// BaseDir anchors relative artifact paths. ParseFile defaults it to the
	// snapshot's directory.
	BaseDir string
	// VerifyFiles makes visiting a component artifact fail when its file does
	// not exist. Local files() paths are never checked.
	VerifyFiles bool
}

// Position locates a statement or argument in a snapshot file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Filename != "" {
		return e.Pos.Filename + ": " + e.Message
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// Result contains the loaded resolution and any diagnostics.
type Result struct {
	Resolution artifactset.Resolution
	Errors     []*ParseError
	Warnings   []*ParseError
}

// HasErrors returns true if there were parse errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err joins the parse errors, or returns nil when there are none.
func (r *Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// ParseFile reads and parses a snapshot file from disk.
func ParseFile(filename string, opts Options) (*Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(filename)
	}
	return ParseContent(filename, data, opts)
}

// ParseContent parses snapshot content from bytes. The returned error is
// reserved for syntax errors; semantic problems are listed in the result.
func ParseContent(filename string, content []byte, opts Options) (*Result, error) {
	raw, err := build.ParseDefault(filename, content)
	if err != nil {
		return nil, &ParseError{
			Pos:     Position{Filename: filename},
			Message: fmt.Sprintf("syntax error: %v", err),
			Wrapped: err,
		}
	}
	p := &parser{filename: filename, opts: opts, components: make(map[component.Identifier]bool)}
	for _, stmt := range raw.Stmt {
		p.parseStatement(stmt)
	}
	if !p.sawConfiguration {
		p.addError(Position{Filename: filename}, "missing configuration() statement")
	}
	return &Result{
		Resolution: p.res,
		Errors:     p.errors,
		Warnings:   p.warnings,
	}, nil
}

type parser struct {
	filename         string
	opts             Options
	res              artifactset.Resolution
	sawConfiguration bool
	components       map[component.Identifier]bool
	errors           []*ParseError
	warnings         []*ParseError
}

func (p *parser) parseStatement(stmt build.Expr) {
	if _, ok := stmt.(*build.CommentBlock); ok {
		return
	}
	call, ok := stmt.(*build.CallExpr)
	if !ok {
		p.addWarning(p.position(stmt), "ignoring %s statement", buildutil.Describe(stmt))
		return
	}

	pos := p.position(call)
	switch buildutil.FuncName(call) {
	case "configuration":
		p.checkKeywords(call, "name", "project")
		p.parseConfiguration(call, pos)
	case "component":
		p.checkKeywords(call, "id", "variants")
		p.parseComponent(call, pos)
	case "files":
		p.checkKeywords(call, "id", "paths", "attributes", "built_by")
		p.parseFiles(call, pos)
	case "unresolved":
		p.checkKeywords(call, "dependency", "reason")
		p.parseUnresolved(call, pos)
	case "transform":
		p.checkKeywords(call, "name", "from_attributes", "to_attributes", "suffix")
		p.parseTransform(call, pos)
	default:
		p.addWarning(pos, "unknown statement %s", buildutil.Describe(call))
	}
}

func (p *parser) parseConfiguration(call *build.CallExpr, pos Position) {
	if p.sawConfiguration {
		p.addError(pos, "configuration() declared more than once")
		return
	}
	p.sawConfiguration = true
	name, ok := p.requiredString(call, 0, "name", pos)
	if !ok {
		return
	}
	project, _ := p.optionalString(call, "project")
	if project != "" {
		if _, err := component.NewProject(project); err != nil {
			p.addError(p.position(buildutil.Arg(call, -1, "project")), "%v", err)
			return
		}
	}
	p.res.Configuration = artifactset.Configuration{Project: project, Name: name}
}

func (p *parser) parseComponent(call *build.CallExpr, pos Position) {
	raw, ok := p.requiredString(call, 0, "id", pos)
	if !ok {
		return
	}
	id, err := component.Parse(raw)
	if err != nil {
		p.addErrorWrapped(p.position(buildutil.Arg(call, 0, "id")), err, "%v", err)
		return
	}
	if p.components[id] {
		p.addError(pos, "component %s declared more than once", id.DisplayName())
		return
	}
	p.components[id] = true

	calls, err := buildutil.Calls(buildutil.Arg(call, 1, "variants"), "variant")
	if err != nil {
		p.addTypeError(err, pos, "variants")
		return
	}
	if len(calls) == 0 {
		p.addWarning(pos, "component %s has no variants", id.DisplayName())
	}
	variants := make([]artifact.ResolvedVariant, 0, len(calls))
	for _, vc := range calls {
		p.checkKeywords(vc, "name", "attributes", "artifacts", "built_by")
		if v, ok := p.parseVariant(id, vc); ok {
			variants = append(variants, v)
		}
	}
	p.res.Components = append(p.res.Components, artifact.ComponentVariants{ID: id, Variants: variants})
}

func (p *parser) parseVariant(id component.Identifier, call *build.CallExpr) (artifact.ResolvedVariant, bool) {
	pos := p.position(call)
	name, ok := p.requiredString(call, 0, "name", pos)
	if !ok {
		return artifact.ResolvedVariant{}, false
	}
	attrs, ok := p.attributes(call, "attributes", pos)
	if !ok {
		return artifact.ResolvedVariant{}, false
	}
	paths, ok := p.stringList(call, "artifacts", pos)
	if !ok {
		return artifact.ResolvedVariant{}, false
	}
	tasks, ok := p.tasks(call, pos)
	if !ok {
		return artifact.ResolvedVariant{}, false
	}

	artifacts := make([]artifact.ResolvableArtifact, len(paths))
	for i, path := range paths {
		artifacts[i] = p.artifact(id, path, tasks)
	}
	return artifact.ResolvedVariant{Name: name, Attributes: attrs, Artifacts: artifacts}, true
}

func (p *parser) parseFiles(call *build.CallExpr, pos Position) {
	var id component.Identifier
	if raw, ok := p.optionalString(call, "id"); ok {
		parsed, err := component.Parse(raw)
		if err != nil {
			p.addErrorWrapped(p.position(buildutil.Arg(call, -1, "id")), err, "%v", err)
			return
		}
		id = parsed
	}
	paths, ok := p.stringList(call, "paths", pos)
	if !ok {
		return
	}
	if len(paths) == 0 {
		p.addWarning(pos, "files() lists no paths")
	}
	attrs, ok := p.attributes(call, "attributes", pos)
	if !ok {
		return
	}
	tasks, ok := p.tasks(call, pos)
	if !ok {
		return
	}
	for i, path := range paths {
		paths[i] = p.resolvePath(path)
	}
	p.res.Files = append(p.res.Files, artifact.FileDependency{
		ID:         id,
		Files:      paths,
		Attributes: attrs,
		BuiltBy:    tasks,
	})
}

func (p *parser) parseUnresolved(call *build.CallExpr, pos Position) {
	raw, ok := p.requiredString(call, 0, "dependency", pos)
	if !ok {
		return
	}
	dep, err := component.ParseDependency(raw)
	if err != nil {
		p.addErrorWrapped(p.position(buildutil.Arg(call, 0, "dependency")), err, "%v", err)
		return
	}
	reason, ok := p.requiredString(call, 1, "reason", pos)
	if !ok {
		return
	}
	p.res.Unresolved = append(p.res.Unresolved, component.UnresolvedDependency{
		Dependency: dep,
		Problem:    errors.New(reason),
	})
}

func (p *parser) parseTransform(call *build.CallExpr, pos Position) {
	name, ok := p.requiredString(call, 0, "name", pos)
	if !ok {
		return
	}
	from, ok := p.attributes(call, "from_attributes", pos)
	if !ok {
		return
	}
	to, ok := p.attributes(call, "to_attributes", pos)
	if !ok {
		return
	}
	if to.IsEmpty() {
		p.addError(pos, "transform %q: to_attributes is empty", name)
		return
	}
	suffix, ok := p.requiredString(call, -1, "suffix", pos)
	if !ok {
		return
	}
	if slices.ContainsFunc(p.res.Transforms, func(t transform.Transform) bool { return t.Name == name }) {
		p.addError(pos, "transform %q declared more than once", name)
		return
	}
	p.res.Transforms = append(p.res.Transforms, transform.Transform{
		Name:   name,
		From:   from,
		To:     to,
		Action: transform.RenameAction(suffix),
	})
}

func (p *parser) artifact(id component.Identifier, path string, tasks []artifact.TaskDependency) *artifact.Artifact {
	resolved := p.resolvePath(path)
	a := &artifact.Artifact{
		Identifier: artifact.ArtifactIdentifier{Component: id, Name: filepath.Base(path)},
		BuiltBy:    tasks,
	}
	if p.opts.VerifyFiles {
		a.Resolver = artifact.ResolverFunc(func(context.Context, artifact.ArtifactIdentifier) (string, error) {
			if _, err := os.Stat(resolved); err != nil {
				return "", err
			}
			return resolved, nil
		})
		return a
	}
	a.Path = resolved
	return a
}

func (p *parser) resolvePath(path string) string {
	if filepath.IsAbs(path) || p.opts.BaseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(p.opts.BaseDir, path)
}

func (p *parser) requiredString(call *build.CallExpr, pos int, name string, at Position) (string, bool) {
	expr := buildutil.Arg(call, pos, name)
	if expr == nil {
		p.addError(at, "%s(): missing required argument %q", buildutil.FuncName(call), name)
		return "", false
	}
	if buildutil.Keyword(call, name) != nil && buildutil.Positional(call, pos) != nil {
		p.addError(p.position(expr), "%s(): argument %q given both positionally and by keyword", buildutil.FuncName(call), name)
		return "", false
	}
	s, err := buildutil.String(expr)
	if err != nil {
		p.addTypeError(err, at, name)
		return "", false
	}
	if s == "" {
		p.addError(p.position(expr), "%s(): %q must not be empty", buildutil.FuncName(call), name)
		return "", false
	}
	return s, true
}

// optionalString returns the keyword argument name if present and a string.
// A non-string value is reported and treated as absent.
func (p *parser) optionalString(call *build.CallExpr, name string) (string, bool) {
	expr := buildutil.Arg(call, -1, name)
	if expr == nil {
		return "", false
	}
	s, err := buildutil.String(expr)
	if err != nil {
		p.addTypeError(err, p.position(expr), name)
		return "", false
	}
	return s, s != ""
}

func (p *parser) stringList(call *build.CallExpr, name string, at Position) ([]string, bool) {
	list, err := buildutil.StringList(buildutil.Arg(call, -1, name))
	if err != nil {
		p.addTypeError(err, at, name)
		return nil, false
	}
	return list, true
}

func (p *parser) attributes(call *build.CallExpr, name string, at Position) (attribute.Container, bool) {
	values, err := buildutil.Dict(buildutil.Arg(call, -1, name))
	if err != nil {
		p.addTypeError(err, at, name)
		return attribute.Container{}, false
	}
	attrs, err := attribute.FromMap(values)
	if err != nil {
		p.addErrorWrapped(at, err, "%s: %v", name, err)
		return attribute.Container{}, false
	}
	return attrs, true
}

func (p *parser) tasks(call *build.CallExpr, at Position) ([]artifact.TaskDependency, bool) {
	names, ok := p.stringList(call, "built_by", at)
	if !ok {
		return nil, false
	}
	tasks := make([]artifact.TaskDependency, len(names))
	for i, n := range names {
		tasks[i] = artifact.TaskDependency(n)
	}
	return tasks, true
}

func (p *parser) checkKeywords(call *build.CallExpr, allowed ...string) {
	for _, name := range buildutil.KeywordNames(call) {
		if !slices.Contains(allowed, name) {
			p.addWarning(p.position(buildutil.Arg(call, -1, name)), "%s(): unknown argument %q", buildutil.FuncName(call), name)
		}
	}
}

func (p *parser) position(expr build.Expr) Position {
	if expr == nil {
		return Position{Filename: p.filename}
	}
	start, _ := expr.Span()
	return Position{
		Filename: p.filename,
		Line:     start.Line,
		Column:   start.LineRune,
	}
}

// addTypeError reports err at the offending expression when it is known.
func (p *parser) addTypeError(err error, fallback Position, name string) {
	pos := fallback
	var typeErr *buildutil.TypeError
	if errors.As(err, &typeErr) && typeErr.Expr != nil {
		pos = p.position(typeErr.Expr)
	}
	p.addErrorWrapped(pos, err, "%s: %v", name, err)
}

func (p *parser) addError(pos Position, format string, args ...any) {
	p.addErrorWrapped(pos, nil, format, args...)
}

func (p *parser) addErrorWrapped(pos Position, err error, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Wrapped: err,
	})
}

func (p *parser) addWarning(pos Position, format string, args ...any) {
	p.warnings = append(p.warnings, &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}
