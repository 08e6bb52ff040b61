// Package report collects what an artifact selection visits and renders it as
// text or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/hashing"
)

const separatorWidth = 60 // Width of separator lines in text output

// Report is the serializable form of a collected selection.
type Report struct {
	Tasks     []string   `json:"tasks"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	Failures  []Failure  `json:"failures,omitempty"`
}

// Artifact is one visited artifact.
type Artifact struct {
	Name       string            `json:"name"`
	Component  string            `json:"component,omitempty"`
	File       string            `json:"file"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Hash       string            `json:"hash,omitempty"`
	HashError  string            `json:"hashError,omitempty"`
}

// Failure is one reported failure. Causes lists the underlying problems when
// the failure aggregates several.
type Failure struct {
	Message string   `json:"message"`
	Causes  []string `json:"causes,omitempty"`
}

// Collector implements artifact.BuildDependenciesVisitor and
// artifact.ArtifactVisitor. It is safe for concurrent use.
type Collector struct {
	hasher hashing.ContentHasher

	mu        sync.Mutex
	tasks     []artifact.TaskDependency
	artifacts []Artifact
	failures  []error
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithHasher hashes every visited artifact file with h.
func WithHasher(h hashing.ContentHasher) CollectorOption {
	return func(c *Collector) {
		c.hasher = h
	}
}

// NewCollector returns an empty Collector.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VisitDependency records a task dependency.
func (c *Collector) VisitDependency(task artifact.TaskDependency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
}

// VisitArtifact records an artifact, hashing its file when a hasher is set.
func (c *Collector) VisitArtifact(a artifact.ResolvedArtifact) {
	out := Artifact{
		Name: a.ID.Name,
		File: a.File,
	}
	if a.ID.Component != nil {
		out.Component = a.ID.Component.DisplayName()
	}
	if a.Attributes.Len() > 0 {
		out.Attributes = make(map[string]string, a.Attributes.Len())
		for name, value := range a.Attributes.All() {
			out.Attributes[name] = fmt.Sprint(value)
		}
	}
	if c.hasher != nil {
		h, err := hashing.HashPath(c.hasher, a.File)
		if err != nil {
			out.HashError = err.Error()
		} else {
			out.Hash = h.String()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts = append(c.artifacts, out)
}

// VisitFailure records a failure.
func (c *Collector) VisitFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, err)
}

// Tasks returns the recorded task dependencies in visit order.
func (c *Collector) Tasks() []artifact.TaskDependency {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]artifact.TaskDependency(nil), c.tasks...)
}

// Artifacts returns the recorded artifacts in visit order.
func (c *Collector) Artifacts() []Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Artifact(nil), c.artifacts...)
}

// Failures returns the recorded failures in visit order.
func (c *Collector) Failures() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.failures...)
}

// HasFailures reports whether any failure was recorded.
func (c *Collector) HasFailures() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures) > 0
}

// Err joins every recorded failure, or returns nil.
func (c *Collector) Err() error {
	return errors.Join(c.Failures()...)
}

// Report returns a snapshot of everything collected so far.
func (c *Collector) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := Report{
		Tasks:     make([]string, len(c.tasks)),
		Artifacts: append([]Artifact(nil), c.artifacts...),
	}
	for i, t := range c.tasks {
		r.Tasks[i] = string(t)
	}
	for _, err := range c.failures {
		f := Failure{Message: err.Error()}
		var resolveErr *artifact.ResolveError
		if errors.As(err, &resolveErr) && len(resolveErr.Causes) > 1 {
			f.Causes = causes(resolveErr)
		}
		r.Failures = append(r.Failures, f)
	}
	return r
}

// JSON renders the report as indented JSON.
func (c *Collector) JSON() ([]byte, error) {
	return json.MarshalIndent(c.Report(), "", "  ")
}

// Text renders the report for terminals.
func (c *Collector) Text() string {
	r := c.Report()
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Build dependencies (%d)\n", len(r.Tasks)))
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n")
	for _, t := range r.Tasks {
		buf.WriteString("  " + t + "\n")
	}

	if len(r.Artifacts) > 0 {
		buf.WriteString(fmt.Sprintf("\nArtifacts (%d)\n", len(r.Artifacts)))
		buf.WriteString(strings.Repeat("=", separatorWidth) + "\n")
		for _, a := range r.Artifacts {
			buf.WriteString("  " + a.File)
			if a.Component != "" {
				buf.WriteString(" (" + a.Component + ")")
			}
			buf.WriteString("\n")
			switch {
			case a.Hash != "":
				buf.WriteString("    sha256: " + a.Hash + "\n")
			case a.HashError != "":
				buf.WriteString("    hash failed: " + a.HashError + "\n")
			}
		}
	}

	if len(r.Failures) > 0 {
		buf.WriteString(fmt.Sprintf("\nFailures (%d)\n", len(r.Failures)))
		buf.WriteString(strings.Repeat("=", separatorWidth) + "\n")
		for _, err := range c.Failures() {
			for i, line := range FailureLines(err) {
				if i == 0 {
					buf.WriteString("  " + line + "\n")
				} else {
					buf.WriteString("    - " + line + "\n")
				}
			}
		}
	}

	return buf.String()
}

// FailureLines renders err as a headline followed by one line per cause when
// err wraps a ResolveError with more than one cause.
func FailureLines(err error) []string {
	if err == nil {
		return nil
	}
	var resolveErr *artifact.ResolveError
	if !errors.As(err, &resolveErr) || len(resolveErr.Causes) <= 1 {
		return []string{err.Error()}
	}
	return append([]string{err.Error()}, causes(resolveErr)...)
}

func causes(err *artifact.ResolveError) []string {
	lines := make([]string, len(err.Causes))
	for i, cause := range err.Causes {
		lines[i] = cause.Error()
	}
	return lines
}
