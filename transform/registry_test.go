package transform

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

type recorder struct {
	mu        sync.Mutex
	tasks     []artifact.TaskDependency
	artifacts []artifact.ResolvedArtifact
	failures  []error
}

func (r *recorder) VisitDependency(task artifact.TaskDependency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

func (r *recorder) VisitArtifact(a artifact.ResolvedArtifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, a)
}

func (r *recorder) VisitFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recorder) files() []string {
	files := make([]string, len(r.artifacts))
	for i, a := range r.artifacts {
		files[i] = a.File
	}
	return files
}

var lib = component.MustParse("com.example:lib:1.0")

func attrs(kv ...string) attribute.Container {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return attribute.Strings(m)
}

func variant(name string, a attribute.Container, files ...string) artifact.ResolvedVariant {
	artifacts := make([]artifact.ResolvableArtifact, len(files))
	for i, f := range files {
		artifacts[i] = &artifact.Artifact{
			Identifier: artifact.ArtifactIdentifier{Component: lib, Name: f},
			Path:       "/repo/" + f,
			BuiltBy:    []artifact.TaskDependency{artifact.TaskDependency(":lib:" + name)},
		}
	}
	return artifact.ResolvedVariant{Name: name, Attributes: a, Artifacts: artifacts}
}

func mustRegistry(t *testing.T, transforms []Transform, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(nil, transforms, opts...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func visit(set artifact.ResolvedArtifactSet) *recorder {
	var r recorder
	set.VisitArtifacts(context.Background(), &r)
	return &r
}

func TestSelect_DirectMatch(t *testing.T) {
	reg := mustRegistry(t, nil)
	candidates := []artifact.ResolvedVariant{
		variant("jar", attrs("format", "jar"), "lib-1.0.jar"),
		variant("classes", attrs("format", "classes"), "classes"),
	}

	for range 3 {
		got := visit(reg.VariantSelector(attrs("format", "jar"), false).Select(lib, candidates))
		if len(got.failures) != 0 {
			t.Fatalf("failures = %v", got.failures)
		}
		if !slices.Equal(got.files(), []string{"/repo/lib-1.0.jar"}) {
			t.Errorf("files = %v, want the jar variant", got.files())
		}
	}
}

func TestSelect_NoMatch(t *testing.T) {
	reg := mustRegistry(t, nil)
	candidates := []artifact.ResolvedVariant{variant("jar", attrs("format", "jar"), "lib-1.0.jar")}
	sources := attrs("format", "sources")

	strict := reg.VariantSelector(sources, false).Select(lib, candidates)
	var deps recorder
	strict.CollectBuildDependencies(&deps)
	if len(deps.failures) != 0 || len(deps.tasks) != 0 {
		t.Errorf("mismatch reported while collecting build dependencies: %v %v", deps.failures, deps.tasks)
	}
	got := visit(strict)
	if len(got.failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(got.failures))
	}
	var mismatch *artifact.NoMatchingVariantError
	if !errors.As(got.failures[0], &mismatch) {
		t.Fatalf("failure type = %T, want *artifact.NoMatchingVariantError", got.failures[0])
	}
	if mismatch.Component != lib || len(mismatch.Candidates) != 1 {
		t.Errorf("mismatch = %+v", mismatch)
	}

	lenient := visit(reg.VariantSelector(sources, true).Select(lib, candidates))
	if len(lenient.failures) != 0 || len(lenient.artifacts) != 0 {
		t.Errorf("lenient selection = %d artifacts, %d failures, want none", len(lenient.artifacts), len(lenient.failures))
	}
}

func TestSelect_AmbiguousDirectMatch(t *testing.T) {
	reg := mustRegistry(t, nil)
	candidates := []artifact.ResolvedVariant{
		variant("a", attrs("format", "jar", "flavor", "a"), "a.jar"),
		variant("b", attrs("format", "jar", "flavor", "b"), "b.jar"),
	}

	got := visit(reg.VariantSelector(attrs("format", "jar"), true).Select(lib, candidates))
	var ambiguous *artifact.AmbiguousVariantError
	if len(got.failures) != 1 || !errors.As(got.failures[0], &ambiguous) {
		t.Fatalf("failures = %v, want one ambiguity", got.failures)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("matches = %v, want 2", ambiguous.Matches)
	}
}

func TestSelect_FewerExtraAttributesWins(t *testing.T) {
	reg := mustRegistry(t, nil)
	candidates := []artifact.ResolvedVariant{
		variant("fat", attrs("format", "jar", "shaded", "true"), "fat.jar"),
		variant("plain", attrs("format", "jar"), "plain.jar"),
	}

	got := visit(reg.VariantSelector(attrs("format", "jar"), false).Select(lib, candidates))
	if !slices.Equal(got.files(), []string{"/repo/plain.jar"}) {
		t.Errorf("files = %v, want plain.jar", got.files())
	}
}

var (
	unzip = Transform{
		Name:   "unzip",
		From:   attrs("format", "jar"),
		To:     attrs("format", "classes"),
		Action: RenameAction("-classes"),
	}
	dex = Transform{
		Name:   "dex",
		From:   attrs("format", "classes"),
		To:     attrs("format", "dex"),
		Action: RenameAction(".dex"),
	}
)

func TestSelect_SingleTransform(t *testing.T) {
	reg := mustRegistry(t, []Transform{unzip, dex})
	candidates := []artifact.ResolvedVariant{variant("jar", attrs("format", "jar"), "lib.jar")}

	set := reg.VariantSelector(attrs("format", "classes"), false).Select(lib, candidates)

	var deps recorder
	set.CollectBuildDependencies(&deps)
	if !slices.Equal(deps.tasks, []artifact.TaskDependency{":lib:jar"}) {
		t.Errorf("tasks = %v, want the source variant's task", deps.tasks)
	}

	got := visit(set)
	if len(got.failures) != 0 {
		t.Fatalf("failures = %v", got.failures)
	}
	if !slices.Equal(got.files(), []string{"/repo/lib-classes"}) {
		t.Errorf("files = %v", got.files())
	}
	if v, _ := attribute.Get(got.artifacts[0].Attributes, attribute.Of[string]("format")); v != "classes" {
		t.Errorf("format = %q, want classes", v)
	}
}

func TestSelect_TransformChain(t *testing.T) {
	candidates := []artifact.ResolvedVariant{variant("jar", attrs("format", "jar"), "lib.jar")}
	request := attrs("format", "dex")

	reg := mustRegistry(t, []Transform{dex, unzip})
	got := visit(reg.VariantSelector(request, false).Select(lib, candidates))
	if len(got.failures) != 0 {
		t.Fatalf("failures = %v", got.failures)
	}
	if !slices.Equal(got.files(), []string{"/repo/lib-classes.dex"}) {
		t.Errorf("files = %v", got.files())
	}

	short := mustRegistry(t, []Transform{dex, unzip}, WithMaxChainLength(1))
	got = visit(short.VariantSelector(request, false).Select(lib, candidates))
	var mismatch *artifact.NoMatchingVariantError
	if len(got.failures) != 1 || !errors.As(got.failures[0], &mismatch) {
		t.Errorf("failures with chain length 1 = %v, want a variant mismatch", got.failures)
	}

	disabled := mustRegistry(t, []Transform{unzip}, WithMaxChainLength(0))
	got = visit(disabled.VariantSelector(attrs("format", "classes"), true).Select(lib, candidates))
	if len(got.artifacts) != 0 || len(got.failures) != 0 {
		t.Errorf("transforms disabled: got %v / %v, want nothing", got.files(), got.failures)
	}
}

func TestSelect_AmbiguousChains(t *testing.T) {
	reg := mustRegistry(t, []Transform{unzip})
	candidates := []artifact.ResolvedVariant{
		variant("a", attrs("format", "jar", "flavor", "a"), "a.jar"),
		variant("b", attrs("format", "jar", "flavor", "b"), "b.jar"),
	}

	got := visit(reg.VariantSelector(attrs("format", "classes"), false).Select(lib, candidates))
	var ambiguous *artifact.AmbiguousVariantError
	if len(got.failures) != 1 || !errors.As(got.failures[0], &ambiguous) {
		t.Fatalf("failures = %v, want one ambiguity", got.failures)
	}
	if len(got.artifacts) != 0 {
		t.Errorf("artifacts = %v, want none", got.files())
	}
}

func TestSelect_ChainDisambiguation(t *testing.T) {
	reg := mustRegistry(t, []Transform{unzip})
	candidates := []artifact.ResolvedVariant{
		variant("fat", attrs("format", "jar", "shaded", "true"), "fat.jar"),
		variant("plain", attrs("format", "jar"), "plain.jar"),
	}

	got := visit(reg.VariantSelector(attrs("format", "classes"), false).Select(lib, candidates))
	if !slices.Equal(got.files(), []string{"/repo/plain-classes"}) {
		t.Errorf("files = %v, want the plain jar transformed", got.files())
	}
}

func TestTransformedSet_FailingStep(t *testing.T) {
	broken := Transform{
		Name: "unzip",
		From: attrs("format", "jar"),
		To:   attrs("format", "classes"),
		Action: ActionFunc(func(_ context.Context, in artifact.ResolvedArtifact) ([]string, error) {
			if strings.HasSuffix(in.File, "bad.jar") {
				return nil, errors.New("corrupt archive")
			}
			return []string{in.File + ".d"}, nil
		}),
	}
	reg := mustRegistry(t, []Transform{broken})
	candidates := []artifact.ResolvedVariant{variant("jar", attrs("format", "jar"), "bad.jar", "good.jar")}

	got := visit(reg.VariantSelector(attrs("format", "classes"), false).Select(lib, candidates))

	if !slices.Equal(got.files(), []string{"/repo/good.jar.d"}) {
		t.Errorf("files = %v, want the good jar only", got.files())
	}
	if len(got.failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(got.failures))
	}
	var resolveErr *artifact.ArtifactResolveError
	if !errors.As(got.failures[0], &resolveErr) || resolveErr.Artifact.Name != "bad.jar" {
		t.Errorf("failure = %v", got.failures[0])
	}
	if !strings.Contains(got.failures[0].Error(), "transform unzip") {
		t.Errorf("failure %q should name the transform", got.failures[0])
	}
}

func TestVariantSelector_Cache(t *testing.T) {
	reg := mustRegistry(t, nil, WithCacheSize(2))
	jar := attrs("format", "jar")

	first := reg.VariantSelector(jar, false)
	if again := reg.VariantSelector(attrs("format", "jar"), false); again != first {
		t.Error("equal requests should share a cached selector")
	}
	if lenient := reg.VariantSelector(jar, true); lenient == first {
		t.Error("allowNoMatchingVariant must be part of the cache key")
	}
	if got := reg.CachedSelectors(); got != 2 {
		t.Errorf("CachedSelectors() = %d, want 2", got)
	}

	reg.VariantSelector(attrs("format", "sources"), false)
	if got := reg.CachedSelectors(); got != 2 {
		t.Errorf("CachedSelectors() after eviction = %d, want 2", got)
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name       string
		transforms []Transform
		opts       []Option
		wantOption bool
	}{
		{name: "zero cache", opts: []Option{WithCacheSize(0)}, wantOption: true},
		{name: "negative chain", opts: []Option{WithMaxChainLength(-1)}, wantOption: true},
		{name: "unnamed transform", transforms: []Transform{{To: attrs("format", "x"), Action: RenameAction(".x")}}},
		{name: "no action", transforms: []Transform{{Name: "x", To: attrs("format", "x")}}},
		{name: "no output attributes", transforms: []Transform{{Name: "x", Action: RenameAction(".x")}}},
		{name: "duplicate name", transforms: []Transform{
			{Name: "x", From: attrs("format", "jar"), To: attrs("format", "classes"), Action: RenameAction("-classes")},
			{Name: "x", From: attrs("format", "classes"), To: attrs("format", "dir"), Action: RenameAction("-dir")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(nil, tt.transforms, tt.opts...)
			if err == nil {
				t.Fatal("NewRegistry() error = nil, want error")
			}
			if got := errors.Is(err, ErrInvalidOption); got != tt.wantOption {
				t.Errorf("errors.Is(err, ErrInvalidOption) = %v, want %v (err = %v)", got, tt.wantOption, err)
			}
		})
	}
}

func TestVariantSelector_Concurrent(t *testing.T) {
	reg := mustRegistry(t, []Transform{unzip, dex}, WithCacheSize(4))
	candidates := []artifact.ResolvedVariant{variant("jar", attrs("format", "jar"), "lib-1.0.jar")}
	requests := []attribute.Container{
		attrs("format", "jar"),
		attrs("format", "classes"),
		attrs("format", "dex"),
		attrs("format", "sources"),
		attrs("format", "aar"),
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := requests[i%len(requests)]
			got := visit(reg.VariantSelector(req, true).Select(lib, candidates))
			if len(got.failures) != 0 {
				t.Errorf("request %s: failures = %v", req, got.failures)
			}
		}()
	}
	wg.Wait()
}

func TestRenameAction(t *testing.T) {
	action := RenameAction(".dex")
	files, err := action.Apply(context.Background(), artifact.ResolvedArtifact{File: "/out/lib.jar"})
	if err != nil || !slices.Equal(files, []string{"/out/lib.dex"}) {
		t.Errorf("Apply() = %v, %v", files, err)
	}
	if _, err := action.Apply(context.Background(), artifact.ResolvedArtifact{}); err == nil {
		t.Error("Apply() on an artifact without file should fail")
	}
}
