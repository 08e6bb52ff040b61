package artifact

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
)

func TestEmpty(t *testing.T) {
	var r recorder
	Empty.CollectBuildDependencies(&r)
	Empty.VisitArtifacts(context.Background(), &r)
	if len(r.events) != 0 {
		t.Errorf("Empty reported %v", r.events)
	}
}

func TestComposite_Flattening(t *testing.T) {
	if got := Composite(); got != Empty {
		t.Errorf("Composite() = %T, want Empty", got)
	}
	if got := Composite(nil, Empty, Empty); got != Empty {
		t.Errorf("Composite(nil, Empty, Empty) = %T, want Empty", got)
	}

	single := NewTaskSet(":a")
	if got := Composite(Empty, single); got == nil || got == Empty {
		t.Errorf("Composite(Empty, single) = %T, want the single member", got)
	}

	nested := Composite(Composite(NewTaskSet(":a"), NewTaskSet(":b")), NewTaskSet(":c"))
	c, ok := nested.(*compositeSet)
	if !ok {
		t.Fatalf("nested composite type = %T", nested)
	}
	if len(c.members) != 3 {
		t.Errorf("flattened members = %d, want 3", len(c.members))
	}

	var r recorder
	nested.CollectBuildDependencies(&r)
	if !slices.Equal(r.tasks, []TaskDependency{":a", ":b", ":c"}) {
		t.Errorf("tasks = %v, want [:a :b :c]", r.tasks)
	}
}

func TestArtifactSet_CollectDoesNotResolve(t *testing.T) {
	id := component.MustParse("com.example:lib:1.0")
	resolved := false
	a := &Artifact{
		Identifier: ArtifactIdentifier{Component: id, Name: "lib-1.0.jar"},
		BuiltBy:    []TaskDependency{":lib:jar"},
		Resolver: ResolverFunc(func(context.Context, ArtifactIdentifier) (string, error) {
			resolved = true
			return "/cache/lib-1.0.jar", nil
		}),
	}
	set := NewArtifactSet(attribute.Empty(), a)

	var r recorder
	set.CollectBuildDependencies(&r)
	if resolved {
		t.Error("CollectBuildDependencies resolved the artifact file")
	}
	if !slices.Equal(r.tasks, []TaskDependency{":lib:jar"}) {
		t.Errorf("tasks = %v", r.tasks)
	}

	set.VisitArtifacts(context.Background(), &r)
	if !resolved {
		t.Error("VisitArtifacts did not resolve the artifact file")
	}
	if !slices.Equal(r.files(), []string{"/cache/lib-1.0.jar"}) {
		t.Errorf("files = %v", r.files())
	}
}

func TestArtifactSet_PerArtifactFailure(t *testing.T) {
	id := component.MustParse("com.example:lib:1.0")
	missing := errors.New("file not found")
	set := NewArtifactSet(attribute.Empty(),
		jar(id, "a.jar"),
		failing(id, "b.jar", missing),
		jar(id, "c.jar"),
	)

	var r recorder
	set.VisitArtifacts(context.Background(), &r)

	if !slices.Equal(r.files(), []string{"/repo/a.jar", "/repo/c.jar"}) {
		t.Errorf("files = %v, want a.jar and c.jar", r.files())
	}
	if len(r.failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(r.failures))
	}
	var resolveErr *ArtifactResolveError
	if !errors.As(r.failures[0], &resolveErr) {
		t.Fatalf("failure type = %T, want *ArtifactResolveError", r.failures[0])
	}
	if resolveErr.Artifact.Name != "b.jar" || !errors.Is(r.failures[0], missing) {
		t.Errorf("failure = %v", r.failures[0])
	}
}

func TestArtifact_NoFile(t *testing.T) {
	a := &Artifact{Identifier: ArtifactIdentifier{Name: "x"}}
	if _, err := a.File(context.Background()); !errors.Is(err, ErrNoFile) {
		t.Errorf("File() error = %v, want ErrNoFile", err)
	}
}

func TestComposite_FailingChildDoesNotStopSiblings(t *testing.T) {
	id := component.MustParse("com.example:lib:1.0")
	good := NewArtifactSet(attribute.Empty(), jar(id, "a.jar"), jar(id, "b.jar"))
	bad := Broken(errors.New("boom"))

	var r recorder
	Composite(bad, good).VisitArtifacts(context.Background(), &r)

	if len(r.failures) != 1 {
		t.Errorf("failures = %d, want exactly 1", len(r.failures))
	}
	if len(r.artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(r.artifacts))
	}
}

func TestBroken_HasNoBuildDependencies(t *testing.T) {
	var r recorder
	Broken(errors.New("boom")).CollectBuildDependencies(&r)
	if len(r.events) != 0 {
		t.Errorf("Broken reported %v while collecting build dependencies", r.events)
	}
}

func TestVisitArtifacts_StableOrder(t *testing.T) {
	a := component.MustParse("g:a:1")
	b := component.MustParse("g:b:1")
	set := Composite(
		NewArtifactSet(attribute.Empty(), jar(a, "a1.jar"), jar(a, "a2.jar")),
		NewArtifactSet(attribute.Empty(), jar(b, "b1.jar")),
	)

	var first, second recorder
	set.VisitArtifacts(context.Background(), &first)
	set.VisitArtifacts(context.Background(), &second)
	if !slices.Equal(first.events, second.events) {
		t.Errorf("visit order changed: %v vs %v", first.events, second.events)
	}
}

// cancelling stops the visit as soon as it sees the first artifact.
type cancelling struct {
	recorder
	cancel context.CancelFunc
}

func (c *cancelling) VisitArtifact(a ResolvedArtifact) {
	c.recorder.VisitArtifact(a)
	c.cancel()
}

func TestVisitArtifacts_StopsOnCancel(t *testing.T) {
	id := component.MustParse("g:a:1")
	set := Composite(
		NewArtifactSet(attribute.Empty(), jar(id, "1.jar"), jar(id, "2.jar")),
		NewArtifactSet(attribute.Empty(), jar(id, "3.jar")),
		Broken(errors.New("never reported")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v := &cancelling{cancel: cancel}
	set.VisitArtifacts(ctx, v)

	if len(v.artifacts) != 1 || len(v.failures) != 0 {
		t.Errorf("events after cancel = %v, want only the first artifact", v.events)
	}
}
