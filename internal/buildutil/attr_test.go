package buildutil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bazelbuild/buildtools/build"
)

func parseCall(t *testing.T, content string) *build.CallExpr {
	t.Helper()
	f, err := build.ParseDefault("test.snapshot", []byte(content))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(f.Stmt) == 0 {
		t.Fatal("no statements parsed")
	}
	call, ok := f.Stmt[0].(*build.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", f.Stmt[0])
	}
	return call
}

func TestArg(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pos     int
		argName string
		want    string
		found   bool
	}{
		{"keyword", `f(id = "a")`, 0, "id", "a", true},
		{"positional", `f("a", "b")`, 1, "id", "b", true},
		{"keyword wins", `f("a", id = "b")`, 0, "id", "b", true},
		{"keyword wins over later positional", `f("a", "c", id = "b")`, 1, "id", "b", true},
		{"keywords are not positional", `f(x = "k")`, 0, "id", "", false},
		{"positional disabled", `f("a")`, -1, "id", "", false},
		{"missing", `f(other = "a")`, 0, "id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := Arg(parseCall(t, tt.input), tt.pos, tt.argName)
			if (expr != nil) != tt.found {
				t.Fatalf("Arg() = %v, found want %v", expr, tt.found)
			}
			if expr == nil {
				return
			}
			got, err := String(expr)
			if err != nil || got != tt.want {
				t.Errorf("String(Arg()) = %q, %v, want %q", got, err, tt.want)
			}
		})
	}
}

func TestKeywordNames(t *testing.T) {
	got := KeywordNames(parseCall(t, `f("p", b = 1, a = 2)`))
	if want := []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("KeywordNames() = %v, want %v", got, want)
	}
}

func TestStringList(t *testing.T) {
	call := parseCall(t, `f(ok = ["a", "b"], mixed = ["a", 1], scalar = "a")`)

	got, err := StringList(Arg(call, -1, "ok"))
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("StringList(ok) = %v, %v", got, err)
	}

	var typeErr *TypeError
	if _, err := StringList(Arg(call, -1, "mixed")); !errors.As(err, &typeErr) {
		t.Errorf("StringList(mixed) error = %v, want *TypeError", err)
	} else if typeErr.Want != "string" {
		t.Errorf("Want = %q, want string", typeErr.Want)
	}
	if _, err := StringList(Arg(call, -1, "scalar")); err == nil {
		t.Error("StringList(scalar) should fail")
	}
	if got, err := StringList(nil); err != nil || len(got) != 0 {
		t.Errorf("StringList(nil) = %v, %v", got, err)
	}
}

func TestDict(t *testing.T) {
	call := parseCall(t, `f(attrs = {"format": "jar", "level": 8, "release": True}, bad = {"k": [1]}, badkey = {1: "v"})`)

	got, err := Dict(Arg(call, -1, "attrs"))
	if err != nil {
		t.Fatalf("Dict() error = %v", err)
	}
	want := map[string]any{"format": "jar", "level": 8, "release": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dict() = %v, want %v", got, want)
	}

	for _, name := range []string{"bad", "badkey"} {
		if _, err := Dict(Arg(call, -1, name)); err == nil {
			t.Errorf("Dict(%s) should fail", name)
		}
	}
	if got, err := Dict(nil); err != nil || len(got) != 0 {
		t.Errorf("Dict(nil) = %v, %v", got, err)
	}
}

func TestScalar(t *testing.T) {
	call := parseCall(t, `f("s", 42, True, False, None)`)
	want := []any{"s", 42, true, false}
	for i, w := range want {
		got, err := Scalar(Arg(call, i, ""))
		if err != nil || got != w {
			t.Errorf("Scalar(arg %d) = %v, %v, want %v", i, got, err, w)
		}
	}
	if _, err := Scalar(Arg(call, 4, "")); err == nil {
		t.Error("Scalar(None) should fail")
	}
}

func TestCalls(t *testing.T) {
	call := parseCall(t, `f(ok = [v(name = "a"), v(name = "b")], wrong = [w()], notlist = v())`)

	calls, err := Calls(Arg(call, -1, "ok"), "v")
	if err != nil || len(calls) != 2 {
		t.Fatalf("Calls(ok) = %d calls, %v", len(calls), err)
	}
	if got, _ := String(Arg(calls[1], -1, "name")); got != "b" {
		t.Errorf("second call name = %q, want b", got)
	}

	var typeErr *TypeError
	if _, err := Calls(Arg(call, -1, "wrong"), "v"); !errors.As(err, &typeErr) {
		t.Errorf("Calls(wrong) error = %v, want *TypeError", err)
	} else if got := typeErr.Error(); got != "expected v(...), got w(...)" {
		t.Errorf("Error() = %q", got)
	}
	if _, err := Calls(Arg(call, -1, "notlist"), "v"); err == nil {
		t.Error("Calls(notlist) should fail")
	}
}

func TestFuncName(t *testing.T) {
	if got := FuncName(parseCall(t, `component("x")`)); got != "component" {
		t.Errorf("FuncName() = %q, want component", got)
	}
	if got := FuncName(parseCall(t, `ext.tag()`)); got != "" {
		t.Errorf("FuncName(method) = %q, want empty", got)
	}
}
