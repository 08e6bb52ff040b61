// Package buildutil extracts typed values from buildtools call expressions.
//
// Lookups return the offending expression in a *TypeError, so callers can
// report a position for every malformed argument.
package buildutil

import (
	"fmt"
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// TypeError reports an expression of the wrong kind.
type TypeError struct {
	Expr build.Expr
	Want string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, Describe(e.Expr))
}

// Describe names the kind of expr for diagnostics.
func Describe(expr build.Expr) string {
	switch e := expr.(type) {
	case nil:
		return "nothing"
	case *build.StringExpr:
		return "string"
	case *build.LiteralExpr:
		return "literal " + e.Token
	case *build.Ident:
		return "identifier " + e.Name
	case *build.ListExpr:
		return "list"
	case *build.DictExpr:
		return "dict"
	case *build.CallExpr:
		if name := FuncName(e); name != "" {
			return name + "(...)"
		}
		return "call"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// Arg returns the keyword argument name, or else the positional argument at
// index pos. A negative pos disables positional lookup. It returns nil when
// neither exists.
func Arg(call *build.CallExpr, pos int, name string) build.Expr {
	if kw := Keyword(call, name); kw != nil {
		return kw
	}
	return Positional(call, pos)
}

// Keyword returns the value of the keyword argument name, or nil.
func Keyword(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		if assign, ok := arg.(*build.AssignExpr); ok {
			if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
				return assign.RHS
			}
		}
	}
	return nil
}

// Positional returns the positional argument at index pos, skipping keyword
// arguments, or nil. A negative pos always yields nil.
func Positional(call *build.CallExpr, pos int) build.Expr {
	if pos < 0 {
		return nil
	}
	i := 0
	for _, arg := range call.List {
		if _, ok := arg.(*build.AssignExpr); ok {
			continue
		}
		if i == pos {
			return arg
		}
		i++
	}
	return nil
}

// KeywordNames lists the keyword argument names of call in source order.
func KeywordNames(call *build.CallExpr) []string {
	var names []string
	for _, arg := range call.List {
		if assign, ok := arg.(*build.AssignExpr); ok {
			if lhs, ok := assign.LHS.(*build.Ident); ok {
				names = append(names, lhs.Name)
			}
		}
	}
	return names
}

// String converts a string literal.
func String(expr build.Expr) (string, error) {
	if s, ok := expr.(*build.StringExpr); ok {
		return s.Value, nil
	}
	return "", &TypeError{Expr: expr, Want: "string"}
}

// StringList converts a list of string literals. A nil expr yields an empty
// list.
func StringList(expr build.Expr) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	list, ok := expr.(*build.ListExpr)
	if !ok {
		return nil, &TypeError{Expr: expr, Want: "list of strings"}
	}
	result := make([]string, 0, len(list.List))
	for _, elem := range list.List {
		s, err := String(elem)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// Scalar converts a string, integer, True or False literal.
func Scalar(expr build.Expr) (any, error) {
	switch e := expr.(type) {
	case *build.StringExpr:
		return e.Value, nil
	case *build.LiteralExpr:
		if val, err := strconv.Atoi(e.Token); err == nil {
			return val, nil
		}
	case *build.Ident:
		switch e.Name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
	}
	return nil, &TypeError{Expr: expr, Want: "string, integer or boolean"}
}

// Dict converts a dict with string keys and scalar values. A nil expr yields
// an empty map.
func Dict(expr build.Expr) (map[string]any, error) {
	result := make(map[string]any)
	if expr == nil {
		return result, nil
	}
	dict, ok := expr.(*build.DictExpr)
	if !ok {
		return nil, &TypeError{Expr: expr, Want: "dict"}
	}
	for _, kv := range dict.List {
		key, err := String(kv.Key)
		if err != nil {
			return nil, err
		}
		val, err := Scalar(kv.Value)
		if err != nil {
			return nil, err
		}
		result[key] = val
	}
	return result, nil
}

// Calls converts a list whose elements are all calls to fn. A nil expr
// yields no calls.
func Calls(expr build.Expr, fn string) ([]*build.CallExpr, error) {
	if expr == nil {
		return nil, nil
	}
	list, ok := expr.(*build.ListExpr)
	if !ok {
		return nil, &TypeError{Expr: expr, Want: "list of " + fn + "(...)"}
	}
	calls := make([]*build.CallExpr, 0, len(list.List))
	for _, elem := range list.List {
		call, ok := elem.(*build.CallExpr)
		if !ok || FuncName(call) != fn {
			return nil, &TypeError{Expr: elem, Want: fn + "(...)"}
		}
		calls = append(calls, call)
	}
	return calls, nil
}
