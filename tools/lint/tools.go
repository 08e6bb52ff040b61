//go:build tools

// Package lint contains development tool dependencies.
// It is a separate module so the library's go.mod only lists what the code imports.
//
// Usage from project root:
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint
