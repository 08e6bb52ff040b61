// Command artifactsel selects artifacts from a resolution snapshot and prints
// the tasks that must run first, and optionally the selected files.
//
// Usage:
//
//	artifactsel -snapshot compile.snapshot -attr format=jar
//	artifactsel -snapshot compile.snapshot -attr format=classes -resolve -hash
//	artifactsel -snapshot compile.snapshot -component project -lenient -json
//
// The exit status is 1 when any failure is reported and 2 on invalid usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	artifactset "github.com/albertocavalcante/go-artifactset"
	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/component"
	"github.com/albertocavalcante/go-artifactset/hashing"
	"github.com/albertocavalcante/go-artifactset/report"
	"github.com/albertocavalcante/go-artifactset/snapshot"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage error")

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	snapshot   string
	attrs      listFlag
	ignore     listFlag
	component  string
	lenient    bool
	resolve    bool
	hash       bool
	jsonOutput bool
	verbose    bool
	maxChain   int
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("artifactsel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.snapshot, "snapshot", "", "Resolution snapshot file (required)")
	fs.Var(&opts.attrs, "attr", "Requested attribute as name=value (repeatable)")
	fs.StringVar(&opts.component, "component", "", "Only select components whose display name starts with this prefix")
	fs.BoolVar(&opts.lenient, "lenient", false, "Skip components with no matching variant instead of failing")
	fs.BoolVar(&opts.resolve, "resolve", false, "Resolve and list the selected artifact files")
	fs.BoolVar(&opts.hash, "hash", false, "Hash resolved artifact files (implies -resolve)")
	fs.Var(&opts.ignore, "ignore", "Archive entry pattern to leave out of hashes (repeatable)")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "Log selection details to stderr")
	fs.IntVar(&opts.maxChain, "max-chain", 3, "Longest transform chain to consider")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if opts.snapshot == "" {
		fmt.Fprintln(stderr, "Error: -snapshot is required")
		fs.Usage()
		return exitUsage
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	code, err := selectArtifacts(ctx, opts, logger, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFailure
	}
	return code
}

func selectArtifacts(ctx context.Context, opts options, logger *slog.Logger, stdout io.Writer) (int, error) {
	requested, err := parseAttributes(opts.attrs)
	if err != nil {
		return exitUsage, err
	}
	resolve := opts.resolve || opts.hash

	res, err := snapshot.ParseFile(opts.snapshot, snapshot.Options{VerifyFiles: resolve})
	if err != nil {
		return exitFailure, err
	}
	for _, w := range res.Warnings {
		logger.Warn("snapshot", "warning", w.Error())
	}
	if res.HasErrors() {
		return exitFailure, res.Err()
	}

	set, err := artifactset.New(res.Resolution,
		artifactset.WithLogger(logger),
		artifactset.WithArtifactsResolved(resolve),
		artifactset.WithMaxTransformChain(opts.maxChain),
	)
	if err != nil {
		return exitFailure, err
	}

	var collectorOpts []report.CollectorOption
	if opts.hash {
		var hasher hashing.ContentHasher = hashing.Default{}
		if len(opts.ignore) > 0 {
			hasher = hashing.Ignoring{Hasher: hasher, Patterns: opts.ignore}
		}
		collectorOpts = append(collectorOpts, report.WithHasher(hasher))
	}
	deps := report.NewCollector(collectorOpts...)

	selected := set.Select(nil, requested, componentPrefix(opts.component), opts.lenient)
	selected.CollectBuildDependencies(deps)

	out := deps
	if resolve {
		// Failures are reported again when visiting; keep the tasks only.
		out = report.NewCollector(collectorOpts...)
		for _, t := range deps.Tasks() {
			out.VisitDependency(t)
		}
		if err := selected.VisitArtifacts(ctx, out); err != nil {
			return exitFailure, err
		}
	}

	if opts.jsonOutput {
		data, err := out.JSON()
		if err != nil {
			return exitFailure, err
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprint(stdout, out.Text())
	}

	if out.HasFailures() {
		return exitFailure, nil
	}
	return exitOK, nil
}

// parseAttributes reads name=value pairs. Values that parse as integers or
// booleans are typed accordingly, the same way snapshot files type them.
func parseAttributes(pairs []string) (attribute.Container, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return attribute.Empty(), fmt.Errorf("%w: -attr %q: want name=value", errUsage, pair)
		}
		values[name] = parseValue(value)
	}
	return attribute.FromMap(values)
}

func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func componentPrefix(prefix string) artifact.ComponentFilter {
	if prefix == "" {
		return nil
	}
	return func(id component.Identifier) bool {
		return strings.HasPrefix(id.DisplayName(), prefix)
	}
}
