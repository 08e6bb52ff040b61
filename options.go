package artifactset

import (
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-artifactset/attribute"
	"github.com/albertocavalcante/go-artifactset/transform"
)

// Option configures New.
type Option func(*config) error

type config struct {
	schema                  *attribute.Schema
	selectorCacheSize       int
	maxTransformChain       int
	artifactsResolved       bool
	dependencyFilterApplied bool

	// logger is nil for silent mode.
	logger *slog.Logger
}

// WithLogger sets a structured logger for selection diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	set, err := artifactset.New(res, artifactset.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithSchema sets the attribute schema used for variant matching.
func WithSchema(s *attribute.Schema) Option {
	return func(c *config) error {
		if s == nil {
			return fmt.Errorf("%w: schema is nil", ErrInvalidOption)
		}
		c.schema = s
		return nil
	}
}

// WithSelectorCacheSize sets how many variant selectors are cached.
func WithSelectorCacheSize(n int) Option {
	return func(c *config) error {
		c.selectorCacheSize = n
		return nil
	}
}

// WithMaxTransformChain bounds the length of transform chains. Zero disables
// transforms.
func WithMaxTransformChain(n int) Option {
	return func(c *config) error {
		c.maxTransformChain = n
		return nil
	}
}

// WithArtifactsResolved makes selections support VisitArtifacts.
func WithArtifactsResolved(resolved bool) Option {
	return func(c *config) error {
		c.artifactsResolved = resolved
		return nil
	}
}

// WithDependencyFilterApplied controls whether the dependency filter passed
// to Select narrows the reported unresolved dependencies. Defaults to true.
func WithDependencyFilterApplied(applied bool) Option {
	return func(c *config) error {
		c.dependencyFilterApplied = applied
		return nil
	}
}

func (c *config) validate() error {
	if c.selectorCacheSize <= 0 {
		return fmt.Errorf("%w: selector cache size must be positive, got %d", ErrInvalidOption, c.selectorCacheSize)
	}
	if c.maxTransformChain < 0 {
		return fmt.Errorf("%w: max transform chain must not be negative, got %d", ErrInvalidOption, c.maxTransformChain)
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}


func newConfig(opts ...Option) (*config, error) {
	c := &config{
		schema:                  attribute.DefaultSchema(),
		selectorCacheSize:       transform.DefaultCacheSize,
		maxTransformChain:       transform.DefaultMaxChainLength,
		dependencyFilterApplied: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
