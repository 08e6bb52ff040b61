package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/albertocavalcante/go-artifactset/artifact"
	"github.com/albertocavalcante/go-artifactset/attribute"
)

const (
	// DefaultCacheSize is the number of selectors kept by a Registry.
	DefaultCacheSize = 256
	// DefaultMaxChainLength bounds the transform chains a Registry considers.
	DefaultMaxChainLength = 3
)

// ErrInvalidOption is returned by NewRegistry for out-of-range options.
var ErrInvalidOption = errors.New("transform: invalid option")

// Option configures a Registry.
type Option func(*config) error

type config struct {
	cacheSize      int
	maxChainLength int
	logger         *slog.Logger
}

// WithCacheSize sets how many selectors the registry keeps.
func WithCacheSize(n int) Option {
	return func(c *config) error {
		c.cacheSize = n
		return nil
	}
}

// WithMaxChainLength bounds the number of transforms in one chain. Zero
// disables transforms altogether.
func WithMaxChainLength(n int) Option {
	return func(c *config) error {
		c.maxChainLength = n
		return nil
	}
}

// WithLogger sets the logger for selector and chain diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

func (c *config) validate() error {
	if c.cacheSize <= 0 {
		return fmt.Errorf("%w: cache size must be positive, got %d", ErrInvalidOption, c.cacheSize)
	}
	if c.maxChainLength < 0 {
		return fmt.Errorf("%w: max chain length must not be negative, got %d", ErrInvalidOption, c.maxChainLength)
	}
	return nil
}

// Registry holds the registered transforms and hands out variant selectors.
type Registry struct {
	schema         *attribute.Schema
	transforms     []Transform
	maxChainLength int
	logger         *slog.Logger
	selectors      *lru.Cache[string, artifact.VariantSelector]
}

var _ artifact.SelectorFactory = (*Registry)(nil)

// NewRegistry returns a registry matching attributes with schema. A nil
// schema means attribute.DefaultSchema().
func NewRegistry(schema *attribute.Schema, transforms []Transform, opts ...Option) (*Registry, error) {
	cfg := config{
		cacheSize:      DefaultCacheSize,
		maxChainLength: DefaultMaxChainLength,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(transforms))
	for _, t := range transforms {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if names[t.Name] {
			return nil, fmt.Errorf("transform %q registered more than once", t.Name)
		}
		names[t.Name] = true
	}
	if schema == nil {
		schema = attribute.DefaultSchema()
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cache, err := lru.New[string, artifact.VariantSelector](cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{
		schema:         schema,
		transforms:     slices.Clone(transforms),
		maxChainLength: cfg.maxChainLength,
		logger:         logger,
		selectors:      cache,
	}, nil
}

// Transforms returns the registered transforms in registration order.
func (r *Registry) Transforms() []Transform {
	return slices.Clone(r.transforms)
}

// VariantSelector returns the selector for one request. Selectors are cached,
// so equal requests share one selector.
func (r *Registry) VariantSelector(requested attribute.Container, allowNoMatchingVariant bool) artifact.VariantSelector {
	key := selectorKey(requested, allowNoMatchingVariant)
	if s, ok := r.selectors.Get(key); ok {
		r.logger.Debug("selector cache hit", "requested", requested.String(), "allowNoMatchingVariant", allowNoMatchingVariant)
		return s
	}
	s := &selector{
		registry:     r,
		requested:    requested,
		allowNoMatch: allowNoMatchingVariant,
	}
	r.selectors.Add(key, s)
	r.logger.Debug("selector created", "requested", requested.String(), "allowNoMatchingVariant", allowNoMatchingVariant)
	return s
}

// CachedSelectors returns the number of selectors currently cached.
func (r *Registry) CachedSelectors() int {
	return r.selectors.Len()
}

func selectorKey(requested attribute.Container, allowNoMatch bool) string {
	if allowNoMatch {
		return "lenient|" + requested.Key()
	}
	return "strict|" + requested.Key()
}
