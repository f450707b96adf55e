package engine

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultVerifyCacheSize is the number of verified certificates kept in
// memory when WithVerifyCacheSize is not given.
const DefaultVerifyCacheSize = 256

// PrerequisitePolicy controls whether locked modules may be completed.
type PrerequisitePolicy int

const (
	// PrerequisitesAdvisory reports lock state but never blocks completion.
	PrerequisitesAdvisory PrerequisitePolicy = iota

	// PrerequisitesEnforced rejects completion of a locked module with
	// ErrCodePrerequisites.
	PrerequisitesEnforced
)

// String returns the config name of the policy.
func (p PrerequisitePolicy) String() string {
	if p == PrerequisitesEnforced {
		return "enforced"
	}
	return "advisory"
}

// Engine evaluates learner activity against the catalog and records the
// resulting progress, certificates and badges.
//
// Thread-safety: Engine is safe for concurrent use. Its only mutable state is
// the verified-certificate cache, which is internally locked; all other
// coordination happens in the store.
type Engine struct {
	catalog  Catalog
	store    Store
	clock    Clock
	codes    CodeGenerator
	ids      IDGenerator
	counters Counters
	policy   PrerequisitePolicy
	logger   *slog.Logger

	cacheSize int
	verified  *lru.Cache // code -> model.Certificate
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithCodeGenerator overrides certificate code generation.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(e *Engine) {
		e.codes = g
	}
}

// WithIDGenerator overrides row ID generation for certificates and awards.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithCounters supplies webinar and login-streak counts. Without it, the
// count carried by the triggering Event is used.
func WithCounters(c Counters) Option {
	return func(e *Engine) {
		e.counters = c
	}
}

// WithPrerequisitePolicy sets the prerequisite policy.
// Default: PrerequisitesAdvisory.
func WithPrerequisitePolicy(p PrerequisitePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithVerifyCacheSize bounds the verified-certificate cache. Zero or a
// negative size disables caching.
func WithVerifyCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// New creates an Engine over a catalog and store.
func New(cat Catalog, s Store, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		store:   s,
		clock:   SystemClock{},
		codes:   RandomCodeGenerator{},
		ids:     UUIDv7Generator{},
		policy:  PrerequisitesAdvisory,
		logger:  slog.Default(),

		cacheSize: DefaultVerifyCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		e.verified, _ = lru.New(e.cacheSize)
	}
	return e
}

// SeedBadges writes the catalog's badge definitions to the store.
// It is safe to call on every start.
func (e *Engine) SeedBadges(ctx context.Context) error {
	badges := e.catalog.Badges()
	if len(badges) == 0 {
		return nil
	}
	if err := e.store.UpsertBadges(ctx, badges); err != nil {
		return persistence("seed badges", err)
	}
	e.logger.Debug("badges seeded", "count", len(badges))
	return nil
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}
