// Package compose is the composition orchestration engine: it decides which
// external capability a block requires (text generation, product search, or
// semantic search), executes it, and folds the result back into the grid. It
// also houses the settings diff engine and the per-item enrichment loop.
//
// The engine follows a single-threaded, event-driven mutation model. Every
// collaborator call is made with the session guard released, and every
// fold-back re-locates its block by id afterwards; a not-found lookup is a
// silent no-op, never an error.
package compose

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pagesmith/internal/catalog"
	"pagesmith/internal/generation"
	"pagesmith/internal/search"
	"pagesmith/internal/semantic"
	"pagesmith/internal/store"
	"pagesmith/internal/types"
)

// ErrNoPageTitle is returned when authoring is attempted with neither a page
// title nor an explicit query override. The caller removes the offending
// block if it was just created; the operation is never retried automatically.
var ErrNoPageTitle = errors.New("authoring requires a page title or query override")

// Notifier surfaces user-visible messages. All collaborator failures are
// converted to notifications at this boundary; none propagate as faults.
type Notifier interface {
	Notify(message string)
}

// NopNotifier drops all messages.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string) {}

// Guard is the session's mutual exclusion handle. The orchestrator releases
// it for the duration of every collaborator call and re-acquires it before
// touching the grid again.
type Guard interface {
	Lock()
	Unlock()
}

type nopGuard struct{}

func (nopGuard) Lock()   {}
func (nopGuard) Unlock() {}

// ContentStore is the durable per-product content collaborator.
type ContentStore interface {
	GetPageContent(ctx context.Context, ids []string) (map[string]types.ProductContent, error)
	SetPageContent(ctx context.Context, id, key, value string) error
}

// PageContext carries the page-level inputs a dispatch needs.
type PageContext struct {
	// Title is the page's canonical (non-located) title.
	Title string
	// Location is the session's current editing location id.
	Location string
}

// Config wires an Orchestrator.
type Config struct {
	Catalog   *catalog.Catalog
	Parser    search.Parser
	Products  search.Searcher
	Semantic  semantic.Searcher
	Generator generation.Generator
	Content   ContentStore
	Notifier  Notifier
	Guard     Guard
	Logger    *zap.Logger

	// DefaultMaxResults seeds SearchParameters for new assortment blocks.
	DefaultMaxResults int
}

// Orchestrator dispatches per-block composition and folds results back.
type Orchestrator struct {
	catalog   *catalog.Catalog
	parser    search.Parser
	products  search.Searcher
	semantic  semantic.Searcher
	generator generation.Generator
	content   ContentStore
	notifier  Notifier
	guard     Guard
	log       *zap.Logger

	defaultMaxResults int
}

// New builds an Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Guard == nil {
		cfg.Guard = nopGuard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Orchestrator{
		catalog:           cfg.Catalog,
		parser:            cfg.Parser,
		products:          cfg.Products,
		semantic:          cfg.Semantic,
		generator:         cfg.Generator,
		content:           cfg.Content,
		notifier:          cfg.Notifier,
		guard:             cfg.Guard,
		log:               cfg.Logger,
		defaultMaxResults: cfg.DefaultMaxResults,
	}
}

// unlocked runs fn with the session guard released. Used around every
// collaborator call so independent session operations can interleave.
func (o *Orchestrator) unlocked(fn func()) {
	o.guard.Unlock()
	defer o.guard.Lock()
	fn()
}

// make the store.ContentStore satisfy the interface at compile time
var _ ContentStore = (*store.ContentStore)(nil)
