// Package session is the editing boundary: one Session exclusively owns one
// page's grid, title and location, and serializes every mutation through a
// single mutex. The mutex doubles as the orchestrator's guard, so long-running
// collaborator calls release it and independent edits interleave safely.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pagesmith/internal/catalog"
	"pagesmith/internal/compose"
	"pagesmith/internal/grid"
	"pagesmith/internal/location"
	"pagesmith/internal/types"
)

// Config wires a Session.
type Config struct {
	Catalog *catalog.Catalog
	Orch    OrchestratorConfig

	// TitleTemplate is the org-level template for derived location-page
	// titles, e.g. "{{title}} in {{city}}, {{state}}". May be empty.
	TitleTemplate string

	Logger *zap.Logger
}

// OrchestratorConfig is compose.Config minus the guard, which the session
// supplies itself.
type OrchestratorConfig = compose.Config

// Session owns one page under edit.
type Session struct {
	mu sync.Mutex

	grid    *grid.Grid
	catalog *catalog.Catalog
	orch    *compose.Orchestrator
	deriver *location.Deriver
	log     *zap.Logger

	title           string
	metaDescription string
	locationID      string
}

// New builds a Session. The session's own mutex is installed as the
// orchestrator's guard; callers must not supply one.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Session{
		grid:    grid.New(),
		catalog: cfg.Catalog,
		deriver: location.NewDeriver(cfg.TitleTemplate, cfg.Logger),
		log:     cfg.Logger,
	}
	oc := cfg.Orch
	oc.Catalog = cfg.Catalog
	oc.Guard = &s.mu
	if oc.Logger == nil {
		oc.Logger = cfg.Logger
	}
	s.orch = compose.New(oc)
	return s
}

func (s *Session) page() compose.PageContext {
	return compose.PageContext{Title: s.title, Location: s.locationID}
}

// SetTitle updates the page title and busts derived location pages.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == s.title {
		return
	}
	s.title = title
	s.deriver.Invalidate()
}

// SetMetaDescription updates the meta description and busts derived pages.
func (s *Session) SetMetaDescription(meta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if meta == s.metaDescription {
		return
	}
	s.metaDescription = meta
	s.deriver.Invalidate()
}

// SetLocation switches the session's current editing location.
func (s *Session) SetLocation(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locationID = locationID
}

// Title returns the canonical page title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// InsertComponent creates a block for the component, inserts it at the
// target, and immediately composes it. If composition is rejected for lack of
// a page title the just-created block is removed again, so a failed insert
// leaves no trace.
func (s *Session) InsertComponent(ctx context.Context, componentID string, t grid.Target) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.catalog.Ref(componentID)
	if !ok {
		return "", &UnknownComponentError{ComponentID: componentID}
	}
	b := &types.ContentBlock{
		ID:           uuid.NewString(),
		ComponentRef: ref,
	}
	if !s.grid.InsertAt(t, b) {
		return "", &InvalidTargetError{Target: t}
	}

	if err := s.orch.ComposeBlock(ctx, s.grid, s.page(), b.ID, ""); err != nil {
		s.grid.RemoveBlock(b.ID)
		return "", err
	}
	return b.ID, nil
}

// MoveBlock relocates a block. A stale block id or target is a no-op.
func (s *Session) MoveBlock(blockID string, t grid.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.MoveBlock(blockID, t)
}

// RemoveBlock deletes a block. Any in-flight composition for it becomes a
// silent no-op on return.
func (s *Session) RemoveBlock(blockID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.RemoveBlock(blockID)
}

// AuthorBlock re-composes an existing block, optionally retitling it first.
// queryOverride, when non-empty, replaces the page title as the topic.
func (s *Session) AuthorBlock(ctx context.Context, blockID, header, queryOverride string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.grid.Block(blockID)
	if !ok {
		return nil
	}
	if header != "" {
		b.Header = header
	}
	return s.orch.ComposeBlock(ctx, s.grid, s.page(), blockID, queryOverride)
}

// UpdateBlockSettings routes a settings change through the diff engine.
func (s *Session) UpdateBlockSettings(ctx context.Context, blockID string, settings *types.AssortmentSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch.UpdateSettings(ctx, s.grid, s.page(), blockID, settings)
}

// FindActiveAssortmentBlock returns the first assortment block in grid
// order, if any. The grid does not forbid multiple assortment blocks; the
// first one is the page's active listing.
func (s *Session) FindActiveAssortmentBlock() (*types.ContentBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.grid.FindFirstByType(types.ComponentTypeAssortment)
	return b, b != nil
}

// ComposeAll composes every block currently in the grid, fanning the
// individual compositions out concurrently. Block ids are snapshotted up
// front; blocks inserted mid-flight are not picked up, removed ones no-op.
func (s *Session) ComposeAll(ctx context.Context) error {
	s.mu.Lock()
	var ids []string
	for _, b := range s.grid.Blocks() {
		ids = append(ids, b.ID)
	}
	s.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		eg.Go(func() error {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.orch.ComposeBlock(ctx, s.grid, s.page(), id, "")
		})
	}
	return eg.Wait()
}

// DeriveLocationPage returns the per-location variant of the page, derived
// lazily and cached per location id.
func (s *Session) DeriveLocationPage(loc types.Location) *types.LocationPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriver.Derive(s.grid, loc, s.title, s.metaDescription)
}

// Grid exposes the underlying grid for read-side rendering. Callers must
// treat it as read-only.
func (s *Session) Grid() *grid.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}
