// Package location derives per-location page variants from canonical content
// via placeholder substitution. Canonical content is never mutated; a derived
// page holds only the blocks whose content actually changed.
package location

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"pagesmith/internal/grid"
	"pagesmith/internal/types"
)

// Substitute replaces the {{city}}, {{state}} and {{title}} placeholders in
// both fields of the content. defaultTitle is the page's canonical,
// non-located title. Substitution is total: nil in, nil out, never an error.
// The input is not mutated.
func Substitute(content *types.BlockContent, loc types.Location, defaultTitle string) *types.BlockContent {
	if content == nil {
		return nil
	}
	r := strings.NewReplacer(
		"{{city}}", loc.City,
		"{{state}}", loc.State,
		"{{title}}", defaultTitle,
	)
	out := content.Clone()
	out.Text = r.Replace(content.Text)
	out.HTML = r.Replace(content.HTML)
	return out
}

// Deriver computes location pages from a canonical grid and caches them per
// location id. A cached page stays valid until the canonical title, meta
// description or title template changes; content edits do not bust the cache,
// the owning session re-derives explicitly after them.
type Deriver struct {
	mu sync.Mutex

	// titleTemplate, when non-empty, produces the derived page's title via
	// the same placeholder substitution (e.g. "{{title}} in {{city}}").
	titleTemplate string
	cache         map[string]*types.LocationPage
	log           *zap.Logger
}

// NewDeriver builds a Deriver with the org-level title template, which may be
// empty.
func NewDeriver(titleTemplate string, log *zap.Logger) *Deriver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deriver{
		titleTemplate: titleTemplate,
		cache:         make(map[string]*types.LocationPage),
		log:           log,
	}
}

// Invalidate drops all cached pages. Called on title, meta-description or
// template changes.
func (d *Deriver) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = make(map[string]*types.LocationPage)
}

// SetTitleTemplate replaces the template and busts the cache.
func (d *Deriver) SetTitleTemplate(template string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if template == d.titleTemplate {
		return
	}
	d.titleTemplate = template
	d.cache = make(map[string]*types.LocationPage)
}

// Derive returns the location page for loc, computing and caching it on the
// first request. title and metaDescription are the page's canonical values.
func (d *Deriver) Derive(g *grid.Grid, loc types.Location, title, metaDescription string) *types.LocationPage {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page, ok := d.cache[loc.ID]; ok {
		return page
	}
	page := d.derive(g, loc, title, metaDescription)
	d.cache[loc.ID] = page
	return page
}

func (d *Deriver) derive(g *grid.Grid, loc types.Location, title, metaDescription string) *types.LocationPage {
	page := &types.LocationPage{
		LocationID:      loc.ID,
		Title:           d.deriveTitle(loc, title),
		MetaDescription: substituteString(metaDescription, loc, title),
	}

	for _, b := range g.Blocks() {
		if b.ComponentRef.Type == types.ComponentTypeAssortment {
			// Assortment results are never textually templated; the first
			// assortment block's canonical query is carried verbatim.
			if page.SearchSettings == nil && b.Settings != nil {
				page.SearchSettings = &types.SearchSettings{
					SearchType:       b.Settings.SearchType,
					SearchParameters: b.Settings.SearchParameters,
				}
			}
			continue
		}
		derived := Substitute(b.Content, loc, title)
		if derived == nil || (derived.Text == b.Content.Text && derived.HTML == b.Content.HTML) {
			continue
		}
		if page.Blocks == nil {
			page.Blocks = make(map[string]types.LocationBlock)
		}
		page.Blocks[b.ID] = types.LocationBlock{Content: derived}
	}

	d.log.Debug("derived location page",
		zap.String("location", loc.ID),
		zap.Int("overrides", len(page.Blocks)))
	return page
}

// deriveTitle applies the org title template when one exists; otherwise the
// canonical title passes through with placeholders substituted.
func (d *Deriver) deriveTitle(loc types.Location, title string) string {
	if d.titleTemplate != "" {
		return substituteString(d.titleTemplate, loc, title)
	}
	return substituteString(title, loc, title)
}

func substituteString(s string, loc types.Location, defaultTitle string) string {
	if s == "" {
		return ""
	}
	return strings.NewReplacer(
		"{{city}}", loc.City,
		"{{state}}", loc.State,
		"{{title}}", defaultTitle,
	).Replace(s)
}
