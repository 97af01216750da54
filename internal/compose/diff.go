package compose

import (
	"context"
	"time"

	"github.com/google/go-cmp/cmp"

	"pagesmith/internal/grid"
	"pagesmith/internal/types"
)

// UpdateSettings is the settings diff engine: given a block's new settings it
// decides what recomputation is warranted. Both under- and over-computation
// are bugs here; stale results and duplicate external calls are equally
// wrong.
//
// Two independent checks, both of which may fire on a single update:
//
//  1. searchType or searchParameters changed (deep comparison): re-run the
//     search. Items surviving from the previous result set keep their
//     accumulated pageContent; only new items are enriched per the content
//     flags.
//  2. contentSettings changed (deep comparison): run the enrichment loop
//     over all current items. The loop skips items that already carry the
//     relevant key.
//
// Applying identical settings twice is a no-op the second time.
func (o *Orchestrator) UpdateSettings(ctx context.Context, g *grid.Grid, page PageContext, blockID string, newSettings *types.AssortmentSettings) error {
	b, ok := g.Block(blockID)
	if !ok || newSettings == nil {
		return nil
	}

	old := b.Settings
	searchChanged := old == nil ||
		old.SearchType != newSettings.SearchType ||
		!cmp.Equal(old.SearchParameters, newSettings.SearchParameters)
	contentChanged := old == nil ||
		!cmp.Equal(old.ContentSettings, newSettings.ContentSettings)

	settings := *newSettings
	b.Settings = &settings
	b.LastUpdated = time.Now()

	if searchChanged {
		if err := o.rerunSearch(ctx, g, page, blockID); err != nil {
			return err
		}
	}

	if contentChanged {
		// Re-find: the search above may have removed or raced the block.
		if b, ok = g.Block(blockID); !ok {
			return nil
		}
		if b.Settings.ContentSettings.IncludeBlurbs {
			if err := o.EnrichBlock(ctx, g, page, blockID, KindBlurb, nil); err != nil {
				return err
			}
		}
		if b.Settings.ContentSettings.IncludeParagraphs {
			if err := o.EnrichBlock(ctx, g, page, blockID, KindParagraph, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// rerunSearch executes the block's search and partitions the returned items
// into existing (already present in the block's data, keeping their
// accumulated pageContent) and new (appended, enriched per content flags).
func (o *Orchestrator) rerunSearch(ctx context.Context, g *grid.Grid, page PageContext, blockID string) error {
	b, ok := g.Block(blockID)
	if !ok {
		return nil
	}
	b.IsComposing = true
	settings := *b.Settings

	res := o.doSearch(ctx, settings, page.Location)

	b, ok = g.Block(blockID)
	if !ok {
		return nil
	}
	b.IsComposing = false
	b.LastUpdated = time.Now()
	if res == nil {
		// Transient search failure: keep whatever stale data the block had.
		// Removing a working assortment block would be more destructive.
		return nil
	}

	previous := make(map[string]types.Product)
	if b.Data != nil {
		for _, p := range b.Data.Products {
			previous[p.ID] = p
		}
	}

	var existing, fresh []types.Product
	newIDs := make(map[string]bool)
	for _, p := range res.Products {
		prior, wasPresent := previous[p.ID]
		if wasPresent {
			// Copy forward previously accumulated enrichment; fresh
			// store-fetched values already on p win over stale ones.
			for key, value := range prior.PageContent {
				if p.PageContent == nil {
					p.PageContent = make(map[string]string)
				}
				if _, has := p.PageContent[key]; !has {
					p.PageContent[key] = value
				}
			}
			existing = append(existing, p)
			continue
		}
		newIDs[p.ID] = true
		fresh = append(fresh, p)
	}

	b.Data = &types.BlockData{Products: append(existing, fresh...)}
	b.QualityMetrics = &res.QualityMetrics
	b.ResultKey = res.ResultKey

	if len(newIDs) == 0 {
		return nil
	}
	if b.Settings.ContentSettings.IncludeBlurbs {
		if err := o.EnrichBlock(ctx, g, page, blockID, KindBlurb, newIDs); err != nil {
			return err
		}
	}
	if b.Settings.ContentSettings.IncludeParagraphs {
		if err := o.EnrichBlock(ctx, g, page, blockID, KindParagraph, newIDs); err != nil {
			return err
		}
	}
	return nil
}
