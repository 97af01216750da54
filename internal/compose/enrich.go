package compose

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pagesmith/internal/generation"
	"pagesmith/internal/grid"
	"pagesmith/internal/types"
)

// Kind names a per-item enrichment flavor. The prefix appears in the block's
// authoring index while the item is being written ("blurb3", "para1").
type Kind struct {
	Name   string
	Prefix string
}

var (
	// KindBlurb is the short per-item teaser.
	KindBlurb = Kind{Name: "blurb", Prefix: "blurb"}
	// KindParagraph is the long-form per-item section.
	KindParagraph = Kind{Name: "paragraph", Prefix: "para"}
)

// missingParagraphText is stored in memory (never written through) for items
// that lack the description a paragraph needs.
const missingParagraphText = "No description available to write about this item."

// EnrichBlock generates per-item content of the given kind for the block's
// items, sequentially and resiliently: each item re-locates the block, skips
// if content for the page title is already present, and a single item's
// failure never aborts the rest. When only is non-nil, items outside it are
// ignored entirely.
//
// Successful generations are written through to the content store so a later
// search for the same item starts enriched.
func (o *Orchestrator) EnrichBlock(ctx context.Context, g *grid.Grid, page PageContext, blockID string, kind Kind, only map[string]bool) error {
	b, ok := g.Block(blockID)
	if !ok || b.Data == nil {
		return nil
	}
	key := types.ContentKey(kind.Name, page.Title)

	// Snapshot the work queue up front: ids of items still missing content.
	// The loop re-resolves each item by id so concurrent mutations of the
	// block's data are tolerated.
	var queue []string
	for _, p := range b.Data.Products {
		if only != nil && !only[p.ID] {
			continue
		}
		if _, has := p.PageContent[key]; has {
			continue
		}
		queue = append(queue, p.ID)
	}
	if len(queue) == 0 {
		return nil
	}

	for _, id := range queue {
		if err := ctx.Err(); err != nil {
			o.clearAuthoringIndex(g, blockID)
			return err
		}
		b, ok = g.Block(blockID)
		if !ok {
			return nil
		}
		idx := productIndex(b, id)
		if idx < 0 {
			continue
		}
		item := &b.Data.Products[idx]
		if _, has := item.PageContent[key]; has {
			continue
		}
		// Numbered by the item's position within the block's data, so the
		// marker identifies which listed item is being written.
		b.AuthoringIndex = kind.Prefix + strconv.Itoa(idx+1)

		if kind == KindParagraph && item.Description == "" {
			// Nothing to write from; mark in memory so the loop does not
			// revisit, but never persist the placeholder.
			setItemContent(item, key, missingParagraphText)
			continue
		}

		var res *generation.Result
		var genErr error
		req := generation.Request{
			Topic:       page.Title,
			ComponentID: kind.Name,
			Header:      item.Name + ": " + item.Description,
		}
		o.unlocked(func() {
			res, genErr = o.generator.Generate(ctx, req)
		})

		b, ok = g.Block(blockID)
		if !ok {
			return nil
		}
		item = findProduct(b, id)
		if item == nil {
			continue
		}
		if genErr != nil || res == nil || res.Composition == "" {
			o.log.Warn("item enrichment failed",
				zap.String("block", blockID),
				zap.String("item", id),
				zap.String("kind", kind.Name),
				zap.Error(genErr))
			continue
		}
		setItemContent(item, key, res.Composition)
		b.LastUpdated = time.Now()

		itemID, text := id, res.Composition
		o.unlocked(func() {
			if err := o.content.SetPageContent(ctx, itemID, key, text); err != nil {
				o.log.Warn("content write-through failed",
					zap.String("item", itemID), zap.Error(err))
			}
		})
	}

	o.clearAuthoringIndex(g, blockID)
	return nil
}

func (o *Orchestrator) clearAuthoringIndex(g *grid.Grid, blockID string) {
	if b, ok := g.Block(blockID); ok {
		b.AuthoringIndex = ""
	}
}

// findProduct returns a pointer into the block's live data slice, or nil.
func findProduct(b *types.ContentBlock, id string) *types.Product {
	if i := productIndex(b, id); i >= 0 {
		return &b.Data.Products[i]
	}
	return nil
}

// productIndex returns the item's index within the block's data, or -1.
func productIndex(b *types.ContentBlock, id string) int {
	if b.Data == nil {
		return -1
	}
	for i := range b.Data.Products {
		if b.Data.Products[i].ID == id {
			return i
		}
	}
	return -1
}

func setItemContent(p *types.Product, key, value string) {
	if p.PageContent == nil {
		p.PageContent = make(map[string]string)
	}
	p.PageContent[key] = value
}

