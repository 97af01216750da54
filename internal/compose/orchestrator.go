package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pagesmith/internal/catalog"
	"pagesmith/internal/generation"
	"pagesmith/internal/grid"
	"pagesmith/internal/search"
	"pagesmith/internal/semantic"
	"pagesmith/internal/types"
)

// ComposeBlock decides which external capability the block requires and
// folds the result back. Dispatch order, first match wins:
//
//  1. blank placeholder, or narrative text with no header: sentinel blank
//     result, no external call
//  2. assortment: parse the topic into facets, seed fresh search parameters,
//     run the product search
//  3. "search" component type: semantic search; the block is removed on
//     failure
//  4. everything else: text generation with preface and section context; the
//     block is removed on failure
//
// A stale blockID is a silent no-op.
func (o *Orchestrator) ComposeBlock(ctx context.Context, g *grid.Grid, page PageContext, blockID, queryOverride string) error {
	b, ok := g.Block(blockID)
	if !ok {
		return nil
	}

	topic := queryOverride
	if topic == "" {
		topic = page.Title
	}

	switch {
	case b.ComponentRef.ComponentID == catalog.BlankComponentID,
		b.ComponentRef.Type == types.ComponentTypeText && b.Header == "":
		// Sentinel blank result: the block exists but carries no copy yet.
		b.Content = &types.BlockContent{}
		b.LastUpdated = time.Now()
		return nil

	case b.ComponentRef.Type == types.ComponentTypeAssortment:
		return o.composeAssortment(ctx, g, page, blockID, topic)

	case b.ComponentRef.Type == types.ComponentTypeSearch:
		return o.composeSemantic(ctx, g, blockID, topic)

	default:
		return o.composeText(ctx, g, page, blockID, topic)
	}
}

// composeAssortment seeds canonical search parameters from the parsed topic
// and executes the product search.
func (o *Orchestrator) composeAssortment(ctx context.Context, g *grid.Grid, page PageContext, blockID, topic string) error {
	if topic == "" {
		o.notifier.Notify("Add a page title before authoring a product listing.")
		return ErrNoPageTitle
	}

	b, _ := g.Block(blockID)
	b.IsComposing = true
	b.LastUpdated = time.Now()

	var parsed *search.ParsedQuery
	var parseErr error
	o.unlocked(func() {
		parsed, parseErr = o.parser.Parse(ctx, topic)
	})

	// The parse may have raced a removal.
	b, ok := g.Block(blockID)
	if !ok {
		return nil
	}
	if parseErr != nil {
		b.IsComposing = false
		o.log.Warn("query parse failed", zap.String("block", blockID), zap.Error(parseErr))
		o.notifier.Notify(fmt.Sprintf("Could not interpret %q: %v", topic, parseErr))
		return nil
	}

	params := types.DefaultSearchParameters(o.defaultMaxResults, page.Location)
	params.Concepts = parsed.Concepts
	params.IncludedFilters = parsed.IncludedFilters
	params.ExcludedFilters = parsed.ExcludedFilters
	params.Keywords = parsed.Keywords
	params.ExcludedKeywords = parsed.ExcludedKeywords

	b.Settings = &types.AssortmentSettings{
		SearchType:       types.SearchTypeStandard,
		SearchParameters: params,
	}

	res := o.doSearch(ctx, *b.Settings, page.Location)

	b, ok = g.Block(blockID)
	if !ok {
		return nil
	}
	b.IsComposing = false
	b.LastUpdated = time.Now()
	if res != nil {
		b.Data = &types.BlockData{Products: res.Products}
		b.QualityMetrics = &res.QualityMetrics
		b.ResultKey = res.ResultKey
	}
	return nil
}

// composeSemantic fills the block from the semantic-search collaborator. A
// failed semantic-search block cannot exist with no content; it is removed.
func (o *Orchestrator) composeSemantic(ctx context.Context, g *grid.Grid, blockID, topic string) error {
	b, _ := g.Block(blockID)
	b.IsComposing = true
	b.LastUpdated = time.Now()

	var res *semantic.Result
	var err error
	o.unlocked(func() {
		res, err = o.semantic.SemanticSearch(ctx, semantic.Request{
			Topic:       topic,
			ComponentID: b.ComponentRef.ComponentID,
		})
	})

	b, ok := g.Block(blockID)
	if !ok {
		return nil
	}
	b.IsComposing = false
	b.LastUpdated = time.Now()

	if err != nil {
		o.log.Warn("semantic search failed", zap.String("block", blockID), zap.Error(err))
		o.notifier.Notify(fmt.Sprintf("Semantic search failed: %v", err))
		g.RemoveBlock(blockID)
		return nil
	}

	b.Data = &types.BlockData{Products: res.Products}
	if b.Header == "" {
		b.Header = res.Header
	}
	return nil
}

// composeText fills a narrative block via the text-generation collaborator,
// feeding it the preface of all prior generated copy and the section's
// position for continuity. The block is removed on failure.
func (o *Orchestrator) composeText(ctx context.Context, g *grid.Grid, page PageContext, blockID, topic string) error {
	if topic == "" {
		o.notifier.Notify("Add a page title before authoring content.")
		return ErrNoPageTitle
	}

	b, _ := g.Block(blockID)
	req := generation.Request{
		Topic:          topic,
		ComponentID:    b.ComponentRef.ComponentID,
		Header:         b.Header,
		Preface:        buildPreface(g, blockID),
		SectionContext: buildSectionContext(g, blockID),
	}
	if b.Content != nil {
		req.Content = b.Content.Text
	}

	b.IsComposing = true
	b.LastUpdated = time.Now()

	var res *generation.Result
	var err error
	o.unlocked(func() {
		res, err = o.generator.Generate(ctx, req)
	})

	b, ok := g.Block(blockID)
	if !ok {
		return nil
	}
	b.IsComposing = false
	b.LastUpdated = time.Now()

	if err != nil {
		o.log.Warn("generation failed", zap.String("block", blockID), zap.Error(err))
		o.notifier.Notify(fmt.Sprintf("Content generation failed: %v", err))
		g.RemoveBlock(blockID)
		return nil
	}

	if b.ComponentRef.Type == types.ComponentTypeBullets && len(res.Data) > 0 {
		b.Data = &types.BlockData{Strings: res.Data}
		return nil
	}
	b.Content = &types.BlockContent{
		Text: res.Composition,
		HTML: textToHTML(res.Composition),
	}
	return nil
}

// buildPreface concatenates all prior blocks' already-generated text in grid
// order up to (not including) the block.
func buildPreface(g *grid.Grid, blockID string) string {
	var parts []string
	for _, b := range g.Blocks() {
		if b.ID == blockID {
			break
		}
		if b.Content != nil && b.Content.Text != "" {
			parts = append(parts, b.Content.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// buildSectionContext names the block's ordinal position and, if available,
// the previous section's header and content for narrative continuity.
func buildSectionContext(g *grid.Grid, blockID string) string {
	blocks := g.Blocks()
	ordinal := 0
	var prev *types.ContentBlock
	for i, b := range blocks {
		if b.ID == blockID {
			ordinal = i + 1
			if i > 0 {
				prev = blocks[i-1]
			}
			break
		}
	}
	if ordinal == 0 {
		return ""
	}

	ctx := fmt.Sprintf("This is section %d of %d.", ordinal, len(blocks))
	if prev != nil {
		if prev.Header != "" {
			ctx += fmt.Sprintf(" The previous section is titled %q.", prev.Header)
		}
		if prev.Content != nil && prev.Content.Text != "" {
			ctx += fmt.Sprintf(" It reads: %s", truncate(prev.Content.Text, 240))
		}
	}
	return ctx
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// textToHTML wraps plain paragraphs in <p> tags.
func textToHTML(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	var b strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	return b.String()
}
