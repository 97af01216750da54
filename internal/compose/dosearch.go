package compose

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagesmith/internal/search"
	"pagesmith/internal/types"
)

// doSearch builds the canonical query, executes the product search, and
// enriches returned items with durable per-product page content in one
// batched fetch. Returns nil on failure; the only error side effect is a
// user-visible notification.
//
// Freshly fetched auxiliary values win over any stale ones already on an
// item; accumulated pageContent keys are merged, store values preferred.
func (o *Orchestrator) doSearch(ctx context.Context, settings types.AssortmentSettings, sessionLocation string) *search.Result {
	q := search.GetSearchQuery(settings)

	locationID := settings.SearchParameters.SearchLocation
	if locationID == "" {
		locationID = sessionLocation
	}

	var res *search.Result
	var err error
	o.unlocked(func() {
		res, err = o.products.Search(ctx, q, locationID)
	})
	if err != nil {
		o.log.Warn("product search failed", zap.Error(err))
		o.notifier.Notify(fmt.Sprintf("Product search failed: %v", err))
		return nil
	}
	if res == nil || len(res.Products) == 0 {
		return res
	}

	ids := make([]string, len(res.Products))
	for i, p := range res.Products {
		ids[i] = p.ID
	}

	var contents map[string]types.ProductContent
	o.unlocked(func() {
		contents, err = o.content.GetPageContent(ctx, ids)
	})
	if err != nil {
		// Auxiliary content is additive; results remain usable without it.
		o.log.Warn("page content fetch failed", zap.Error(err))
		return res
	}

	for i := range res.Products {
		mergeProductContent(&res.Products[i], contents[res.Products[i].ID])
	}
	return res
}

// mergeProductContent folds fetched auxiliary content onto a product,
// preferring fresh values over stale ones.
func mergeProductContent(p *types.Product, content types.ProductContent) {
	if len(content.Highlights) > 0 {
		p.Highlights = content.Highlights
	}
	if len(content.SuppressedReviewExcerpts) > 0 {
		p.SuppressedReviewExcerpts = content.SuppressedReviewExcerpts
	}
	if len(content.Images) > 0 {
		if p.Images == nil {
			p.Images = make(map[string]string, len(content.Images))
		}
		for template, url := range content.Images {
			p.Images[template] = url
		}
	}
	if len(content.PageContent) > 0 {
		if p.PageContent == nil {
			p.PageContent = make(map[string]string, len(content.PageContent))
		}
		for key, value := range content.PageContent {
			p.PageContent[key] = value
		}
	}
}
