package search

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagesmith/internal/types"
)

// anyLocation marks products not restricted to specific store locations.
const anyLocation = "all"

// ProductDoc is the indexed shape of one product record.
type ProductDoc struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Brand       string   `json:"brand" yaml:"brand"`
	Categories  []string `json:"categories" yaml:"categories"`
	Concepts    []string `json:"concepts" yaml:"concepts"`
	// Attributes hold "attr:value" identifiers, matching filter facets.
	Attributes []string `json:"attributes" yaml:"attributes"`
	Locations  []string `json:"locations" yaml:"locations"`
}

// BleveSearcher executes canonical queries against a bleve product index.
type BleveSearcher struct {
	index bleve.Index
	log   *zap.Logger
}

// productIndexMapping indexes the identifier-valued fields verbatim.
// Locations and attributes are opaque ids ("store-9", "color:black"); the
// standard analyzer would tokenize them and let "store-9" match "store-5"
// on the shared "store" token.
func productIndexMapping() mapping.IndexMapping {
	identifier := bleve.NewTextFieldMapping()
	identifier.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("locations", identifier)
	doc.AddFieldMappingsAt("attributes", identifier)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// OpenIndex opens an existing product index.
func OpenIndex(path string, log *zap.Logger) (*BleveSearcher, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open product index %s: %w", path, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BleveSearcher{index: index, log: log}, nil
}

// NewMemorySearcher builds an in-memory index over docs. Test and demo use.
func NewMemorySearcher(docs []ProductDoc, log *zap.Logger) (*BleveSearcher, error) {
	index, err := bleve.NewMemOnly(productIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}
	if err := indexDocs(index, docs); err != nil {
		index.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BleveSearcher{index: index, log: log}, nil
}

// BuildIndex creates (or replaces) the product index at path from docs.
func BuildIndex(path string, docs []ProductDoc) error {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	index, err := bleve.New(path, productIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index at %s: %w", path, err)
	}
	defer index.Close()
	return indexDocs(index, docs)
}

func indexDocs(index bleve.Index, docs []ProductDoc) error {
	batch := index.NewBatch()
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("product %d has no id", i)
		}
		if len(doc.Locations) == 0 {
			doc.Locations = []string{anyLocation}
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to batch product %s: %w", doc.ID, err)
		}
		// Submit every 100 documents to bound batch memory.
		if i%100 == 99 {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}
	return nil
}

// Close releases the underlying index.
func (s *BleveSearcher) Close() error { return s.index.Close() }

// Search executes a canonical query, returning products in relevance order
// with pinned SKUs first.
func (s *BleveSearcher) Search(ctx context.Context, q Query, locationID string) (*Result, error) {
	boolQuery := bleve.NewBooleanQuery()
	clauses := 0

	if q.Keywords != "" {
		kw := bleve.NewMatchQuery(q.Keywords)
		boolQuery.AddMust(kw)
		clauses++
	}
	for _, concept := range q.Concepts {
		mq := bleve.NewMatchQuery(concept)
		mq.SetField("concepts")
		boolQuery.AddMust(mq)
		clauses++
	}
	for _, category := range q.Categories {
		mq := bleve.NewMatchQuery(category)
		mq.SetField("categories")
		boolQuery.AddMust(mq)
		clauses++
	}
	for _, filter := range q.IncludedFilters {
		tq := bleve.NewTermQuery(filter)
		tq.SetField("attributes")
		boolQuery.AddMust(tq)
		clauses++
	}

	for _, category := range q.ExcludedCategories {
		mq := bleve.NewMatchQuery(category)
		mq.SetField("categories")
		boolQuery.AddMustNot(mq)
	}
	for _, filter := range q.ExcludedFilters {
		tq := bleve.NewTermQuery(filter)
		tq.SetField("attributes")
		boolQuery.AddMustNot(tq)
	}
	if q.ExcludedKeywords != "" {
		boolQuery.AddMustNot(bleve.NewMatchQuery(q.ExcludedKeywords))
	}
	if len(q.ExcludedSKUs) > 0 {
		boolQuery.AddMustNot(bleve.NewDocIDQuery(q.ExcludedSKUs))
	}

	if locationID != "" {
		loc := bleve.NewTermQuery(locationID)
		loc.SetField("locations")
		any := bleve.NewTermQuery(anyLocation)
		any.SetField("locations")
		boolQuery.AddMust(bleve.NewDisjunctionQuery(loc, any))
		clauses++
	}

	if clauses == 0 {
		// A pure-exclusion query still needs a positive clause.
		boolQuery.AddMust(bleve.NewMatchAllQuery())
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	req := bleve.NewSearchRequest(boolQuery)
	req.Size = maxResults
	req.Fields = []string{"*"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	products := make([]types.Product, 0, len(res.Hits))
	seenBrand := make(map[string]bool)
	var topScore, scoreSum float64

	for _, hit := range res.Hits {
		if q.CollapseBrands {
			if brand, _ := hit.Fields["brand"].(string); brand != "" {
				if seenBrand[brand] {
					continue
				}
				seenBrand[brand] = true
			}
		}
		products = append(products, productFromFields(hit.ID, hit.Fields))
		if hit.Score > topScore {
			topScore = hit.Score
		}
		scoreSum += hit.Score
	}

	// Pinned SKUs go first, fetched directly so a pin survives even when the
	// query would not have matched it.
	pinned, err := s.fetchByID(ctx, q.PinnedSKUs)
	if err != nil {
		s.log.Warn("failed to fetch pinned skus", zap.Error(err))
	} else if len(pinned) > 0 {
		merged := make([]types.Product, 0, len(pinned)+len(products))
		pinnedIDs := make(map[string]bool, len(pinned))
		for _, p := range pinned {
			merged = append(merged, p)
			pinnedIDs[p.ID] = true
		}
		for _, p := range products {
			if !pinnedIDs[p.ID] {
				merged = append(merged, p)
			}
		}
		products = merged
	}

	metrics := types.QualityMetrics{
		TotalResults: int(res.Total),
		TopScore:     topScore,
	}
	if n := len(res.Hits); n > 0 {
		metrics.MeanScore = scoreSum / float64(n)
	}

	return &Result{
		Products:       products,
		QualityMetrics: metrics,
		ResultKey:      uuid.NewString(),
	}, nil
}

// fetchByID retrieves products by document id, preserving input order.
func (s *BleveSearcher) fetchByID(ctx context.Context, ids []string) ([]types.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery(ids))
	req.Size = len(ids)
	req.Fields = []string{"*"}
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.Product, len(res.Hits))
	for _, hit := range res.Hits {
		byID[hit.ID] = productFromFields(hit.ID, hit.Fields)
	}
	out := make([]types.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// productFromFields rebuilds a product from stored hit fields. bleve returns
// single-valued arrays as bare values, so both shapes are handled.
func productFromFields(id string, fields map[string]any) types.Product {
	p := types.Product{ID: id}
	if name, ok := fields["name"].(string); ok {
		p.Name = name
	}
	if desc, ok := fields["description"].(string); ok {
		p.Description = desc
	}
	return p
}
