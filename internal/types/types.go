// Package types provides shared type definitions used across pagesmith packages.
// This package exists to break import cycles between grid, compose, and session.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"strings"
	"time"
)

// ComponentType classifies what kind of content a component produces.
type ComponentType string

const (
	// ComponentTypeBlank is the placeholder component; it never triggers a
	// collaborator call.
	ComponentTypeBlank ComponentType = "blank"

	// ComponentTypeAssortment is the distinguished product-listing component.
	// Its settings carry the page's canonical search parameters.
	ComponentTypeAssortment ComponentType = "assortment"

	// ComponentTypeSearch marks components whose content comes from the
	// semantic-search collaborator.
	ComponentTypeSearch ComponentType = "search"

	// ComponentTypeText is a narrative text component filled by the
	// text-generation collaborator.
	ComponentTypeText ComponentType = "text"

	// ComponentTypeBullets holds an ordered list of strings (FAQ lists,
	// feature bullets).
	ComponentTypeBullets ComponentType = "bullets"
)

// Component is a descriptor from the shared component catalog. Blocks hold a
// ComponentRef to one of these; they never own the descriptor itself.
type Component struct {
	ComponentID  string         `yaml:"component_id" json:"componentId"`
	Name         string         `yaml:"name" json:"name"`
	Type         ComponentType  `yaml:"type" json:"componentType"`
	Settings     map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
	DisplayGroup string         `yaml:"display_group,omitempty" json:"displayGroup,omitempty"`
}

// ComponentRef is the slice of a Component a block carries around. Kept small
// so blocks can be compared and copied cheaply.
type ComponentRef struct {
	ComponentID string        `json:"componentId"`
	Name        string        `json:"name"`
	Type        ComponentType `json:"componentType"`
}

// Translation is a per-language rendering of block content.
type Translation struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// BlockContent is generated or hand-written copy for a block. Mutually
// exclusive in practice with BlockData.
type BlockContent struct {
	Text         string                 `json:"text"`
	HTML         string                 `json:"html"`
	Translations map[string]Translation `json:"translations,omitempty"`
}

// Clone returns a deep copy.
func (c *BlockContent) Clone() *BlockContent {
	if c == nil {
		return nil
	}
	out := &BlockContent{Text: c.Text, HTML: c.HTML}
	if c.Translations != nil {
		out.Translations = make(map[string]Translation, len(c.Translations))
		for k, v := range c.Translations {
			out.Translations[k] = v
		}
	}
	return out
}

// Product is one structured item in an assortment result set.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// PageContent accumulates per-item enrichment keyed by "kind|title".
	// Never discarded when a search re-runs and the item survives.
	PageContent map[string]string `json:"pageContent,omitempty"`

	Highlights               []string          `json:"highlights,omitempty"`
	SuppressedReviewExcerpts []string          `json:"suppressedReviewExcerpts,omitempty"`
	Images                   map[string]string `json:"images,omitempty"`
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	out := p
	if p.PageContent != nil {
		out.PageContent = make(map[string]string, len(p.PageContent))
		for k, v := range p.PageContent {
			out.PageContent[k] = v
		}
	}
	out.Highlights = append([]string(nil), p.Highlights...)
	out.SuppressedReviewExcerpts = append([]string(nil), p.SuppressedReviewExcerpts...)
	if p.Images != nil {
		out.Images = make(map[string]string, len(p.Images))
		for k, v := range p.Images {
			out.Images[k] = v
		}
	}
	return out
}

// BlockData is the structured payload of a block: either an ordered product
// result set or an ordered list of strings, never both.
type BlockData struct {
	Products []Product `json:"products,omitempty"`
	Strings  []string  `json:"strings,omitempty"`
}

// Clone returns a deep copy.
func (d *BlockData) Clone() *BlockData {
	if d == nil {
		return nil
	}
	out := &BlockData{Strings: append([]string(nil), d.Strings...)}
	if d.Products != nil {
		out.Products = make([]Product, len(d.Products))
		for i, p := range d.Products {
			out.Products[i] = p.Clone()
		}
	}
	return out
}

// Facet is one structured search narrowing criterion. Value is the canonical
// identifier the search backend understands; Label is display-only and is
// stripped before a query is executed.
type Facet struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// SearchParameters is the canonical, normalized query owned by an assortment
// block. Created with defaults when the block is authored, mutated by the
// facet-editing UI, diffed on every settings change.
type SearchParameters struct {
	Concepts           []Facet  `json:"concepts"`
	Categories         []Facet  `json:"categories"`
	ExcludedCategories []Facet  `json:"excludedCategories"`
	Keywords           string   `json:"keywords"`
	ExcludedKeywords   string   `json:"excludedKeywords"`
	IncludedFilters    []Facet  `json:"includedFilters"`
	ExcludedFilters    []Facet  `json:"excludedFilters"`
	PinnedSKUs         []string `json:"pinnedSkus"`
	ExcludedSKUs       []string `json:"excludedSkus"`
	MaxResults         int      `json:"maxResults"`
	CollapseBrands     bool     `json:"collapseBrands"`
	SearchLocation     string   `json:"searchLocation"`
}

// DefaultSearchParameters returns a freshly-defaulted value. maxResults falls
// back to 10 when the org default is zero.
func DefaultSearchParameters(orgMaxResults int, searchLocation string) SearchParameters {
	if orgMaxResults <= 0 {
		orgMaxResults = 10
	}
	return SearchParameters{
		Concepts:           []Facet{},
		Categories:         []Facet{},
		ExcludedCategories: []Facet{},
		IncludedFilters:    []Facet{},
		ExcludedFilters:    []Facet{},
		PinnedSKUs:         []string{},
		ExcludedSKUs:       []string{},
		MaxResults:         orgMaxResults,
		CollapseBrands:     false,
		SearchLocation:     searchLocation,
	}
}

// ContentSettings toggles per-item enrichment for an assortment block.
type ContentSettings struct {
	IncludeBlurbs     bool `json:"includeBlurbs"`
	IncludeParagraphs bool `json:"includeParagraphs"`
}

// AssortmentSettings is the structured settings value for assortment blocks.
type AssortmentSettings struct {
	SearchType       string           `json:"searchType"`
	SearchParameters SearchParameters `json:"searchParameters"`
	ContentSettings  ContentSettings  `json:"contentSettings"`
}

// Search types understood by the product search backend. Review and semantic
// searches ignore facet narrowing.
const (
	SearchTypeStandard = "standard"
	SearchTypeReview   = "review"
	SearchTypeSemantic = "semantic"
)

// QualityMetrics describes the outcome of the search that produced a block's
// data. Set only by searches.
type QualityMetrics struct {
	TotalResults int     `json:"totalResults"`
	TopScore     float64 `json:"topScore"`
	MeanScore    float64 `json:"meanScore"`
}

// ContentBlock is the atomic unit of page content.
type ContentBlock struct {
	ID           string       `json:"id"`
	ComponentRef ComponentRef `json:"componentRef"`
	Header       string       `json:"header,omitempty"`

	Content *BlockContent `json:"content,omitempty"`
	Data    *BlockData    `json:"data,omitempty"`

	Settings *AssortmentSettings `json:"settings,omitempty"`

	QualityMetrics *QualityMetrics `json:"qualityMetrics,omitempty"`
	ResultKey      string          `json:"resultKey,omitempty"`

	// IsComposing is true while an asynchronous generation/search call is
	// outstanding for this block. Transient, never persisted.
	IsComposing bool `json:"-"`

	// AuthoringIndex marks which item within Data is currently being
	// enriched, e.g. "blurb2". Empty when no per-item call is outstanding.
	AuthoringIndex string `json:"-"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// IsAssortment reports whether the block is the distinguished product-listing
// component type.
func (b *ContentBlock) IsAssortment() bool {
	return b.ComponentRef.Type == ComponentTypeAssortment
}

// Location identifies a city/state pair a page variant is derived for.
type Location struct {
	ID    string `json:"id" yaml:"id"`
	City  string `json:"city" yaml:"city"`
	State string `json:"state" yaml:"state"`
}

// SearchSettings is the verbatim carry-forward of an assortment block's
// canonical query on a derived location page. Assortment results are never
// textually templated.
type SearchSettings struct {
	SearchType       string           `json:"searchType"`
	SearchParameters SearchParameters `json:"searchParameters"`
	PageSettings     map[string]any   `json:"pageSettings,omitempty"`
}

// LocationBlock is a per-location override of one block's content.
type LocationBlock struct {
	Content *BlockContent `json:"content"`
}

// LocationPage is a derived, per-location override of page content. It never
// stores a full copy of the canonical grid, only the blocks whose content
// differs after placeholder substitution.
type LocationPage struct {
	LocationID      string                   `json:"locationId"`
	Title           string                   `json:"title"`
	MetaDescription string                   `json:"metaDescription"`
	SearchSettings  *SearchSettings          `json:"searchSettings,omitempty"`
	Blocks          map[string]LocationBlock `json:"blocks,omitempty"`
}

// ProductContent is the durable per-product auxiliary content fetched in one
// batched call after a search.
type ProductContent struct {
	PageContent              map[string]string `json:"pageContent,omitempty"`
	Highlights               []string          `json:"highlights,omitempty"`
	SuppressedReviewExcerpts []string          `json:"suppressedReviewExcerpts,omitempty"`
	Images                   map[string]string `json:"images,omitempty"`
}

// NormalizeTitle canonicalizes a page title for use in enrichment content
// keys: lower-cased, whitespace collapsed to single spaces.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// ContentKey builds the pageContent key for an enrichment kind and page title.
func ContentKey(kind, title string) string {
	return kind + "|" + NormalizeTitle(title)
}
