package compose

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pagesmith/internal/generation"
	"pagesmith/internal/grid"
	"pagesmith/internal/search"
	"pagesmith/internal/semantic"
	"pagesmith/internal/types"
)

// --- collaborator fakes -----------------------------------------------------

type fakeParser struct {
	parsed *search.ParsedQuery
	err    error
	calls  int
}

func (f *fakeParser) Parse(ctx context.Context, query string) (*search.ParsedQuery, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.parsed != nil {
		return f.parsed, nil
	}
	return &search.ParsedQuery{Keywords: query}, nil
}

type fakeSearcher struct {
	products []types.Product
	err      error
	calls    int
	lastQ    search.Query
	lastLoc  string
}

func (f *fakeSearcher) Search(ctx context.Context, q search.Query, locationID string) (*search.Result, error) {
	f.calls++
	f.lastQ = q
	f.lastLoc = locationID
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Product, len(f.products))
	for i, p := range f.products {
		out[i] = p.Clone()
	}
	return &search.Result{
		Products:       out,
		QualityMetrics: types.QualityMetrics{TotalResults: len(out)},
		ResultKey:      fmt.Sprintf("result-%d", f.calls),
	}, nil
}

type fakeSemantic struct {
	result *semantic.Result
	err    error
	calls  int
}

func (f *fakeSemantic) SemanticSearch(ctx context.Context, req semantic.Request) (*semantic.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &semantic.Result{Header: "Recommended for " + req.Topic}, nil
}

// fakeGenerator counts calls and optionally fails on specific request
// headers. onGenerate, when set, runs before the canned response is built so
// tests can mutate the grid mid-call.
type fakeGenerator struct {
	calls      int
	reqs       []generation.Request
	failOn     map[string]bool
	onGenerate func()
}

func (f *fakeGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	if f.onGenerate != nil {
		f.onGenerate()
	}
	if f.failOn[req.Header] {
		return nil, errors.New("model unavailable")
	}
	return &generation.Result{Composition: "generated: " + req.Topic}, nil
}

type memContentStore struct {
	byID map[string]types.ProductContent
	sets int
}

func newMemContentStore() *memContentStore {
	return &memContentStore{byID: make(map[string]types.ProductContent)}
}

func (m *memContentStore) GetPageContent(ctx context.Context, ids []string) (map[string]types.ProductContent, error) {
	out := make(map[string]types.ProductContent)
	for _, id := range ids {
		if c, ok := m.byID[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memContentStore) SetPageContent(ctx context.Context, id, key, value string) error {
	m.sets++
	c := m.byID[id]
	if c.PageContent == nil {
		c.PageContent = make(map[string]string)
	}
	c.PageContent[key] = value
	m.byID[id] = c
	return nil
}

type captureNotifier struct{ messages []string }

func (c *captureNotifier) Notify(msg string) { c.messages = append(c.messages, msg) }

// --- harness ----------------------------------------------------------------

type fixture struct {
	orch      *Orchestrator
	grid      *grid.Grid
	parser    *fakeParser
	products  *fakeSearcher
	semantic  *fakeSemantic
	generator *fakeGenerator
	content   *memContentStore
	notifier  *captureNotifier
}

func newFixture() *fixture {
	f := &fixture{
		grid:      grid.New(),
		parser:    &fakeParser{},
		products:  &fakeSearcher{},
		semantic:  &fakeSemantic{},
		generator: &fakeGenerator{},
		content:   newMemContentStore(),
		notifier:  &captureNotifier{},
	}
	f.orch = New(Config{
		Parser:            f.parser,
		Products:          f.products,
		Semantic:          f.semantic,
		Generator:         f.generator,
		Content:           f.content,
		Notifier:          f.notifier,
		Logger:            zap.NewNop(),
		DefaultMaxResults: 10,
	})
	return f
}

func (f *fixture) insert(b *types.ContentBlock) {
	f.grid.InsertAt(grid.Top(), b)
}

func textBlock(id, header string) *types.ContentBlock {
	return &types.ContentBlock{
		ID:           id,
		Header:       header,
		ComponentRef: types.ComponentRef{ComponentID: "text-std", Type: types.ComponentTypeText},
	}
}

func assortmentBlock(id string) *types.ContentBlock {
	return &types.ContentBlock{
		ID:           id,
		ComponentRef: types.ComponentRef{ComponentID: "assort-std", Type: types.ComponentTypeAssortment},
	}
}

func product(id, name, description string) types.Product {
	return types.Product{ID: id, Name: name, Description: description}
}
