package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith/internal/types"
)

func enrichFixture(products ...types.Product) (*fixture, *types.ContentBlock) {
	f := newFixture()
	b := assortmentBlock("b1")
	b.Settings = settingsWith("boots", types.ContentSettings{IncludeBlurbs: true})
	b.Data = &types.BlockData{Products: products}
	f.insert(b)
	return f, b
}

func TestEnrichBlockWritesContentAndPersists(t *testing.T) {
	f, b := enrichFixture(product("p1", "Boot A", "rugged"), product("p2", "Boot B", "light"))
	page := PageContext{Title: "Hiking Boots"}

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, page, "b1", KindBlurb, nil))

	key := types.ContentKey("blurb", "Hiking Boots")
	require.Equal(t, 2, f.generator.calls)
	assert.Equal(t, "generated: Hiking Boots", b.Data.Products[0].PageContent[key])
	assert.Equal(t, "generated: Hiking Boots", b.Data.Products[1].PageContent[key])

	// Write-through: the store now carries both blurbs.
	assert.Equal(t, 2, f.content.sets)
	assert.Equal(t, "generated: Hiking Boots", f.content.byID["p1"].PageContent[key])
}

func TestEnrichBlockSkipsItemsAlreadyEnriched(t *testing.T) {
	key := types.ContentKey("blurb", "Hiking Boots")
	done := product("p2", "Boot B", "light")
	done.PageContent = map[string]string{key: "kept"}
	f, b := enrichFixture(product("p1", "Boot A", "rugged"), done, product("p3", "Boot C", "grippy"))

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, nil))

	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, "kept", findProduct(b, "p2").PageContent[key])
}

func TestEnrichBlockOnlySubset(t *testing.T) {
	f, _ := enrichFixture(product("p1", "Boot A", "rugged"), product("p2", "Boot B", "light"))

	only := map[string]bool{"p2": true}
	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, only))

	require.Equal(t, 1, f.generator.calls)
	assert.Equal(t, "Boot B: light", f.generator.reqs[0].Header)
}

func TestEnrichParagraphWithoutDescriptionSkipsGeneration(t *testing.T) {
	f, b := enrichFixture(product("p1", "Boot A", ""))

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindParagraph, nil))

	key := types.ContentKey("paragraph", "Hiking Boots")
	assert.Zero(t, f.generator.calls, "no description means nothing to generate from")
	assert.Equal(t, missingParagraphText, findProduct(b, "p1").PageContent[key])
	assert.Zero(t, f.content.sets, "the placeholder is never persisted")
}

func TestEnrichBlockFailureContinuesWithRemainingItems(t *testing.T) {
	f, b := enrichFixture(product("p1", "Boot A", "rugged"), product("p2", "Boot B", "light"))
	f.generator.failOn = map[string]bool{"Boot A: rugged": true}

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, nil))

	key := types.ContentKey("blurb", "Hiking Boots")
	assert.Equal(t, 2, f.generator.calls)
	assert.Empty(t, findProduct(b, "p1").PageContent[key])
	assert.Equal(t, "generated: Hiking Boots", findProduct(b, "p2").PageContent[key])
}

func TestEnrichBlockClearsAuthoringIndex(t *testing.T) {
	f, b := enrichFixture(product("p1", "Boot A", "rugged"))

	var seen string
	f.generator.onGenerate = func() {
		if blk, ok := f.grid.Block("b1"); ok {
			seen = blk.AuthoringIndex
		}
	}

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, nil))

	assert.Equal(t, "blurb1", seen, "authoring index marks the in-flight item")
	assert.Empty(t, b.AuthoringIndex)
}

func TestEnrichBlockAuthoringIndexFollowsItemPosition(t *testing.T) {
	key := types.ContentKey("blurb", "Hiking Boots")
	done := product("p1", "Boot A", "rugged")
	done.PageContent = map[string]string{key: "kept"}
	f, _ := enrichFixture(done, product("p2", "Boot B", "light"))

	var seen string
	f.generator.onGenerate = func() {
		if blk, ok := f.grid.Block("b1"); ok {
			seen = blk.AuthoringIndex
		}
	}

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, nil))

	// The marker names the item's slot in the block data, not its place in
	// the remaining work.
	require.Equal(t, 1, f.generator.calls)
	assert.Equal(t, "blurb2", seen)
}

func TestEnrichBlockStaleBlockMidLoopStops(t *testing.T) {
	f, _ := enrichFixture(product("p1", "Boot A", "rugged"), product("p2", "Boot B", "light"))
	f.generator.onGenerate = func() { f.grid.RemoveBlock("b1") }

	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Hiking Boots"}, "b1", KindBlurb, nil))

	assert.Equal(t, 1, f.generator.calls, "loop stops once the block is gone")
}

func TestEnrichBlockTitleChangesKey(t *testing.T) {
	key := types.ContentKey("blurb", "Hiking Boots")
	done := product("p1", "Boot A", "rugged")
	done.PageContent = map[string]string{key: "old title blurb"}
	f, b := enrichFixture(done)

	// A different page title means a different content key, so the item is
	// enriched again without clobbering the old entry.
	require.NoError(t, f.orch.EnrichBlock(context.Background(), f.grid, PageContext{Title: "Trail Runners"}, "b1", KindBlurb, nil))

	require.Equal(t, 1, f.generator.calls)
	got := findProduct(b, "p1").PageContent
	assert.Equal(t, "old title blurb", got[key])
	assert.Equal(t, "generated: Trail Runners", got[types.ContentKey("blurb", "Trail Runners")])
}
