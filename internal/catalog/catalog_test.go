package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith/internal/types"
)

func testComponents() []types.Component {
	return []types.Component{
		{ComponentID: BlankComponentID, Name: "Blank", Type: types.ComponentTypeBlank, DisplayGroup: "layout"},
		{ComponentID: "intro-text", Name: "Intro Text", Type: types.ComponentTypeText, DisplayGroup: "copy"},
		{ComponentID: "product-listing", Name: "Product Listing", Type: types.ComponentTypeAssortment, DisplayGroup: "commerce"},
		{ComponentID: "related-searches", Name: "Related Searches", Type: types.ComponentTypeSearch, DisplayGroup: "commerce"},
	}
}

func TestGetAndRef(t *testing.T) {
	c := New(testComponents(), nil)

	comp, ok := c.Get("product-listing")
	require.True(t, ok)
	assert.Equal(t, types.ComponentTypeAssortment, comp.Type)

	ref, ok := c.Ref("intro-text")
	require.True(t, ok)
	assert.Equal(t, types.ComponentRef{ComponentID: "intro-text", Name: "Intro Text", Type: types.ComponentTypeText}, ref)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestAllPreservesOrder(t *testing.T) {
	c := New(testComponents(), nil)
	all := c.All()
	require.Len(t, all, 4)
	assert.Equal(t, BlankComponentID, all[0].ComponentID)
	assert.Equal(t, "related-searches", all[3].ComponentID)
}

func TestDuplicateIDReplaces(t *testing.T) {
	comps := testComponents()
	comps = append(comps, types.Component{ComponentID: "intro-text", Name: "Intro v2", Type: types.ComponentTypeText})
	c := New(comps, nil)

	assert.Equal(t, 4, c.Len())
	comp, _ := c.Get("intro-text")
	assert.Equal(t, "Intro v2", comp.Name)
}

func TestGroups(t *testing.T) {
	c := New(testComponents(), nil)
	groups := c.Groups()
	assert.Len(t, groups["commerce"], 2)
	assert.Equal(t, []string{"commerce", "copy", "layout"}, c.GroupNames())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "components.yaml")
	content := `
components:
  - component_id: blank
    name: Blank
    type: blank
  - component_id: faq
    name: FAQ List
    type: bullets
    display_group: copy
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	comp, ok := c.Get("faq")
	require.True(t, ok)
	assert.Equal(t, types.ComponentTypeBullets, comp.Type)
}

func TestLoadRejectsEmptyID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components:\n  - name: Anonymous\n"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
