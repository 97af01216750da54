// Package catalog provides the shared component catalog: a small,
// rarely-changing set of component descriptors fetched once per session and
// looked up by id. The catalog is injected into consumers as a read-only
// lookup table, never reached for as a singleton.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pagesmith/internal/types"
)

// BlankComponentID is the designated placeholder component. Blocks built
// from it never trigger a collaborator call.
const BlankComponentID = "blank"

// Catalog is an in-memory component lookup table keyed by componentId.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]types.Component
	order []string
	log   *zap.Logger
}

// New builds a catalog from a component list. Later duplicates of the same
// componentId replace earlier ones.
func New(components []types.Component, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{log: log}
	c.replace(components)
	return c
}

// Load reads a catalog from a YAML descriptor file.
func Load(path string, log *zap.Logger) (*Catalog, error) {
	components, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return New(components, log), nil
}

type catalogFile struct {
	Components []types.Component `yaml:"components"`
}

func readFile(path string) ([]types.Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read component catalog %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse component catalog %s: %w", path, err)
	}
	for _, comp := range f.Components {
		if comp.ComponentID == "" {
			return nil, fmt.Errorf("component catalog %s: component with empty component_id", path)
		}
	}
	return f.Components, nil
}

func (c *Catalog) replace(components []types.Component) {
	byID := make(map[string]types.Component, len(components))
	order := make([]string, 0, len(components))
	for _, comp := range components {
		if _, seen := byID[comp.ComponentID]; !seen {
			order = append(order, comp.ComponentID)
		}
		byID[comp.ComponentID] = comp
	}

	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
}

// Get returns the descriptor for componentID.
func (c *Catalog) Get(componentID string) (types.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.byID[componentID]
	return comp, ok
}

// Ref returns the block-sized reference for componentID.
func (c *Catalog) Ref(componentID string) (types.ComponentRef, bool) {
	comp, ok := c.Get(componentID)
	if !ok {
		return types.ComponentRef{}, false
	}
	return types.ComponentRef{
		ComponentID: comp.ComponentID,
		Name:        comp.Name,
		Type:        comp.Type,
	}, true
}

// All returns every component in catalog order.
func (c *Catalog) All() []types.Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Component, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Groups returns display groups in sorted order, each with its components in
// catalog order.
func (c *Catalog) Groups() map[string][]types.Component {
	groups := make(map[string][]types.Component)
	for _, comp := range c.All() {
		groups[comp.DisplayGroup] = append(groups[comp.DisplayGroup], comp)
	}
	return groups
}

// GroupNames returns the sorted display group names.
func (c *Catalog) GroupNames() []string {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, comp := range c.All() {
		if !seen[comp.DisplayGroup] {
			seen[comp.DisplayGroup] = true
			names = append(names, comp.DisplayGroup)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of components.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
