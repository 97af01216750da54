// Package grid maintains the ordered 2-D layout of content blocks and
// resolves drag-and-drop targets to structural mutations.
//
// Blocks live in an arena keyed by id; rows are a separate membership index
// of ids. Callers address blocks by id, never by raw indices, so a position
// can never silently go stale across an await.
package grid

import (
	"pagesmith/internal/types"
)

// TargetKind enumerates the drop targets a structural edit can resolve to.
type TargetKind int

const (
	// TargetTop inserts a new singleton row at the top of the grid.
	TargetTop TargetKind = iota
	// TargetLeftOfRow appends the block as an additional column in row Row.
	TargetLeftOfRow
	// TargetAfterRow creates a new singleton row immediately following Row.
	TargetAfterRow
)

// Target is a resolved drop target.
type Target struct {
	Kind TargetKind
	Row  int
}

// Top returns the top-of-grid target.
func Top() Target { return Target{Kind: TargetTop} }

// LeftOfRow returns the extend-row target for row r.
func LeftOfRow(r int) Target { return Target{Kind: TargetLeftOfRow, Row: r} }

// AfterRow returns the new-row-after target for row r.
func AfterRow(r int) Target { return Target{Kind: TargetAfterRow, Row: r} }

// Position locates a block within the grid at a point in time.
type Position struct {
	Row int
	Col int
}

// Grid is an ordered sequence of rows; each row is an ordered, non-empty
// sequence of blocks. A row that becomes empty after a removal is dropped
// entirely; the grid never contains empty rows.
type Grid struct {
	blocks map[string]*types.ContentBlock
	rows   [][]string
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{blocks: make(map[string]*types.ContentBlock)}
}

// validTarget reports whether t is applicable against a grid with rowCount
// rows. Row-relative targets require an existing row; a stale index from a
// relayout race is tolerated as a no-op, not an error.
func validTarget(t Target, rowCount int) bool {
	switch t.Kind {
	case TargetTop:
		return true
	case TargetLeftOfRow, TargetAfterRow:
		return t.Row >= 0 && t.Row < rowCount
	default:
		return false
	}
}

// InsertAt inserts block at the target. Returns false (and leaves the grid
// untouched) when the target row no longer exists or the block id is already
// present.
func (g *Grid) InsertAt(t Target, block *types.ContentBlock) bool {
	if block == nil || block.ID == "" {
		return false
	}
	if _, exists := g.blocks[block.ID]; exists {
		return false
	}
	if !validTarget(t, len(g.rows)) {
		return false
	}

	switch t.Kind {
	case TargetTop:
		g.rows = append([][]string{{block.ID}}, g.rows...)
	case TargetLeftOfRow:
		g.rows[t.Row] = append(g.rows[t.Row], block.ID)
	case TargetAfterRow:
		rows := make([][]string, 0, len(g.rows)+1)
		rows = append(rows, g.rows[:t.Row+1]...)
		rows = append(rows, []string{block.ID})
		rows = append(rows, g.rows[t.Row+1:]...)
		g.rows = rows
	}
	g.blocks[block.ID] = block
	return true
}

// RemoveBlock removes the block and unconditionally collapses its row if now
// empty, shifting subsequent row indices. Returns false when the id is not
// present (stale reference, silent no-op).
func (g *Grid) RemoveBlock(blockID string) bool {
	pos, ok := g.FindBlock(blockID)
	if !ok {
		return false
	}
	row := g.rows[pos.Row]
	row = append(row[:pos.Col], row[pos.Col+1:]...)
	if len(row) == 0 {
		g.rows = append(g.rows[:pos.Row], g.rows[pos.Row+1:]...)
	} else {
		g.rows[pos.Row] = row
	}
	delete(g.blocks, blockID)
	return true
}

// MoveBlock relocates a block via remove-then-insert so move and insert share
// one invariant-preserving path. The insert target is interpreted against the
// post-removal grid, so a block moved to "after its own old row" lands
// correctly even though indices shifted. A stale block id or target is a
// no-op returning false.
func (g *Grid) MoveBlock(blockID string, t Target) bool {
	pos, ok := g.FindBlock(blockID)
	if !ok {
		return false
	}

	// Row count after removal, accounting for a collapse of the source row.
	postRows := len(g.rows)
	if len(g.rows[pos.Row]) == 1 {
		postRows--
	}
	if !validTarget(t, postRows) {
		return false
	}

	block := g.blocks[blockID]
	g.RemoveBlock(blockID)
	g.InsertAt(t, block)
	return true
}

// FindBlock locates a block's current position.
func (g *Grid) FindBlock(blockID string) (Position, bool) {
	if _, ok := g.blocks[blockID]; !ok {
		return Position{}, false
	}
	for r, row := range g.rows {
		for c, id := range row {
			if id == blockID {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// FindFirstByComponent returns the position of the first block referencing
// componentID in row-major, then column-major order.
func (g *Grid) FindFirstByComponent(componentID string) (Position, bool) {
	for r, row := range g.rows {
		for c, id := range row {
			if g.blocks[id].ComponentRef.ComponentID == componentID {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// FindFirstByType returns the first block of the given component type in grid
// order, or nil. The first assortment block found this way owns the page's
// canonical search parameters.
func (g *Grid) FindFirstByType(t types.ComponentType) *types.ContentBlock {
	for _, row := range g.rows {
		for _, id := range row {
			if b := g.blocks[id]; b.ComponentRef.Type == t {
				return b
			}
		}
	}
	return nil
}

// Block returns the block with the given id.
func (g *Grid) Block(blockID string) (*types.ContentBlock, bool) {
	b, ok := g.blocks[blockID]
	return b, ok
}

// BlockAt returns the block at a position, or nil when out of range.
func (g *Grid) BlockAt(p Position) *types.ContentBlock {
	if p.Row < 0 || p.Row >= len(g.rows) {
		return nil
	}
	row := g.rows[p.Row]
	if p.Col < 0 || p.Col >= len(row) {
		return nil
	}
	return g.blocks[row[p.Col]]
}

// Rows returns the current layout as blocks. The outer and inner slices are
// copies; the blocks themselves are shared.
func (g *Grid) Rows() [][]*types.ContentBlock {
	out := make([][]*types.ContentBlock, len(g.rows))
	for r, row := range g.rows {
		out[r] = make([]*types.ContentBlock, len(row))
		for c, id := range row {
			out[r][c] = g.blocks[id]
		}
	}
	return out
}

// Blocks returns all blocks in row-major order.
func (g *Grid) Blocks() []*types.ContentBlock {
	out := make([]*types.ContentBlock, 0, len(g.blocks))
	for _, row := range g.rows {
		for _, id := range row {
			out = append(out, g.blocks[id])
		}
	}
	return out
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// Len returns the number of blocks.
func (g *Grid) Len() int { return len(g.blocks) }
