// Package revision compares two renditions of a page and reports, per block,
// the line-level changes to generated content. Used to review what a
// re-composition actually rewrote before publishing.
package revision

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"pagesmith/internal/types"
)

// Op classifies one diff line.
type Op int

const (
	OpContext Op = iota
	OpAdded
	OpRemoved
)

// Line is a single line of a block diff.
type Line struct {
	Op      Op
	Content string
}

// BlockDiff is the change set for one block between two page renditions.
type BlockDiff struct {
	BlockID string
	Header  string

	// Added/Removed mark blocks present in only one rendition.
	Added   bool
	Removed bool

	Lines []Line
}

// Engine computes page revision diffs.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine builds an Engine tuned for prose.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp}
}

// Compare reports the per-block changes from old to new, in new's order.
// Blocks with identical text are omitted; blocks present in only one
// rendition are reported whole. Assortment blocks compare by item names, so
// a re-search shows up as an item-list diff rather than noise.
func (e *Engine) Compare(oldBlocks, newBlocks []*types.ContentBlock) []BlockDiff {
	oldByID := make(map[string]*types.ContentBlock, len(oldBlocks))
	for _, b := range oldBlocks {
		oldByID[b.ID] = b
	}

	var out []BlockDiff
	seen := make(map[string]bool, len(newBlocks))
	for _, nb := range newBlocks {
		seen[nb.ID] = true
		ob, existed := oldByID[nb.ID]
		if !existed {
			out = append(out, BlockDiff{
				BlockID: nb.ID,
				Header:  nb.Header,
				Added:   true,
				Lines:   wholeBlock(blockText(nb), OpAdded),
			})
			continue
		}
		lines := e.diffText(blockText(ob), blockText(nb))
		if lines == nil {
			continue
		}
		out = append(out, BlockDiff{BlockID: nb.ID, Header: nb.Header, Lines: lines})
	}

	for _, ob := range oldBlocks {
		if seen[ob.ID] {
			continue
		}
		out = append(out, BlockDiff{
			BlockID: ob.ID,
			Header:  ob.Header,
			Removed: true,
			Lines:   wholeBlock(blockText(ob), OpRemoved),
		})
	}
	return out
}

// diffText returns the line diff between two texts, or nil when identical.
func (e *Engine) diffText(oldText, newText string) []Line {
	if oldText == newText {
		return nil
	}
	a, b, lineArray := e.dmp.DiffLinesToChars(oldText, newText)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		op := OpContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpAdded
		case diffmatchpatch.DiffDelete:
			op = OpRemoved
		}
		for _, content := range splitLines(d.Text) {
			lines = append(lines, Line{Op: op, Content: content})
		}
	}
	return lines
}

// blockText flattens a block to the text a reviewer cares about: generated
// copy for narrative blocks, item names for listing blocks, raw strings for
// bullet blocks.
func blockText(b *types.ContentBlock) string {
	if b.Data != nil {
		var out string
		for _, p := range b.Data.Products {
			out += p.Name + "\n"
		}
		for _, s := range b.Data.Strings {
			out += s + "\n"
		}
		if out != "" {
			return out
		}
	}
	if b.Content != nil {
		return b.Content.Text
	}
	return ""
}

func wholeBlock(text string, op Op) []Line {
	var lines []Line
	for _, content := range splitLines(text) {
		lines = append(lines, Line{Op: op, Content: content})
	}
	return lines
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
