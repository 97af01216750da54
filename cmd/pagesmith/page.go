package main

import (
	"encoding/json"
	"fmt"
	"os"

	"pagesmith/internal/grid"
	"pagesmith/internal/types"
)

// pageFile is the on-disk form of a composed page: the row layout plus the
// page-level fields the variant deriver needs.
type pageFile struct {
	Title           string                 `json:"title"`
	MetaDescription string                 `json:"metaDescription,omitempty"`
	Rows            [][]types.ContentBlock `json:"rows"`
}

func savePage(path string, title, meta string, g *grid.Grid) error {
	p := pageFile{Title: title, MetaDescription: meta}
	for _, row := range g.Rows() {
		out := make([]types.ContentBlock, len(row))
		for i, b := range row {
			out[i] = *b
		}
		p.Rows = append(p.Rows, out)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadPage(path string) (pageFile, *grid.Grid, error) {
	var p pageFile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, nil, fmt.Errorf("failed to read page file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, nil, fmt.Errorf("failed to parse page file %s: %w", path, err)
	}

	g := grid.New()
	for r, row := range p.Rows {
		for c := range row {
			b := row[c]
			target := grid.LeftOfRow(r)
			if c == 0 {
				if r == 0 {
					target = grid.Top()
				} else {
					target = grid.AfterRow(r - 1)
				}
			}
			if !g.InsertAt(target, &b) {
				return p, nil, fmt.Errorf("page file %s: invalid layout at row %d", path, r)
			}
		}
	}
	return p, g, nil
}
