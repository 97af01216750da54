package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pagesmith/internal/grid"
	"pagesmith/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(44)

	headerStyle = lipgloss.NewStyle().Bold(true)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
)

// renderGrid draws the page layout: one bordered box per block, joined
// horizontally within a row.
func renderGrid(g *grid.Grid, title string) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render(title))
	out.WriteString("\n")

	for _, row := range g.Rows() {
		cells := make([]string, len(row))
		for i, b := range row {
			cells[i] = blockStyle.Render(renderBlock(b))
		}
		out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		out.WriteString("\n")
	}
	return out.String()
}

func renderBlock(b *types.ContentBlock) string {
	var lines []string
	lines = append(lines, kindStyle.Render(string(b.ComponentRef.Type)+" · "+b.ComponentRef.ComponentID))
	if b.Header != "" {
		lines = append(lines, headerStyle.Render(b.Header))
	}

	switch {
	case b.Data != nil && len(b.Data.Products) > 0:
		for _, p := range b.Data.Products {
			lines = append(lines, itemStyle.Render("• "+p.Name))
		}
		if b.QualityMetrics != nil {
			lines = append(lines, kindStyle.Render(
				fmt.Sprintf("%d results, top score %.2f", b.QualityMetrics.TotalResults, b.QualityMetrics.TopScore)))
		}
	case b.Data != nil && len(b.Data.Strings) > 0:
		for _, s := range b.Data.Strings {
			lines = append(lines, "• "+s)
		}
	case b.Content != nil && b.Content.Text != "":
		lines = append(lines, clip(b.Content.Text, 200))
	default:
		lines = append(lines, kindStyle.Render("(empty)"))
	}
	return strings.Join(lines, "\n")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
