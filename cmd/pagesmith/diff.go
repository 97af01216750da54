package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pagesmith/internal/revision"
)

var diffCmd = &cobra.Command{
	Use:   "diff [old.json] [new.json]",
	Short: "Show what changed between two renditions of a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var (
	diffAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	diffRemoveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffBlockStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

func runDiff(cmd *cobra.Command, args []string) error {
	_, oldGrid, err := loadPage(args[0])
	if err != nil {
		return err
	}
	_, newGrid, err := loadPage(args[1])
	if err != nil {
		return err
	}

	diffs := revision.NewEngine().Compare(oldGrid.Blocks(), newGrid.Blocks())
	if len(diffs) == 0 {
		fmt.Println("No content changes.")
		return nil
	}

	for _, d := range diffs {
		label := d.BlockID
		if d.Header != "" {
			label += ": " + d.Header
		}
		switch {
		case d.Added:
			label += " (new block)"
		case d.Removed:
			label += " (removed block)"
		}
		fmt.Println(diffBlockStyle.Render(label))
		for _, line := range d.Lines {
			switch line.Op {
			case revision.OpAdded:
				fmt.Println(diffAddStyle.Render("+ " + line.Content))
			case revision.OpRemoved:
				fmt.Println(diffRemoveStyle.Render("- " + line.Content))
			default:
				fmt.Println("  " + line.Content)
			}
		}
		fmt.Println()
	}
	return nil
}
