package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pagesmith/internal/catalog"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List the component catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.Catalog.Path, logger)
		if err != nil {
			return err
		}

		groupStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
		idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("36"))

		groups := cat.Groups()
		for _, group := range cat.GroupNames() {
			fmt.Println(groupStyle.Render(group))
			for _, c := range groups[group] {
				fmt.Printf("  %s  %s (%s)\n", idStyle.Render(c.ComponentID), c.Name, c.Type)
			}
		}
		return nil
	},
}
