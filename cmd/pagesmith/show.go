package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [page.json]",
	Short: "Render a composed page file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, g, err := loadPage(args[0])
		if err != nil {
			return err
		}
		fmt.Println(renderGrid(g, page.Title))
		return nil
	},
}
