package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pagesmith/internal/location"
	"pagesmith/internal/types"
)

var (
	variantLocationID string
	variantCity       string
	variantState      string
)

var variantCmd = &cobra.Command{
	Use:   "variant [page.json]",
	Short: "Derive a location-specific variant of a composed page",
	Long: `Applies {{city}}/{{state}}/{{title}} placeholder substitution to a composed
page and prints the derived overrides as JSON. Only blocks whose content
actually changes are included; product listings carry their search settings
verbatim instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runVariant,
}

func init() {
	variantCmd.Flags().StringVar(&variantLocationID, "id", "", "location id (defaults to city)")
	variantCmd.Flags().StringVar(&variantCity, "city", "", "location city (required)")
	variantCmd.Flags().StringVar(&variantState, "state", "", "location state")
	_ = variantCmd.MarkFlagRequired("city")
}

func runVariant(cmd *cobra.Command, args []string) error {
	page, g, err := loadPage(args[0])
	if err != nil {
		return err
	}

	loc := types.Location{ID: variantLocationID, City: variantCity, State: variantState}
	if loc.ID == "" {
		loc.ID = variantCity
	}

	deriver := location.NewDeriver(cfg.Org.TitleTemplate, logger)
	derived := deriver.Derive(g, loc, page.Title, page.MetaDescription)

	out, err := json.MarshalIndent(derived, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
