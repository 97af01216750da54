package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pagesmith/internal/catalog"
	"pagesmith/internal/generation"
	"pagesmith/internal/grid"
	"pagesmith/internal/search"
	"pagesmith/internal/semantic"
	"pagesmith/internal/session"
	"pagesmith/internal/store"
)

var (
	composeTitle      string
	composeMeta       string
	composeComponents []string
	composeOut        string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Author a page from a list of components",
	Long: `Builds a page by inserting the given components top to bottom and
composing each one: narrative components are written by the LLM, product
listings are filled from the search index, and recommendation components
run a semantic search.

Example:
  pagesmith compose --title "Hiking Boots" \
    --components intro-text,product-listing,faq --out page.json`,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&composeTitle, "title", "", "page title (required)")
	composeCmd.Flags().StringVar(&composeMeta, "meta", "", "meta description")
	composeCmd.Flags().StringSliceVar(&composeComponents, "components", nil, "component ids, top to bottom")
	composeCmd.Flags().StringVar(&composeOut, "out", "page.json", "output page file")
	_ = composeCmd.MarkFlagRequired("title")
	_ = composeCmd.MarkFlagRequired("components")
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return err
	}
	searcher, err := search.OpenIndex(cfg.Search.IndexPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open search index (run `pagesmith index` first): %w", err)
	}
	defer searcher.Close()

	contentStore, err := store.NewContentStore(cfg.Store.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer contentStore.Close()

	generator, err := generation.NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}
	embedder, err := semantic.NewGenAIEmbedder(ctx, cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	vectors, err := semantic.NewVectorStore(cfg.Store.DatabasePath, embedder, logger)
	if err != nil {
		return err
	}
	defer vectors.Close()

	s := session.New(session.Config{
		Catalog: cat,
		Orch: session.OrchestratorConfig{
			Parser:            search.NewKeywordParser(nil),
			Products:          searcher,
			Semantic:          vectors,
			Generator:         generator,
			Content:           contentStore,
			Notifier:          stderrNotifier{},
			DefaultMaxResults: cfg.Org.DefaultMaxResults,
		},
		TitleTemplate: cfg.Org.TitleTemplate,
		Logger:        logger,
	})
	s.SetTitle(composeTitle)
	s.SetMetaDescription(composeMeta)
	s.SetLocation(cfg.Org.DefaultLocation)

	for i, componentID := range composeComponents {
		target := grid.Top()
		if i > 0 {
			target = grid.AfterRow(i - 1)
		}
		if _, err := s.InsertComponent(ctx, strings.TrimSpace(componentID), target); err != nil {
			return fmt.Errorf("failed to compose %s: %w", componentID, err)
		}
	}

	if err := savePage(composeOut, composeTitle, composeMeta, s.Grid()); err != nil {
		return fmt.Errorf("failed to write page file: %w", err)
	}
	fmt.Println(renderGrid(s.Grid(), composeTitle))
	fmt.Printf("Page written to %s\n", composeOut)
	return nil
}

type stderrNotifier struct{}

func (stderrNotifier) Notify(message string) {
	fmt.Println("! " + message)
}
