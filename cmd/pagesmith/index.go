package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pagesmith/internal/search"
	"pagesmith/internal/semantic"
	"pagesmith/internal/store"
	"pagesmith/internal/types"
)

var indexEmbed bool

var indexCmd = &cobra.Command{
	Use:   "index [feed.yaml]",
	Short: "Build the product search index from a product feed",
	Long: `Reads a YAML product feed, builds the full-text search index, seeds the
durable per-product content store, and (with --embed) indexes product
embeddings for semantic search.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexEmbed, "embed", false, "also build product embeddings (requires an API key)")
}

// feedProduct is one product feed entry: the searchable document plus the
// durable auxiliary content seeded into the store.
type feedProduct struct {
	search.ProductDoc `yaml:",inline"`

	Content *types.ProductContent `yaml:"content,omitempty"`
}

type productFeed struct {
	Products []feedProduct `yaml:"products"`
}

func readFeed(path string) (productFeed, error) {
	var feed productFeed
	data, err := os.ReadFile(path)
	if err != nil {
		return feed, fmt.Errorf("failed to read product feed %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &feed); err != nil {
		return feed, fmt.Errorf("failed to parse product feed %s: %w", path, err)
	}
	return feed, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	feed, err := readFeed(args[0])
	if err != nil {
		return err
	}
	if len(feed.Products) == 0 {
		return fmt.Errorf("product feed %s contains no products", args[0])
	}

	docs := make([]search.ProductDoc, len(feed.Products))
	for i, p := range feed.Products {
		docs[i] = p.ProductDoc
	}
	if err := search.BuildIndex(cfg.Search.IndexPath, docs); err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	logger.Info("built search index",
		zap.String("path", cfg.Search.IndexPath),
		zap.Int("products", len(docs)))

	contentStore, err := store.NewContentStore(cfg.Store.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}
	defer contentStore.Close()

	seeded := 0
	for _, p := range feed.Products {
		if p.Content == nil {
			continue
		}
		if err := contentStore.SeedContent(cmd.Context(), p.ID, *p.Content); err != nil {
			return fmt.Errorf("failed to seed content for %s: %w", p.ID, err)
		}
		seeded++
	}
	logger.Info("seeded product content", zap.Int("products", seeded))

	if !indexEmbed {
		return nil
	}

	embedder, err := semantic.NewGenAIEmbedder(cmd.Context(), cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	vectors, err := semantic.NewVectorStore(cfg.Store.DatabasePath, embedder, logger)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer vectors.Close()

	for _, p := range feed.Products {
		product := types.Product{ID: p.ID, Name: p.Name, Description: p.Description}
		if err := vectors.Index(cmd.Context(), product); err != nil {
			return fmt.Errorf("failed to embed %s: %w", p.ID, err)
		}
	}
	logger.Info("indexed product embeddings", zap.Int("products", len(feed.Products)))
	return nil
}
