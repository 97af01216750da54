// Package store provides durable per-product page content on SQLite: the
// auxiliary copy (enrichment text, highlights, review excerpts, images)
// merged onto search results and written back as enrichment runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"pagesmith/internal/types"
)

// ContentStore reads and writes per-product page content.
type ContentStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// NewContentStore initializes the SQLite database at the given path.
// Use ":memory:" for tests.
func NewContentStore(path string, log *zap.Logger) (*ContentStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	s := &ContentStore{db: db, dbPath: path, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *ContentStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS product_content (
			product_id TEXT PRIMARY KEY,
			page_content TEXT NOT NULL DEFAULT '{}',
			highlights TEXT NOT NULL DEFAULT '[]',
			suppressed_review_excerpts TEXT NOT NULL DEFAULT '[]',
			images TEXT NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP NOT NULL
		)`)
	return err
}

// Close releases the database handle.
func (s *ContentStore) Close() error {
	return s.db.Close()
}

// GetPageContent fetches auxiliary content for all ids in one batched query.
// Ids with no stored content are simply absent from the result map.
func (s *ContentStore) GetPageContent(ctx context.Context, ids []string) (map[string]types.ProductContent, error) {
	out := make(map[string]types.ProductContent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, page_content, highlights, suppressed_review_excerpts, images
		 FROM product_content WHERE product_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product content: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, pageContent, highlights, suppressed, images string
		if err := rows.Scan(&id, &pageContent, &highlights, &suppressed, &images); err != nil {
			return nil, fmt.Errorf("failed to scan product content: %w", err)
		}
		var content types.ProductContent
		if err := json.Unmarshal([]byte(pageContent), &content.PageContent); err != nil {
			s.log.Warn("corrupt page_content, skipping", zap.String("product", id), zap.Error(err))
			continue
		}
		_ = json.Unmarshal([]byte(highlights), &content.Highlights)
		_ = json.Unmarshal([]byte(suppressed), &content.SuppressedReviewExcerpts)
		_ = json.Unmarshal([]byte(images), &content.Images)
		out[id] = content
	}
	return out, rows.Err()
}

// SetPageContent writes one enrichment value under key for a product,
// preserving all other accumulated keys.
func (s *ContentStore) SetPageContent(ctx context.Context, id, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	pageContent := map[string]string{}
	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT page_content FROM product_content WHERE product_id = ?", id).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First write for this product.
	case err != nil:
		return fmt.Errorf("failed to read product content: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &pageContent); err != nil {
			s.log.Warn("corrupt page_content, resetting", zap.String("product", id), zap.Error(err))
			pageContent = map[string]string{}
		}
	}

	pageContent[key] = value
	encoded, err := json.Marshal(pageContent)
	if err != nil {
		return fmt.Errorf("failed to encode page content: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO product_content (product_id, page_content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET page_content = excluded.page_content, updated_at = excluded.updated_at`,
		id, string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write product content: %w", err)
	}
	return tx.Commit()
}

// SeedContent replaces the full auxiliary record for a product. Used by the
// indexing pipeline, not by the enrichment loop.
func (s *ContentStore) SeedContent(ctx context.Context, id string, content types.ProductContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content.PageContent == nil {
		content.PageContent = map[string]string{}
	}
	pageContent, _ := json.Marshal(content.PageContent)
	highlights, _ := json.Marshal(emptyIfNil(content.Highlights))
	suppressed, _ := json.Marshal(emptyIfNil(content.SuppressedReviewExcerpts))
	images, err := json.Marshal(content.Images)
	if content.Images == nil {
		images = []byte("{}")
	}
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO product_content (product_id, page_content, highlights, suppressed_review_excerpts, images, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			page_content = excluded.page_content,
			highlights = excluded.highlights,
			suppressed_review_excerpts = excluded.suppressed_review_excerpts,
			images = excluded.images,
			updated_at = excluded.updated_at`,
		id, string(pageContent), string(highlights), string(suppressed), string(images), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to seed product content: %w", err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
