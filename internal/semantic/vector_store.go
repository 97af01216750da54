package semantic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"pagesmith/internal/types"
)

// VectorStore indexes product embeddings in SQLite and answers semantic
// searches. When the sqlite-vec extension is registered (sqlite_vec build
// tag), KNN queries run against a vec0 virtual table; otherwise the store
// falls back to cosine similarity computed in Go over JSON embeddings.
type VectorStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	embedder  Embedder
	log       *zap.Logger
	vectorExt bool
	limit     int
}

// NewVectorStore opens (or creates) the vector database at path.
func NewVectorStore(path string, embedder Embedder, log *zap.Logger) (*VectorStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
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

	s := &VectorStore{db: db, embedder: embedder, log: log, limit: 10}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *VectorStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS product_vectors (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			embedding TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create product_vectors: %w", err)
	}

	// Probe for sqlite-vec. Missing extension is not an error; the Go
	// cosine fallback serves instead.
	_, err = s.db.Exec(fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS vec_products USING vec0(embedding float[%d])",
		s.embedder.Dimensions()))
	if err == nil {
		s.vectorExt = true
	} else {
		s.log.Debug("sqlite-vec unavailable, using in-process similarity", zap.Error(err))
	}
	return nil
}

// Close releases the database handle.
func (s *VectorStore) Close() error { return s.db.Close() }

// SetLimit caps how many products a semantic search returns.
func (s *VectorStore) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// Index embeds and stores one product. Re-indexing an existing product
// replaces its vector.
func (s *VectorStore) Index(ctx context.Context, p types.Product) error {
	text := p.Name
	if p.Description != "" {
		text += ": " + p.Description
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed product %s: %w", p.ID, err)
	}
	encoded, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO product_vectors (product_id, name, description, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			embedding = excluded.embedding`,
		p.ID, p.Name, p.Description, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to store vector for %s: %w", p.ID, err)
	}

	if s.vectorExt {
		var rowid int64
		if rowid, err = res.LastInsertId(); err != nil || rowid == 0 {
			if err := s.db.QueryRowContext(ctx,
				"SELECT rowid FROM product_vectors WHERE product_id = ?", p.ID).Scan(&rowid); err != nil {
				return fmt.Errorf("failed to resolve rowid for %s: %w", p.ID, err)
			}
		}
		// vec0 accepts JSON-encoded vectors directly.
		if _, err := s.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO vec_products (rowid, embedding) VALUES (?, ?)",
			rowid, string(encoded)); err != nil {
			return fmt.Errorf("failed to store vec0 row for %s: %w", p.ID, err)
		}
	}
	return nil
}

// SemanticSearch returns the products closest to the topic, with a derived
// header for the hosting block.
func (s *VectorStore) SemanticSearch(ctx context.Context, req Request) (*Result, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("semantic search requires a topic")
	}

	queryVec, err := s.embedder.Embed(ctx, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []types.Product
	if s.vectorExt {
		products, err = s.knnSearch(ctx, queryVec)
	} else {
		products, err = s.scanSearch(ctx, queryVec)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Products: products,
		Header:   fmt.Sprintf("Recommended for %s", req.Topic),
	}, nil
}

func (s *VectorStore) knnSearch(ctx context.Context, queryVec []float32) ([]types.Product, error) {
	encoded, err := json.Marshal(queryVec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query vector: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.product_id, p.name, p.description
		FROM vec_products v
		JOIN product_vectors p ON p.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`,
		string(encoded), s.limit)
	if err != nil {
		return nil, fmt.Errorf("vec0 search failed: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// scanSearch ranks every stored vector by cosine similarity in Go.
func (s *VectorStore) scanSearch(ctx context.Context, queryVec []float32) ([]types.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT product_id, name, description, embedding FROM product_vectors")
	if err != nil {
		return nil, fmt.Errorf("failed to scan vectors: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		product    types.Product
		similarity float64
	}
	var candidates []candidate

	for rows.Next() {
		var p types.Product
		var encoded string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &encoded); err != nil {
			continue
		}
		var vector []float32
		if err := json.Unmarshal([]byte(encoded), &vector); err != nil {
			continue
		}
		similarity, err := CosineSimilarity(queryVec, vector)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{product: p, similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}

	products := make([]types.Product, len(candidates))
	for i, c := range candidates {
		products[i] = c.product
	}
	return products, nil
}

func scanProducts(rows *sql.Rows) ([]types.Product, error) {
	var products []types.Product
	for rows.Next() {
		var p types.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CosineSimilarity computes the cosine of the angle between two vectors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
