// Package sqlite provides the persistent vector store. Chunks,
// metadata, and embeddings live in a single SQLite database; queries
// brute-force cosine distance over the (optionally filtered) rows,
// which is well within budget for single-node PDF corpora.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/athena-labs/athena-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is the SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a vector store at the given index directory.
// If indexDir is empty, defaults to ~/.athena/index.
func NewStore(indexDir string) (*Store, error) {
	if indexDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		indexDir = filepath.Join(home, ".athena", "index")
	}

	// Ensure directory exists
	if err := os.MkdirAll(indexDir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces records by ID inside one transaction.
func (s *Store) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document, file_name, file_path, subject, module,
			page_number, chunk_number, total_pages, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			file_name = excluded.file_name,
			file_path = excluded.file_path,
			subject = excluded.subject,
			module = excluded.module,
			page_number = excluded.page_number,
			chunk_number = excluded.chunk_number,
			total_pages = excluded.total_pages,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == "" {
			return domain.ErrInvalidInput
		}
		blob := float32SliceToBytes(rec.Embedding)
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Document,
			rec.Meta.FileName, rec.Meta.FilePath, rec.Meta.Subject, rec.Meta.Module,
			rec.Meta.PageNumber, rec.Meta.ChunkNumber, rec.Meta.TotalPages, blob); err != nil {
			return fmt.Errorf("saving chunk %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to k nearest neighbours by cosine distance,
// restricted to rows matching the equality filters.
func (s *Store) Query(
	ctx context.Context, embedding []float32, k int, filters domain.SearchFilters,
) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	where, args := filterClause(filters)
	rows, err := s.db.QueryContext(ctx, `
		SELECT document, file_name, file_path, subject, module,
			page_number, chunk_number, total_pages, embedding
		FROM chunks`+where+`
		ORDER BY rowid
	`, args...)
	if err != nil {
		return nil, &domain.RetrievalError{Op: "query", Err: err}
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		if err := rows.Scan(&hit.Document, &hit.Meta.FileName, &hit.Meta.FilePath,
			&hit.Meta.Subject, &hit.Meta.Module, &hit.Meta.PageNumber,
			&hit.Meta.ChunkNumber, &hit.Meta.TotalPages, &blob); err != nil {
			return nil, &domain.RetrievalError{Op: "query", Err: err}
		}
		hit.Distance = cosineDistance(embedding, bytesToFloat32Slice(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RetrievalError{Op: "query", Err: err}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, &domain.RetrievalError{Op: "count", Err: err}
	}
	return count, nil
}

// All returns every stored document and its metadata in insertion order.
func (s *Store) All(ctx context.Context) ([]string, []domain.ChunkMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document, file_name, file_path, subject, module,
			page_number, chunk_number, total_pages
		FROM chunks
		ORDER BY rowid
	`)
	if err != nil {
		return nil, nil, &domain.RetrievalError{Op: "all", Err: err}
	}
	defer rows.Close()

	var documents []string      //nolint:prealloc // size unknown from query
	var metas []domain.ChunkMeta //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc string
		var meta domain.ChunkMeta
		if err := rows.Scan(&doc, &meta.FileName, &meta.FilePath, &meta.Subject,
			&meta.Module, &meta.PageNumber, &meta.ChunkNumber, &meta.TotalPages); err != nil {
			return nil, nil, &domain.RetrievalError{Op: "all", Err: err}
		}
		documents = append(documents, doc)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &domain.RetrievalError{Op: "all", Err: err}
	}

	return documents, metas, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// filterClause builds a WHERE clause for the equality filters.
func filterClause(filters domain.SearchFilters) (string, []any) {
	var conds []string
	var args []any
	if filters.Subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, filters.Subject)
	}
	if filters.Module != "" {
		conds = append(conds, "module = ?")
		args = append(args, filters.Module)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// cosineDistance returns 1 - cosine similarity. Mismatched or empty
// vectors map to the maximum distance so they sort last.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 2.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
