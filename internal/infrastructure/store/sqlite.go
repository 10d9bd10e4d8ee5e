package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// SQLiteStore keeps product records as JSON text in a local database file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "sqlite: open: %v", err)
	}
	// every connection to an in-memory DSN opens its own empty database
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(domain.ErrStoreUnavailable, "sqlite: exec %s: %v", pragma, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	product_name TEXT NOT NULL,
	document     TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_products_product_name ON products(product_name);
`

// Migrate creates the products table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Insert stores the record under a new UUID.
func (s *SQLiteStore) Insert(ctx context.Context, record *domain.ProductRecord) (string, error) {
	doc, err := json.Marshal(record)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal record")
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id, product_name, document) VALUES (?, ?, ?)`,
		id, record.ProductName, string(doc))
	if err != nil {
		return "", eris.Wrapf(domain.ErrStoreUnavailable, "sqlite: insert: %v", err)
	}
	return id, nil
}

// FindByID returns the product stored under id.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*domain.StoredProduct, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `SELECT id, document FROM products WHERE id = ?`, id))
}

// FindByName returns the oldest product whose productName matches exactly.
func (s *SQLiteStore) FindByName(ctx context.Context, name string) (*domain.StoredProduct, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, document FROM products WHERE product_name = ? ORDER BY created_at, rowid LIMIT 1`, name))
}

func (s *SQLiteStore) scanOne(row *sql.Row) (*domain.StoredProduct, error) {
	var id, doc string
	if err := row.Scan(&id, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "sqlite: query: %v", err)
	}

	out := &domain.StoredProduct{ID: id}
	if err := json.Unmarshal([]byte(doc), &out.ProductRecord); err != nil {
		return nil, eris.Wrapf(domain.ErrParse, "sqlite: document %s: %v", id, err)
	}
	return out, nil
}

// Count returns the number of stored products
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}

// Ping checks the database is usable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return eris.Wrapf(domain.ErrStoreUnavailable, "sqlite: ping: %v", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}
