package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// pgPool is the part of *pgxpool.Pool the store uses
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_product_name ON products ((document->>'productName'));
`

// PostgresStore keeps product records as JSONB documents
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a connection pool and verifies the server is reachable.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "postgres: connect: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "postgres: ping: %v", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the products table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Insert stores the record under a new UUID.
func (s *PostgresStore) Insert(ctx context.Context, record *domain.ProductRecord) (string, error) {
	doc, err := json.Marshal(record)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal record")
	}

	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, `INSERT INTO products (id, document) VALUES ($1, $2)`, id, doc); err != nil {
		return "", eris.Wrapf(domain.ErrStoreUnavailable, "postgres: insert: %v", err)
	}
	return id, nil
}

// FindByID returns the product stored under id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*domain.StoredProduct, error) {
	return s.scanOne(s.pool.QueryRow(ctx, `SELECT id, document FROM products WHERE id = $1`, id))
}

// FindByName returns the oldest product whose productName matches exactly.
func (s *PostgresStore) FindByName(ctx context.Context, name string) (*domain.StoredProduct, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, document FROM products WHERE document->>'productName' = $1 ORDER BY created_at LIMIT 1`, name))
}

func (s *PostgresStore) scanOne(row pgx.Row) (*domain.StoredProduct, error) {
	var (
		id  string
		doc []byte
	)
	if err := row.Scan(&id, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "postgres: query: %v", err)
	}

	out := &domain.StoredProduct{ID: id}
	if err := json.Unmarshal(doc, &out.ProductRecord); err != nil {
		return nil, eris.Wrapf(domain.ErrParse, "postgres: document %s: %v", id, err)
	}
	return out, nil
}

// Ping checks the server is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return eris.Wrapf(domain.ErrStoreUnavailable, "postgres: ping: %v", err)
	}
	return nil
}

// Close releases the pool
func (s *PostgresStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
