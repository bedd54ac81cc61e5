package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/paid-events-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its tables.
// %[1]s is replaced with the sanitized table name.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore keeps each collection as a table of JSONB documents keyed by
// the identity value. It is an alternative to DynamoDB for local development
// and self-hosted deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the document table for every collection. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.pool.Exec(ctx, fmt.Sprintf(schemaSQL, ident(table))); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
	}
	return nil
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) Scan(ctx context.Context, table string) ([]models.Record, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, ident(table)))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	records, err := collectDocs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return records, nil
}

func (p *PostgresStore) Query(ctx context.Context, table string, key Key) ([]models.Record, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
		SELECT doc FROM %s
		WHERE id = $1
		  AND doc->>$2::text = $1
	`, ident(table)), key.Value, key.Attribute)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	records, err := collectDocs(rows)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return records, nil
}

// UpdateIfExists rewrites one key of the document. The WHERE clause carries
// the existence check, so a missing record, a missing attribute, or a document
// whose identity attribute disagrees with the row id all produce no row and
// map to ErrConditionFailed.
func (p *PostgresStore) UpdateIfExists(ctx context.Context, table string, key Key, attribute string, value models.Value) (models.Record, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", attribute, err)
	}

	var doc []byte
	err = p.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET doc = jsonb_set(doc, ARRAY[$2::text], $3::jsonb)
		WHERE id = $1
		  AND doc->>$4::text = $1
		  AND doc ? $2::text
		RETURNING doc
	`, ident(table)), key.Value, attribute, string(encoded), key.Attribute).Scan(&doc)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}

	rec, err := models.DecodeRecord(doc)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return rec, nil
}

func collectDocs(rows pgx.Rows) ([]models.Record, error) {
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, err
	}
	records := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := models.DecodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func ident(table string) string {
	return pgx.Identifier{table}.Sanitize()
}
