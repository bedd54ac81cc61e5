package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/paid-events-service/internal/models"
)

// newTestPostgres returns a store with a fresh, uniquely named table.
// Skipped unless TEST_DATABASE_URL points at a reachable Postgres.
func newTestPostgres(t *testing.T) (*PostgresStore, string) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration tests")
	}

	st, err := NewPostgresStore(dsn)
	if err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}

	table := "records_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx, table))
	require.NoError(t, st.EnsureSchema(ctx, table), "schema must be idempotent")

	t.Cleanup(func() {
		_, _ = st.pool.Exec(context.Background(), `DROP TABLE IF EXISTS `+ident(table))
		st.Close()
	})
	return st, table
}

func insertDoc(t *testing.T, st *PostgresStore, table, id, doc string) {
	t.Helper()
	_, err := st.pool.Exec(context.Background(),
		`INSERT INTO `+ident(table)+` (id, doc) VALUES ($1, $2::jsonb)`, id, doc)
	require.NoError(t, err)
}

func TestPostgresScanAndQuery(t *testing.T) {
	st, table := newTestPostgres(t)
	ctx := context.Background()

	recs, err := st.Scan(ctx, table)
	require.NoError(t, err)
	assert.Empty(t, recs)

	insertDoc(t, st, table, "a", `{"event_id":"a","event_capacity":100}`)
	insertDoc(t, st, table, "b", `{"event_id":"b","event_name":"Fall Social"}`)

	recs, err = st.Scan(ctx, table)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.Numeric(100), recs[0]["event_capacity"])

	recs, err = st.Query(ctx, table, Key{Attribute: "event_id", Value: "b"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.String("Fall Social"), recs[0]["event_name"])

	recs, err = st.Query(ctx, table, Key{Attribute: "event_id", Value: "missing"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPostgresQueryMatchesIdentityAttribute(t *testing.T) {
	st, table := newTestPostgres(t)
	ctx := context.Background()

	insertDoc(t, st, table, "c", `{"event_id":"other","event_name":"Mislabeled"}`)
	insertDoc(t, st, table, "d", `{"event_name":"No identity"}`)

	for _, id := range []string{"c", "d"} {
		recs, err := st.Query(ctx, table, Key{Attribute: "event_id", Value: id})
		require.NoError(t, err)
		assert.Empty(t, recs, id)

		_, err = st.UpdateIfExists(ctx, table, Key{Attribute: "event_id", Value: id}, "event_name", models.String("x"))
		assert.ErrorIs(t, err, ErrConditionFailed, id)
	}

	recs, err := st.Query(ctx, table, Key{Attribute: "item_id", Value: "c"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPostgresUpdateKeepsClientDigits(t *testing.T) {
	st, table := newTestPostgres(t)
	ctx := context.Background()
	key := Key{Attribute: "event_id", Value: "abc123"}

	insertDoc(t, st, table, "abc123", `{"event_id":"abc123","event_capacity":100}`)

	_, err := st.UpdateIfExists(ctx, table, key, "event_capacity", models.Coerce("9007199254740993"))
	require.NoError(t, err)

	var stored string
	require.NoError(t, st.pool.QueryRow(ctx,
		`SELECT doc->>'event_capacity' FROM `+ident(table)+` WHERE id = $1`, "abc123").Scan(&stored))
	assert.Equal(t, "9007199254740993", stored)
}

func TestPostgresUpdateIfExists(t *testing.T) {
	st, table := newTestPostgres(t)
	ctx := context.Background()
	key := Key{Attribute: "event_id", Value: "abc123"}

	insertDoc(t, st, table, "abc123", `{"event_id":"abc123","event_capacity":100,"event_name":"Fall Social"}`)

	rec, err := st.UpdateIfExists(ctx, table, key, "event_capacity", models.Numeric(150))
	require.NoError(t, err)
	assert.Equal(t, models.Record{
		"event_id":       models.String("abc123"),
		"event_capacity": models.Numeric(150),
		"event_name":     models.String("Fall Social"),
	}, rec)

	_, err = st.UpdateIfExists(ctx, table, key, "event_capcity", models.Numeric(1))
	assert.ErrorIs(t, err, ErrConditionFailed)

	_, err = st.UpdateIfExists(ctx, table, Key{Attribute: "event_id", Value: "nope"}, "event_capacity", models.Numeric(1))
	assert.ErrorIs(t, err, ErrConditionFailed)

	recs, err := st.Query(ctx, table, key)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, created := recs[0]["event_capcity"]
	assert.False(t, created, "failed condition must not create the attribute")
}
