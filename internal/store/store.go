package store

import (
	"context"
	"errors"

	"github.com/PratikDhanave/paid-events-service/internal/models"
)

// ErrConditionFailed is returned by UpdateIfExists when the target attribute
// (or the record itself) does not exist. No mutation happened.
var ErrConditionFailed = errors.New("store: condition check failed")

// Key locates a single record: the identity attribute and its value.
type Key struct {
	Attribute string
	Value     string
}

// Store is the external document store the record service talks to.
// Implementations must be safe for concurrent use.
type Store interface {
	// Scan returns every record in table.
	Scan(ctx context.Context, table string) ([]models.Record, error)

	// Query returns the records of table whose identity attribute equals key.
	Query(ctx context.Context, table string, key Key) ([]models.Record, error)

	// UpdateIfExists sets attribute = value on the record at key only if the
	// attribute is already present, and returns the full updated record.
	UpdateIfExists(ctx context.Context, table string, key Key, attribute string, value models.Value) (models.Record, error)

	// Ping checks connectivity for readiness probes.
	Ping(ctx context.Context) error

	Close()
}
