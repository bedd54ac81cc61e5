package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/PratikDhanave/paid-events-service/internal/models"
	"github.com/PratikDhanave/paid-events-service/internal/store"
)

// Service reads and conditionally updates records of any collection.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// ListAll scans the whole collection.
func (s *Service) ListAll(ctx context.Context, c Collection) ([]models.Record, error) {
	recs, err := s.store.Scan(ctx, c.Table)
	if err != nil {
		return nil, &DatabaseFetchError{
			Kind:    KindUnavailable,
			Message: "Failed to get records.",
			Err:     err,
		}
	}
	if recs == nil {
		recs = []models.Record{}
	}
	return recs, nil
}

// GetByID returns the single record whose identity equals id. Zero or several
// matches are both reported as KindNotFound.
func (s *Service) GetByID(ctx context.Context, c Collection, id string) (models.Record, error) {
	key, err := c.Locate(id)
	if err != nil {
		return nil, err
	}

	recs, err := s.store.Query(ctx, c.Table, key)
	if err != nil {
		return nil, &DatabaseFetchError{
			Kind:    KindUnavailable,
			Message: "Failed to get record.",
			Err:     err,
		}
	}
	if len(recs) != 1 {
		return nil, &DatabaseFetchError{
			Kind:    KindNotFound,
			Message: "Record not found.",
			Err:     fmt.Errorf("%d records match %s=%q", len(recs), key.Attribute, key.Value),
		}
	}
	return recs[0], nil
}

// GetAttribute returns one non-identity attribute of a record. Missing
// attributes and empty strings are KindAttributeNotFound.
func (s *Service) GetAttribute(ctx context.Context, c Collection, id, attribute string) (models.Value, error) {
	if attribute == "" || c.IsIdentity(attribute) {
		return models.Value{}, &ValidationError{Message: "Invalid attribute."}
	}

	rec, err := s.GetByID(ctx, c, id)
	if err != nil {
		return models.Value{}, err
	}

	v, ok := rec.Get(attribute)
	if !ok || v.Empty() {
		return models.Value{}, &DatabaseFetchError{
			Kind:    KindAttributeNotFound,
			Message: "Attribute not found.",
		}
	}
	return v, nil
}

// UpdateAttribute sets attribute to the coerced rawValue on the record at id,
// provided the attribute already exists there, and returns the new record.
// The identity attribute can never be targeted.
func (s *Service) UpdateAttribute(ctx context.Context, c Collection, id, attribute, rawValue string) (models.Record, error) {
	if attribute == "" || c.IsIdentity(attribute) {
		return nil, &ValidationError{Message: "Invalid attribute."}
	}
	key, err := c.Locate(id)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.UpdateIfExists(ctx, c.Table, key, attribute, models.Coerce(rawValue))
	switch {
	case errors.Is(err, store.ErrConditionFailed):
		return nil, &DatabaseFetchError{
			Kind:    KindPreconditionFailed,
			Message: "Attribute does not exist.",
			Err:     err,
		}
	case err != nil:
		return nil, &DatabaseFetchError{
			Kind:    KindUnavailable,
			Message: "Failed to update record.",
			Err:     err,
		}
	}
	return rec, nil
}
