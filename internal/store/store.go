// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/QuadKenya/growth-engine/internal/models"
)

// ErrNotFound is returned when no record exists for the given id.
var ErrNotFound = errors.New("candidate not found")

// Store is the persistence contract required by the orchestrator. The
// core never assumes a backing technology; ListAll order is not
// guaranteed and failures propagate without retry.
type Store interface {
	Get(ctx context.Context, id string) (*models.CandidateRecord, error)
	Upsert(ctx context.Context, rec *models.CandidateRecord) error
	ListAll(ctx context.Context) ([]*models.CandidateRecord, error)
	Delete(ctx context.Context, id string) error
}
