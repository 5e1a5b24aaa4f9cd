package business

import (
	"context"
	"errors"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

var (
	// ErrNotFound is returned when no record matches, including records owned
	// by a different user.
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned when the field bundle cannot produce a valid
	// record.
	ErrValidation = errors.New("invalid record data")
)

// Operations is the business CRUD surface the orchestrator dispatches to.
// Every call is scoped to a user: records are only ever visible to their
// owner. Implementations return the created or fetched record as the
// response payload.
type Operations interface {
	GetCollection(ctx context.Context, userID string, intent model.Intent, filters model.Fields) (any, error)
	GetByID(ctx context.Context, userID string, intent model.Intent, id string) (any, error)
	Create(ctx context.Context, userID string, intent model.Intent, fields model.Fields) (any, error)
	Update(ctx context.Context, userID string, intent model.Intent, id string, fields model.Fields) (any, error)
	Delete(ctx context.Context, userID string, intent model.Intent, id string) (any, error)
}
