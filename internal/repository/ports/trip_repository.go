package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

// TripRepository is the trip store gateway. Every lookup and mutation is
// scoped by owner; a trip owned by someone else behaves as missing.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Trip, error)
	UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error)
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
}
