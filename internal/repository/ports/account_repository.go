package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

// UserRepository stores accounts. Lookups of unknown users return ErrNotFound
// and a second account with the same email returns ErrDuplicate.
type UserRepository interface {
	CreateEmailUser(ctx context.Context, name, email string, passwordHash, passwordSalt []byte) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, name, email string, imageURL *string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SessionRepository tracks issued bearer tokens so they can be revoked before
// they expire. Implementations persist only util.TokenDigest(token).
type SessionRepository interface {
	CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error)
	DeactivateSession(ctx context.Context, token string) error
	FindActiveSession(ctx context.Context, token string) (*domain.Session, error)
}
