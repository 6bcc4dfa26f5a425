package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

const userColumns = `id, name, email, image_url, password_hash, password_salt, created_at, updated_at`

// UserRepository stores accounts in user_account. Emails are compared in
// lower case; callers normalize before writing.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, name, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	query := `INSERT INTO user_account (name, email, password_hash, password_salt)
        VALUES ($1, $2, $3, $4) RETURNING ` + userColumns
	return r.one(ctx, query, name, email, passwordHash, passwordSalt)
}

// UpsertGoogleUser links a Google identity to the account with the same email,
// refreshing the display name and avatar. Password credentials are kept.
func (r *UserRepository) UpsertGoogleUser(ctx context.Context, name, email string, imageURL *string) (*domain.User, error) {
	query := `INSERT INTO user_account (name, email, image_url)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE
        SET name = COALESCE(NULLIF(EXCLUDED.name, ''), user_account.name),
            image_url = COALESCE(EXCLUDED.image_url, user_account.image_url),
            updated_at = NOW()
        RETURNING ` + userColumns
	return r.one(ctx, query, name, email, imageURL)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM user_account WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM user_account WHERE id = $1`, id)
}

func (r *UserRepository) one(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
