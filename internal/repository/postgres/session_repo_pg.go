package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

const sessionColumns = `id, user_id, token_hash, created_at, expires_at, is_active`

// SessionRepository keeps bearer sessions keyed by the token digest; raw
// tokens never reach the table.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	query := `INSERT INTO user_session (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING ` + sessionColumns
	var session domain.Session
	if err := r.db.QueryRowxContext(ctx, query, userID, util.TokenDigest(token), expiresAt).StructScan(&session); err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// DeactivateSession ends the session for token. Ending an unknown or already
// inactive session is not an error.
func (r *SessionRepository) DeactivateSession(ctx context.Context, token string) error {
	const query = `
        UPDATE user_session SET is_active = false, expires_at = LEAST(expires_at, NOW())
        WHERE token_hash = $1 AND is_active
    `
	_, err := r.db.ExecContext(ctx, query, util.TokenDigest(token))
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session WHERE token_hash = $1 AND is_active AND expires_at > NOW()`
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, util.TokenDigest(token)); err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
