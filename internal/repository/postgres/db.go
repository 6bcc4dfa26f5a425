// Package postgres implements the repository ports on PostgreSQL via sqlx
// and the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

const uniqueViolation = "23505"

//go:embed schema.sql
var schema string

func New(dsn string) (*sqlx.DB, error) {
	return sqlx.Connect("pgx", dsn)
}

// Migrate creates the tables when they are missing. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// translate maps driver errors onto the ports sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ports.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
