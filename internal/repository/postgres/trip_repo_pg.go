package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

const tripColumns = `id, owner_id, title, location, trip_date, distance, elevation_gain,
		          difficulty, weather, notes, image_url, created_at, updated_at`

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	query := `
		INSERT INTO trip (
			owner_id, title, location, trip_date, distance, elevation_gain,
			difficulty, weather, notes, image_url
		) VALUES (
			:owner_id, :title, :location, :trip_date, :distance, :elevation_gain,
			:difficulty, :weather, :notes, :image_url
		)
		RETURNING ` + tripColumns

	args := map[string]any{
		"owner_id":       trip.OwnerID,
		"title":          trip.Title,
		"location":       trip.Location,
		"trip_date":      trip.Date,
		"distance":       nullFloat(trip.Distance),
		"elevation_gain": nullFloat(trip.ElevationGain),
		"difficulty":     nullString(trip.Difficulty),
		"weather":        nullString(trip.Weather),
		"notes":          nullString(trip.Notes),
		"image_url":      nullString(trip.ImageURL),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	if rows.Next() {
		var created domain.Trip
		if err = rows.StructScan(&created); err != nil {
			return nil, err
		}
		return &created, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ports.ErrNotFound
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trip
		WHERE owner_id = $1
		ORDER BY trip_date DESC, created_at DESC
	`
	trips := []domain.Trip{}
	if err := r.db.SelectContext(ctx, &trips, query, ownerID); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trip
		WHERE id = $1 AND owner_id = $2
	`
	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, id, ownerID); err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *TripRepository) UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	add := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Date != nil {
		add("trip_date", *patch.Date)
	}
	if patch.Distance != nil {
		add("distance", nullFloat(patch.Distance))
	}
	if patch.ElevationGain != nil {
		add("elevation_gain", nullFloat(patch.ElevationGain))
	}
	if patch.Difficulty != nil {
		add("difficulty", nullString(patch.Difficulty))
	}
	if patch.Weather != nil {
		add("weather", nullString(patch.Weather))
	}
	if patch.Notes != nil {
		add("notes", nullString(patch.Notes))
	}
	if patch.ImageURL != nil {
		add("image_url", nullString(patch.ImageURL))
	}

	query := fmt.Sprintf(`
		UPDATE trip
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, idx+1, tripColumns)
	args = append(args, id, ownerID)

	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, args...); err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *TripRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trip WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullFloat(ptr *float64) sql.NullFloat64 {
	if ptr == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *ptr, Valid: true}
}

var _ ports.TripRepository = (*TripRepository)(nil)
