package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// PinRepo implements ports.PinRepository with pgx.
type PinRepo struct {
	db *DB
}

// NewPinRepo creates a new PinRepo.
func NewPinRepo(db *DB) *PinRepo {
	return &PinRepo{db: db}
}

// Save inserts a single pin.
func (r *PinRepo) Save(ctx context.Context, p *domain.Pin) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO pins (id, lat, lng, name, image, location, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`, p.ID, p.Lat, p.Lng, p.Name, p.Image, p.Location, p.Timestamp)
	if err != nil {
		return fmt.Errorf("insert pin: %w", err)
	}
	return nil
}

// Get returns a pin by id.
func (r *PinRepo) Get(ctx context.Context, id string) (*domain.Pin, error) {
	var p domain.Pin
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, lat, lng, name, COALESCE(image, ''), location, created_at
		FROM pins WHERE id = $1
	`, id).Scan(&p.ID, &p.Lat, &p.Lng, &p.Name, &p.Image, &p.Location, &p.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pin: %w", err)
	}
	return &p, nil
}

// List returns every pin.
func (r *PinRepo) List(ctx context.Context) ([]domain.Pin, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, lat, lng, name, COALESCE(image, ''), location, created_at
		FROM pins
	`)
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	defer rows.Close()

	pins := []domain.Pin{}
	for rows.Next() {
		var p domain.Pin
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lng, &p.Name, &p.Image, &p.Location, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pin: %w", err)
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

// Delete removes a pin and reports whether a row was affected.
func (r *PinRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM pins WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete pin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Ping checks database connectivity.
func (r *PinRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
