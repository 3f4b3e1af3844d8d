package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/models"
)

const profileColumns = `p.id, p.email, p.full_name, p.role, p.weight_class, p.created_at`

func scanProfile(row pgx.Row, extra ...any) (models.Profile, error) {
	var p models.Profile
	var role string
	dest := []any{&p.ID, &p.Email, &p.FullName, &role, &p.WeightClass, &p.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	p.Role = models.Role(role)
	return p, err
}

func profileOrNotFound(p models.Profile, err error) (*models.Profile, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// GetProfile returns the profile with the given ID.
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return profileOrNotFound(scanProfile(db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles p WHERE p.id = $1`, id)))
}

// UpsertProfile creates the profile on first sight and refreshes its
// email and name afterwards. The role is only set on creation.
func (db *DB) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	if p.Role == "" {
		p.Role = models.RoleAthlete
	}
	return profileOrNotFound(scanProfile(db.Pool.QueryRow(ctx, `
		INSERT INTO profiles AS p (id, email, full_name, role, weight_class)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
			SET email = EXCLUDED.email,
			    full_name = COALESCE(EXCLUDED.full_name, p.full_name),
			    weight_class = COALESCE(EXCLUDED.weight_class, p.weight_class)
		RETURNING `+profileColumns,
		p.ID, strings.ToLower(strings.TrimSpace(p.Email)), p.FullName, string(p.Role), p.WeightClass)))
}

// FindAthleteByEmail looks up an athlete profile by email, ignoring case.
func (db *DB) FindAthleteByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return profileOrNotFound(scanProfile(db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles p
		 WHERE p.email = $1 AND p.role = 'athlete'`,
		strings.ToLower(strings.TrimSpace(email)))))
}

// GetProfileByEmail looks up a profile of any role by email, ignoring case.
func (db *DB) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return profileOrNotFound(scanProfile(db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles p WHERE p.email = $1`,
		strings.ToLower(strings.TrimSpace(email)))))
}
