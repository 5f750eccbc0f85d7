package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const profileColumns = `
	id, username, email, first_name, last_name, password_hash, is_admin,
	bio, avatar_url, expertise, reputation_score, level, is_professional,
	created_at, updated_at`

// ProfileRepository implements profile.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

var _ profile.Repository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// Create creates a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.conn.q(ctx).Exec(ctx, query,
		p.ID,
		p.Username,
		p.Email,
		p.FirstName,
		p.LastName,
		p.PasswordHash,
		p.IsAdmin,
		p.Bio,
		p.AvatarURL,
		p.Expertise,
		p.ReputationScore,
		string(p.Level),
		p.IsProfessional,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID returns a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// GetForUpdate returns a profile and locks its row until the transaction ends.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, id string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 FOR UPDATE`
	return scanProfile(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// GetByUsername returns a profile by username.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return scanProfile(r.conn.q(ctx).QueryRow(ctx, query, username))
}

// GetByIDs returns profiles by a list of IDs.
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]*profile.Profile, error) {
	if len(ids) == 0 {
		return []*profile.Profile{}, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1::text[]::uuid[])`

	rows, err := r.conn.q(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles by ids: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// List returns profiles ordered by reputation.
func (r *ProfileRepository) List(ctx context.Context, page shared.Page) ([]*profile.Profile, error) {
	page = page.Normalize()
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY reputation_score DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.conn.q(ctx).Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// Update updates the public fields of a profile.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			email = $1,
			first_name = $2,
			last_name = $3,
			bio = $4,
			avatar_url = $5,
			expertise = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.q(ctx).Exec(ctx, query,
		p.Email,
		p.FirstName,
		p.LastName,
		p.Bio,
		p.AvatarURL,
		p.Expertise,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return notFoundOr(err, shared.ErrProfileNotFound, "update profile")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}

// UpdateStanding stores the derived reputation fields.
func (r *ProfileRepository) UpdateStanding(ctx context.Context, id string, s reputation.Standing) error {
	query := `
		UPDATE profiles SET
			reputation_score = $1,
			level = $2,
			is_professional = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.q(ctx).Exec(ctx, query,
		s.Score,
		string(s.Level),
		s.IsProfessional,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return notFoundOr(err, shared.ErrProfileNotFound, "update standing")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}

// Delete removes a profile. Its content is removed by ON DELETE CASCADE.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrProfileNotFound, "delete profile")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}

// Stats counts published articles and accepted answers of a profile.
func (r *ProfileRepository) Stats(ctx context.Context, id string) (profile.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM articles WHERE author_id = $1 AND is_published),
			(SELECT COUNT(*) FROM answers WHERE author_id = $1 AND is_accepted)
	`

	var stats profile.Stats
	err := r.conn.q(ctx).QueryRow(ctx, query, id).Scan(&stats.ArticlesWritten, &stats.AnswersAccepted)
	if err != nil {
		return profile.Stats{}, notFoundOr(err, shared.ErrProfileNotFound, "count profile stats")
	}

	return stats, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func profileDest(p *profile.Profile, level *string) []interface{} {
	return []interface{}{
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.PasswordHash,
		&p.IsAdmin,
		&p.Bio,
		&p.AvatarURL,
		&p.Expertise,
		&p.ReputationScore,
		level,
		&p.IsProfessional,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

// scanProfile scans a single profile from a row.
func scanProfile(row pgx.Row) (*profile.Profile, error) {
	var p profile.Profile
	var level string

	if err := row.Scan(profileDest(&p, &level)...); err != nil {
		return nil, notFoundOr(err, shared.ErrProfileNotFound, "scan profile")
	}
	p.Level = reputation.Level(level)

	return &p, nil
}

// scanProfiles scans multiple profiles from rows.
func scanProfiles(rows pgx.Rows) ([]*profile.Profile, error) {
	profiles := []*profile.Profile{}

	for rows.Next() {
		var p profile.Profile
		var level string

		if err := rows.Scan(profileDest(&p, &level)...); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.Level = reputation.Level(level)

		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return profiles, nil
}
