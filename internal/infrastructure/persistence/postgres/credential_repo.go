package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const credentialColumns = `
	id, profile_id, role, type, experience, institution, start_date, end_date,
	is_verified, created_at, updated_at`

// CredentialRepository implements credential.Repository for PostgreSQL.
type CredentialRepository struct {
	conn *Connection
}

var _ credential.Repository = (*CredentialRepository)(nil)

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(conn *Connection) *CredentialRepository {
	return &CredentialRepository{conn: conn}
}

// Create creates a credential.
func (r *CredentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	query := `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.conn.q(ctx).Exec(ctx, query,
		c.ID,
		c.ProfileID,
		c.Role,
		string(c.Type),
		string(c.Experience),
		c.Institution,
		c.StartDate,
		c.EndDate,
		c.IsVerified,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return shared.ErrCredentialDuplicate
		case IsForeignKeyViolation(err):
			return shared.ErrProfileNotFound
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

// GetByID returns a credential by ID.
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`

	c, err := scanCredential(r.conn.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, shared.ErrCredentialNotFound, "scan credential")
	}
	return c, nil
}

// Update updates the fields and the verification flag of a credential.
func (r *CredentialRepository) Update(ctx context.Context, c *credential.Credential) error {
	query := `
		UPDATE credentials SET
			role = $1,
			type = $2,
			experience = $3,
			institution = $4,
			start_date = $5,
			end_date = $6,
			is_verified = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.q(ctx).Exec(ctx, query,
		c.Role,
		string(c.Type),
		string(c.Experience),
		c.Institution,
		c.StartDate,
		c.EndDate,
		c.IsVerified,
		time.Now().UTC(),
		c.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCredentialDuplicate
		}
		return notFoundOr(err, shared.ErrCredentialNotFound, "update credential")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCredentialNotFound
	}

	return nil
}

// Delete removes a credential.
func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrCredentialNotFound, "delete credential")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCredentialNotFound
	}

	return nil
}

// ListByProfile returns the credentials of a profile, newest first.
func (r *CredentialRepository) ListByProfile(ctx context.Context, profileID string) ([]*credential.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE profile_id = $1
		ORDER BY start_date DESC, created_at DESC
	`

	rows, err := r.conn.q(ctx).Query(ctx, query, profileID)
	if err != nil {
		if IsInvalidTextRepresentation(err) {
			return []*credential.Credential{}, nil
		}
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	credentials := []*credential.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		credentials = append(credentials, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return credentials, nil
}

// CountVerifiedRecognized counts the verified credentials of a profile with
// a recognized experience tier.
func (r *CredentialRepository) CountVerifiedRecognized(ctx context.Context, profileID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM credentials
		WHERE profile_id = $1 AND is_verified AND experience = ANY($2)
	`

	recognized := []string{
		string(reputation.TierJunior),
		string(reputation.TierMid),
		string(reputation.TierSenior),
	}

	var count int
	if err := r.conn.q(ctx).QueryRow(ctx, query, profileID, recognized).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count verified credentials: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func scanCredential(row pgx.Row) (*credential.Credential, error) {
	var c credential.Credential
	var typ, experience string

	err := row.Scan(
		&c.ID,
		&c.ProfileID,
		&c.Role,
		&typ,
		&experience,
		&c.Institution,
		&c.StartDate,
		&c.EndDate,
		&c.IsVerified,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = credential.Type(typ)
	c.Experience = reputation.Tier(experience)
	return &c, nil
}
