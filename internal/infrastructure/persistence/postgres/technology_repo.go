package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
)

// ══════════════════════════════════════════════════════════════════════════════
// TECHNOLOGY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const technologyColumns = `id, name, slug, color, logo_url, prism_lang`

// TechnologyRepository implements technology.Repository for PostgreSQL.
type TechnologyRepository struct {
	conn *Connection
}

var _ technology.Repository = (*TechnologyRepository)(nil)

// NewTechnologyRepository creates a new TechnologyRepository.
func NewTechnologyRepository(conn *Connection) *TechnologyRepository {
	return &TechnologyRepository{conn: conn}
}

// Create creates a technology tag.
func (r *TechnologyRepository) Create(ctx context.Context, t *technology.Technology) error {
	query := `INSERT INTO technologies (` + technologyColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.conn.q(ctx).Exec(ctx, query, t.ID, t.Name, t.Slug, t.Color, t.LogoURL, t.PrismLang)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrTechnologyExists
		}
		return fmt.Errorf("failed to create technology: %w", err)
	}
	return nil
}

// GetByID returns a technology by ID.
func (r *TechnologyRepository) GetByID(ctx context.Context, id string) (*technology.Technology, error) {
	query := `SELECT ` + technologyColumns + ` FROM technologies WHERE id = $1`

	t, err := scanTechnology(r.conn.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, shared.ErrTechnologyNotFound, "scan technology")
	}
	return t, nil
}

// GetByIDs returns technologies by a list of IDs.
func (r *TechnologyRepository) GetByIDs(ctx context.Context, ids []string) ([]*technology.Technology, error) {
	if len(ids) == 0 {
		return []*technology.Technology{}, nil
	}

	query := `SELECT ` + technologyColumns + ` FROM technologies WHERE id = ANY($1::text[]::uuid[]) ORDER BY name`
	return r.query(ctx, query, ids)
}

// List returns all technologies ordered by name.
func (r *TechnologyRepository) List(ctx context.Context) ([]*technology.Technology, error) {
	return r.query(ctx, `SELECT `+technologyColumns+` FROM technologies ORDER BY name`)
}

// Update updates a technology tag.
func (r *TechnologyRepository) Update(ctx context.Context, t *technology.Technology) error {
	query := `
		UPDATE technologies SET
			name = $1,
			slug = $2,
			color = $3,
			logo_url = $4,
			prism_lang = $5
		WHERE id = $6
	`

	result, err := r.conn.q(ctx).Exec(ctx, query, t.Name, t.Slug, t.Color, t.LogoURL, t.PrismLang, t.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrTechnologyExists
		}
		return notFoundOr(err, shared.ErrTechnologyNotFound, "update technology")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrTechnologyNotFound
	}
	return nil
}

// Delete removes a technology. Its links to questions and articles cascade.
func (r *TechnologyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM technologies WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrTechnologyNotFound, "delete technology")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrTechnologyNotFound
	}
	return nil
}

func (r *TechnologyRepository) query(ctx context.Context, query string, args ...interface{}) ([]*technology.Technology, error) {
	rows, err := r.conn.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query technologies: %w", err)
	}
	defer rows.Close()

	technologies := []*technology.Technology{}
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan technology: %w", err)
		}
		technologies = append(technologies, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return technologies, nil
}

func scanTechnology(row pgx.Row) (*technology.Technology, error) {
	var t technology.Technology
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.LogoURL, &t.PrismLang); err != nil {
		return nil, err
	}
	return &t, nil
}
