package postgres

import (
	"context"
	"fmt"

	"github.com/devask/devask-hub/internal/domain/reputation"
)

// LedgerRepository implements reputation.Ledger for PostgreSQL.
type LedgerRepository struct {
	conn *Connection
}

var _ reputation.Ledger = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// Append records a reputation change.
func (r *LedgerRepository) Append(ctx context.Context, e *reputation.Entry) error {
	query := `
		INSERT INTO reputation_ledger (id, profile_id, delta, reason, subject_id, score_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var subject *string
	if e.SubjectID != "" {
		subject = &e.SubjectID
	}

	_, err := r.conn.q(ctx).Exec(ctx, query,
		e.ID,
		e.ProfileID,
		e.Delta,
		string(e.Reason),
		subject,
		e.ScoreAfter,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append reputation entry: %w", err)
	}
	return nil
}

// ListByProfile returns the reputation history of a profile, newest first.
func (r *LedgerRepository) ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]*reputation.Entry, error) {
	query := `
		SELECT id, profile_id, delta, reason, COALESCE(subject_id::text, ''), score_after, created_at
		FROM reputation_ledger
		WHERE profile_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.conn.q(ctx).Query(ctx, query, profileID, limit, offset)
	if err != nil {
		if IsInvalidTextRepresentation(err) {
			return []*reputation.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to list reputation entries: %w", err)
	}
	defer rows.Close()

	entries := []*reputation.Entry{}
	for rows.Next() {
		var e reputation.Entry
		var reason string
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Delta, &reason, &e.SubjectID, &e.ScoreAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reputation entry: %w", err)
		}
		e.Reason = reputation.Reason(reason)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}
