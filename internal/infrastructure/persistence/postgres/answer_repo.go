package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const answerColumns = `
	a.id, a.content, a.is_accepted, a.author_id, a.question_id,
	(SELECT COUNT(*) FROM answer_upvotes au WHERE au.answer_id = a.id),
	a.created_at, a.updated_at`

// AnswerRepository implements answer.Repository for PostgreSQL.
type AnswerRepository struct {
	conn *Connection
}

var _ answer.Repository = (*AnswerRepository)(nil)

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(conn *Connection) *AnswerRepository {
	return &AnswerRepository{conn: conn}
}

// Create creates an answer.
func (r *AnswerRepository) Create(ctx context.Context, a *answer.Answer) error {
	query := `
		INSERT INTO answers (id, content, is_accepted, author_id, question_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.q(ctx).Exec(ctx, query,
		a.ID,
		a.Content,
		a.IsAccepted,
		a.AuthorID,
		a.QuestionID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrQuestionNotFound
		}
		return fmt.Errorf("failed to create answer: %w", err)
	}

	return nil
}

// GetByID returns an answer by ID.
func (r *AnswerRepository) GetByID(ctx context.Context, id string) (*answer.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers a WHERE a.id = $1`
	return scanAnswer(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// GetForUpdate returns an answer and locks its row until the transaction ends.
func (r *AnswerRepository) GetForUpdate(ctx context.Context, id string) (*answer.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers a WHERE a.id = $1 FOR UPDATE OF a`
	return scanAnswer(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// Update updates the content of an answer.
func (r *AnswerRepository) Update(ctx context.Context, a *answer.Answer) error {
	result, err := r.conn.q(ctx).Exec(ctx,
		`UPDATE answers SET content = $1, updated_at = $2 WHERE id = $3`,
		a.Content,
		time.Now().UTC(),
		a.ID,
	)
	if err != nil {
		return notFoundOr(err, shared.ErrAnswerNotFound, "update answer")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrAnswerNotFound
	}

	return nil
}

// SetAccepted changes the accepted flag. The partial unique index on
// answers(question_id) rejects a second accepted answer.
func (r *AnswerRepository) SetAccepted(ctx context.Context, id string, accepted bool) error {
	result, err := r.conn.q(ctx).Exec(ctx,
		`UPDATE answers SET is_accepted = $1, updated_at = $2 WHERE id = $3`,
		accepted,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAnotherAnswerAccepted
		}
		return notFoundOr(err, shared.ErrAnswerNotFound, "set accepted")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrAnswerNotFound
	}

	return nil
}

// Delete removes an answer.
func (r *AnswerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrAnswerNotFound, "delete answer")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrAnswerNotFound
	}

	return nil
}

// ListByQuestion returns the answers of a question, the accepted one first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]*answer.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers a
		WHERE a.question_id = $1
		ORDER BY a.is_accepted DESC, a.created_at ASC, a.id
	`
	return r.query(ctx, query, questionID)
}

// FindAccepted returns the accepted answer of a question, or nil.
func (r *AnswerRepository) FindAccepted(ctx context.Context, questionID string) (*answer.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers a WHERE a.question_id = $1 AND a.is_accepted`

	a, err := scanAnswer(r.conn.q(ctx).QueryRow(ctx, query, questionID))
	if shared.IsNotFound(err) {
		return nil, nil
	}
	return a, err
}

// ListByAuthor returns every answer written by a profile, oldest first.
func (r *AnswerRepository) ListByAuthor(ctx context.Context, authorID string) ([]*answer.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers a
		WHERE a.author_id = $1
		ORDER BY a.created_at, a.id
	`
	return r.query(ctx, query, authorID)
}

// ToggleUpvote adds or removes the upvote of a profile.
func (r *AnswerRepository) ToggleUpvote(ctx context.Context, id, profileID string) (bool, int, error) {
	return r.conn.toggle(ctx, answerUpvotes, "answers", id, profileID, shared.ErrAnswerNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func (r *AnswerRepository) query(ctx context.Context, query string, args ...interface{}) ([]*answer.Answer, error) {
	rows, err := r.conn.q(ctx).Query(ctx, query, args...)
	if err != nil {
		if IsInvalidTextRepresentation(err) {
			return []*answer.Answer{}, nil
		}
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	answers := []*answer.Answer{}
	for rows.Next() {
		var a answer.Answer
		if err := rows.Scan(answerDest(&a)...); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return answers, nil
}

func answerDest(a *answer.Answer) []interface{} {
	return []interface{}{
		&a.ID,
		&a.Content,
		&a.IsAccepted,
		&a.AuthorID,
		&a.QuestionID,
		&a.UpvotesCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func scanAnswer(row pgx.Row) (*answer.Answer, error) {
	var a answer.Answer
	if err := row.Scan(answerDest(&a)...); err != nil {
		return nil, notFoundOr(err, shared.ErrAnswerNotFound, "scan answer")
	}
	return &a, nil
}
