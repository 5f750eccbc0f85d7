package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUESTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const questionColumns = `
	q.id, q.title, q.content, q.is_published, q.is_solutioned, q.profile_id,
	ARRAY(
		SELECT qt.technology_id::text FROM question_technologies qt
		JOIN technologies t ON t.id = qt.technology_id
		WHERE qt.question_id = q.id ORDER BY t.name
	),
	(SELECT COUNT(*) FROM question_likes ql WHERE ql.question_id = q.id),
	q.created_at, q.updated_at`

// QuestionRepository implements question.Repository for PostgreSQL.
type QuestionRepository struct {
	conn *Connection
}

var _ question.Repository = (*QuestionRepository)(nil)

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(conn *Connection) *QuestionRepository {
	return &QuestionRepository{conn: conn}
}

// Create creates a question with its technologies.
func (r *QuestionRepository) Create(ctx context.Context, q *question.Question) error {
	return r.conn.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO questions (id, title, content, is_published, is_solutioned, profile_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := r.conn.q(ctx).Exec(ctx, query,
			q.ID,
			q.Title,
			q.Content,
			q.IsPublished,
			q.IsSolutioned,
			q.ProfileID,
			q.CreatedAt,
			q.UpdatedAt,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return shared.ErrProfileNotFound
			}
			return fmt.Errorf("failed to create question: %w", err)
		}

		return r.conn.replaceTechnologies(ctx, questionTechnologies, q.ID, q.TechnologyIDs)
	})
}

// GetByID returns a question by ID regardless of its publication state.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*question.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.id = $1`
	return scanQuestion(r.conn.q(ctx).QueryRow(ctx, query, id))
}

// Update updates the editable fields and the technologies of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *question.Question) error {
	return r.conn.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE questions SET
				title = $1,
				content = $2,
				is_published = $3,
				updated_at = $4
			WHERE id = $5
		`

		result, err := r.conn.q(ctx).Exec(ctx, query,
			q.Title,
			q.Content,
			q.IsPublished,
			time.Now().UTC(),
			q.ID,
		)
		if err != nil {
			return notFoundOr(err, shared.ErrQuestionNotFound, "update question")
		}
		if result.RowsAffected() == 0 {
			return shared.ErrQuestionNotFound
		}

		return r.conn.replaceTechnologies(ctx, questionTechnologies, q.ID, q.TechnologyIDs)
	})
}

// SetSolutioned changes only the solutioned flag.
func (r *QuestionRepository) SetSolutioned(ctx context.Context, id string, solutioned bool) error {
	result, err := r.conn.q(ctx).Exec(ctx,
		`UPDATE questions SET is_solutioned = $1, updated_at = $2 WHERE id = $3`,
		solutioned,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return notFoundOr(err, shared.ErrQuestionNotFound, "set solutioned")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrQuestionNotFound
	}

	return nil
}

// Delete removes a question. Answers, likes and tags cascade.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.q(ctx).Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, shared.ErrQuestionNotFound, "delete question")
	}
	if result.RowsAffected() == 0 {
		return shared.ErrQuestionNotFound
	}

	return nil
}

// ListByOwner returns every question of a profile, drafts included.
func (r *QuestionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*question.Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM questions q
		WHERE q.profile_id = $1
		ORDER BY q.created_at DESC, q.id`

	rows, err := r.conn.q(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, notFoundOr(err, shared.ErrProfileNotFound, "list questions by owner")
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListPublished returns published questions matching the filter, newest first.
func (r *QuestionRepository) ListPublished(ctx context.Context, f question.Filter) ([]*question.Question, error) {
	var w whereBuilder
	w.add("q.is_published")

	if f.Year > 0 {
		from, to := timeutil.YearRange(f.Year)
		w.add("q.created_at >= ? AND q.created_at < ?", from, to)
	}
	if f.FirstName != "" {
		w.add("p.first_name ILIKE ?", likePattern(f.FirstName))
	}
	if f.LastName != "" {
		w.add("p.last_name ILIKE ?", likePattern(f.LastName))
	}
	if f.Solutioned != nil {
		w.add("q.is_solutioned = ?", *f.Solutioned)
	}
	if f.Technology != "" {
		w.add(`EXISTS (
			SELECT 1 FROM question_technologies ft
			JOIN technologies t ON t.id = ft.technology_id
			WHERE ft.question_id = q.id AND LOWER(t.name) = LOWER(?)
		)`, f.Technology)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(q.title ILIKE ? OR q.content ILIKE ?)", pattern, pattern)
	}
	if f.OwnerID != "" {
		w.add("q.profile_id = ?", f.OwnerID)
	}

	page := f.Page.Normalize()
	query := `SELECT ` + questionColumns + `
		FROM questions q
		JOIN profiles p ON p.id = q.profile_id` +
		w.sql() +
		` ORDER BY q.created_at DESC, q.id LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset)

	rows, err := r.conn.q(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ToggleLike adds or removes the like of a profile.
func (r *QuestionRepository) ToggleLike(ctx context.Context, id, profileID string) (bool, int, error) {
	return r.conn.toggle(ctx, questionLikes, "questions", id, profileID, shared.ErrQuestionNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func questionDest(q *question.Question) []interface{} {
	return []interface{}{
		&q.ID,
		&q.Title,
		&q.Content,
		&q.IsPublished,
		&q.IsSolutioned,
		&q.ProfileID,
		&q.TechnologyIDs,
		&q.LikesCount,
		&q.CreatedAt,
		&q.UpdatedAt,
	}
}

func scanQuestion(row pgx.Row) (*question.Question, error) {
	var q question.Question
	if err := row.Scan(questionDest(&q)...); err != nil {
		return nil, notFoundOr(err, shared.ErrQuestionNotFound, "scan question")
	}
	return &q, nil
}

func scanQuestions(rows pgx.Rows) ([]*question.Question, error) {
	questions := []*question.Question{}

	for rows.Next() {
		var q question.Question
		if err := rows.Scan(questionDest(&q)...); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return questions, nil
}
