package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// relation names a join table between a record and a profile or tag.
type relation struct {
	table     string
	parentCol string
	childCol  string
}

var (
	questionTechnologies = relation{"question_technologies", "question_id", "technology_id"}
	articleTechnologies  = relation{"article_technologies", "article_id", "technology_id"}
	questionLikes        = relation{"question_likes", "question_id", "profile_id"}
	articleLikes         = relation{"article_likes", "article_id", "profile_id"}
	answerUpvotes        = relation{"answer_upvotes", "answer_id", "profile_id"}
)

// replaceTechnologies rewrites the tag set of a record. Unknown tags fail
// with ErrTechnologyNotFound.
func (c *Connection) replaceTechnologies(ctx context.Context, rel relation, parentID string, techIDs []string) error {
	q := c.q(ctx)

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", rel.table, rel.parentCol)
	if _, err := q.Exec(ctx, deleteQuery, parentID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", rel.table, err)
	}
	if len(techIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) SELECT $1, unnest($2::text[])::uuid ON CONFLICT DO NOTHING",
		rel.table, rel.parentCol, rel.childCol,
	)
	if _, err := q.Exec(ctx, insertQuery, parentID, techIDs); err != nil {
		if IsForeignKeyViolation(err) || IsInvalidTextRepresentation(err) {
			return shared.ErrTechnologyNotFound
		}
		return fmt.Errorf("failed to fill %s: %w", rel.table, err)
	}
	return nil
}

// toggle flips the membership of profileID in a like or upvote relation and
// returns the new state with the new count. parentTable is checked first so
// a missing parent reports notFound.
func (c *Connection) toggle(ctx context.Context, rel relation, parentTable, parentID, profileID string, notFound error) (bool, int, error) {
	var (
		on    bool
		count int
	)

	err := c.WithinTx(ctx, func(ctx context.Context) error {
		q := c.q(ctx)

		var exists bool
		existsQuery := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", parentTable)
		if err := q.QueryRow(ctx, existsQuery, parentID).Scan(&exists); err != nil {
			return notFoundOr(err, notFound, "check "+parentTable)
		}
		if !exists {
			return notFound
		}

		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2", rel.table, rel.parentCol, rel.childCol)
		result, err := q.Exec(ctx, deleteQuery, parentID, profileID)
		if err != nil {
			return fmt.Errorf("failed to toggle %s: %w", rel.table, err)
		}

		if result.RowsAffected() == 0 {
			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				rel.table, rel.parentCol, rel.childCol,
			)
			if _, err := q.Exec(ctx, insertQuery, parentID, profileID); err != nil {
				if IsForeignKeyViolation(err) {
					return shared.ErrProfileNotFound
				}
				return fmt.Errorf("failed to toggle %s: %w", rel.table, err)
			}
			on = true
		}

		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", rel.table, rel.parentCol)
		return q.QueryRow(ctx, countQuery, parentID).Scan(&count)
	})
	if err != nil {
		return false, 0, err
	}

	return on, count, nil
}

// likePattern escapes s for use inside an ILIKE '%...%' pattern.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// whereBuilder collects AND conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add appends a condition. Each "?" in cond is replaced by the next
// positional placeholder bound to the matching arg.
func (w *whereBuilder) add(cond string, args ...interface{}) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the
// conditions, such as LIMIT and OFFSET.
func (w *whereBuilder) next(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
