package memory

import (
	"context"
	"sort"
	"time"

	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/shared"
)

type answerRepo struct {
	s *Store
}

func (d *data) answerView(a *answer.Answer) *answer.Answer {
	c := copyAnswer(a)
	c.UpvotesCount = len(d.answerUpvotes[a.ID])
	return c
}

func (d *data) deleteAnswer(id string) {
	delete(d.answers, id)
	delete(d.answerUpvotes, id)
}

func (r *answerRepo) Create(ctx context.Context, a *answer.Answer) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.questions[a.QuestionID]; !ok {
			return shared.ErrQuestionNotFound
		}
		if _, ok := d.profiles[a.AuthorID]; !ok {
			return shared.ErrProfileNotFound
		}
		d.answers[a.ID] = copyAnswer(a)
		d.track(a.ID)
		return nil
	})
}

// GetForUpdate is GetByID: transactions of the store already run one at a time.
func (r *answerRepo) GetForUpdate(ctx context.Context, id string) (*answer.Answer, error) {
	return r.GetByID(ctx, id)
}

func (r *answerRepo) GetByID(_ context.Context, id string) (*answer.Answer, error) {
	var out *answer.Answer
	err := r.s.read(func(d *data) error {
		a, ok := d.answers[id]
		if !ok {
			return shared.ErrAnswerNotFound
		}
		out = d.answerView(a)
		return nil
	})
	return out, err
}

func (r *answerRepo) Update(ctx context.Context, a *answer.Answer) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.answers[a.ID]
		if !ok {
			return shared.ErrAnswerNotFound
		}
		stored.Content = a.Content
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// SetAccepted enforces the single accepted answer per question the same
// way the partial unique index does in SQL.
func (r *answerRepo) SetAccepted(ctx context.Context, id string, accepted bool) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.answers[id]
		if !ok {
			return shared.ErrAnswerNotFound
		}
		if accepted {
			for _, other := range d.answers {
				if other.ID != id && other.QuestionID == stored.QuestionID && other.IsAccepted {
					return shared.ErrAnotherAnswerAccepted
				}
			}
		}
		stored.IsAccepted = accepted
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *answerRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.answers[id]; !ok {
			return shared.ErrAnswerNotFound
		}
		d.deleteAnswer(id)
		return nil
	})
}

func (r *answerRepo) ListByQuestion(_ context.Context, questionID string) ([]*answer.Answer, error) {
	out := []*answer.Answer{}
	err := r.s.read(func(d *data) error {
		for _, a := range d.answers {
			if a.QuestionID == questionID {
				out = append(out, d.answerView(a))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].IsAccepted != out[j].IsAccepted {
				return out[i].IsAccepted
			}
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return d.order[out[i].ID] < d.order[out[j].ID]
		})
		return nil
	})
	return out, err
}

func (r *answerRepo) FindAccepted(_ context.Context, questionID string) (*answer.Answer, error) {
	var out *answer.Answer
	err := r.s.read(func(d *data) error {
		for _, a := range d.answers {
			if a.QuestionID == questionID && a.IsAccepted {
				out = d.answerView(a)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *answerRepo) ListByAuthor(_ context.Context, authorID string) ([]*answer.Answer, error) {
	out := []*answer.Answer{}
	err := r.s.read(func(d *data) error {
		for _, a := range d.answers {
			if a.AuthorID == authorID {
				out = append(out, d.answerView(a))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return d.order[out[i].ID] < d.order[out[j].ID]
		})
		return nil
	})
	return out, err
}

func (r *answerRepo) ToggleUpvote(ctx context.Context, id, profileID string) (bool, int, error) {
	var (
		upvoted bool
		count   int
	)
	err := r.s.write(ctx, func(d *data) error {
		if _, ok := d.answers[id]; !ok {
			return shared.ErrAnswerNotFound
		}
		if _, ok := d.profiles[profileID]; !ok {
			return shared.ErrProfileNotFound
		}
		upvoted = d.answerUpvotes.toggle(id, profileID)
		count = len(d.answerUpvotes[id])
		return nil
	})
	return upvoted, count, err
}
