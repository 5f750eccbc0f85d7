package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/timeutil"
)

type questionRepo struct {
	s *Store
}

// view returns a detached copy with derived fields filled in.
func (d *data) questionView(q *question.Question) *question.Question {
	c := copyQuestion(q)
	c.TechnologyIDs = d.sortTechIDs(c.TechnologyIDs)
	c.LikesCount = len(d.questionLikes[q.ID])
	return c
}

func (d *data) checkTechnologies(ids []string) error {
	for _, id := range ids {
		if _, ok := d.technologies[id]; !ok {
			return shared.ErrTechnologyNotFound
		}
	}
	return nil
}

func (d *data) deleteQuestion(id string) {
	delete(d.questions, id)
	delete(d.questionLikes, id)
	for aid, a := range d.answers {
		if a.QuestionID == id {
			d.deleteAnswer(aid)
		}
	}
}

func (r *questionRepo) Create(ctx context.Context, q *question.Question) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.profiles[q.ProfileID]; !ok {
			return shared.ErrProfileNotFound
		}
		if err := d.checkTechnologies(q.TechnologyIDs); err != nil {
			return err
		}
		d.questions[q.ID] = copyQuestion(q)
		d.track(q.ID)
		return nil
	})
}

func (r *questionRepo) GetByID(_ context.Context, id string) (*question.Question, error) {
	var out *question.Question
	err := r.s.read(func(d *data) error {
		q, ok := d.questions[id]
		if !ok {
			return shared.ErrQuestionNotFound
		}
		out = d.questionView(q)
		return nil
	})
	return out, err
}

func (r *questionRepo) Update(ctx context.Context, q *question.Question) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.questions[q.ID]
		if !ok {
			return shared.ErrQuestionNotFound
		}
		if err := d.checkTechnologies(q.TechnologyIDs); err != nil {
			return err
		}
		stored.Title = q.Title
		stored.Content = q.Content
		stored.IsPublished = q.IsPublished
		stored.TechnologyIDs = append([]string{}, q.TechnologyIDs...)
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *questionRepo) SetSolutioned(ctx context.Context, id string, solutioned bool) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.questions[id]
		if !ok {
			return shared.ErrQuestionNotFound
		}
		stored.IsSolutioned = solutioned
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *questionRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.questions[id]; !ok {
			return shared.ErrQuestionNotFound
		}
		d.deleteQuestion(id)
		return nil
	})
}

func (r *questionRepo) ListByOwner(_ context.Context, ownerID string) ([]*question.Question, error) {
	out := []*question.Question{}
	err := r.s.read(func(d *data) error {
		for _, q := range d.questions {
			if q.ProfileID == ownerID {
				out = append(out, d.questionView(q))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return d.newerFirst(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *questionRepo) ListPublished(_ context.Context, f question.Filter) ([]*question.Question, error) {
	var matched []*question.Question
	err := r.s.read(func(d *data) error {
		for _, q := range d.questions {
			if q.IsPublished && d.matchQuestion(q, f) {
				matched = append(matched, d.questionView(q))
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return d.newerFirst(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
		})
		return nil
	})
	return paginate(matched, f.Page.Normalize()), err
}

func (d *data) matchQuestion(q *question.Question, f question.Filter) bool {
	if f.Year > 0 {
		from, to := timeutil.YearRange(f.Year)
		if q.CreatedAt.Before(from) || !q.CreatedAt.Before(to) {
			return false
		}
	}
	if f.FirstName != "" || f.LastName != "" {
		owner, ok := d.profiles[q.ProfileID]
		if !ok || !containsFold(owner.FirstName, f.FirstName) || !containsFold(owner.LastName, f.LastName) {
			return false
		}
	}
	if f.OwnerID != "" && q.ProfileID != f.OwnerID {
		return false
	}
	if f.Solutioned != nil && q.IsSolutioned != *f.Solutioned {
		return false
	}
	if f.Technology != "" {
		found := false
		for _, id := range q.TechnologyIDs {
			if t, ok := d.technologies[id]; ok && strings.EqualFold(t.Name, f.Technology) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" && !containsFold(q.Title, f.Search) && !containsFold(q.Content, f.Search) {
		return false
	}
	return true
}

func (r *questionRepo) ToggleLike(ctx context.Context, id, profileID string) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := r.s.write(ctx, func(d *data) error {
		if _, ok := d.questions[id]; !ok {
			return shared.ErrQuestionNotFound
		}
		if _, ok := d.profiles[profileID]; !ok {
			return shared.ErrProfileNotFound
		}
		liked = d.questionLikes.toggle(id, profileID)
		count = len(d.questionLikes[id])
		return nil
	})
	return liked, count, err
}

// containsFold reports whether substr is within s, ignoring case. An empty
// substr always matches.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
