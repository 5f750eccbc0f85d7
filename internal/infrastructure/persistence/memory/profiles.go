package memory

import (
	"context"
	"sort"
	"time"

	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
)

type profileRepo struct {
	s *Store
}

func (r *profileRepo) Create(ctx context.Context, p *profile.Profile) error {
	return r.s.write(ctx, func(d *data) error {
		for _, existing := range d.profiles {
			if existing.Username == p.Username {
				return shared.ErrUsernameTaken
			}
		}
		d.profiles[p.ID] = copyProfile(p)
		d.track(p.ID)
		return nil
	})
}

func (r *profileRepo) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	var out *profile.Profile
	err := r.s.read(func(d *data) error {
		p, ok := d.profiles[id]
		if !ok {
			return shared.ErrProfileNotFound
		}
		out = copyProfile(p)
		return nil
	})
	return out, err
}

func (r *profileRepo) GetByUsername(_ context.Context, username string) (*profile.Profile, error) {
	var out *profile.Profile
	err := r.s.read(func(d *data) error {
		for _, p := range d.profiles {
			if p.Username == username {
				out = copyProfile(p)
				return nil
			}
		}
		return shared.ErrProfileNotFound
	})
	return out, err
}

// GetForUpdate is GetByID: transactions of the store already run one at a time.
func (r *profileRepo) GetForUpdate(ctx context.Context, id string) (*profile.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *profileRepo) GetByIDs(_ context.Context, ids []string) ([]*profile.Profile, error) {
	out := []*profile.Profile{}
	err := r.s.read(func(d *data) error {
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if p, ok := d.profiles[id]; ok {
				out = append(out, copyProfile(p))
			}
		}
		return nil
	})
	return out, err
}

func (r *profileRepo) List(_ context.Context, page shared.Page) ([]*profile.Profile, error) {
	page = page.Normalize()
	var all []*profile.Profile
	err := r.s.read(func(d *data) error {
		for _, p := range d.profiles {
			all = append(all, copyProfile(p))
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].ReputationScore != all[j].ReputationScore {
				return all[i].ReputationScore > all[j].ReputationScore
			}
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.Before(all[j].CreatedAt)
			}
			return d.order[all[i].ID] < d.order[all[j].ID]
		})
		return nil
	})
	return paginate(all, page), err
}

func (r *profileRepo) Update(ctx context.Context, p *profile.Profile) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.profiles[p.ID]
		if !ok {
			return shared.ErrProfileNotFound
		}
		stored.Email = p.Email
		stored.FirstName = p.FirstName
		stored.LastName = p.LastName
		stored.Bio = p.Bio
		stored.AvatarURL = p.AvatarURL
		stored.Expertise = p.Expertise
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *profileRepo) UpdateStanding(ctx context.Context, id string, s reputation.Standing) error {
	if s.Score < 0 {
		return shared.ErrNegativeScore
	}
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.profiles[id]
		if !ok {
			return shared.ErrProfileNotFound
		}
		stored.ReputationScore = s.Score
		stored.Level = s.Level
		stored.IsProfessional = s.IsProfessional
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Delete removes the profile and everything it owns, mirroring the cascades
// of the SQL schema.
func (r *profileRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.profiles[id]; !ok {
			return shared.ErrProfileNotFound
		}
		delete(d.profiles, id)

		for qid, q := range d.questions {
			if q.ProfileID == id {
				d.deleteQuestion(qid)
			}
		}
		for aid, a := range d.answers {
			if a.AuthorID == id {
				d.deleteAnswer(aid)
			}
		}
		for rid, a := range d.articles {
			if a.AuthorID == id {
				delete(d.articles, rid)
				delete(d.articleLikes, rid)
			}
		}
		for cid, c := range d.credentials {
			if c.ProfileID == id {
				delete(d.credentials, cid)
			}
		}

		kept := d.ledger[:0]
		for _, e := range d.ledger {
			if e.ProfileID != id {
				kept = append(kept, e)
			}
		}
		d.ledger = kept

		d.questionLikes.removeMember(id)
		d.articleLikes.removeMember(id)
		d.answerUpvotes.removeMember(id)
		return nil
	})
}

func (r *profileRepo) Stats(_ context.Context, id string) (profile.Stats, error) {
	var stats profile.Stats
	err := r.s.read(func(d *data) error {
		for _, a := range d.articles {
			if a.AuthorID == id && a.IsPublished {
				stats.ArticlesWritten++
			}
		}
		for _, a := range d.answers {
			if a.AuthorID == id && a.IsAccepted {
				stats.AnswersAccepted++
			}
		}
		return nil
	})
	return stats, err
}

func paginate[T any](items []T, page shared.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
