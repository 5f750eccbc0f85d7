package memory

import (
	"context"
	"sort"

	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/internal/domain/technology"
)

type technologyRepo struct {
	s *Store
}

func (d *data) technologyTaken(t *technology.Technology) bool {
	for _, other := range d.technologies {
		if other.ID != t.ID && (other.Name == t.Name || other.Slug == t.Slug) {
			return true
		}
	}
	return false
}

func (r *technologyRepo) Create(ctx context.Context, t *technology.Technology) error {
	return r.s.write(ctx, func(d *data) error {
		if d.technologyTaken(t) {
			return shared.ErrTechnologyExists
		}
		c := *t
		d.technologies[t.ID] = &c
		d.track(t.ID)
		return nil
	})
}

func (r *technologyRepo) GetByID(_ context.Context, id string) (*technology.Technology, error) {
	var out *technology.Technology
	err := r.s.read(func(d *data) error {
		t, ok := d.technologies[id]
		if !ok {
			return shared.ErrTechnologyNotFound
		}
		c := *t
		out = &c
		return nil
	})
	return out, err
}

func (r *technologyRepo) GetByIDs(_ context.Context, ids []string) ([]*technology.Technology, error) {
	out := []*technology.Technology{}
	err := r.s.read(func(d *data) error {
		for _, id := range d.sortTechIDs(ids) {
			if t, ok := d.technologies[id]; ok {
				c := *t
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (r *technologyRepo) List(_ context.Context) ([]*technology.Technology, error) {
	out := []*technology.Technology{}
	err := r.s.read(func(d *data) error {
		for _, t := range d.technologies {
			c := *t
			out = append(out, &c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *technologyRepo) Update(ctx context.Context, t *technology.Technology) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.technologies[t.ID]; !ok {
			return shared.ErrTechnologyNotFound
		}
		if d.technologyTaken(t) {
			return shared.ErrTechnologyExists
		}
		c := *t
		d.technologies[t.ID] = &c
		return nil
	})
}

// Delete removes the tag and unlinks it from questions and articles.
func (r *technologyRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.technologies[id]; !ok {
			return shared.ErrTechnologyNotFound
		}
		delete(d.technologies, id)
		for _, q := range d.questions {
			q.TechnologyIDs = without(q.TechnologyIDs, id)
		}
		for _, a := range d.articles {
			a.TechnologyIDs = without(a.TechnologyIDs, id)
		}
		return nil
	})
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type ledgerRepo struct {
	s *Store
}

func (r *ledgerRepo) Append(ctx context.Context, e *reputation.Entry) error {
	return r.s.write(ctx, func(d *data) error {
		entry := *e
		d.ledger = append(d.ledger, &entry)
		return nil
	})
}

// ListByProfile returns entries newest first.
func (r *ledgerRepo) ListByProfile(_ context.Context, profileID string, limit, offset int) ([]*reputation.Entry, error) {
	var out []*reputation.Entry
	err := r.s.read(func(d *data) error {
		for i := len(d.ledger) - 1; i >= 0; i-- {
			if e := d.ledger[i]; e.ProfileID == profileID {
				entry := *e
				out = append(out, &entry)
			}
		}
		return nil
	})
	return paginate(out, shared.Page{Limit: limit, Offset: offset}.Normalize()), err
}
