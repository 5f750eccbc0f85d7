package memory

import (
	"context"
	"sort"
	"time"

	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/shared"
)

type articleRepo struct {
	s *Store
}

func (d *data) articleView(a *article.Article) *article.Article {
	c := copyArticle(a)
	c.TechnologyIDs = d.sortTechIDs(c.TechnologyIDs)
	c.LikesCount = len(d.articleLikes[a.ID])
	return c
}

func (r *articleRepo) Create(ctx context.Context, a *article.Article) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.profiles[a.AuthorID]; !ok {
			return shared.ErrProfileNotFound
		}
		if err := d.checkTechnologies(a.TechnologyIDs); err != nil {
			return err
		}
		d.articles[a.ID] = copyArticle(a)
		d.track(a.ID)
		return nil
	})
}

func (r *articleRepo) GetByID(_ context.Context, id string) (*article.Article, error) {
	var out *article.Article
	err := r.s.read(func(d *data) error {
		a, ok := d.articles[id]
		if !ok {
			return shared.ErrArticleNotFound
		}
		out = d.articleView(a)
		return nil
	})
	return out, err
}

func (r *articleRepo) Update(ctx context.Context, a *article.Article) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.articles[a.ID]
		if !ok {
			return shared.ErrArticleNotFound
		}
		if err := d.checkTechnologies(a.TechnologyIDs); err != nil {
			return err
		}
		stored.Title = a.Title
		stored.Slug = a.Slug
		stored.Content = a.Content
		stored.IsPublished = a.IsPublished
		stored.TechnologyIDs = append([]string{}, a.TechnologyIDs...)
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.articles[id]; !ok {
			return shared.ErrArticleNotFound
		}
		delete(d.articles, id)
		delete(d.articleLikes, id)
		return nil
	})
}

func (r *articleRepo) List(_ context.Context, f article.Filter) ([]*article.Article, error) {
	var matched []*article.Article
	err := r.s.read(func(d *data) error {
		for _, a := range d.articles {
			if !a.IsPublished && !f.IncludeDrafts {
				continue
			}
			if f.AuthorID != "" && a.AuthorID != f.AuthorID {
				continue
			}
			matched = append(matched, d.articleView(a))
		}
		sort.Slice(matched, func(i, j int) bool {
			return d.newerFirst(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
		})
		return nil
	})
	return paginate(matched, f.Page.Normalize()), err
}

func (r *articleRepo) ToggleLike(ctx context.Context, id, profileID string) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := r.s.write(ctx, func(d *data) error {
		if _, ok := d.articles[id]; !ok {
			return shared.ErrArticleNotFound
		}
		if _, ok := d.profiles[profileID]; !ok {
			return shared.ErrProfileNotFound
		}
		liked = d.articleLikes.toggle(id, profileID)
		count = len(d.articleLikes[id])
		return nil
	})
	return liked, count, err
}
