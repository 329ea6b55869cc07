package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación en memoria de ArticleRepository.
type ArticleRepo struct {
	handle
}

// Create asigna el siguiente ID. La categoría debe existir, igual que la FK en SQL.
func (r *ArticleRepo) Create(_ context.Context, a *entity.Article) error {
	return r.write(func(s *state) error {
		if _, ok := s.categories[a.Category]; !ok {
			return domain.ErrInvalidInput
		}
		s.nextArticleID++
		a.ID = s.nextArticleID
		s.articles[a.ID] = *a
		return nil
	})
}

func (r *ArticleRepo) GetByID(_ context.Context, id int64) (*entity.Article, error) {
	var out *entity.Article
	r.read(func(s *state) {
		if a, ok := s.articles[id]; ok {
			out = &a
		}
	})
	return out, nil
}

func (r *ArticleRepo) List(_ context.Context) ([]*entity.Article, error) {
	return r.filter(func(*entity.Article) bool { return true }), nil
}

func (r *ArticleRepo) ListByCategory(_ context.Context, category string) ([]*entity.Article, error) {
	return r.filter(func(a *entity.Article) bool { return a.Category == category }), nil
}

func (r *ArticleRepo) filter(keep func(*entity.Article) bool) []*entity.Article {
	var out []*entity.Article
	r.read(func(s *state) {
		for _, a := range s.articles {
			if keep(&a) {
				out = append(out, &a)
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.Article) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *ArticleRepo) Update(_ context.Context, a *entity.Article) error {
	return r.write(func(s *state) error {
		if _, ok := s.articles[a.ID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := s.categories[a.Category]; !ok {
			return domain.ErrInvalidInput
		}
		s.articles[a.ID] = *a
		return nil
	})
}

// Delete falla si el artículo aún tiene movimientos, igual que la FK en SQL.
func (r *ArticleRepo) Delete(_ context.Context, id int64) error {
	return r.write(func(s *state) error {
		if _, ok := s.articles[id]; !ok {
			return domain.ErrNotFound
		}
		for _, m := range s.movements {
			if m.ArticleID == id {
				return domain.ErrInvalidInput
			}
		}
		delete(s.articles, id)
		return nil
	})
}

func (r *ArticleRepo) CountByCategory(_ context.Context, category string) (int, error) {
	n := 0
	r.read(func(s *state) {
		for _, a := range s.articles {
			if a.Category == category {
				n++
			}
		}
	})
	return n, nil
}
