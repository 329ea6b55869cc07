package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación en memoria de MovementRepository.
type MovementRepo struct {
	handle
}

// Create asigna el siguiente ID; el artículo debe existir.
func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.write(func(s *state) error {
		if _, ok := s.articles[m.ArticleID]; !ok {
			return domain.ErrNotFound
		}
		s.nextMovementID++
		m.ID = s.nextMovementID
		s.movements[m.ID] = *m
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	r.read(func(s *state) {
		if m, ok := s.movements[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *MovementRepo) ListByArticle(_ context.Context, articleID int64) ([]entity.Movement, error) {
	return r.filter(func(m entity.Movement) bool { return m.ArticleID == articleID }), nil
}

func (r *MovementRepo) ListByArticleInRange(_ context.Context, articleID int64, from, to time.Time) ([]entity.Movement, error) {
	return r.filter(func(m entity.Movement) bool {
		return m.ArticleID == articleID && !m.OccurredAt.Before(from) && !m.OccurredAt.After(to)
	}), nil
}

func (r *MovementRepo) filter(keep func(entity.Movement) bool) []entity.Movement {
	out := []entity.Movement{}
	r.read(func(s *state) {
		for _, m := range s.movements {
			if keep(m) {
				out = append(out, m)
			}
		}
	})
	slices.SortFunc(out, func(a, b entity.Movement) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *MovementRepo) Delete(_ context.Context, id int64) error {
	return r.write(func(s *state) error {
		if _, ok := s.movements[id]; !ok {
			return domain.ErrNotFound
		}
		delete(s.movements, id)
		return nil
	})
}

func (r *MovementRepo) DeleteByArticle(_ context.Context, articleID int64) (int64, error) {
	var n int64
	err := r.write(func(s *state) error {
		n = 0
		for id, m := range s.movements {
			if m.ArticleID == articleID {
				delete(s.movements, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
