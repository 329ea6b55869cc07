package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	handle
}

// Create inserta una categoría; un nombre existente devuelve ErrDuplicate.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.write(func(s *state) error {
		if _, ok := s.categories[c.Name]; ok {
			return domain.ErrDuplicate
		}
		s.categories[c.Name] = *c
		return nil
	})
}

func (r *CategoryRepo) Get(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	r.read(func(s *state) {
		if c, ok := s.categories[name]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	r.read(func(s *state) {
		for _, c := range s.categories {
			out = append(out, &c)
		}
	})
	slices.SortFunc(out, func(a, b *entity.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Rename inserta el nuevo nombre, reasigna los artículos y borra el anterior.
func (r *CategoryRepo) Rename(_ context.Context, oldName, newName string) error {
	return r.write(func(s *state) error {
		c, ok := s.categories[oldName]
		if !ok {
			return domain.ErrNotFound
		}
		if _, taken := s.categories[newName]; taken {
			return domain.ErrDuplicate
		}
		c.Name = newName
		s.categories[newName] = c
		for id, a := range s.articles {
			if a.Category == oldName {
				a.Category = newName
				s.articles[id] = a
			}
		}
		delete(s.categories, oldName)
		return nil
	})
}

func (r *CategoryRepo) Delete(_ context.Context, name string) error {
	return r.write(func(s *state) error {
		if _, ok := s.categories[name]; !ok {
			return domain.ErrNotFound
		}
		for _, a := range s.articles {
			if a.Category == name {
				return domain.ErrCategoryInUse
			}
		}
		delete(s.categories, name)
		return nil
	})
}
