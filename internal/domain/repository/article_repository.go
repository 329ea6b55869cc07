package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ArticleRepository define el puerto de persistencia para Article (DIP).
// La implementación vive en infrastructure.
type ArticleRepository interface {
	// Create persiste el artículo y le asigna ID.
	Create(ctx context.Context, article *entity.Article) error
	// GetByID devuelve nil, nil si el artículo no existe.
	GetByID(ctx context.Context, id int64) (*entity.Article, error)
	List(ctx context.Context) ([]*entity.Article, error)
	ListByCategory(ctx context.Context, category string) ([]*entity.Article, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, category string) (int, error)
}
