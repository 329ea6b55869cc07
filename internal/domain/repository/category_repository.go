package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// Get devuelve nil, nil si la categoría no existe.
	Get(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	// Rename cambia el nombre y reasigna todos los artículos que la referencian.
	Rename(ctx context.Context, oldName, newName string) error
	Delete(ctx context.Context, name string) error
}
