package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos.
// No garantiza orden: el motor de valoración ordena explícitamente.
type MovementRepository interface {
	// Create persiste el movimiento y le asigna ID.
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve nil, nil si el movimiento no existe.
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	ListByArticle(ctx context.Context, articleID int64) ([]entity.Movement, error)
	// ListByArticleInRange filtra from <= OccurredAt <= to.
	ListByArticleInRange(ctx context.Context, articleID int64, from, to time.Time) ([]entity.Movement, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByArticle elimina todos los movimientos del artículo y devuelve cuántos borró.
	DeleteByArticle(ctx context.Context, articleID int64) (int64, error)
}
