package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRequest body para POST /api/categories y PUT /api/categories/:name.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateArticleRequest body para POST /api/articles.
// Quantity y Cost generan el movimiento inicial de entrada.
type CreateArticleRequest struct {
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	Cost       decimal.Decimal `json:"cost"`
	Barcode    string          `json:"barcode,omitempty"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// UpdateArticleRequest body para PUT /api/articles/:id. Solo se aplican los campos presentes.
type UpdateArticleRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Quantity *int64           `json:"quantity"`
	Cost     *decimal.Decimal `json:"cost"`
	Barcode  *string          `json:"barcode"`
}

// ArticleResponse salida de un artículo con sus campos nominales.
type ArticleResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int64           `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	Barcode   string          `json:"barcode,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RegisterMovementRequest body para POST /api/articles/:id/movements.
// En salidas UnitCost es opcional: si falta se usa el costo promedio vigente.
type RegisterMovementRequest struct {
	Description string           `json:"description"`
	Direction   string           `json:"direction"`
	Quantity    int64            `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	OccurredAt  *time.Time       `json:"occurred_at,omitempty"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID          int64           `json:"id"`
	ArticleID   int64           `json:"article_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Description string          `json:"description"`
	Direction   string          `json:"direction"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"` // Quantity * UnitCost
}
