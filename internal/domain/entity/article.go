package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article representa un artículo del inventario.
// Quantity y Cost son valores nominales registrados al crear el artículo; la cantidad y el
// costo promedio vigentes se derivan siempre de sus movimientos.
type Article struct {
	ID        int64
	Name      string
	Category  string
	Quantity  int64
	Cost      decimal.Decimal
	Barcode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
