package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indica si un movimiento suma (entrada) o resta (salida) existencias.
type Direction string

const (
	DirectionEntry Direction = "entry" // entrada
	DirectionExit  Direction = "exit"  // salida
)

// InitialMovementDescription es la descripción del movimiento sintético que acompaña la creación de un artículo.
const InitialMovementDescription = "Creación inicial del artículo"

// ParseDirection acepta "entry"/"exit" y sus equivalentes en español.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "entry", "in", "entrada":
		return DirectionEntry, nil
	case "exit", "out", "salida":
		return DirectionExit, nil
	}
	return "", fmt.Errorf("dirección desconocida %q", s)
}

// IsEntry reporta si la dirección es una entrada.
func (d Direction) IsEntry() bool { return d == DirectionEntry }

// Valid reporta si la dirección es una de las conocidas.
func (d Direction) Valid() bool { return d == DirectionEntry || d == DirectionExit }

// Movement es una línea del libro de movimientos (kardex) de un artículo.
// ID es un identificador sintético asignado por el almacenamiento; OccurredAt solo ordena.
type Movement struct {
	ID          int64
	ArticleID   int64
	OccurredAt  time.Time
	Description string
	Direction   Direction
	Quantity    int64
	UnitCost    decimal.Decimal // en salidas, el costo promedio vigente al registrarla
}

// Value devuelve Quantity * UnitCost.
func (m Movement) Value() decimal.Decimal {
	return decimal.NewFromInt(m.Quantity).Mul(m.UnitCost)
}
