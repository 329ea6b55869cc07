package inventory

import (
	"cmp"
	"slices"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Valuation es el resultado del promedio ponderado móvil sobre el libro de un artículo.
type Valuation struct {
	Quantity    int64
	AverageCost decimal.Decimal
	StockValue  decimal.Decimal
}

// StatementLine es una fila del kardex: el movimiento y los acumulados después de aplicarlo.
type StatementLine struct {
	Movement        entity.Movement
	MovementValue   decimal.Decimal
	RunningQuantity int64
	AverageCost     decimal.Decimal
	StockValue      decimal.Decimal
}

// SortChronologically devuelve una copia ordenada por OccurredAt.
// Con la misma marca de tiempo van primero las entradas y luego el ID ascendente.
func SortChronologically(movements []entity.Movement) []entity.Movement {
	sorted := slices.Clone(movements)
	slices.SortStableFunc(sorted, compareMovements)
	return sorted
}

func compareMovements(a, b entity.Movement) int {
	if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
		return c
	}
	if a.Direction.IsEntry() != b.Direction.IsEntry() {
		if a.Direction.IsEntry() {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.ID, b.ID)
}

// Valuate calcula cantidad y costo promedio ponderado móvil.
// Cuando la cantidad llega a cero el costo promedio conserva su último valor.
func Valuate(movements []entity.Movement) Valuation {
	v := Valuation{AverageCost: decimal.Zero, StockValue: decimal.Zero}
	walk(movements, func(line StatementLine) {
		v = Valuation{
			Quantity:    line.RunningQuantity,
			AverageCost: line.AverageCost,
			StockValue:  line.StockValue,
		}
	})
	return v
}

// Statement devuelve el kardex completo en orden cronológico.
func Statement(movements []entity.Movement) []StatementLine {
	lines := make([]StatementLine, 0, len(movements))
	walk(movements, func(line StatementLine) {
		lines = append(lines, line)
	})
	return lines
}

func walk(movements []entity.Movement, visit func(StatementLine)) {
	var (
		runningQty   int64
		runningValue = decimal.Zero
		averageCost  = decimal.Zero
	)
	for _, m := range SortChronologically(movements) {
		value := m.Value()
		if m.Direction.IsEntry() {
			runningQty += m.Quantity
			runningValue = runningValue.Add(value)
		} else {
			runningQty -= m.Quantity
			runningValue = runningValue.Sub(value)
		}
		// en cero el promedio conserva su último valor; el valor acumulado se arrastra tal cual
		if runningQty != 0 {
			averageCost = runningValue.Div(decimal.NewFromInt(runningQty))
		}
		visit(StatementLine{
			Movement:        m,
			MovementValue:   value,
			RunningQuantity: runningQty,
			AverageCost:     averageCost,
			StockValue:      averageCost.Mul(decimal.NewFromInt(runningQty)),
		})
	}
}

// SimpleAverageCost es la fórmula heredada: valor total de entradas / cantidad total de entradas.
// Ignora las salidas. Devuelve cero si no hay cantidad de entrada.
func SimpleAverageCost(movements []entity.Movement) decimal.Decimal {
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, m := range movements {
		if !m.Direction.IsEntry() {
			continue
		}
		totalQty = totalQty.Add(decimal.NewFromInt(m.Quantity))
		totalValue = totalValue.Add(m.Value())
	}
	if totalQty.IsZero() {
		return decimal.Zero
	}
	return totalValue.Div(totalQty)
}

// CurrentQuantity suma entradas y resta salidas.
func CurrentQuantity(movements []entity.Movement) int64 {
	var qty int64
	for _, m := range movements {
		if m.Direction.IsEntry() {
			qty += m.Quantity
		} else {
			qty -= m.Quantity
		}
	}
	return qty
}

// TotalsByDirection devuelve la cantidad total de entradas y de salidas.
func TotalsByDirection(movements []entity.Movement) (entries, exits int64) {
	for _, m := range movements {
		if m.Direction.IsEntry() {
			entries += m.Quantity
		} else {
			exits += m.Quantity
		}
	}
	return entries, exits
}
