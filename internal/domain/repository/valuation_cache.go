package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

// ValuationCache guarda la valoración vigente por artículo.
// Un error en Get no es fatal: el llamador recalcula desde el libro, que es la fuente de verdad.
//
// Cada artículo lleva una generación que Invalidate incrementa. Get la devuelve también en un
// fallo de caché y Set solo guarda si la generación sigue siendo esa; una valoración calculada
// antes de una mutación confirmada nunca queda en caché.
type ValuationCache interface {
	Get(ctx context.Context, articleID int64) (v inventory.Valuation, gen int64, found bool, err error)
	Set(ctx context.Context, articleID int64, gen int64, v inventory.Valuation) error
	Invalidate(ctx context.Context, articleIDs ...int64) error
}
