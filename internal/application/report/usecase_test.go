package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	invdomain "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	inv   *inventory.InventoryUseCase
	rep   *report.ReportUseCase
	cache *memory.ValuationCache
	day   func(d, h int) *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	cache := memory.NewValuationCache(0)
	return &fixture{
		inv: inventory.NewInventoryUseCase(memory.NewTxRunner(s),
			s.CategoryRepository(), s.ArticleRepository(), s.MovementRepository(),
			cache, time.UTC, zerolog.Nop()),
		rep:   report.NewReportUseCase(s.ArticleRepository(), s.MovementRepository(), cache, zerolog.Nop()),
		cache: cache,
		day: func(d, h int) *time.Time {
			at := time.Date(2024, 2, d, h, 0, 0, 0, time.UTC)
			return &at
		},
	}
}

func (f *fixture) article(t *testing.T, name, category string, qty int64, cost string, at *time.Time) int64 {
	t.Helper()
	a, err := f.inv.CreateArticle(context.Background(), inventory.CreateArticleInput{
		Name: name, Category: category, Quantity: qty, Cost: decimal.RequireFromString(cost), OccurredAt: at,
	})
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) move(t *testing.T, id int64, dir entity.Direction, qty int64, cost string, at *time.Time) {
	t.Helper()
	_, err := f.inv.RegisterMovement(context.Background(), inventory.RegisterMovementInput{
		ArticleID: id, Direction: dir, Quantity: qty, UnitCost: decimal.RequireFromString(cost), OccurredAt: at,
	})
	require.NoError(t, err)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "esperado %s, obtenido %s", expected, actual)
}

// brokenCache simula Redis caído.
type brokenCache struct{}

func (brokenCache) Get(context.Context, int64) (invdomain.Valuation, int64, bool, error) {
	return invdomain.Valuation{}, 0, false, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, int64, int64, invdomain.Valuation) error {
	return errors.New("connection refused")
}
func (brokenCache) Invalidate(context.Context, ...int64) error { return errors.New("connection refused") }

// interleavedCache ejecuta beforeSet una sola vez, después de leer el libro y antes de guardar.
type interleavedCache struct {
	*memory.ValuationCache
	beforeSet func()
}

func (c *interleavedCache) Set(ctx context.Context, articleID, gen int64, v invdomain.Valuation) error {
	if fn := c.beforeSet; fn != nil {
		c.beforeSet = nil
		fn()
	}
	return c.ValuationCache.Set(ctx, articleID, gen, v)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListArticles / ArticleSummary / CurrentAverageCost
// ──────────────────────────────────────────────────────────────────────────────

func TestListArticles_ValoraDesdeElLibro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, "Harina", "Víveres", 10, "2", f.day(1, 8))
	f.move(t, a, entity.DirectionEntry, 10, "4", f.day(2, 8))
	f.move(t, a, entity.DirectionExit, 5, "3", f.day(3, 8))
	b := f.article(t, "Tuerca", "Ferretería", 4, "0.5", f.day(1, 9))

	list, err := f.rep.ListArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, int64(15), list[0].CurrentQuantity)
	assertDecimal(t, "3", list[0].AverageCost)
	assertDecimal(t, "45", list[0].StockValue)
	assert.Equal(t, b, list[1].ID)

	filtered, err := f.rep.ListArticles(ctx, "Ferretería")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Tuerca", filtered[0].Name)

	none, err := f.rep.ListArticles(ctx, "NoExiste")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// Los campos nominales del artículo no influyen en la valoración.
func TestArticleSummary_IgnoraCamposNominales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.article(t, "Aceite", "Víveres", 6, "5", f.day(1, 8))

	qty := int64(1000)
	cost := decimal.NewFromInt(99)
	_, err := f.inv.UpdateArticle(ctx, id, inventory.UpdateArticleInput{Quantity: &qty, Cost: &cost})
	require.NoError(t, err)

	s, err := f.rep.ArticleSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.CurrentQuantity)
	assertDecimal(t, "5", s.AverageCost)

	_, err = f.rep.ArticleSummary(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrentAverageCost_UsadoParaRegistrarSalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.article(t, "Pintura", "Ferretería", 10, "2", f.day(1, 8))
	f.move(t, id, entity.DirectionEntry, 10, "4", f.day(2, 8))

	avg, err := f.rep.CurrentAverageCost(ctx, id)
	require.NoError(t, err)
	assertDecimal(t, "3", avg)

	f.move(t, id, entity.DirectionExit, 5, avg.String(), f.day(3, 8))
	avg, err = f.rep.CurrentAverageCost(ctx, id)
	require.NoError(t, err)
	assertDecimal(t, "3", avg)

	_, err = f.rep.CurrentAverageCost(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValoracion_SeCacheaYSeInvalidaTrasMutacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.article(t, "Vela", "Hogar", 2, "1", f.day(1, 8))

	_, err := f.rep.ArticleSummary(ctx, id)
	require.NoError(t, err)
	cached, _, found, err := f.cache.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found, "la valoración queda en caché tras leerla")
	assert.Equal(t, int64(2), cached.Quantity)

	f.move(t, id, entity.DirectionEntry, 3, "1", f.day(2, 8))
	s, err := f.rep.ArticleSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.CurrentQuantity, "la mutación invalida la entrada")
}

// Caso: una mutación se confirma entre la lectura del libro y el guardado en caché.
func TestValoracion_MutacionConcurrente_NoDejaValoracionVieja(t *testing.T) {
	s := memory.NewStore()
	cache := &interleavedCache{ValuationCache: memory.NewValuationCache(time.Minute)}
	inv := inventory.NewInventoryUseCase(memory.NewTxRunner(s),
		s.CategoryRepository(), s.ArticleRepository(), s.MovementRepository(),
		cache, time.UTC, zerolog.Nop())
	rep := report.NewReportUseCase(s.ArticleRepository(), s.MovementRepository(), cache, zerolog.Nop())
	ctx := context.Background()

	a, err := inv.CreateArticle(ctx, inventory.CreateArticleInput{
		Name: "Arroz", Category: "Víveres", Quantity: 10, Cost: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	cache.beforeSet = func() {
		_, err := inv.RegisterMovement(ctx, inventory.RegisterMovementInput{
			ArticleID: a.ID, Direction: entity.DirectionEntry, Quantity: 10, UnitCost: decimal.NewFromInt(4),
		})
		require.NoError(t, err)
	}

	first, err := rep.ArticleSummary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.CurrentQuantity, "la lectura vio el libro antes de la mutación")

	_, _, found, err := cache.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, found, "la valoración anterior al commit no se guarda")

	second, err := rep.ArticleSummary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), second.CurrentQuantity)
	assertDecimal(t, "3", second.AverageCost)

	avg, err := rep.CurrentAverageCost(ctx, a.ID)
	require.NoError(t, err)
	assertDecimal(t, "3", avg)
}

func TestValoracion_CacheCaida_RecalculaDesdeElLibro(t *testing.T) {
	s := memory.NewStore()
	inv := inventory.NewInventoryUseCase(memory.NewTxRunner(s),
		s.CategoryRepository(), s.ArticleRepository(), s.MovementRepository(),
		brokenCache{}, time.UTC, zerolog.Nop())
	rep := report.NewReportUseCase(s.ArticleRepository(), s.MovementRepository(), brokenCache{}, zerolog.Nop())
	ctx := context.Background()

	a, err := inv.CreateArticle(ctx, inventory.CreateArticleInput{Name: "Foco", Category: "Hogar", Quantity: 4, Cost: decimal.NewFromInt(3)})
	require.NoError(t, err, "un fallo al invalidar la caché no revierte la mutación")

	list, err := rep.ListArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, int64(4), list[0].CurrentQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// DetailedReport
// ──────────────────────────────────────────────────────────────────────────────

func TestDetailedReport_FiltraPorRangoYCalculaPorcentaje(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, "Papel", "Papelería", 100, "1", f.day(1, 8))
	f.move(t, a, entity.DirectionEntry, 50, "4", f.day(10, 8))
	f.move(t, a, entity.DirectionExit, 20, "2", f.day(11, 8))
	f.move(t, a, entity.DirectionEntry, 70, "9", f.day(25, 8))
	b := f.article(t, "Tinta", "Papelería", 3, "7", f.day(1, 9))

	q := dto.ReportQuery{Start: *f.day(5, 0), End: *f.day(20, 0)}
	rows, err := f.rep.DetailedReport(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 2, "los artículos sin movimientos en el rango aparecen en cero")

	assert.Equal(t, a, rows[0].ArticleID)
	assert.Equal(t, int64(50), rows[0].TotalEntries)
	assert.Equal(t, int64(20), rows[0].TotalExits)
	assertDecimal(t, "40", rows[0].ExitPercentage)
	// solo con los movimientos del período: 50@4 y salida 20@2 → 160/30
	assertDecimal(t, decimal.NewFromInt(160).Div(decimal.NewFromInt(30)).String(), rows[0].AverageCost)

	assert.Equal(t, b, rows[1].ArticleID)
	assert.Equal(t, int64(0), rows[1].TotalEntries)
	assertDecimal(t, "0", rows[1].ExitPercentage)
	assertDecimal(t, "0", rows[1].AverageCost)
}

func TestDetailedReport_FiltroPorArticulo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, "Clip", "Papelería", 10, "0.1", f.day(1, 8))
	f.article(t, "Grapa", "Papelería", 10, "0.2", f.day(1, 8))

	rows, err := f.rep.DetailedReport(ctx, dto.ReportQuery{Start: *f.day(1, 0), End: *f.day(2, 0), ArticleID: &a})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Clip", rows[0].Name)

	unknown := int64(12345)
	rows, err = f.rep.DetailedReport(ctx, dto.ReportQuery{Start: *f.day(1, 0), End: *f.day(2, 0), ArticleID: &unknown})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDetailedReport_RangoInvertido_InvalidRangeError(t *testing.T) {
	f := newFixture(t)
	_, err := f.rep.DetailedReport(context.Background(), dto.ReportQuery{Start: *f.day(10, 0), End: *f.day(1, 0)})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	var rangeErr *domain.InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestDetailedReport_SoloSalidas_PorcentajeCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.article(t, "Cinta", "Papelería", 10, "1", f.day(1, 8))
	f.move(t, a, entity.DirectionExit, 4, "1", f.day(15, 8))

	rows, err := f.rep.DetailedReport(ctx, dto.ReportQuery{Start: *f.day(10, 0), End: *f.day(20, 0), ArticleID: &a})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].TotalExits)
	assertDecimal(t, "0", rows[0].ExitPercentage)
}

func TestExitPercentage(t *testing.T) {
	assertDecimal(t, "0", report.ExitPercentage(0, 10))
	assertDecimal(t, "50", report.ExitPercentage(10, 5))
	assertDecimal(t, "33.3333", report.ExitPercentage(3, 1))
	assertDecimal(t, "150", report.ExitPercentage(2, 3))
}

func TestNewReportQuery_FinInclusivoEnZona(t *testing.T) {
	loc := time.FixedZone("VET", -4*60*60)
	q, err := report.NewReportQuery("2024-02-01", "2024-02-29", nil, loc)
	require.NoError(t, err)

	assert.True(t, time.Date(2024, 2, 1, 0, 0, 0, 0, loc).Equal(q.Start))
	assert.True(t, time.Date(2024, 2, 29, 23, 59, 59, 999999000, loc).Equal(q.End))

	_, err = report.NewReportQuery("01/02/2024", "2024-02-29", nil, loc)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Statement
// ──────────────────────────────────────────────────────────────────────────────

func TestStatement_LineasConAcumulados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.article(t, "Cable", "Electricidad", 10, "2", f.day(1, 8))
	f.move(t, id, entity.DirectionEntry, 10, "4", f.day(2, 8))
	f.move(t, id, entity.DirectionExit, 5, "3", f.day(3, 8))

	st, err := f.rep.Statement(ctx, id)
	require.NoError(t, err)
	require.Len(t, st.Lines, 3)
	assert.Equal(t, entity.InitialMovementDescription, st.Lines[0].Description)
	assert.Equal(t, int64(15), st.Lines[2].RunningQuantity)
	assertDecimal(t, "45", st.Lines[2].StockValue)
	assert.Equal(t, int64(15), st.Article.CurrentQuantity)

	_, err = f.rep.Statement(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
