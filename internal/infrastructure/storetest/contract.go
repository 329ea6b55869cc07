// Package storetest contiene el contrato común que deben cumplir los adaptadores de almacenamiento.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Repos agrupa las piezas de un adaptador recién creado y vacío.
type Repos struct {
	Tx         inventory.TxRunner
	Categories repository.CategoryRepository
	Articles   repository.ArticleRepository
	Movements  repository.MovementRepository
}

// Factory crea un almacén vacío por subtest.
type Factory func(t *testing.T) Repos

var errBoom = errors.New("boom")

// Run ejecuta el contrato completo contra el adaptador.
func Run(t *testing.T, newRepos Factory) {
	t.Run("categorias", func(t *testing.T) { testCategories(t, newRepos(t)) })
	t.Run("renombrar categoria reasigna articulos", func(t *testing.T) { testRenameCascade(t, newRepos(t)) })
	t.Run("articulos", func(t *testing.T) { testArticles(t, newRepos(t)) })
	t.Run("movimientos", func(t *testing.T) { testMovements(t, newRepos(t)) })
	t.Run("rango inclusivo", func(t *testing.T) { testRange(t, newRepos(t)) })
	t.Run("rollback", func(t *testing.T) { testRollback(t, newRepos(t)) })
	t.Run("commit", func(t *testing.T) { testCommit(t, newRepos(t)) })
}

var when = time.Date(2024, 5, 10, 14, 30, 15, 123456000, time.UTC)

func seedArticle(t *testing.T, r Repos, category, name string) *entity.Article {
	t.Helper()
	ctx := context.Background()
	existing, err := r.Categories.Get(ctx, category)
	require.NoError(t, err)
	if existing == nil {
		require.NoError(t, r.Categories.Create(ctx, &entity.Category{Name: category, CreatedAt: when}))
	}
	a := &entity.Article{
		Name: name, Category: category, Quantity: 10, Cost: decimal.RequireFromString("2.50"),
		Barcode: "7591234", CreatedAt: when, UpdatedAt: when,
	}
	require.NoError(t, r.Articles.Create(ctx, a))
	require.NotZero(t, a.ID)
	return a
}

func seedMovement(t *testing.T, r Repos, articleID int64, at time.Time, dir entity.Direction, qty int64, cost string) *entity.Movement {
	t.Helper()
	m := &entity.Movement{
		ArticleID: articleID, OccurredAt: at, Description: "mov", Direction: dir,
		Quantity: qty, UnitCost: decimal.RequireFromString(cost),
	}
	require.NoError(t, r.Movements.Create(context.Background(), m))
	require.NotZero(t, m.ID)
	return m
}

func testCategories(t *testing.T, r Repos) {
	ctx := context.Background()

	got, err := r.Categories.Get(ctx, "Ferretería")
	require.NoError(t, err)
	assert.Nil(t, got, "una categoría inexistente devuelve nil, nil")

	require.NoError(t, r.Categories.Create(ctx, &entity.Category{Name: "Ferretería", CreatedAt: when}))
	require.NoError(t, r.Categories.Create(ctx, &entity.Category{Name: "Alimentos", CreatedAt: when}))

	list, err := r.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alimentos", list[0].Name)
	assert.Equal(t, "Ferretería", list[1].Name)

	require.NoError(t, r.Categories.Delete(ctx, "Alimentos"))
	assert.ErrorIs(t, r.Categories.Delete(ctx, "Alimentos"), domain.ErrNotFound)
}

func testRenameCascade(t *testing.T, r Repos) {
	ctx := context.Background()
	a1 := seedArticle(t, r, "Limpieza", "Jabón")
	a2 := seedArticle(t, r, "Limpieza", "Cloro")

	require.NoError(t, r.Categories.Rename(ctx, "Limpieza", "Aseo"))

	old, err := r.Categories.Get(ctx, "Limpieza")
	require.NoError(t, err)
	assert.Nil(t, old)
	renamed, err := r.Categories.Get(ctx, "Aseo")
	require.NoError(t, err)
	require.NotNil(t, renamed)

	for _, id := range []int64{a1.ID, a2.ID} {
		a, err := r.Articles.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Aseo", a.Category)
	}
	n, err := r.Articles.CountByCategory(ctx, "Aseo")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, r.Categories.Rename(ctx, "NoExiste", "Otra"), domain.ErrNotFound)
}

func testArticles(t *testing.T, r Repos) {
	ctx := context.Background()
	a := seedArticle(t, r, "Papelería", "Cuaderno")
	b := seedArticle(t, r, "Papelería", "Lápiz")
	c := seedArticle(t, r, "Bebidas", "Agua")
	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)

	got, err := r.Articles.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cuaderno", got.Name)
	assert.True(t, decimal.RequireFromString("2.5").Equal(got.Cost))
	assert.Equal(t, "7591234", got.Barcode)

	missing, err := r.Articles.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byCat, err := r.Articles.ListByCategory(ctx, "Papelería")
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	all, err := r.Articles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got.Name = "Cuaderno rayado"
	got.Category = "Bebidas"
	require.NoError(t, r.Articles.Update(ctx, got))
	n, err := r.Articles.CountByCategory(ctx, "Bebidas")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Articles.Delete(ctx, c.ID))
	assert.ErrorIs(t, r.Articles.Delete(ctx, c.ID), domain.ErrNotFound)
	ghost := &entity.Article{ID: 9999, Name: "x", Category: "Bebidas", CreatedAt: when, UpdatedAt: when}
	assert.ErrorIs(t, r.Articles.Update(ctx, ghost), domain.ErrNotFound)
}

func testMovements(t *testing.T, r Repos) {
	ctx := context.Background()
	a := seedArticle(t, r, "Repuestos", "Filtro")
	other := seedArticle(t, r, "Repuestos", "Bujía")

	m1 := seedMovement(t, r, a.ID, when, entity.DirectionEntry, 10, "2.00")
	m2 := seedMovement(t, r, a.ID, when, entity.DirectionExit, 4, "2.00")
	seedMovement(t, r, other.ID, when, entity.DirectionEntry, 1, "9.99")
	assert.Less(t, m1.ID, m2.ID, "los IDs sintéticos son crecientes aun con la misma marca de tiempo")

	got, err := r.Movements.GetByID(ctx, m2.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.DirectionExit, got.Direction)
	assert.Equal(t, int64(4), got.Quantity)
	assert.True(t, when.Equal(got.OccurredAt), "la marca de tiempo se conserva al microsegundo: %s", got.OccurredAt)
	assert.True(t, decimal.RequireFromString("2").Equal(got.UnitCost))

	list, err := r.Movements.ListByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, r.Movements.Delete(ctx, m1.ID))
	assert.ErrorIs(t, r.Movements.Delete(ctx, m1.ID), domain.ErrNotFound)

	n, err := r.Movements.DeleteByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	list, err = r.Movements.ListByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	rest, err := r.Movements.ListByArticle(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, rest, 1, "la purga no toca otros artículos")
}

func testRange(t *testing.T, r Repos) {
	ctx := context.Background()
	a := seedArticle(t, r, "Repuestos", "Correa")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	seedMovement(t, r, a.ID, from.Add(-time.Second), entity.DirectionEntry, 1, "1")
	seedMovement(t, r, a.ID, from, entity.DirectionEntry, 2, "1")
	seedMovement(t, r, a.ID, to, entity.DirectionExit, 3, "1")
	seedMovement(t, r, a.ID, to.Add(time.Second), entity.DirectionEntry, 4, "1")

	list, err := r.Movements.ListByArticleInRange(ctx, a.ID, from, to)
	require.NoError(t, err)
	require.Len(t, list, 2, "ambos extremos son inclusivos")
	var qty int64
	for _, m := range list {
		qty += m.Quantity
	}
	assert.Equal(t, int64(5), qty)
}

func testRollback(t *testing.T, r Repos) {
	ctx := context.Background()
	err := r.Tx.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		require.NoError(t, categoryRepo.Create(ctx, &entity.Category{Name: "Temporal", CreatedAt: when}))
		a := &entity.Article{Name: "Fantasma", Category: "Temporal", CreatedAt: when, UpdatedAt: when}
		require.NoError(t, articleRepo.Create(ctx, a))
		require.NoError(t, movementRepo.Create(ctx, &entity.Movement{
			ArticleID: a.ID, OccurredAt: when, Direction: entity.DirectionEntry, Quantity: 1, UnitCost: decimal.NewFromInt(1),
		}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	cat, err := r.Categories.Get(ctx, "Temporal")
	require.NoError(t, err)
	assert.Nil(t, cat, "la categoría no debe persistir tras el rollback")
	all, err := r.Articles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testCommit(t *testing.T, r Repos) {
	ctx := context.Background()
	var articleID int64
	err := r.Tx.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		if err := categoryRepo.Create(ctx, &entity.Category{Name: "Hogar", CreatedAt: when}); err != nil {
			return err
		}
		a := &entity.Article{Name: "Vaso", Category: "Hogar", CreatedAt: when, UpdatedAt: when}
		if err := articleRepo.Create(ctx, a); err != nil {
			return err
		}
		articleID = a.ID
		return movementRepo.Create(ctx, &entity.Movement{
			ArticleID: a.ID, OccurredAt: when, Direction: entity.DirectionEntry, Quantity: 6, UnitCost: decimal.NewFromInt(3),
		})
	})
	require.NoError(t, err)

	a, err := r.Articles.GetByID(ctx, articleID)
	require.NoError(t, err)
	require.NotNil(t, a)
	movs, err := r.Movements.ListByArticle(ctx, articleID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}
