package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/app"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/pkg/config"
)

func baseConfig(driver string) *config.Config {
	return &config.Config{
		Store:     config.StoreConfig{Driver: driver, AutoMigrate: true},
		Redis:     config.RedisConfig{TTL: time.Minute},
		Inventory: config.InventoryConfig{Timezone: "UTC"},
	}
}

// smoke crea un artículo y verifica que el listado lo valore.
func smoke(t *testing.T, svc *app.Services) {
	t.Helper()
	ctx := context.Background()
	a, err := svc.Inventory.CreateArticle(ctx, inventory.CreateArticleInput{
		Name: "Tornillo", Category: "Ferretería", Quantity: 4, Cost: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	list, err := svc.Reports.ListArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.True(t, decimal.NewFromInt(20).Equal(list[0].StockValue))
}

func TestBuild_Memoria(t *testing.T) {
	svc, err := app.Build(context.Background(), baseConfig(config.DriverMemory), zerolog.Nop())
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, time.UTC, svc.Location)
	smoke(t, svc)
}

func TestBuild_SQLiteConRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(config.DriverSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "kardex.db")
	cfg.Redis.Addr = mr.Addr()

	svc, err := app.Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer svc.Close()

	smoke(t, svc)
	assert.NotEmpty(t, mr.Keys(), "la valoración debe quedar en Redis")
}

func TestBuild_RedisCaido_Falla(t *testing.T) {
	cfg := baseConfig(config.DriverMemory)
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := app.Build(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestBuild_DriverDesconocido(t *testing.T) {
	_, err := app.Build(context.Background(), baseConfig("mongo"), zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrate_SQLiteIdempotente(t *testing.T) {
	cfg := baseConfig(config.DriverSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "kardex.db")

	require.NoError(t, app.Migrate(cfg, zerolog.Nop()))
	require.NoError(t, app.Migrate(cfg, zerolog.Nop()), "sin cambios pendientes no es error")
	assert.Error(t, app.Migrate(baseConfig(config.DriverMemory), zerolog.Nop()))
}
