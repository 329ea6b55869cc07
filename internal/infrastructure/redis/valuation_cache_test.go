package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	kredis "github.com/jhoicas/kardex-api/internal/infrastructure/redis"
	"github.com/jhoicas/kardex-api/pkg/config"
)

func newCache(t *testing.T, ttl time.Duration) (*kredis.ValuationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := kredis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return kredis.NewValuationCache(client, ttl), mr
}

func TestValuationCache_SetYGet(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()
	v := inventory.Valuation{
		Quantity:    15,
		AverageCost: decimal.RequireFromString("3.3333333333333333"),
		StockValue:  decimal.RequireFromString("49.9999999999999995"),
	}

	_, gen, found, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found, "miss no es error")
	assert.Equal(t, int64(0), gen)

	require.NoError(t, cache.Set(ctx, 1, gen, v))
	assert.True(t, mr.Exists("kardex:valuation:1"))

	got, _, found, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(15), got.Quantity)
	assert.True(t, v.AverageCost.Equal(got.AverageCost), "el decimal no pierde precisión")
	assert.True(t, v.StockValue.Equal(got.StockValue))
}

func TestValuationCache_TTL(t *testing.T) {
	cache, mr := newCache(t, 30*time.Second)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, 2, 0, inventory.Valuation{Quantity: 1}))

	mr.FastForward(31 * time.Second)

	_, _, found, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestValuationCache_Invalidate(t *testing.T) {
	cache, mr := newCache(t, 0)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, 1, 0, inventory.Valuation{Quantity: 1}))
	require.NoError(t, cache.Set(ctx, 2, 0, inventory.Valuation{Quantity: 2}))
	require.NoError(t, cache.Set(ctx, 3, 0, inventory.Valuation{Quantity: 3}))

	require.NoError(t, cache.Invalidate(ctx, 1, 2))
	require.NoError(t, cache.Invalidate(ctx))

	assert.False(t, mr.Exists("kardex:valuation:1"))
	assert.False(t, mr.Exists("kardex:valuation:2"))
	assert.True(t, mr.Exists("kardex:valuation:3"))

	_, gen, found, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(1), gen, "cada invalidación avanza la generación")
}

// Una valoración calculada antes de una invalidación no se guarda.
func TestValuationCache_SetConGeneracionVieja_SeDescarta(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	_, gen, found, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, cache.Invalidate(ctx, 5))
	require.NoError(t, cache.Set(ctx, 5, gen, inventory.Valuation{Quantity: 10}))
	assert.False(t, mr.Exists("kardex:valuation:5"))

	_, gen, found, err = cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, 5, gen, inventory.Valuation{Quantity: 20}))
	got, _, found, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(20), got.Quantity)
	assert.Greater(t, mr.TTL("kardex:valuation:5"), time.Duration(0))
}

func TestValuationCache_RedisCaido_DevuelveError(t *testing.T) {
	cache, mr := newCache(t, 0)
	mr.Close()

	_, _, found, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewClient_SinServidor(t *testing.T) {
	_, err := kredis.NewClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

