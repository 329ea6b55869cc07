// Package redis implementa la caché de valoraciones sobre Redis (go-redis/v9).
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/config"
)

const (
	keyPrefix = "kardex:valuation:"
	genPrefix = "kardex:valuation:gen:"
)

// setIfGeneration guarda el valor solo si la generación del artículo no cambió desde Get.
// Una generación ausente equivale a 0. ARGV[3] es el TTL en milisegundos; 0 = sin vencimiento.
var setIfGeneration = goredis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

var _ repository.ValuationCache = (*ValuationCache)(nil)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type cachedValuation struct {
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
}

// ValuationCache guarda una valoración por artículo con TTL.
type ValuationCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewValuationCache construye la caché. ttl 0 = sin vencimiento.
func NewValuationCache(client *goredis.Client, ttl time.Duration) *ValuationCache {
	return &ValuationCache{client: client, ttl: ttl}
}

func key(articleID int64) string {
	return keyPrefix + strconv.FormatInt(articleID, 10)
}

func genKey(articleID int64) string {
	return genPrefix + strconv.FormatInt(articleID, 10)
}

// Get lee generación y valor en un solo MGET; Invalidate los cambia juntos en MULTI.
func (c *ValuationCache) Get(ctx context.Context, articleID int64) (inventory.Valuation, int64, bool, error) {
	vals, err := c.client.MGet(ctx, genKey(articleID), key(articleID)).Result()
	if err != nil {
		return inventory.Valuation{}, 0, false, fmt.Errorf("redis mget: %w", err)
	}
	var gen int64
	if raw, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return inventory.Valuation{}, 0, false, fmt.Errorf("parse generation: %w", err)
		}
	}
	raw, ok := vals[1].(string)
	if !ok {
		return inventory.Valuation{}, gen, false, nil
	}
	var cv cachedValuation
	if err := json.Unmarshal([]byte(raw), &cv); err != nil {
		return inventory.Valuation{}, gen, false, fmt.Errorf("unmarshal valuation: %w", err)
	}
	return inventory.Valuation{Quantity: cv.Quantity, AverageCost: cv.AverageCost, StockValue: cv.StockValue}, gen, true, nil
}

func (c *ValuationCache) Set(ctx context.Context, articleID int64, gen int64, v inventory.Valuation) error {
	data, err := json.Marshal(cachedValuation{Quantity: v.Quantity, AverageCost: v.AverageCost, StockValue: v.StockValue})
	if err != nil {
		return fmt.Errorf("marshal valuation: %w", err)
	}
	keys := []string{genKey(articleID), key(articleID)}
	if err := setIfGeneration.Run(ctx, c.client, keys, gen, data, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ValuationCache) Invalidate(ctx context.Context, articleIDs ...int64) error {
	if len(articleIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range articleIDs {
			pipe.Incr(ctx, genKey(id))
			pipe.Del(ctx, key(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
