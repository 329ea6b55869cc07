// Package app arma los casos de uso sobre el almacenamiento y la caché configurados.
// Lo comparten el servidor HTTP y la CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/kardex-api/internal/infrastructure/redis"
	"github.com/jhoicas/kardex-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/kardex-api/pkg/config"
)

// Store repositorios y TxRunner de un mismo adaptador.
type Store struct {
	Tx         inventory.TxRunner
	Categories repository.CategoryRepository
	Articles   repository.ArticleRepository
	Movements  repository.MovementRepository
	close      func()
}

// Close libera la conexión del adaptador.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore abre el adaptador indicado por cfg.Store.Driver y, si AutoMigrate, aplica las migraciones.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &Store{
			Tx:         postgres.NewTxRunner(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Articles:   postgres.NewArticleRepository(pool),
			Movements:  postgres.NewMovementRepository(pool),
			close:      pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := sqlite.Migrate(db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &Store{
			Tx:         sqlite.NewTxRunner(db),
			Categories: sqlite.NewCategoryRepository(db),
			Articles:   sqlite.NewArticleRepository(db),
			Movements:  sqlite.NewMovementRepository(db),
			close:      func() { db.Close() },
		}, nil

	case config.DriverMemory:
		s := memory.NewStore()
		return &Store{
			Tx:         memory.NewTxRunner(s),
			Categories: s.CategoryRepository(),
			Articles:   s.ArticleRepository(),
			Movements:  s.MovementRepository(),
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Store.Driver)
}

// Migrate aplica las migraciones del driver configurado sin abrir los repositorios.
func Migrate(cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return postgres.Migrate(cfg.DB.ConnectionString(), log)
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		return sqlite.Migrate(db)
	case config.DriverMemory:
		return errors.New("el driver memory no tiene esquema que migrar")
	}
	return fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Store.Driver)
}

// Services casos de uso listos para los front ends.
type Services struct {
	Inventory *inventory.InventoryUseCase
	Reports   *report.ReportUseCase
	Location  *time.Location
	closers   []func()
}

// Close libera almacenamiento y caché en orden inverso.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build abre el almacenamiento y la caché y construye los casos de uso.
// Con REDIS_ADDR vacío la caché vive en el proceso.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	loc, err := cfg.Inventory.Location()
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("abrir almacenamiento %s: %w", cfg.Store.Driver, err)
	}
	svc := &Services{Location: loc, closers: []func(){store.Close}}

	var cache repository.ValuationCache
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() { client.Close() })
		cache = infraredis.NewValuationCache(client, cfg.Redis.TTL)
	} else {
		cache = memory.NewValuationCache(cfg.Redis.TTL)
	}

	svc.Inventory = inventory.NewInventoryUseCase(store.Tx,
		store.Categories, store.Articles, store.Movements, cache, loc, log)
	svc.Reports = report.NewReportUseCase(store.Articles, store.Movements, cache, log)

	log.Info().
		Str("store", cfg.Store.Driver).
		Bool("redis", cfg.Redis.Addr != "").
		Str("timezone", loc.String()).
		Msg("servicios de inventario listos")
	return svc, nil
}
