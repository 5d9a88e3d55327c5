package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// store repositorios de lectura fuera de transacción y el TxRunner del driver elegido.
type store struct {
	tx    ports.TxRunner
	repos repository.Repos
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	if cfg.App.StoreDriver == "memory" {
		mem := memory.NewStore()
		if cfg.App.SeedCatalog != "" {
			if err := seedMemory(ctx, mem, cfg.App.SeedCatalog, log); err != nil {
				return nil, err
			}
		}
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return &store{tx: mem, repos: mem.Repos(), close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &store{tx: postgres.NewTxRunner(pool), repos: postgres.NewRepos(pool), close: pool.Close}, nil
}

func seedMemory(ctx context.Context, mem *memory.Store, path string, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	rows, err := catalog.ParseCSV(f, false)
	if err != nil {
		return err
	}
	res, err := catalog.NewImporter(mem, ports.SystemClock{}, log.Component("seed")).Import(ctx, "seed", rows)
	if err != nil {
		return err
	}
	log.Info().Int("created", res.Created).Str("file", path).Msg("catálogo demo cargado")
	return nil
}
