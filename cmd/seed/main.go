// seed carga el catálogo inicial de productos en PostgreSQL desde un CSV.
//
// Uso: go run ./cmd/seed [-latin1] [-actor <user-id>] catalogo.csv
// Columnas: sku, nombre, categoria, precio, stock, minimo, garantia_meses.
// Los SKU existentes se omiten; el stock inicial queda como movimiento Entrada.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	actor := flag.String("actor", "seed", "usuario al que se atribuyen las entradas")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-latin1] [-actor id] catalogo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()
	rows, err := catalog.ParseCSV(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrar esquema")
	}

	im := catalog.NewImporter(postgres.NewTxRunner(pool), ports.SystemClock{}, log.Component("seed"))
	res, err := im.Import(ctx, *actor, rows)
	if err != nil {
		log.Fatal().Err(err).Int("created", res.Created).Msg("importar catálogo")
	}
	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("catálogo cargado")
}
