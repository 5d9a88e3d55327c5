// Package catalog carga el catálogo inicial de productos. El stock inicial entra
// como movimiento Entrada para que la bitácora cuadre desde el primer día.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// Row producto a importar.
type Row struct {
	SKU            string
	Name           string
	Category       string
	Price          decimal.Decimal
	Stock          int
	MinStock       int
	WarrantyMonths int
}

// Result resumen de la importación.
type Result struct {
	Created int
	Skipped int // SKU ya existente
}

// Importer crea productos nuevos; los SKU existentes no se tocan.
type Importer struct {
	txRunner ports.TxRunner
	clock    ports.Clock
	log      zerolog.Logger
}

// NewImporter construye el importador.
func NewImporter(txRunner ports.TxRunner, clock ports.Clock, log zerolog.Logger) *Importer {
	return &Importer{txRunner: txRunner, clock: clock, log: log}
}

// Import procesa cada fila en su propia transacción; una fila inválida aborta todo lo que resta.
func (im *Importer) Import(ctx context.Context, actorID string, rows []Row) (Result, error) {
	var res Result
	for i, r := range rows {
		if err := validate(r); err != nil {
			return res, fmt.Errorf("fila %d: %w", i+1, err)
		}
		var created *entity.Product
		err := im.txRunner.Run(ctx, func(repos repository.Repos) error {
			existing, err := repos.Products.GetBySKU(ctx, r.SKU)
			if err != nil || existing != nil {
				return err
			}
			created, err = createProduct(ctx, repos, actorID, r, im.clock.Now())
			return err
		})
		if err != nil {
			return res, fmt.Errorf("fila %d (%s): %w", i+1, r.SKU, err)
		}
		if created != nil {
			res.Created++
		} else {
			res.Skipped++
			im.log.Debug().Str("sku", r.SKU).Msg("SKU existente, se omite")
		}
	}
	return res, nil
}

// createProduct da de alta el producto y registra su stock inicial como Entrada.
func createProduct(ctx context.Context, repos repository.Repos, actorID string, r Row, now time.Time) (*entity.Product, error) {
	p := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            r.SKU,
		Name:           r.Name,
		Category:       r.Category,
		Price:          r.Price,
		MinStock:       r.MinStock,
		WarrantyMonths: r.WarrantyMonths,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repos.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	if r.Stock == 0 {
		return p, nil
	}
	_, err := inventory.NewRecorder(repos).Apply(ctx, inventory.MovementInput{
		ProductID: p.ID,
		Type:      entity.MovementTypeEntrada,
		Quantity:  r.Stock,
		ActorID:   actorID,
		Motive:    "Carga inicial de catálogo",
	}, now)
	if err != nil {
		return nil, err
	}
	p.Stock = r.Stock
	return p, nil
}

func validate(r Row) error {
	switch {
	case r.SKU == "" || r.Name == "":
		return domain.NewError(domain.ErrInvalidInput, "sku y nombre son obligatorios", r.SKU)
	case r.Stock < 0 || r.MinStock < 0 || r.WarrantyMonths < 0:
		return domain.NewError(domain.ErrInvalidInput, "cantidades negativas", r.SKU)
	case r.Price.IsNegative():
		return domain.NewError(domain.ErrInvalidAmount, "precio negativo", r.SKU)
	}
	return nil
}
