package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// ProductUseCase administración individual del catálogo. Stock y reservas no se editan
// aquí: cambian solo por movimientos.
type ProductUseCase struct {
	txRunner ports.TxRunner
	repo     repository.ProductRepository
	clock    ports.Clock
	log      zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, repo repository.ProductRepository, clock ports.Clock, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, clock: clock, log: log}
}

// Create da de alta un producto. Un SKU existente es DUPLICATE.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	row := Row{
		SKU:            strings.ToUpper(strings.TrimSpace(in.SKU)),
		Name:           strings.TrimSpace(in.Name),
		Category:       canonicalCategory(in.Category),
		Price:          in.Price,
		Stock:          in.InitialStock,
		MinStock:       in.MinStock,
		WarrantyMonths: in.WarrantyMonths,
	}
	if err := validate(row); err != nil {
		return nil, err
	}
	if !knownCategory(row.Category) {
		return nil, domain.NewError(domain.ErrInvalidInput, "categoría desconocida", in.Category)
	}

	var p *entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		existing, err := repos.Products.GetBySKU(ctx, row.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NewError(domain.ErrDuplicate, "SKU ya registrado", row.SKU)
		}
		p, err = createProduct(ctx, repos, actorID, row, uc.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", p.SKU).Str("actor", actorID).Msg("producto creado")
	return toProductResponse(p), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(p), nil
}

// SetActive baja o reactiva el producto. Un producto inactivo no admite tickets,
// ventas ni entradas, pero conserva su historial.
func (uc *ProductUseCase) SetActive(ctx context.Context, id string, active bool) (*dto.ProductResponse, error) {
	if err := uc.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Bool("active", active).Msg("estado de producto actualizado")
	return uc.GetByID(ctx, id)
}

func knownCategory(c string) bool {
	switch c {
	case entity.CategoryRefaccion, entity.CategoryAccesorio, entity.CategoryEquipo, entity.CategorySoftware, entity.CategoryServicio:
		return true
	}
	return false
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price,
		Stock:          p.Stock,
		Reserved:       p.Reserved,
		MinStock:       p.MinStock,
		WarrantyMonths: p.WarrantyMonths,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
