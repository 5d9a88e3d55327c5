package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/stock"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

var movementTypes = []string{
	entity.MovementTypeEntrada, entity.MovementTypeSalida,
	entity.MovementTypeAjuste, entity.MovementTypeDevolucion,
}

// ParseMovementType reconoce el tipo sin distinguir mayúsculas ni acentos.
func ParseMovementType(s string) (string, error) {
	for _, t := range movementTypes {
		if textnorm.Equal(t, s) {
			return t, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidInput, "tipo de movimiento desconocido", s)
}

// RegisterMovementUseCase registra movimientos manuales de inventario (Entrada, Salida,
// Ajuste, Devolución) de forma transaccional con bloqueo de fila y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	clock       ports.Clock
	notifier    ports.Notifier
	log         zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	clock ports.Clock,
	notifier ports.Notifier,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		clock:       clock,
		notifier:    notifier,
		log:         log,
	}
}

// RegisterMovement valida tipo y producto, y dentro de una transacción aplica el cambio
// de stock junto con su movimiento.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	movType, err := ParseMovementType(in.Type)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if movType != entity.MovementTypeAjuste && in.Quantity <= 0 {
		return nil, domain.NewError(domain.ErrInvalidInput, "la cantidad debe ser mayor a cero", fmt.Sprint(in.Quantity))
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", in.ProductID)
	}
	if !product.Active && (movType == entity.MovementTypeEntrada || movType == entity.MovementTypeSalida) {
		return nil, domain.InvalidState("el producto está dado de baja", product.SKU)
	}

	motive := in.Motive
	if motive == "" {
		motive = "Movimiento manual: " + movType
	}
	now := uc.clock.Now()

	var mov *entity.InventoryMovement
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		mov, err = NewRecorder(repos).Apply(ctx, MovementInput{
			ProductID: in.ProductID,
			Type:      movType,
			Quantity:  in.Quantity,
			ActorID:   userID,
			Motive:    motive,
			OrderID:   in.OrderID,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventStockMoved,
		ResourceID: mov.ProductID,
		ActorID:    userID,
		Message:    fmt.Sprintf("%s de %d unidades en %s", mov.Type, mov.Quantity, product.SKU),
		Data:       map[string]any{"movement_id": mov.ID, "stock_after": mov.StockAfter},
		OccurredAt: now,
	})
	AlertLowStock(ctx, uc.productRepo, uc.notifier, uc.log, mov.ProductID)

	out := ToMovementResponse(mov)
	return &out, nil
}

// GetStock devuelve total, reservado, disponible y estado de un producto.
func (uc *RegisterMovementUseCase) GetStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto", productID)
	}
	lv := stock.LevelOf(p)
	return &dto.StockResponse{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Stock:     lv.Stock,
		Reserved:  lv.Reserved,
		Available: lv.Available(),
		MinStock:  lv.Min,
		Status:    lv.Status(),
		Active:    p.Active,
	}, nil
}

// ListMovements lista la bitácora de un producto (más recientes primero).
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, productID string, limit, offset int) (*dto.MovementListResponse, error) {
	list, err := uc.movRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// AlertLowStock emite stock.low para cada producto que quedó Bajo o Agotado.
func AlertLowStock(ctx context.Context, products repository.ProductRepository, notifier ports.Notifier, log zerolog.Logger, productIDs ...string) {
	for _, id := range productIDs {
		p, err := products.GetByID(ctx, id)
		if err != nil || p == nil {
			continue
		}
		lv := stock.LevelOf(p)
		if lv.Status() == entity.StockStatusAvailable {
			continue
		}
		ports.Publish(ctx, notifier, log, ports.Event{
			Type:       ports.EventStockLow,
			ResourceID: p.ID,
			Message:    fmt.Sprintf("%s: %s (%d disponibles, mínimo %d)", p.SKU, lv.Status(), lv.Available(), lv.Min),
			Data:       map[string]any{"sku": p.SKU, "available": lv.Available(), "min_stock": lv.Min},
		})
	}
}

// ToMovementResponse adapta la entidad al DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Motive:      m.Motive,
		OrderID:     m.OrderID,
		TicketID:    m.TicketID,
		SaleID:      m.SaleID,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
