package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

func setup() (*inventory.RegisterMovementUseCase, *memory.Store) {
	store := memory.NewStore()
	store.Seed(
		entity.Product{ID: "p-1", SKU: "RAM-8", Name: "Memoria 8GB", Category: entity.CategoryRefaccion, Stock: 10, Reserved: 4, MinStock: 3, Active: true},
		entity.Product{ID: "p-off", SKU: "OLD-1", Name: "Descontinuado", Category: entity.CategoryRefaccion, Stock: 1},
	)
	repos := store.Repos()
	clock := &ports.FixedClock{T: time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)}
	uc := inventory.NewRegisterMovementUseCase(store, repos.Products, repos.Movements, clock, ports.NopNotifier{}, zerolog.Nop())
	return uc, store
}

func register(uc *inventory.RegisterMovementUseCase, typ string, qty int) (*dto.MovementResponse, error) {
	return uc.RegisterMovement(context.Background(), "admin-1", dto.RegisterMovementRequest{ProductID: "p-1", Type: typ, Quantity: qty})
}

func TestRegisterMovement_Tipos(t *testing.T) {
	uc, _ := setup()

	m, err := register(uc, "entrada", 5)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeEntrada, m.Type)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, 15, m.StockAfter)

	m, err = register(uc, "Salida", 3)
	require.NoError(t, err)
	assert.Equal(t, -3, m.Quantity)
	assert.Equal(t, 12, m.StockAfter)

	m, err = register(uc, "devolucion", 1)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeDevolucion, m.Type)
	assert.Equal(t, 13, m.StockAfter)

	m, err = register(uc, "Ajuste", 7)
	require.NoError(t, err)
	assert.Equal(t, -6, m.Quantity, "el ajuste registra el delta con signo")
	assert.Equal(t, 7, m.StockAfter)

	st, err := uc.GetStock(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 7, st.Stock)
	assert.Equal(t, 3, st.Available)
	assert.Equal(t, entity.StockStatusLow, st.Status)

	list, err := uc.ListMovements(context.Background(), "p-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, entity.MovementTypeAjuste, list.Items[0].Type, "más reciente primero")
}

func TestRegisterMovement_SalidaNoTocaReservado(t *testing.T) {
	uc, store := setup()

	_, err := register(uc, "Salida", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	p, _ := store.Repos().Products.GetByID(context.Background(), "p-1")
	assert.Equal(t, 10, p.Stock)
	movs, _ := store.Repos().Movements.ListByProduct(context.Background(), "p-1", 0, 0)
	assert.Empty(t, movs)
}

func TestRegisterMovement_AjustePorDebajoDeReservado(t *testing.T) {
	uc, _ := setup()

	_, err := register(uc, "Ajuste", 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = register(uc, "Ajuste", 10)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ajuste sin cambio")

	_, err = register(uc, "Ajuste", -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	uc, _ := setup()
	ctx := context.Background()

	_, err := register(uc, "Traspaso", 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = register(uc, "Entrada", 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterMovement(ctx, "admin-1", dto.RegisterMovementRequest{ProductID: "nada", Type: "Entrada", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.RegisterMovement(ctx, "admin-1", dto.RegisterMovementRequest{ProductID: "p-off", Type: "Entrada", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}
