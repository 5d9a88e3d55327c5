package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

func newProductUseCase() (*catalog.ProductUseCase, *memory.Store) {
	store := memory.NewStore()
	clock := &ports.FixedClock{T: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)}
	return catalog.NewProductUseCase(store, store.Repos().Products, clock, zerolog.Nop()), store
}

func TestProductUseCase_Create(t *testing.T) {
	ctx := context.Background()
	uc, store := newProductUseCase()

	out, err := uc.Create(ctx, "admin-1", dto.CreateProductRequest{
		SKU: " bat-01 ", Name: "Batería laptop", Category: "refaccion",
		Price: decimal.NewFromInt(890), InitialStock: 3, MinStock: 1, WarrantyMonths: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "BAT-01", out.SKU)
	assert.Equal(t, entity.CategoryRefaccion, out.Category)
	assert.Equal(t, 3, out.Stock)
	assert.True(t, out.Active)

	movs, err := store.Repos().Movements.ListByProduct(ctx, out.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)

	_, err = uc.Create(ctx, "admin-1", dto.CreateProductRequest{SKU: "BAT-01", Name: "Otra", Category: "Refacción"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, "BAT-01", domain.DetailOf(err))
}

func TestProductUseCase_CreateInvalido(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, "admin-1", dto.CreateProductRequest{SKU: "X-1", Name: "X", Category: "bodega"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "admin-1", dto.CreateProductRequest{SKU: "X-1", Name: "X", Category: "Equipo", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestProductUseCase_SetActive(t *testing.T) {
	ctx := context.Background()
	uc, _ := newProductUseCase()
	created, err := uc.Create(ctx, "admin-1", dto.CreateProductRequest{SKU: "CAM-1", Name: "Cámara", Category: "Equipo"})
	require.NoError(t, err)

	out, err := uc.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, out.Active)

	_, err = uc.SetActive(ctx, "no-existe", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
