package warranty_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/application/ticket"
	"github.com/jhoicas/taller-api/internal/application/warranty"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

func TestList_DesdeTicketsCompletados(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(
		entity.Product{ID: "p-1", SKU: "BAT-01", Name: "Batería", Category: entity.CategoryRefaccion, Stock: 3, WarrantyMonths: 6, Active: true},
		entity.Product{ID: "p-2", SKU: "LIC-01", Name: "Licencia antivirus", Category: "software", Stock: 3, WarrantyMonths: 12, Active: true},
		entity.Product{ID: "p-3", SKU: "TOR-01", Name: "Tornillo", Category: entity.CategoryRefaccion, Stock: 3, Active: true},
	)
	repos := store.Repos()
	clock := &ports.FixedClock{T: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	tickets := ticket.NewUseCase(store, repos.Tickets, repos.Products, nil, clock, ports.NopNotifier{}, zerolog.Nop(), ticket.Config{})
	uc := warranty.NewUseCase(repos.Tickets, repos.Products, clock)

	tk, err := tickets.Create(ctx, "tec-1", dto.CreateTicketRequest{Items: []dto.TicketItemRequest{
		{ProductID: "p-1", Quantity: 1}, {ProductID: "p-2", Quantity: 1}, {ProductID: "p-3", Quantity: 2},
	}})
	require.NoError(t, err)
	pending, err := uc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending, "un ticket pendiente no genera garantías")

	_, err = tickets.Validate(ctx, tk.Code, "recep-1")
	require.NoError(t, err)

	list, err := uc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BAT-01", list[0].SKU)
	assert.Equal(t, time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC), list[0].EndsAt)
	assert.Equal(t, entity.WarrantyActive, list[0].Status)

	clock.Advance(200 * 24 * time.Hour)
	list, err = uc.List(ctx, "tec-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.WarrantyExpired, list[0].Status)

	other, err := uc.List(ctx, "otro")
	require.NoError(t, err)
	assert.Empty(t, other)
}
