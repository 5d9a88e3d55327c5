package ticket_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/application/ticket"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

const (
	requester = "user-tecnico"
	validator = "user-recepcion"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// seqCodes devuelve los códigos en orden; el último se repite.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	i     int
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.codes[min(s.i, len(s.codes)-1)]
	s.i++
	return c, nil
}

type recorder struct {
	mu     sync.Mutex
	events []ports.Event
	fail   bool
}

func (r *recorder) Notify(_ context.Context, e ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("sumidero caído")
	}
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	uc       *ticket.UseCase
	store    *memory.Store
	clock    *ports.FixedClock
	notifier *recorder
}

func newFixture(t *testing.T, cfg ticket.Config, gen interface{ Generate() (string, error) }) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.Seed(
		entity.Product{ID: "p-1", SKU: "SKU-1", Name: "Pantalla 15.6", Category: entity.CategoryRefaccion, Stock: 5, MinStock: 1, WarrantyMonths: 3, Active: true},
		entity.Product{ID: "p-2", SKU: "SKU-2", Name: "Teclado USB", Category: entity.CategoryAccesorio, Stock: 2, MinStock: 0, Active: true},
		entity.Product{ID: "p-3", SKU: "SKU-3", Name: "Disco SSD", Category: entity.CategoryRefaccion, Stock: 4, Active: false},
	)
	clock := &ports.FixedClock{T: t0}
	n := &recorder{}
	repos := store.Repos()
	uc := ticket.NewUseCase(store, repos.Tickets, repos.Products, gen, clock, n, zerolog.Nop(), cfg)
	return &fixture{uc: uc, store: store, clock: clock, notifier: n}
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func items(pairs ...any) dto.CreateTicketRequest {
	var req dto.CreateTicketRequest
	for i := 0; i < len(pairs); i += 2 {
		req.Items = append(req.Items, dto.TicketItemRequest{ProductID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return req
}

func TestCreateAndValidate_EscenarioUltimasUnidades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"ABC123", "XYZ789"}})

	first, err := f.uc.Create(ctx, requester, items("p-1", 5))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", first.Code)
	assert.Equal(t, entity.TicketStatusPending, first.Status)
	assert.Equal(t, t0.Add(24*time.Hour), first.ExpiresAt)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "SKU-1", first.Items[0].SKU)
	assert.Equal(t, 5, f.product(t, "p-1").Reserved)

	_, err = f.uc.Create(ctx, requester, items("p-1", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "p-1", domain.DetailOf(err))
	assert.Equal(t, 5, f.product(t, "p-1").Reserved)

	done, err := f.uc.Validate(ctx, first.Code, validator)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusCompleted, done.Status)
	assert.Equal(t, validator, done.ValidatedBy)

	p := f.product(t, "p-1")
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 0, p.Reserved)

	movs, err := f.store.Repos().Movements.ListByProduct(ctx, "p-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSalida, movs[0].Type)
	assert.Equal(t, -5, movs[0].Quantity)
	assert.Equal(t, requester, movs[0].CreatedBy, "la salida se atribuye al solicitante")
	assert.Contains(t, movs[0].Motive, "ABC123")
	assert.Equal(t, first.ID, movs[0].TicketID)

	assert.Contains(t, f.notifier.types(), ports.EventStockLow)
}

func TestCreate_SinReservaParcial(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA"}})

	_, err := f.uc.Create(context.Background(), requester, items("p-1", 2, "p-2", 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "p-2", domain.DetailOf(err))

	assert.Equal(t, 0, f.product(t, "p-1").Reserved)
	assert.Equal(t, 0, f.product(t, "p-2").Reserved)
}

func TestCreate_LineasRepetidasSeSuman(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA"}})

	res, err := f.uc.Create(context.Background(), requester, items("p-1", 2, "p-1", 2))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 4, res.Items[0].Quantity)
	assert.Equal(t, 4, f.product(t, "p-1").Reserved)

	_, err = f.uc.Create(context.Background(), requester, items("p-1", 1, "p-1", 1))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA"}})
	ctx := context.Background()

	_, err := f.uc.Create(ctx, requester, dto.CreateTicketRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.Create(ctx, requester, items("p-1", 0))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.Create(ctx, requester, items("no-existe", 1))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.uc.Create(ctx, requester, items("p-3", 1))
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "producto dado de baja")
}

func TestCreate_ReintentaCodigoEnColision(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA", "AAAAAA", "BBBBBB"}})
	ctx := context.Background()

	a, err := f.uc.Create(ctx, requester, items("p-1", 1))
	require.NoError(t, err)
	b, err := f.uc.Create(ctx, requester, items("p-1", 1))
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", a.Code)
	assert.Equal(t, "BBBBBB", b.Code)
	assert.Equal(t, 2, f.product(t, "p-1").Reserved)
}

func TestCreate_AgotaIntentosDeCodigo(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA"}})
	ctx := context.Background()

	_, err := f.uc.Create(ctx, requester, items("p-1", 1))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, requester, items("p-1", 1))
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 1, f.product(t, "p-1").Reserved)
}

func TestValidate_DosVecesEsInvalidState(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"QWE456"}})
	ctx := context.Background()

	tk, err := f.uc.Create(ctx, requester, items("p-1", 2))
	require.NoError(t, err)
	_, err = f.uc.Validate(ctx, "qwe456", validator)
	require.NoError(t, err, "el código no distingue mayúsculas")

	_, err = f.uc.Validate(ctx, tk.Code, validator)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, entity.TicketStatusCompleted, domain.DetailOf(err))

	p := f.product(t, "p-1")
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, 0, p.Reserved)
	movs, _ := f.store.Repos().Movements.ListByTicket(ctx, tk.ID)
	assert.Len(t, movs, 1)
}

func TestValidate_Expirado(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"EXP001"}})
	ctx := context.Background()

	tk, err := f.uc.Create(ctx, requester, items("p-1", 2))
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour + time.Second)
	_, err = f.uc.Validate(ctx, tk.Code, validator)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))

	got, err := f.uc.Get(ctx, tk.Code)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusPending, got.Status)
	assert.Equal(t, 2, f.product(t, "p-1").Reserved)
	assert.Equal(t, 5, f.product(t, "p-1").Stock)
}

func TestValidate_JustoAlVencerSigueVigente(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"EDGE01"}})
	ctx := context.Background()

	tk, err := f.uc.Create(ctx, requester, items("p-2", 1))
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	_, err = f.uc.Validate(ctx, tk.Code, validator)
	assert.NoError(t, err)
}

func TestValidate_NoEncontrado(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"AAAAAA"}})

	_, err := f.uc.Validate(context.Background(), "ZZZZZZ", validator)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Un código mal formado no puede existir: se reporta igual que uno ausente.
	_, err = f.uc.Validate(context.Background(), "AB-1", validator)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.uc.Cancel(context.Background(), "zz 99!", validator, entity.RoleReception)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCancel_LiberaReserva(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"CAN001"}})
	ctx := context.Background()

	tk, err := f.uc.Create(ctx, requester, items("p-1", 3, "p-2", 1))
	require.NoError(t, err)

	res, err := f.uc.Cancel(ctx, tk.Code, validator, entity.RoleReception)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusCancelled, res.Status)
	assert.Equal(t, 0, f.product(t, "p-1").Reserved)
	assert.Equal(t, 0, f.product(t, "p-2").Reserved)

	_, err = f.uc.Cancel(ctx, tk.Code, validator, entity.RoleReception)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = f.uc.Validate(ctx, tk.Code, validator)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestCancel_SoloElSolicitante(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"OWN001", "OWN002", "OWN003"}})
	ctx := context.Background()

	a, err := f.uc.Create(ctx, requester, items("p-1", 2))
	require.NoError(t, err)

	t.Run("otro técnico no cancela", func(t *testing.T) {
		_, err := f.uc.Cancel(ctx, a.Code, "user-otro", entity.RoleTechnician)
		assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
		assert.Equal(t, 2, f.product(t, "p-1").Reserved)
		got, err := f.uc.Get(ctx, a.Code)
		require.NoError(t, err)
		assert.Equal(t, entity.TicketStatusPending, got.Status)
	})

	t.Run("el solicitante cancela el suyo", func(t *testing.T) {
		res, err := f.uc.Cancel(ctx, a.Code, requester, entity.RoleTechnician)
		require.NoError(t, err)
		assert.Equal(t, entity.TicketStatusCancelled, res.Status)
		assert.Equal(t, 0, f.product(t, "p-1").Reserved)
	})

	t.Run("recepción y administrador cancelan cualquiera", func(t *testing.T) {
		b, err := f.uc.Create(ctx, requester, items("p-1", 1))
		require.NoError(t, err)
		_, err = f.uc.Cancel(ctx, b.Code, validator, entity.RoleReception)
		require.NoError(t, err)

		c, err := f.uc.Create(ctx, requester, items("p-1", 1))
		require.NoError(t, err)
		_, err = f.uc.Cancel(ctx, c.Code, "user-admin", entity.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 0, f.product(t, "p-1").Reserved)
	})
}

func TestExpireStale_LiberaUnaSolaVez(t *testing.T) {
	f := newFixture(t, ticket.Config{TTL: time.Hour}, &seqCodes{codes: []string{"OLD001", "NEW001"}})
	ctx := context.Background()

	old, err := f.uc.Create(ctx, requester, items("p-1", 2))
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)
	_, err = f.uc.Create(ctx, requester, items("p-1", 1))
	require.NoError(t, err)
	assert.Equal(t, 3, f.product(t, "p-1").Reserved)

	f.clock.Advance(45 * time.Minute)
	n, err := f.uc.ExpireStale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.product(t, "p-1").Reserved)

	got, err := f.uc.Get(ctx, old.Code)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusExpired, got.Status)

	n, err = f.uc.ExpireStale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, f.product(t, "p-1").Reserved)
	assert.Contains(t, f.notifier.types(), ports.EventTicketExpired)
}

func TestCreate_ConcurrenciaPorLaUltimaUnidad(t *testing.T) {
	store := memory.NewStore()
	store.Seed(entity.Product{ID: "p-last", SKU: "SKU-LAST", Name: "Batería", Category: entity.CategoryRefaccion, Stock: 1, Active: true})
	repos := store.Repos()
	uc := ticket.NewUseCase(store, repos.Tickets, repos.Products, nil, &ports.FixedClock{T: t0}, ports.NopNotifier{}, zerolog.Nop(), ticket.Config{})

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		shortOf int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Create(context.Background(), requester, items("p-last", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				shortOf++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, shortOf)
	p, err := repos.Products.GetByID(context.Background(), "p-last")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reserved)
	assert.LessOrEqual(t, p.Reserved, p.Stock)
}

func TestNotificacionFallidaNoRevierte(t *testing.T) {
	f := newFixture(t, ticket.Config{}, &seqCodes{codes: []string{"NTF001"}})
	f.notifier.fail = true
	ctx := context.Background()

	tk, err := f.uc.Create(ctx, requester, items("p-2", 1))
	require.NoError(t, err)
	_, err = f.uc.Validate(ctx, tk.Code, validator)
	require.NoError(t, err)
	assert.Equal(t, 1, f.product(t, "p-2").Stock)
}
