package ticket

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/stock"
	domticket "github.com/jhoicas/taller-api/internal/domain/ticket"
)

// maxCodeAttempts intentos de generación ante colisión de código.
const maxCodeAttempts = 5

// Config parámetros del flujo de tickets.
type Config struct {
	TTL time.Duration // ventana de reserva; 0 = 24h
}

// UseCase flujo de tickets de retiro: checkout con reserva atómica, canje con
// salida atómica, cancelación y expiración.
type UseCase struct {
	txRunner ports.TxRunner
	tickets  repository.TicketRepository
	products repository.ProductRepository
	codes    domticket.CodeGenerator
	clock    ports.Clock
	notifier ports.Notifier
	log      zerolog.Logger
	ttl      time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	tickets repository.TicketRepository,
	products repository.ProductRepository,
	codes domticket.CodeGenerator,
	clock ports.Clock,
	notifier ports.Notifier,
	log zerolog.Logger,
	cfg Config,
) *UseCase {
	if codes == nil {
		codes = domticket.RandomCodeGenerator{}
	}
	return &UseCase{
		txRunner: txRunner,
		tickets:  tickets,
		products: products,
		codes:    codes,
		clock:    clock,
		notifier: notifier,
		log:      log,
		ttl:      cfg.TTL,
	}
}

type line struct {
	productID string
	qty       int
}

// Create valida todas las líneas contra el disponible y, en una sola transacción,
// guarda ticket y líneas y reserva el stock. Si alguna línea no alcanza no se reserva nada.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	if userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}

	// Validación previa sin bloqueo: falla rápido sin abrir transacción.
	products := make(map[string]*entity.Product, len(lines))
	for _, l := range lines {
		p, err := uc.products.GetByID(ctx, l.productID)
		if err != nil {
			return nil, err
		}
		if err := checkLine(p, l); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}

	now := uc.clock.Now()
	var t *entity.WithdrawalTicket
	for attempt := 1; ; attempt++ {
		code, err := uc.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("generar código: %w", err)
		}
		code = domticket.Normalize(code)
		inUse, err := uc.tickets.CodeInUse(ctx, code)
		if err != nil {
			return nil, err
		}
		if !inUse {
			t = newTicket(code, userID, lines, now, uc.ttl)
			err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
				return reserve(ctx, repos, t, lines)
			})
			if err == nil {
				break
			}
			if !errors.Is(err, domain.ErrDuplicate) {
				return nil, err
			}
		}
		if attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("no se pudo generar un código único tras %d intentos: %w", attempt, domain.ErrConflict)
		}
		uc.log.Debug().Str("code", code).Int("attempt", attempt).Msg("colisión de código de ticket, regenerando")
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventTicketCreated,
		ResourceID: t.ID,
		ActorID:    userID,
		Message:    fmt.Sprintf("Ticket %s creado con %d líneas", t.Code, len(t.Items)),
		Data:       map[string]any{"code": t.Code, "expires_at": t.ExpiresAt},
		OccurredAt: now,
	})
	inventory.AlertLowStock(ctx, uc.products, uc.notifier, uc.log, lineIDs(lines)...)

	for i := range t.Items {
		t.Items[i].Product = products[t.Items[i].ProductID]
	}
	return toResponse(t), nil
}

// reserve bloquea los productos en orden estable, revalida el disponible y reserva.
func reserve(ctx context.Context, repos repository.Repos, t *entity.WithdrawalTicket, lines []line) error {
	for _, l := range sortedLines(lines) {
		p, err := repos.Products.GetForUpdate(ctx, l.productID)
		if err != nil {
			return err
		}
		if err := checkLine(p, l); err != nil {
			return err
		}
	}
	if err := repos.Tickets.Create(ctx, t); err != nil {
		return err
	}
	ledger := inventory.NewLedger(repos)
	for _, l := range lines {
		if err := ledger.Reserve(ctx, l.productID, l.qty); err != nil {
			return err
		}
	}
	return nil
}

// Validate canjea el ticket: lo marca Completado y por cada línea confirma la reserva
// y registra una Salida a nombre del solicitante. Todo o nada.
func (uc *UseCase) Validate(ctx context.Context, code, actorID string) (*dto.TicketResponse, error) {
	code = domticket.Normalize(code)
	if domticket.ValidateCode(code) != nil {
		return nil, domain.NotFound("ticket", code)
	}
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var t *entity.WithdrawalTicket
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		t, err = lockPending(ctx, repos, code)
		if err != nil {
			return err
		}
		if t.IsExpiredAt(now) {
			return domain.NewError(domain.ErrExpired,
				fmt.Sprintf("el ticket expiró el %s", t.ExpiresAt.Format(time.RFC3339)), t.Code)
		}
		ok, err := repos.Tickets.UpdateStatus(ctx, t.ID, entity.TicketStatusCompleted, &now, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidState("el ticket ya no está pendiente", t.Status)
		}
		recorder := inventory.NewRecorder(repos)
		for _, item := range sortedItems(t.Items) {
			if _, err := recorder.Withdraw(ctx, inventory.MovementInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				ActorID:   t.UserID,
				Motive:    "Retiro con ticket " + t.Code,
				TicketID:  t.ID,
			}, now); err != nil {
				return err
			}
		}
		t.Status = entity.TicketStatusCompleted
		t.CompletedAt = &now
		t.ValidatedBy = actorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventTicketValidated,
		ResourceID: t.ID,
		ActorID:    actorID,
		Message:    fmt.Sprintf("Ticket %s canjeado", t.Code),
		Data:       map[string]any{"code": t.Code, "user_id": t.UserID},
		OccurredAt: now,
	})
	inventory.AlertLowStock(ctx, uc.products, uc.notifier, uc.log, itemIDs(t.Items)...)

	return uc.resolved(ctx, t)
}

// Cancel pasa un ticket Pendiente a Cancelado y libera cada línea una sola vez.
// Un Técnico solo cancela sus propios tickets; Recepción y Administrador, cualquiera.
func (uc *UseCase) Cancel(ctx context.Context, code, actorID string, role entity.Role) (*dto.TicketResponse, error) {
	code = domticket.Normalize(code)
	if domticket.ValidateCode(code) != nil {
		return nil, domain.NotFound("ticket", code)
	}
	now := uc.clock.Now()

	var t *entity.WithdrawalTicket
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		t, err = lockPending(ctx, repos, code)
		if err != nil {
			return err
		}
		if !canCancel(t, actorID, role) {
			return domain.NewError(domain.ErrPermissionDenied, "solo el solicitante puede cancelar el ticket", t.Code)
		}
		return closeAndRelease(ctx, repos, t, entity.TicketStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
		Type:       ports.EventTicketCancelled,
		ResourceID: t.ID,
		ActorID:    actorID,
		Message:    fmt.Sprintf("Ticket %s cancelado", t.Code),
		Data:       map[string]any{"code": t.Code},
		OccurredAt: now,
	})
	return uc.resolved(ctx, t)
}

// ExpireStale pasa a Expirado los tickets Pendiente vencidos y libera sus reservas.
// Cada ticket va en su propia transacción; uno ya cerrado se omite sin error.
func (uc *UseCase) ExpireStale(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	now := uc.clock.Now()
	ids, err := uc.tickets.ListExpiredPending(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, id := range ids {
		var t *entity.WithdrawalTicket
		err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			var err error
			t, err = repos.Tickets.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if t == nil || t.Status != entity.TicketStatusPending || !t.IsExpiredAt(now) {
				t = nil
				return nil
			}
			return closeAndRelease(ctx, repos, t, entity.TicketStatusExpired)
		})
		if err != nil {
			uc.log.Error().Err(err).Str("ticket_id", id).Msg("expirar ticket")
			errs = append(errs, fmt.Errorf("ticket %s: %w", id, err))
			continue
		}
		if t == nil {
			continue
		}
		expired++
		ports.Publish(ctx, uc.notifier, uc.log, ports.Event{
			Type:       ports.EventTicketExpired,
			ResourceID: t.ID,
			Message:    fmt.Sprintf("Ticket %s expirado, reservas liberadas", t.Code),
			Data:       map[string]any{"code": t.Code},
			OccurredAt: now,
		})
	}
	return expired, errors.Join(errs...)
}

// Get devuelve el ticket por código (sin distinguir mayúsculas).
func (uc *UseCase) Get(ctx context.Context, code string) (*dto.TicketResponse, error) {
	t, err := uc.find(ctx, code)
	if err != nil {
		return nil, err
	}
	return uc.resolved(ctx, t)
}

func (uc *UseCase) find(ctx context.Context, code string) (*entity.WithdrawalTicket, error) {
	code = domticket.Normalize(code)
	t, err := uc.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("ticket", code)
	}
	return t, nil
}

func canCancel(t *entity.WithdrawalTicket, actorID string, role entity.Role) bool {
	switch role {
	case entity.RoleReception, entity.RoleAdmin:
		return true
	}
	return actorID != "" && t.UserID == actorID
}

func lockPending(ctx context.Context, repos repository.Repos, code string) (*entity.WithdrawalTicket, error) {
	t, err := repos.Tickets.GetByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("ticket", code)
	}
	if t.Status != entity.TicketStatusPending {
		return nil, domain.InvalidState(fmt.Sprintf("el ticket %s está %s", t.Code, t.Status), t.Status)
	}
	return t, nil
}

func closeAndRelease(ctx context.Context, repos repository.Repos, t *entity.WithdrawalTicket, status string) error {
	ok, err := repos.Tickets.UpdateStatus(ctx, t.ID, status, nil, "")
	if err != nil {
		return err
	}
	if !ok {
		return domain.InvalidState("el ticket ya no está pendiente", t.Status)
	}
	ledger := inventory.NewLedger(repos)
	for _, item := range sortedItems(t.Items) {
		if err := ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	t.Status = status
	return nil
}

func (uc *UseCase) resolved(ctx context.Context, t *entity.WithdrawalTicket) (*dto.TicketResponse, error) {
	list, err := uc.products.ListByIDs(ctx, itemIDs(t.Items))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	for i := range t.Items {
		t.Items[i].Product = byID[t.Items[i].ProductID]
	}
	return toResponse(t), nil
}

func checkLine(p *entity.Product, l line) error {
	if p == nil {
		return domain.NotFound("producto", l.productID)
	}
	if !p.Active {
		return domain.InvalidState("el producto está dado de baja", p.ID)
	}
	if avail := stock.LevelOf(p).Available(); avail < l.qty {
		return domain.InsufficientStock(p.ID, avail, l.qty)
	}
	return nil
}

// mergeLines suma cantidades de líneas repetidas conservando el orden de aparición.
func mergeLines(items []dto.TicketItemRequest) ([]line, error) {
	idx := map[string]int{}
	var out []line
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, domain.NewError(domain.ErrInvalidInput, "cada línea requiere producto y cantidad positiva", it.ProductID)
		}
		if i, ok := idx[it.ProductID]; ok {
			out[i].qty += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, line{productID: it.ProductID, qty: it.Quantity})
	}
	return out, nil
}

func newTicket(code, userID string, lines []line, now time.Time, ttl time.Duration) *entity.WithdrawalTicket {
	t := &entity.WithdrawalTicket{
		ID:        uuid.New().String(),
		Code:      code,
		UserID:    userID,
		Status:    entity.TicketStatusPending,
		CreatedAt: now,
		ExpiresAt: domticket.ExpiresAt(now, ttl),
	}
	for _, l := range lines {
		t.Items = append(t.Items, entity.TicketItem{
			ID:        uuid.New().String(),
			TicketID:  t.ID,
			ProductID: l.productID,
			Quantity:  l.qty,
		})
	}
	return t
}

func sortedLines(lines []line) []line {
	out := append([]line(nil), lines...)
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

func sortedItems(items []entity.TicketItem) []entity.TicketItem {
	out := append([]entity.TicketItem(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func lineIDs(lines []line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.productID)
	}
	return ids
}

func itemIDs(items []entity.TicketItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func toResponse(t *entity.WithdrawalTicket) *dto.TicketResponse {
	out := &dto.TicketResponse{
		ID:          t.ID,
		Code:        t.Code,
		UserID:      t.UserID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		ExpiresAt:   t.ExpiresAt,
		CompletedAt: t.CompletedAt,
		ValidatedBy: t.ValidatedBy,
		Items:       make([]dto.TicketItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		item := dto.TicketItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			item.SKU = it.Product.SKU
			item.Name = it.Product.Name
			item.Category = it.Product.Category
		}
		out.Items = append(out.Items, item)
	}
	return out
}
