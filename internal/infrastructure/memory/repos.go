package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = productRepo{}
	_ repository.StockRepository             = stockRepo{}
	_ repository.InventoryMovementRepository = movementRepo{}
	_ repository.TicketRepository            = ticketRepo{}
	_ repository.ServiceOrderRepository      = orderRepo{}
	_ repository.SaleRepository              = saleRepo{}
	_ repository.PaymentRepository           = paymentRepo{}
)

type productRepo struct{ base }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return domain.NewError(domain.ErrDuplicate, "SKU ya registrado", p.SKU)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.NotFound("producto", id)
		}
		p.Active = active
		p.UpdatedAt = time.Now().UTC()
		st.products[id] = p
		return nil
	})
}

func (r productRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.Category != entity.CategoryServicio && p.Available() <= p.MinStock {
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, err
}

type stockRepo struct{ base }

// update aplica fn al producto si existe; fn decide si la guarda se cumple.
func (r stockRepo) update(productID string, fn func(p *entity.Product) bool) (bool, error) {
	ok := false
	err := r.with(func(st *state) error {
		p, found := st.products[productID]
		if !found || !fn(&p) {
			return nil
		}
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r stockRepo) Reserve(_ context.Context, productID string, qty int) (bool, error) {
	return r.update(productID, func(p *entity.Product) bool {
		if p.Stock-p.Reserved < qty {
			return false
		}
		p.Reserved += qty
		return true
	})
}

func (r stockRepo) Release(_ context.Context, productID string, qty int) error {
	_, err := r.update(productID, func(p *entity.Product) bool {
		p.Reserved = max(p.Reserved-qty, 0)
		return true
	})
	return err
}

func (r stockRepo) Commit(_ context.Context, productID string, qty int) (bool, error) {
	return r.update(productID, func(p *entity.Product) bool {
		if p.Stock < qty || p.Reserved < qty {
			return false
		}
		p.Stock -= qty
		p.Reserved -= qty
		return true
	})
}

func (r stockRepo) Adjust(_ context.Context, productID string, newTotal int) (bool, error) {
	return r.update(productID, func(p *entity.Product) bool {
		if newTotal < 0 || newTotal < p.Reserved {
			return false
		}
		p.Stock = newTotal
		return true
	})
}

func (r stockRepo) Add(_ context.Context, productID string, delta int) (bool, error) {
	return r.update(productID, func(p *entity.Product) bool {
		next := p.Stock + delta
		if next < 0 || next < p.Reserved {
			return false
		}
		p.Stock = next
		return true
	})
}

type movementRepo struct{ base }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.with(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.with(func(st *state) error {
		skipped := 0
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.ProductID != productID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, &m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r movementRepo) ListByTicket(_ context.Context, ticketID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.TicketID == ticketID {
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r movementRepo) OutflowSince(_ context.Context, since time.Time) (map[string]int, error) {
	out := make(map[string]int)
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.Type == entity.MovementTypeSalida && !m.CreatedAt.Before(since) {
				out[m.ProductID] -= m.Quantity
			}
		}
		return nil
	})
	return out, err
}

type ticketRepo struct{ base }

func (r ticketRepo) Create(_ context.Context, t *entity.WithdrawalTicket) error {
	return r.with(func(st *state) error {
		for _, other := range st.tickets {
			if other.Code == t.Code {
				return domain.NewError(domain.ErrDuplicate, "código de ticket en uso", t.Code)
			}
		}
		st.tickets[t.ID] = copyTicket(*t)
		return nil
	})
}

func (r ticketRepo) find(match func(entity.WithdrawalTicket) bool) (*entity.WithdrawalTicket, error) {
	var out *entity.WithdrawalTicket
	err := r.with(func(st *state) error {
		for _, t := range st.tickets {
			if match(t) {
				c := copyTicket(t)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r ticketRepo) GetByCode(_ context.Context, code string) (*entity.WithdrawalTicket, error) {
	return r.find(func(t entity.WithdrawalTicket) bool { return t.Code == code })
}

func (r ticketRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.WithdrawalTicket, error) {
	return r.GetByCode(ctx, code)
}

func (r ticketRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.WithdrawalTicket, error) {
	return r.find(func(t entity.WithdrawalTicket) bool { return t.ID == id })
}

func (r ticketRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	t, err := r.GetByCode(ctx, code)
	return t != nil, err
}

func (r ticketRepo) UpdateStatus(_ context.Context, id, status string, completedAt *time.Time, validatedBy string) (bool, error) {
	ok := false
	err := r.with(func(st *state) error {
		t, found := st.tickets[id]
		if !found || t.Status != entity.TicketStatusPending {
			return nil
		}
		t.Status = status
		if completedAt != nil {
			at := *completedAt
			t.CompletedAt = &at
		}
		t.ValidatedBy = validatedBy
		st.tickets[id] = t
		ok = true
		return nil
	})
	return ok, err
}

func (r ticketRepo) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]string, error) {
	var list []entity.WithdrawalTicket
	err := r.with(func(st *state) error {
		for _, t := range st.tickets {
			if t.Status == entity.TicketStatusPending && t.IsExpiredAt(now) {
				list = append(list, t)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	ids := make([]string, 0, len(list))
	for _, t := range list {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, t.ID)
	}
	return ids, err
}

func (r ticketRepo) ListCompleted(_ context.Context) ([]entity.WithdrawalTicket, error) {
	var out []entity.WithdrawalTicket
	err := r.with(func(st *state) error {
		for _, t := range st.tickets {
			if t.Status == entity.TicketStatusCompleted {
				out = append(out, copyTicket(t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

type orderRepo struct{ base }

func (r orderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	return r.with(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[o.ID] = *o
		return nil
	})
}

func (r orderRepo) NextFolio(_ context.Context) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		st.orderSeq++
		n = st.orderSeq
		return nil
	})
	return n, err
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	var out *entity.ServiceOrder
	err := r.with(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) modify(id string, fn func(o *entity.ServiceOrder) bool) (bool, error) {
	ok := false
	err := r.with(func(st *state) error {
		o, found := st.orders[id]
		if !found {
			return domain.NotFound("orden", id)
		}
		if !fn(&o) {
			return nil
		}
		o.UpdatedAt = time.Now().UTC()
		st.orders[id] = o
		ok = true
		return nil
	})
	return ok, err
}

func (r orderRepo) UpdateStatus(_ context.Context, id string, from, to entity.OrderStatus, deliveredAt *time.Time) (bool, error) {
	ok, err := r.modify(id, func(o *entity.ServiceOrder) bool {
		if o.Status != from {
			return false
		}
		o.Status = to
		if deliveredAt != nil {
			at := *deliveredAt
			o.DeliveredAt = &at
		}
		return true
	})
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return ok, err
}

func (r orderRepo) UpdateDiagnosis(_ context.Context, id, diagnosis string, repairCost decimal.Decimal) error {
	_, err := r.modify(id, func(o *entity.ServiceOrder) bool {
		o.Diagnosis = diagnosis
		o.RepairCost = repairCost
		return true
	})
	return err
}

func (r orderRepo) UpdateApproval(_ context.Context, id string, approved bool) error {
	_, err := r.modify(id, func(o *entity.ServiceOrder) bool {
		o.ClientApproved = approved
		return true
	})
	return err
}

func (r orderRepo) UpdateBalance(_ context.Context, id string, total, paid, due decimal.Decimal, status string) error {
	_, err := r.modify(id, func(o *entity.ServiceOrder) bool {
		o.TotalAmount = total
		o.PaidAmount = paid
		o.Balance = due
		o.PaymentStatus = status
		return true
	})
	return err
}

func (r orderRepo) AddHistory(_ context.Context, h *entity.OrderHistory) error {
	return r.with(func(st *state) error {
		st.history = append(st.history, *h)
		return nil
	})
}

func (r orderRepo) ListHistory(_ context.Context, orderID string) ([]*entity.OrderHistory, error) {
	var out []*entity.OrderHistory
	err := r.with(func(st *state) error {
		for _, h := range st.history {
			if h.OrderID == orderID {
				out = append(out, &h)
			}
		}
		return nil
	})
	return out, err
}

type saleRepo struct{ base }

func (r saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.with(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *s
		c.Items = append([]entity.SaleItem(nil), s.Items...)
		st.sales[s.ID] = c
		return nil
	})
}

func (r saleRepo) NextFolio(_ context.Context) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		st.saleSeq++
		n = st.saleSeq
		return nil
	})
	return n, err
}

func (r saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.with(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			s.Items = append([]entity.SaleItem(nil), s.Items...)
			out = &s
		}
		return nil
	})
	return out, err
}

func (r saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r saleRepo) UpdateBalance(_ context.Context, id string, total, paid, due decimal.Decimal, status string) error {
	return r.with(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.NotFound("venta", id)
		}
		s.TotalAmount = total
		s.PaidAmount = paid
		s.Balance = due
		s.PaymentStatus = status
		st.sales[id] = s
		return nil
	})
}

type paymentRepo struct{ base }

func (r paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.with(func(st *state) error {
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r paymentRepo) ListByOwner(_ context.Context, ownerType, ownerID string) ([]entity.Payment, error) {
	var out []entity.Payment
	err := r.with(func(st *state) error {
		for _, p := range st.payments {
			if p.OwnerType == ownerType && p.OwnerID == ownerID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}
