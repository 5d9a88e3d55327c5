// Package memory implementa todos los repositorios y el TxRunner en memoria.
// Las transacciones se serializan con un mutex y se revierten restaurando una copia
// del estado; sirve para demos locales (STORE_DRIVER=memory) y para pruebas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// Primer folio emitido para órdenes y ventas.
const folioStart = 1001

type state struct {
	products  map[string]entity.Product
	movements []entity.InventoryMovement
	tickets   map[string]entity.WithdrawalTicket
	orders    map[string]entity.ServiceOrder
	history   []entity.OrderHistory
	sales     map[string]entity.Sale
	payments  []entity.Payment
	orderSeq  int64
	saleSeq   int64
}

func newState() *state {
	return &state{
		products: map[string]entity.Product{},
		tickets:  map[string]entity.WithdrawalTicket{},
		orders:   map[string]entity.ServiceOrder{},
		sales:    map[string]entity.Sale{},
		orderSeq: folioStart - 1,
		saleSeq:  folioStart - 1,
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]entity.Product, len(s.products)),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		tickets:   make(map[string]entity.WithdrawalTicket, len(s.tickets)),
		orders:    make(map[string]entity.ServiceOrder, len(s.orders)),
		history:   append([]entity.OrderHistory(nil), s.history...),
		sales:     make(map[string]entity.Sale, len(s.sales)),
		payments:  append([]entity.Payment(nil), s.payments...),
		orderSeq:  s.orderSeq,
		saleSeq:   s.saleSeq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = copyTicket(v)
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.sales {
		v.Items = append([]entity.SaleItem(nil), v.Items...)
		c.sales[k] = v
	}
	return c
}

// Store almacén en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn con exclusión mutua. Si fn devuelve error el estado vuelve a la copia previa.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos repositorios fuera de transacción; cada llamada toma el mutex.
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repos {
	b := base{s: s, inTx: inTx}
	return repository.Repos{
		Products:  productRepo{b},
		Stock:     stockRepo{b},
		Movements: movementRepo{b},
		Tickets:   ticketRepo{b},
		Orders:    orderRepo{b},
		Sales:     saleRepo{b},
		Payments:  paymentRepo{b},
	}
}

// Seed carga productos directamente (catálogo de demo o fixtures de prueba).
func (s *Store) Seed(products ...entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.data.products[p.ID] = p
	}
}

type base struct {
	s    *Store
	inTx bool
}

// with ejecuta fn sobre el estado; fuera de tx toma el mutex.
func (b base) with(fn func(st *state) error) error {
	if !b.inTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	return fn(b.s.data)
}

func copyTicket(t entity.WithdrawalTicket) entity.WithdrawalTicket {
	t.Items = append([]entity.TicketItem(nil), t.Items...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
