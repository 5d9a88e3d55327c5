// Package warranty proyecta garantías a partir de tickets completados.
// No hay estado persistido: el resultado depende solo de sus entradas.
package warranty

import (
	"sort"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

// Covered indica si la categoría del producto admite garantía.
func Covered(p *entity.Product) bool {
	if p == nil || p.WarrantyMonths <= 0 {
		return false
	}
	return !textnorm.Equal(p.Category, entity.CategorySoftware) && !textnorm.Equal(p.Category, entity.CategoryServicio)
}

// Derive genera una garantía por cada línea cubierta de cada ticket Completado.
// products se indexa por ID; las líneas cuyo producto no está presente se omiten.
func Derive(tickets []entity.WithdrawalTicket, products map[string]*entity.Product, now time.Time) []entity.Warranty {
	var out []entity.Warranty
	for _, t := range tickets {
		if t.Status != entity.TicketStatusCompleted || t.CompletedAt == nil {
			continue
		}
		for _, item := range t.Items {
			p := products[item.ProductID]
			if !Covered(p) {
				continue
			}
			start := *t.CompletedAt
			end := start.AddDate(0, p.WarrantyMonths, 0)
			status := entity.WarrantyActive
			if end.Before(now) {
				status = entity.WarrantyExpired
			}
			out = append(out, entity.Warranty{
				TicketID:    t.ID,
				TicketCode:  t.Code,
				UserID:      t.UserID,
				ProductID:   p.ID,
				SKU:         p.SKU,
				ProductName: p.Name,
				Quantity:    item.Quantity,
				Months:      p.WarrantyMonths,
				StartsAt:    start,
				EndsAt:      end,
				Status:      status,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.After(out[j].StartsAt)
		}
		if out[i].TicketCode != out[j].TicketCode {
			return out[i].TicketCode < out[j].TicketCode
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}
