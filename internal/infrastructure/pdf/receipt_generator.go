// Package pdf genera los comprobantes imprimibles del taller con Maroto v2:
// el ticket de retiro que el usuario presenta en almacén y la nota de venta.
//
//	┌──────────────────────────────────────────────┐
//	│  Taller + título      │  Código / Folio      │
//	│  ──────────────────────────────────────────  │
//	│  TABLA de líneas                             │
//	│  ──────────────────────────────────────────  │
//	│  QR + vigencia o totales                     │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/sale"
	"github.com/jhoicas/taller-api/internal/application/ticket"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptGenerator implementa ticket.ReceiptGenerator y sale.ReceiptGenerator.
type ReceiptGenerator struct {
	shopName string
	loc      *time.Location
}

var (
	_ ticket.ReceiptGenerator = (*ReceiptGenerator)(nil)
	_ sale.ReceiptGenerator   = (*ReceiptGenerator)(nil)
)

// NewReceiptGenerator shopName encabeza cada comprobante; loc es la zona de las fechas impresas.
func NewReceiptGenerator(shopName string, loc *time.Location) *ReceiptGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptGenerator{shopName: shopName, loc: loc}
}

// TicketReceipt genera el comprobante del ticket con su código en grande y como QR.
func (g *ReceiptGenerator) TicketReceipt(_ context.Context, t *dto.TicketResponse) ([]byte, error) {
	m := maroto.New(g.config("Ticket de retiro " + t.Code))

	m.AddRows(g.headerRow("TICKET DE RETIRO", t.Code, t.CreatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Estado: "+t.Status+"   |   Solicitante: "+t.UserID, props.Text{Size: 8, Top: 2, Color: colorGray}),
	)))

	m.AddRows(tableHeader(
		header{"Cant.", 2, align.Center},
		header{"SKU", 3, align.Left},
		header{"Producto", 5, align.Left},
		header{"Categoría", 2, align.Left},
	))
	for _, it := range t.Items {
		m.AddRows(row.New(7).Add(
			cell(strconv.Itoa(it.Quantity), 2, align.Center),
			cell(it.SKU, 3, align.Left),
			cell(it.Name, 5, align.Left),
			cell(it.Category, 2, align.Left),
		))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(row.New(45).Add(
		col.New(4).Add(code.NewQr(t.Code, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New(t.Code, props.Text{Style: fontstyle.Bold, Size: 22, Top: 4, Left: 3, Color: colorPrimary}),
			text.New("Presente este código en almacén para retirar el material.", props.Text{Size: 8, Top: 20, Left: 3}),
			text.New("Válido hasta "+g.format(t.ExpiresAt), props.Text{Style: fontstyle.Bold, Size: 9, Top: 28, Left: 3}),
		),
	))
	return generate(m)
}

// SaleReceipt genera la nota de venta con precios congelados y saldo.
func (g *ReceiptGenerator) SaleReceipt(_ context.Context, s *dto.SaleResponse) ([]byte, error) {
	m := maroto.New(g.config("Nota de venta " + s.Folio))

	m.AddRows(g.headerRow("NOTA DE VENTA", s.Folio, s.CreatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeader(
		header{"Cant.", 2, align.Center},
		header{"Producto", 5, align.Left},
		header{"Precio Unit.", 2, align.Right},
		header{"Subtotal", 3, align.Right},
	))
	for _, it := range s.Items {
		m.AddRows(row.New(7).Add(
			cell(strconv.Itoa(it.Quantity), 2, align.Center),
			cell(it.ProductID, 5, align.Left),
			cell("$"+formatMoney(it.UnitPrice.StringFixed(2)), 2, align.Right),
			cell("$"+formatMoney(it.Subtotal.StringFixed(2)), 3, align.Right),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	m.AddRows(row.New(20).Add(
		col.New(6),
		col.New(3).Add(label("Total:"), label("Pagado:"), label("Saldo:")),
		col.New(3).Add(
			value("$"+formatMoney(s.TotalAmount.StringFixed(2))),
			value("$"+formatMoney(s.PaidAmount.StringFixed(2))),
			value("$"+formatMoney(s.Balance.StringFixed(2))),
		),
	))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Estado de pago: "+s.PaymentStatus, props.Text{Size: 8, Top: 2, Color: colorGray}),
	)))
	return generate(m)
}

func (g *ReceiptGenerator) config(title string) *entity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.shopName, true).
		Build()
}

func (g *ReceiptGenerator) headerRow(title, number string, at time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.shopName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(title, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2}),
			text.New("Fecha: "+g.format(at), props.Text{Size: 8, Align: align.Right, Top: 10, Color: colorGray}),
		),
	)
}

func (g *ReceiptGenerator) format(t time.Time) string {
	return t.In(g.loc).Format("02/01/2006 15:04")
}

type header struct {
	label string
	size  int
	align align.Type
}

func tableHeader(hs ...header) core.Row {
	cols := make([]core.Col, 0, len(hs))
	for _, h := range hs {
		cols = append(cols, col.New(h.size).Add(text.New(h.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: h.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// formatMoney inserta puntos de miles en la parte entera y coma decimal.
// Ej: "25000.50" → "25.000,50"
func formatMoney(s string) string {
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i+1:]
			break
		}
	}
	neg := len(intPart) > 0 && intPart[0] == '-'
	if neg {
		intPart = intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+2)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
