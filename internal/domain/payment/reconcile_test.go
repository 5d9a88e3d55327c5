package payment_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/payment"
)

func pays(amounts ...int64) []entity.Payment {
	out := make([]entity.Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, entity.Payment{Amount: decimal.NewFromInt(a)})
	}
	return out
}

func TestValidateAmount(t *testing.T) {
	assert.True(t, errors.Is(payment.ValidateAmount(decimal.Zero), domain.ErrInvalidAmount))
	assert.True(t, errors.Is(payment.ValidateAmount(decimal.NewFromInt(-5)), domain.ErrInvalidAmount))
	assert.NoError(t, payment.ValidateAmount(decimal.NewFromFloat(0.01)))
}

func TestReconcile_PagosExactos(t *testing.T) {
	b := payment.Reconcile(decimal.NewFromInt(650), pays(300, 350))
	assert.Equal(t, entity.PaymentStatusPaid, b.Status)
	assert.True(t, b.Due.IsZero())
	assert.True(t, b.Paid.Equal(decimal.NewFromInt(650)))
}

func TestReconcile_Parcial(t *testing.T) {
	b := payment.Reconcile(decimal.NewFromInt(650), pays(150))
	assert.Equal(t, entity.PaymentStatusPartial, b.Status)
	assert.True(t, b.Due.Equal(decimal.NewFromInt(500)))
}

func TestReconcile_SinPagos(t *testing.T) {
	b := payment.Reconcile(decimal.NewFromInt(650), nil)
	assert.Equal(t, entity.PaymentStatusPending, b.Status)
	assert.True(t, b.Due.Equal(decimal.NewFromInt(650)))
}

func TestReconcile_SobrepagoNoSeRecorta(t *testing.T) {
	b := payment.Reconcile(decimal.NewFromInt(100), pays(80, 50))
	assert.Equal(t, entity.PaymentStatusPaid, b.Status)
	assert.True(t, b.Due.Equal(decimal.NewFromInt(-30)))
}

func TestReconcile_PrimerPagoDefineTotal(t *testing.T) {
	b := payment.Reconcile(decimal.Zero, pays(400))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, entity.PaymentStatusPaid, b.Status)
}
