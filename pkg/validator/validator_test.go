package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/pkg/validator"
)

func TestValidateStruct_NombresJSON(t *testing.T) {
	errs := validator.ValidateStruct(dto.CreateTicketRequest{
		Items: []dto.TicketItemRequest{{ProductID: "p-1", Quantity: 0}},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "items[0].quantity", errs[0].Field)
	assert.Equal(t, "gt", errs[0].Tag)
	assert.Equal(t, "items[0].quantity:gt=0", validator.Summary(errs))
}

func TestValidateStruct_Valido(t *testing.T) {
	assert.Nil(t, validator.ValidateStruct(dto.ValidateTicketRequest{Code: "AB12CD"}))
	assert.NotNil(t, validator.ValidateStruct(dto.ValidateTicketRequest{Code: "AB-12"}))
}

func TestNotBlank(t *testing.T) {
	type diag struct {
		Text string `json:"text" validate:"notblank"`
	}
	assert.Nil(t, validator.ValidateStruct(diag{Text: "pantalla rota"}))
	errs := validator.ValidateStruct(diag{Text: "   "})
	require.Len(t, errs, 1)
	assert.Equal(t, "text", errs[0].Field)
}
