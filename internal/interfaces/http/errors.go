package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/pkg/validator"
)

// statusByCode un estado HTTP por cada tipo de error de dominio.
var statusByCode = map[string]int{
	"NOT_FOUND":           fiber.StatusNotFound,
	"INSUFFICIENT_STOCK":  fiber.StatusConflict,
	"INVALID_STATE":       fiber.StatusConflict,
	"EXPIRED":             fiber.StatusGone,
	"PERMISSION_DENIED":   fiber.StatusForbidden,
	"PRECONDITION_FAILED": fiber.StatusUnprocessableEntity,
	"INVALID_AMOUNT":      fiber.StatusUnprocessableEntity,
	"VALIDATION":          fiber.StatusBadRequest,
	"DUPLICATE":           fiber.StatusConflict,
	"CONFLICT":            fiber.StatusConflict,
	"UNAUTHORIZED":        fiber.StatusUnauthorized,
	"FORBIDDEN":           fiber.StatusForbidden,
}

// writeError traduce err a status + dto.ErrorResponse. Los errores no tipados salen
// como 500 sin filtrar el mensaje interno.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Detail: domain.DetailOf(err)})
}

// bind parsea el cuerpo y lo valida con los tags del DTO.
func bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewError(domain.ErrInvalidInput, "cuerpo inválido", "")
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return domain.NewError(domain.ErrInvalidInput, "datos inválidos", validator.Summary(errs))
	}
	return nil
}
