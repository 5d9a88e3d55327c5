package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError campo que no pasó la validación.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var validate = validator.New()

func init() {
	// Los errores se reportan con el nombre JSON del campo.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateStruct devuelve los campos inválidos; nil si todo está bien.
func ValidateStruct(data interface{}) []*FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*FieldError{{Field: "", Tag: err.Error()}}
	}
	out := make([]*FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{
			Field: trimRoot(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// Summary texto compacto "campo:regla" para el detalle de la respuesta.
func Summary(errs []*FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		s := e.Field + ":" + e.Tag
		if e.Param != "" {
			s += "=" + e.Param
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// trimRoot quita el nombre del struct raíz: "CreateTicketRequest.items[0].quantity" → "items[0].quantity".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
