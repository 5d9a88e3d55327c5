package dto

// MaxPageLimit tope de filas por página en listados.
const MaxPageLimit = 100

// PageRequest paginación de la bitácora de movimientos.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize acota Limit a [1, MaxPageLimit] con 20 por defecto; Offset nunca negativo.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = 20
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	p.Offset = max(p.Offset, 0)
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
