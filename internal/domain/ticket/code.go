// Package ticket define el código de retiro: alfabeto, longitud, normalización
// y ventana de reserva.
package ticket

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/jhoicas/taller-api/internal/domain"
)

const (
	// CodeLength longitud del código capturado por el usuario.
	CodeLength = 6
	// CodeAlphabet caracteres permitidos (mayúsculas y dígitos).
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// ReservationWindow vigencia de la reserva desde la creación.
	ReservationWindow = 24 * time.Hour
)

// CodeGenerator fuente de códigos; solo se exige unicidad, no impredecibilidad.
type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator genera códigos aleatorios sobre CodeAlphabet.
type RandomCodeGenerator struct{}

// Generate devuelve un código nuevo de CodeLength caracteres.
func (RandomCodeGenerator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)
	max := big.NewInt(int64(len(CodeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize limpia espacios y pasa a mayúsculas (almacenamiento y búsqueda).
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode verifica longitud y alfabeto de un código ya normalizado.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return domain.NewError(domain.ErrInvalidInput, "el código debe tener 6 caracteres", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			return domain.NewError(domain.ErrInvalidInput, "el código solo admite letras y números", code)
		}
	}
	return nil
}

// ExpiresAt fin de la ventana de reserva.
func ExpiresAt(createdAt time.Time, window time.Duration) time.Time {
	if window <= 0 {
		window = ReservationWindow
	}
	return createdAt.Add(window)
}
