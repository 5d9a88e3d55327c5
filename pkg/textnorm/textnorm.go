// Package textnorm compara etiquetas de negocio sin distinguir mayúsculas ni acentos
// ("tecnico" == "Técnico", "LISTA PARA ENTREGA" == "Lista para entrega").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita acentos, colapsa espacios y aplica case folding.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(out), " "))
}

// Equal compara dos etiquetas plegadas.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
