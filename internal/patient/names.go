package patient

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildNombreKey produces the canonical identity key for a patient: the four
// name parts space-joined, accent-stripped and upper-cased. Two spellings of
// the same person ("José Pérez", "jose  perez") collapse to the same key.
func BuildNombreKey(primerNombre, segundoNombre, primerApellido, segundoApellido string) string {
	joined := strings.Join([]string{primerNombre, segundoNombre, primerApellido, segundoApellido}, " ")
	return strings.ToUpper(stripAccents(normalizeSpaces(joined)))
}

func fullNombre(primero, segundo string) string {
	return normalizeSpaces(primero + " " + segundo)
}

func fullApellido(primero, segundo string) string {
	return normalizeSpaces(primero + " " + segundo)
}
