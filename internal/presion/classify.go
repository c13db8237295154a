package presion

// Catalog labels under NIVEL_PRESION. The spelling matches the provisioned
// catalog rows and must not be normalized.
const (
	NivelCategoria = "NIVEL_PRESION"

	NivelNormal  = "NORMAL"
	NivelElevada = "ELEVADA"
	NivelHT1     = "HIPERTENSION_NIVEL_1"
	NivelHT2     = "HIPERTENSION_NIVEL_2"
	NivelCrisis  = "CRISIS DE HIPERTENCIÓN"
)

// Niveles returns every classification label, most severe last.
func Niveles() []string {
	return []string{NivelNormal, NivelElevada, NivelHT1, NivelHT2, NivelCrisis}
}

// Clasificar maps a systolic/diastolic pair to its catalog label. The cascade
// is order-sensitive: crisis wins over level 2, level 2 over level 1, and a
// diastolic of 80 or more can never be ELEVADA.
func Clasificar(s, d float64) string {
	switch {
	case s >= 180 || d >= 120:
		return NivelCrisis
	case s >= 140 || d >= 90:
		return NivelHT2
	case (s >= 130 && s <= 139) || (d >= 80 && d <= 89):
		return NivelHT1
	case s >= 120 && s <= 129 && d < 80:
		return NivelElevada
	default:
		return NivelNormal
	}
}

// ValidarRangos rejects physiologically implausible values before anything is
// classified or stored. An empty string means the pair is acceptable.
func ValidarRangos(s, d float64) string {
	if s < 70 || s > 250 {
		return "Sistólica fuera de rango permitido (70–250)."
	}
	if d < 40 || d > 150 {
		return "Diastólica fuera de rango permitido (40–150)."
	}
	return ""
}
