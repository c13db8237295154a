package presion

import (
	"bytes"
	"strings"
	"testing"

	"tensia/internal/patient"
)

func TestReportFilename(t *testing.T) {
	if got := ReportFilename(7, 2025, 8); got != "informe_presion_7_2025-08.pdf" {
		t.Errorf("ReportFilename = %q", got)
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	full := &patient.Patient{
		PrimerNombre: "José", SegundoNombre: "Luis",
		PrimerApellido: "Pérez", SegundoApellido: "Gómez",
		Nombre: "José Luis", Apellido: "Pérez Gómez",
	}
	if got := displayName(full, 3); got != "José Luis Pérez Gómez" {
		t.Errorf("displayName = %q", got)
	}

	twoPart := &patient.Patient{Nombre: "Ana María", Apellido: "Soto Vega"}
	if got := displayName(twoPart, 3); got != "Ana María Soto Vega" {
		t.Errorf("displayName = %q", got)
	}

	if got := displayName(&patient.Patient{}, 3); got != "Paciente ID 3" {
		t.Errorf("displayName = %q", got)
	}
	if got := displayName(nil, 5); got != "Paciente ID 5" {
		t.Errorf("displayName = %q", got)
	}
}

func TestWriteMonthlyPDF(t *testing.T) {
	data := &MonthlyData{
		Paciente: &patient.Patient{Nombre: "Ana", Apellido: "Soto", Usuario: "asoto"},
		Inicio:   "2025-08-01",
		Fin:      "2025-08-31",
		Tomas: []Reading{
			{Fecha: "2025-08-05", Hora: "08:15", Sistolica: 118, Diastolica: 76, Nivel: NivelNormal},
			{Fecha: "2025-08-20", Hora: "21:40", Sistolica: 185, Diastolica: 95},
		},
	}

	var buf bytes.Buffer
	if err := WriteMonthlyPDF(&buf, 9, data); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty PDF output")
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output does not look like a PDF")
	}
}
