package presion

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"tensia/internal/patient"
)

// ReportFilename builds the attachment name for a monthly report.
func ReportFilename(pacienteID int64, year, month int) string {
	return fmt.Sprintf("informe_presion_%d_%04d-%02d.pdf", pacienteID, year, month)
}

func displayName(p *patient.Patient, fallbackID int64) string {
	if p != nil {
		if key := normJoin(p.PrimerNombre, p.SegundoNombre, p.PrimerApellido, p.SegundoApellido); key != "" {
			return key
		}
		if key := normJoin(p.Nombre, p.Apellido); key != "" {
			return key
		}
	}
	return fmt.Sprintf("Paciente ID %d", fallbackID)
}

func normJoin(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

// WriteMonthlyPDF renders the monthly report into w. Each line carries the
// stored catalog level; when the join produced nothing the level is
// recomputed from the raw values.
func WriteMonthlyPDF(w io.Writer, pacienteID int64, data *MonthlyData) error {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(15, 15, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, tr("Informe Mensual - Presión Arterial"), "", 1, "C", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Paciente: %s (ID: %d)", displayName(data.Paciente, pacienteID), pacienteID)), "", 1, "L", false, 0, "")
	if data.Paciente != nil && data.Paciente.Usuario != "" {
		doc.CellFormat(0, 6, tr("Usuario: "+data.Paciente.Usuario), "", 1, "L", false, 0, "")
	}
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Periodo: %s a %s", data.Inicio, data.Fin)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Courier", "B", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("%-11s %-6s %-10s %-11s %s", "Fecha", "Hora", "Sistólica", "Diastólica", "Nivel")), "", 1, "L", false, 0, "")
	x, y := doc.GetXY()
	doc.Line(x, y, 195, y)
	doc.Ln(2)

	doc.SetFont("Courier", "", 10)
	for _, t := range data.Tomas {
		nivel := t.Nivel
		if nivel == "" {
			nivel = Clasificar(t.Sistolica, t.Diastolica)
		}
		line := fmt.Sprintf("%-11s %-6s %-10s %-11s %s",
			t.Fecha, t.Hora,
			formatPresion(t.Sistolica), formatPresion(t.Diastolica), nivel)
		doc.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}

	return doc.Output(w)
}

func formatPresion(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
