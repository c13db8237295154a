package presion

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"tensia/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// pacienteFromRequest prefers an explicit pacienteId and falls back to the
// authenticated patient.
func pacienteFromRequest(c echo.Context, explicit string) (int64, error) {
	if explicit != "" {
		return strconv.ParseInt(explicit, 10, 64)
	}
	return auth.PatientIDFromContext(c)
}

type createRequest struct {
	PacienteID *int64   `json:"id_paciente"`
	Sistolica  *float64 `json:"presionsistolica"`
	Diastolica *float64 `json:"presiondiastolica"`
	Fecha      string   `json:"fecha"`
	Hora       string   `json:"hora"`
}

// CreateHandler handles POST /pa.
func (h *Handler) CreateHandler(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo JSON inválido"})
	}
	if req.Sistolica == nil || req.Diastolica == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Valores no numéricos."})
	}

	pacienteID := int64(0)
	if req.PacienteID != nil {
		pacienteID = *req.PacienteID
	} else if id, err := auth.PatientIDFromContext(c); err == nil {
		pacienteID = id
	}
	if pacienteID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe id_paciente."})
	}

	res, err := h.svc.Create(c.Request().Context(), CreateInput{
		PacienteID: pacienteID,
		Sistolica:  *req.Sistolica,
		Diastolica: *req.Diastolica,
		Fecha:      req.Fecha,
		Hora:       req.Hora,
	})
	if errors.Is(err, ErrOutOfRange) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": strings.TrimPrefix(err.Error(), ErrOutOfRange.Error()+": "),
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("create reading failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al registrar toma", "detalle": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"mensaje":         "Toma registrada",
		"nivel":           res.Nivel,
		"id_nivelpresion": res.Reading.NivelID,
		"notification":    res.Notification,
		"toma":            res.Reading,
	})
}

// ByDateHandler handles GET /pa/by-date?pacienteId=&fecha=YYYY-MM-DD.
func (h *Handler) ByDateHandler(c echo.Context) error {
	fecha := c.QueryParam("fecha")
	if fecha == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe pacienteId y fecha (YYYY-MM-DD)."})
	}
	if _, err := time.Parse(dateLayout, fecha); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe pacienteId y fecha (YYYY-MM-DD)."})
	}
	pacienteID, err := pacienteFromRequest(c, c.QueryParam("pacienteId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe pacienteId y fecha (YYYY-MM-DD)."})
	}

	tomas, err := h.svc.PorFecha(c.Request().Context(), pacienteID, fecha)
	if err != nil {
		log.Error().Err(err).Msg("by-date query failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al obtener por fecha", "detalle": err.Error()})
	}
	if tomas == nil {
		tomas = []Reading{}
	}
	return c.JSON(http.StatusOK, map[string]any{"fecha": fecha, "tomas": tomas})
}

// WeeklyHandler handles GET /pa/weekly?pacienteId=&fecha=. The window is the
// Monday-to-Sunday week containing fecha, default today.
func (h *Handler) WeeklyHandler(c echo.Context) error {
	pacienteID, err := pacienteFromRequest(c, c.QueryParam("pacienteId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe pacienteId."})
	}

	referencia := time.Now()
	if raw := c.QueryParam("fecha"); raw != "" {
		referencia, err = time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "fecha inválida (YYYY-MM-DD)."})
		}
	}

	inicio, fin, tomas, err := h.svc.Semana(c.Request().Context(), pacienteID, referencia)
	if err != nil {
		log.Error().Err(err).Msg("weekly query failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al obtener semana", "detalle": err.Error()})
	}
	if tomas == nil {
		tomas = []Reading{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"semana": map[string]string{"inicio": inicio, "fin": fin},
		"tomas":  tomas,
	})
}

// MonthlyReportHandler handles GET /pa/monthly-report?pacienteId=&year=&month=
// and streams the PDF.
func (h *Handler) MonthlyReportHandler(c echo.Context) error {
	pacienteID, err := pacienteFromRequest(c, c.QueryParam("pacienteId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe pacienteId."})
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if raw := c.QueryParam("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "year inválido"})
		}
	}
	if raw := c.QueryParam("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil || month < 1 || month > 12 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "month inválido"})
		}
	}

	data, err := h.svc.ReporteMensual(c.Request().Context(), pacienteID, year, time.Month(month))
	if err != nil {
		log.Error().Err(err).Msg("monthly report failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al generar PDF", "detalle": err.Error()})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+ReportFilename(pacienteID, year, month)+`"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := WriteMonthlyPDF(c.Response(), pacienteID, data); err != nil {
		log.Error().Err(err).Msg("pdf render failed")
		return err
	}
	return nil
}

// DeleteHandler handles DELETE /pa/:id.
func (h *Handler) DeleteHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Envíe el id de la toma."})
	}

	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Toma no encontrada"})
	}
	if err != nil {
		log.Error().Err(err).Msg("delete reading failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al eliminar toma", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"mensaje": "Toma eliminada", "id": id})
}
