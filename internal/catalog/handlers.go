package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Handler exposes the catalog CRUD over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type upsertRequest struct {
	Categoria *string `json:"categoria"`
	Valor     *string `json:"valor"`
}

// CreateHandler handles POST /catalogo.
func (h *Handler) CreateHandler(c echo.Context) error {
	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo inválido"})
	}

	categoria := ""
	if req.Categoria != nil {
		categoria = *req.Categoria
	}

	e, err := h.svc.Create(c.Request().Context(), categoria, req.Valor)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCategoria):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrDuplicate):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("catalog create failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al crear", "detalle": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"mensaje": "Creado", "catalogo": e})
}

// ListHandler handles GET /catalogo?categoria=&valor=&page=&size=.
func (h *Handler) ListHandler(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	f := ListFilter{
		Categoria: c.QueryParam("categoria"),
		Valor:     c.QueryParam("valor"),
		Page:      page,
		Size:      size,
	}

	items, total, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("catalog list failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al listar", "detalle": err.Error()})
	}

	if f.Page < 1 {
		f.Page = 1
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total": total,
		"page":  f.Page,
		"size":  cappedSize(size),
		"data":  items,
	})
}

func cappedSize(size int) int {
	if size < 1 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// GetHandler handles GET /catalogo/:id.
func (h *Handler) GetHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id inválido"})
	}

	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No encontrado"})
		}
		log.Error().Err(err).Msg("catalog get failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al obtener", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, e)
}

// UpdateHandler handles PUT /catalogo/:id.
func (h *Handler) UpdateHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id inválido"})
	}

	var req upsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo inválido"})
	}

	e, err := h.svc.Update(c.Request().Context(), id, req.Categoria, req.Valor)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No encontrado"})
		case errors.Is(err, ErrEmptyCategoria):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrDuplicate):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("catalog update failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al actualizar", "detalle": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"mensaje": "Actualizado", "catalogo": e})
}

// DeleteHandler handles DELETE /catalogo/:id. The delete is hard: catalog
// rows are reference data and removing one is an administrative decision.
func (h *Handler) DeleteHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id inválido"})
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No encontrado"})
		}
		log.Error().Err(err).Msg("catalog delete failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al eliminar", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"mensaje": "Eliminado"})
}
