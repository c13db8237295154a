package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"tensia/internal/auth"
)

type Handler struct {
	svc    *Service
	tokens *auth.Manager
}

func NewHandler(svc *Service, tokens *auth.Manager) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

type registerRequest struct {
	PrimerNombre    string `json:"primer_nombre"`
	SegundoNombre   string `json:"segundo_nombre"`
	PrimerApellido  string `json:"primer_apellido"`
	SegundoApellido string `json:"segundo_apellido"`
	Usuario         string `json:"usuario"`
	Contrasena      string `json:"contraseña"`
}

// RegisterHandler handles POST /auth/register.
func (h *Handler) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo JSON inválido"})
	}

	p, outcome, err := h.svc.Register(c.Request().Context(), RegisterInput{
		PrimerNombre:    req.PrimerNombre,
		SegundoNombre:   req.SegundoNombre,
		PrimerApellido:  req.PrimerApellido,
		SegundoApellido: req.SegundoApellido,
		Usuario:         req.Usuario,
		Contrasena:      req.Contrasena,
	})
	switch {
	case errors.Is(err, ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Debe enviar primer_nombre, segundo_nombre, primer_apellido, segundo_apellido, usuario y contraseña.",
		})
	case errors.Is(err, ErrUsernameTaken):
		return c.JSON(http.StatusConflict, map[string]string{"error": "El usuario ya está en uso por otra cuenta"})
	case errors.Is(err, ErrAmbiguousName):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Ambigüedad con los nombres (2+2). Contacte soporte."})
	case err != nil:
		log.Error().Err(err).Msg("register failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al registrar", "detalle": err.Error()})
	}

	pair, err := h.tokens.IssuePair(p.ID, p.RefreshVersion)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al registrar", "detalle": err.Error()})
	}

	status := http.StatusOK
	mensaje := "Paciente actualizado y activado"
	switch outcome {
	case OutcomeCreated:
		status = http.StatusCreated
		mensaje = "Paciente registrado"
	case OutcomeReactivated:
		mensaje = "Cuenta reactivada"
	}
	return c.JSON(status, map[string]any{
		"mensaje":      mensaje,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"usuario":      p,
	})
}

type loginRequest struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contraseña"`
}

// LoginHandler handles POST /auth/login.
func (h *Handler) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo JSON inválido"})
	}

	p, err := h.svc.Login(c.Request().Context(), req.Usuario, req.Contrasena)
	switch {
	case errors.Is(err, ErrMissingFields):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "usuario y contraseña son requeridos"})
	case errors.Is(err, ErrBadCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Usuario o contraseña incorrectos"})
	case errors.Is(err, ErrInactive):
		return c.JSON(http.StatusForbidden, map[string]string{
			"error":  "Cuenta inactiva. Debe registrarse nuevamente para reactivarla.",
			"action": "/auth/register",
		})
	case err != nil:
		log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error en el login", "detalle": err.Error()})
	}

	pair, err := h.tokens.IssuePair(p.ID, p.RefreshVersion)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error en el login", "detalle": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"mensaje":      "Login exitoso",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user": map[string]any{
			"id":               p.ID,
			"usuario":          p.Usuario,
			"primer_nombre":    p.PrimerNombre,
			"segundo_nombre":   p.SegundoNombre,
			"primer_apellido":  p.PrimerApellido,
			"segundo_apellido": p.SegundoApellido,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshHandler handles POST /auth/refresh. The embedded refresh version
// must match the stored one, so tokens issued before a logout-all are dead.
func (h *Handler) RefreshHandler(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Falta refreshToken"})
	}

	patientID, version, err := h.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Refresh token inválido o expirado"})
	}

	p, err := h.svc.Get(c.Request().Context(), patientID)
	if errors.Is(err, ErrNotFound) || (err == nil && p.RefreshVersion != version) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Refresh token inválido o expirado"})
	}
	if err != nil {
		log.Error().Err(err).Msg("refresh lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al refrescar", "detalle": err.Error()})
	}

	pair, err := h.tokens.IssuePair(p.ID, p.RefreshVersion)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al refrescar", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, pair)
}

// MeHandler handles GET /auth/me.
func (h *Handler) MeHandler(c echo.Context) error {
	patientID, err := auth.PatientIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token inválido o expirado"})
	}

	p, err := h.svc.Get(c.Request().Context(), patientID)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Paciente no encontrado"})
	}
	if err != nil {
		log.Error().Err(err).Msg("profile lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al obtener perfil", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"user": p})
}

type updateRequest struct {
	PrimerNombre    *string `json:"primer_nombre"`
	SegundoNombre   *string `json:"segundo_nombre"`
	PrimerApellido  *string `json:"primer_apellido"`
	SegundoApellido *string `json:"segundo_apellido"`
	Usuario         *string `json:"usuario"`
	Contrasena      *string `json:"contraseña"`
}

// UpdateHandler handles PUT /auth/:id.
func (h *Handler) UpdateHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id inválido"})
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo JSON inválido"})
	}

	p, err := h.svc.UpdateProfile(c.Request().Context(), id, UpdateInput{
		PrimerNombre:    req.PrimerNombre,
		SegundoNombre:   req.SegundoNombre,
		PrimerApellido:  req.PrimerApellido,
		SegundoApellido: req.SegundoApellido,
		Usuario:         req.Usuario,
		Contrasena:      req.Contrasena,
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Paciente no encontrado"})
	case errors.Is(err, ErrUsernameTaken):
		return c.JSON(http.StatusConflict, map[string]string{"error": "El usuario ya existe"})
	case errors.Is(err, ErrIncompleteNames):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Se requieren los cuatro campos de nombre/apellido para actualizar."})
	case err != nil:
		log.Error().Err(err).Msg("profile update failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al actualizar paciente", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"mensaje": "Paciente actualizado correctamente", "paciente": p})
}

// DeleteHandler handles DELETE /auth/:id with a soft delete.
func (h *Handler) DeleteHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id inválido"})
	}

	err = h.svc.Deactivate(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Paciente no encontrado"})
	}
	if err != nil {
		log.Error().Err(err).Msg("deactivate failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al eliminar", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"mensaje": "Paciente eliminado"})
}

// LogoutAllHandler handles POST /auth/logout-all.
func (h *Handler) LogoutAllHandler(c echo.Context) error {
	patientID, err := auth.PatientIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token inválido o expirado"})
	}

	if err := h.svc.LogoutAll(c.Request().Context(), patientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Paciente no encontrado"})
		}
		log.Error().Err(err).Msg("logout-all failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al cerrar sesiones", "detalle": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"mensaje": "Sesiones cerradas en todos los dispositivos"})
}
