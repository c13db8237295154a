package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.HTTPErrorHandler = jsonErrorHandler

	e.GET("/health", s.healthHandler)

	// Public auth routes
	e.POST("/auth/register", s.pacientes.RegisterHandler)
	e.POST("/auth/login", s.pacientes.LoginHandler)
	e.POST("/auth/refresh", s.pacientes.RefreshHandler)

	// Protected routes
	protected := e.Group("")
	protected.Use(s.tokens.Middleware())

	protected.GET("/auth/me", s.pacientes.MeHandler)
	protected.PUT("/auth/:id", s.pacientes.UpdateHandler)
	protected.DELETE("/auth/:id", s.pacientes.DeleteHandler)
	protected.POST("/auth/logout-all", s.pacientes.LogoutAllHandler)

	protected.POST("/catalogo", s.catalogo.CreateHandler)
	protected.GET("/catalogo", s.catalogo.ListHandler)
	protected.GET("/catalogo/:id", s.catalogo.GetHandler)
	protected.PUT("/catalogo/:id", s.catalogo.UpdateHandler)
	protected.DELETE("/catalogo/:id", s.catalogo.DeleteHandler)

	protected.POST("/pa", s.presiones.CreateHandler)
	protected.GET("/pa/by-date", s.presiones.ByDateHandler)
	protected.GET("/pa/weekly", s.presiones.WeeklyHandler)
	protected.GET("/pa/monthly-report", s.presiones.MonthlyReportHandler)
	protected.DELETE("/pa/:id", s.presiones.DeleteHandler)

	return e
}

// jsonErrorHandler keeps every error a JSON body: malformed payloads get a
// dedicated 400 and unknown routes a 404, instead of echo's HTML defaults.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": "Ruta no encontrada"})
		case http.StatusBadRequest:
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "Cuerpo JSON inválido"})
		case http.StatusMethodNotAllowed:
			_ = c.JSON(http.StatusMethodNotAllowed, map[string]string{"error": "Método no permitido"})
		default:
			_ = c.JSON(he.Code, map[string]string{"error": fmt.Sprintf("%v", he.Message)})
		}
		return
	}

	log.Error().Err(err).Msg("unhandled error")
	_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error interno"})
}

// healthHandler reports liveness: database ping with pool stats plus a few
// host-level figures.
func (s *Server) healthHandler(c echo.Context) error {
	payload := map[string]interface{}{
		"database": s.db.Health(),
		"uptime":   time.Since(s.startTime).Round(time.Second).String(),
	}

	if info, err := host.Info(); err == nil {
		payload["host"] = map[string]interface{}{
			"hostname": info.Hostname,
			"os":       info.OS,
			"platform": info.Platform,
		}
	}
	if v, err := mem.VirtualMemory(); err == nil {
		payload["ram_usage"] = fmt.Sprintf("%.1f%%", v.UsedPercent)
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		payload["cpu_load"] = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	return c.JSON(http.StatusOK, payload)
}

// LoggerMiddleware tags every request with an id and a request-scoped logger.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)

		start := time.Now()
		err := next(c)
		logger.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
