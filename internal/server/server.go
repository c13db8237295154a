/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
handlers onto the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"tensia/internal/auth"
	"tensia/internal/catalog"
	"tensia/internal/config"
	"tensia/internal/database"
	"tensia/internal/patient"
	"tensia/internal/presion"
)

// Server holds the dependencies the route handlers need.
type Server struct {
	port int

	db     database.Service
	tokens *auth.Manager

	catalogo  *catalog.Handler
	pacientes *patient.Handler
	presiones *presion.Handler

	startTime time.Time
}

// NewServer assembles the Server and returns a configured *http.Server with
// production network timeouts.
func NewServer(cfg *config.Config, db database.Service, tokens *auth.Manager,
	catalogo *catalog.Handler, pacientes *patient.Handler, presiones *presion.Handler) *http.Server {

	app := &Server{
		port:      cfg.Port,
		db:        db,
		tokens:    tokens,
		catalogo:  catalogo,
		pacientes: pacientes,
		presiones: presiones,
		startTime: time.Now(),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
