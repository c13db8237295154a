package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tensia/internal/auth"
	"tensia/internal/catalog"
	"tensia/internal/config"
	"tensia/internal/database"
	"tensia/internal/patient"
	"tensia/internal/presion"
	"tensia/internal/server"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server gets 5 seconds to finish the requests in flight.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("could not ensure schema")
	}

	catalogRepo := catalog.NewRepository(db.Pool())
	catalogSvc := catalog.NewService(catalogRepo)

	// The classifier and the identity flows depend on these rows existing.
	required := map[string][]string{
		patient.EstadoCategoria: {patient.EstadoActivo, patient.EstadoInactivo},
		presion.NivelCategoria:  presion.Niveles(),
	}
	if err := catalogSvc.VerifyRequired(ctx, required); err != nil {
		log.Fatal().Err(err).Msg("required catalog rows missing")
	}

	tokens := auth.NewManager(cfg)

	patientRepo := patient.NewRepository(db.Pool())
	patientSvc := patient.NewService(patientRepo, catalogSvc)

	presionRepo := presion.NewRepository(db.Pool())
	presionSvc := presion.NewService(presionRepo, catalogSvc, patientSvc)

	apiServer := server.NewServer(cfg, db, tokens,
		catalog.NewHandler(catalogSvc),
		patient.NewHandler(patientSvc, tokens),
		presion.NewHandler(presionSvc),
	)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
