/*
Package database owns the PostgreSQL connection pool. It exposes a small
Service interface for health reporting and shutdown, plus schema bootstrap
for the three application tables.
*/
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"tensia/internal/config"
)

// Service represents a service that interacts with the database.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Pool exposes the underlying connection pool for the repositories.
	Pool() *pgxpool.Pool

	// Close terminates the database connection.
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (Service, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pc.MaxConns = cfg.DBMaxConns
	pc.MinConns = cfg.DBMinConns

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &service{pool: pool}, nil
}

func (s *service) Pool() *pgxpool.Pool {
	return s.pool
}

// Health checks the health of the database connection.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("database ping failed")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["acquire_duration_ms"] = strconv.FormatInt(poolStats.AcquireDuration().Milliseconds(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}
	if poolStats.EmptyAcquireCount() > 0 {
		stats["message"] = "The application has tried to acquire a connection from an empty pool. Consider increasing max connections."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() {
	log.Info().Msg("disconnected from database")
	s.pool.Close()
}

func (s *service) ensureSchema(ctx context.Context) error {
	// Order matters: paciente and presionarterial both reference catalogo.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalogo (
			id        BIGSERIAL PRIMARY KEY,
			categoria TEXT NOT NULL,
			valor     TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS catalogo_categoria_valor_uq
			ON catalogo (categoria, COALESCE(valor, ''))`,
		`CREATE TABLE IF NOT EXISTS paciente (
			id               BIGSERIAL PRIMARY KEY,
			primer_nombre    TEXT NOT NULL,
			segundo_nombre   TEXT NOT NULL,
			primer_apellido  TEXT NOT NULL,
			segundo_apellido TEXT NOT NULL,
			nombre           TEXT NOT NULL,
			apellido         TEXT NOT NULL,
			nombre_key       TEXT NOT NULL,
			usuario          TEXT NOT NULL,
			contrasena       TEXT NOT NULL,
			id_estado        BIGINT REFERENCES catalogo(id),
			refresh_version  INT NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS paciente_usuario_ci_uq
			ON paciente (LOWER(usuario))`,
		`CREATE INDEX IF NOT EXISTS paciente_nombre_key_idx
			ON paciente (LOWER(nombre_key))`,
		`CREATE TABLE IF NOT EXISTS presionarterial (
			id                BIGSERIAL PRIMARY KEY,
			id_paciente       BIGINT NOT NULL REFERENCES paciente(id),
			presionsistolica  NUMERIC(5,2) NOT NULL,
			presiondiastolica NUMERIC(5,2) NOT NULL,
			fecha             DATE NOT NULL,
			hora              TIME NOT NULL,
			id_nivelpresion   BIGINT REFERENCES catalogo(id)
		)`,
		`CREATE INDEX IF NOT EXISTS presionarterial_paciente_fecha_idx
			ON presionarterial (id_paciente, fecha, hora)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnsureSchema bootstraps the tables on startup. The service has always been
// deployed without an external migration step.
func EnsureSchema(ctx context.Context, svc Service) error {
	s, ok := svc.(*service)
	if !ok {
		return fmt.Errorf("ensure schema: unsupported service implementation")
	}
	return s.ensureSchema(ctx)
}
