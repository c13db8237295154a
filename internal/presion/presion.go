// Package presion records blood-pressure readings, classifies them against
// the catalog levels and serves the date-scoped queries and the monthly PDF.
package presion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("toma no encontrada")

// Reading mirrors a presionarterial row. Fecha and Hora are kept as the wire
// strings "YYYY-MM-DD" and "HH:MM". Nivel carries the joined catalog valor
// when the query fetched it.
type Reading struct {
	ID         int64   `json:"id"`
	PacienteID int64   `json:"id_paciente"`
	Sistolica  float64 `json:"presionsistolica"`
	Diastolica float64 `json:"presiondiastolica"`
	Fecha      string  `json:"fecha"`
	Hora       string  `json:"hora"`
	NivelID    int64   `json:"id_nivelpresion"`
	Nivel      string  `json:"nivel,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	DeleteByID(ctx context.Context, id int64) error
	ListByFecha(ctx context.Context, pacienteID int64, fecha string) ([]Reading, error)
	ListBetween(ctx context.Context, pacienteID int64, desde, hasta string) ([]Reading, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const cols = `pa.id, pa.id_paciente, pa.presionsistolica, pa.presiondiastolica,
	to_char(pa.fecha, 'YYYY-MM-DD'), to_char(pa.hora, 'HH24:MI'),
	pa.id_nivelpresion, COALESCE(c.valor, '')`

func scanReading(row pgx.Row) (*Reading, error) {
	var r Reading
	err := row.Scan(&r.ID, &r.PacienteID, &r.Sistolica, &r.Diastolica,
		&r.Fecha, &r.Hora, &r.NivelID, &r.Nivel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan toma: %w", err)
	}
	return &r, nil
}

func (p *pgRepo) Create(ctx context.Context, r *Reading) error {
	query := `INSERT INTO presionarterial
		(id_paciente, presionsistolica, presiondiastolica, fecha, hora, id_nivelpresion)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	err := p.pool.QueryRow(ctx, query,
		r.PacienteID, r.Sistolica, r.Diastolica, r.Fecha, r.Hora, r.NivelID,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert toma: %w", err)
	}
	return nil
}

func (p *pgRepo) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM presionarterial WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete toma: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgRepo) ListByFecha(ctx context.Context, pacienteID int64, fecha string) ([]Reading, error) {
	query := `SELECT ` + cols + ` FROM presionarterial pa
		LEFT JOIN catalogo c ON c.id = pa.id_nivelpresion
		WHERE pa.id_paciente = $1 AND pa.fecha = $2
		ORDER BY pa.hora ASC`
	return p.list(ctx, query, pacienteID, fecha)
}

func (p *pgRepo) ListBetween(ctx context.Context, pacienteID int64, desde, hasta string) ([]Reading, error) {
	query := `SELECT ` + cols + ` FROM presionarterial pa
		LEFT JOIN catalogo c ON c.id = pa.id_nivelpresion
		WHERE pa.id_paciente = $1 AND pa.fecha BETWEEN $2 AND $3
		ORDER BY pa.fecha ASC, pa.hora ASC`
	return p.list(ctx, query, pacienteID, desde, hasta)
}

func (p *pgRepo) list(ctx context.Context, query string, args ...any) ([]Reading, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tomas: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
