// Package patient holds the identity side of the system: registration with
// its reactivation rules, login, profile maintenance and soft deletion.
package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EstadoCategoria = "ESTADOUSUARIO"
	EstadoActivo    = "ACTIVO"
	EstadoInactivo  = "INACTIVO"
)

var ErrNotFound = errors.New("paciente no encontrado")

// Patient mirrors a paciente row. The password hash never leaves the server.
type Patient struct {
	ID              int64  `json:"id"`
	PrimerNombre    string `json:"primer_nombre"`
	SegundoNombre   string `json:"segundo_nombre"`
	PrimerApellido  string `json:"primer_apellido"`
	SegundoApellido string `json:"segundo_apellido"`
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	NombreKey       string `json:"nombre_key"`
	Usuario         string `json:"usuario"`
	PasswordHash    string `json:"-"`
	EstadoID        int64  `json:"id_estado"`
	RefreshVersion  int    `json:"-"`
}

// Repository is the persistence surface the service needs. WithTx runs fn
// against a repository bound to a single transaction; any error rolls back.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	FindByUsuarioCI(ctx context.Context, usuario string) (*Patient, error)
	FindInactiveByNombreKey(ctx context.Context, nombreKey string, estadoInactivoID int64) ([]Patient, error)
	Update(ctx context.Context, p *Patient) error
	UpdateEstado(ctx context.Context, id, estadoID int64) error
	BumpRefreshVersion(ctx context.Context, id int64) error
	WithTx(ctx context.Context, fn func(Repository) error) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepo struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{db: pool, pool: pool}
}

const cols = `id, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	nombre, apellido, nombre_key, usuario, contrasena, id_estado, refresh_version`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PrimerNombre, &p.SegundoNombre, &p.PrimerApellido,
		&p.SegundoApellido, &p.Nombre, &p.Apellido, &p.NombreKey, &p.Usuario,
		&p.PasswordHash, &p.EstadoID, &p.RefreshVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan paciente: %w", err)
	}
	return &p, nil
}

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	query := `INSERT INTO paciente (primer_nombre, segundo_nombre, primer_apellido,
		segundo_apellido, nombre, apellido, nombre_key, usuario, contrasena, id_estado)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, refresh_version`
	err := r.db.QueryRow(ctx, query,
		p.PrimerNombre, p.SegundoNombre, p.PrimerApellido, p.SegundoApellido,
		p.Nombre, p.Apellido, p.NombreKey, p.Usuario, p.PasswordHash, p.EstadoID,
	).Scan(&p.ID, &p.RefreshVersion)
	if err != nil {
		return fmt.Errorf("insert paciente: %w", err)
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Patient, error) {
	query := `SELECT ` + cols + ` FROM paciente WHERE id = $1`
	return scanPatient(r.db.QueryRow(ctx, query, id))
}

func (r *pgRepo) FindByUsuarioCI(ctx context.Context, usuario string) (*Patient, error) {
	query := `SELECT ` + cols + ` FROM paciente WHERE LOWER(usuario) = LOWER($1)`
	p, err := scanPatient(r.db.QueryRow(ctx, query, usuario))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (r *pgRepo) FindInactiveByNombreKey(ctx context.Context, nombreKey string, estadoInactivoID int64) ([]Patient, error) {
	query := `SELECT ` + cols + ` FROM paciente
		WHERE id_estado = $1 AND LOWER(nombre_key) = LOWER($2)`
	rows, err := r.db.Query(ctx, query, estadoInactivoID, nombreKey)
	if err != nil {
		return nil, fmt.Errorf("query pacientes by nombre_key: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *pgRepo) Update(ctx context.Context, p *Patient) error {
	query := `UPDATE paciente SET primer_nombre=$1, segundo_nombre=$2,
		primer_apellido=$3, segundo_apellido=$4, nombre=$5, apellido=$6,
		nombre_key=$7, usuario=$8, contrasena=$9, id_estado=$10 WHERE id=$11`
	tag, err := r.db.Exec(ctx, query,
		p.PrimerNombre, p.SegundoNombre, p.PrimerApellido, p.SegundoApellido,
		p.Nombre, p.Apellido, p.NombreKey, p.Usuario, p.PasswordHash, p.EstadoID, p.ID)
	if err != nil {
		return fmt.Errorf("update paciente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) UpdateEstado(ctx context.Context, id, estadoID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE paciente SET id_estado=$1 WHERE id=$2`, estadoID, id)
	if err != nil {
		return fmt.Errorf("update estado paciente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) BumpRefreshVersion(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE paciente SET refresh_version = refresh_version + 1 WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("bump refresh_version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) WithTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgRepo{db: tx, pool: r.pool}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
