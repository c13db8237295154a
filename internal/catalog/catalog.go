/*
Package catalog implements the generic lookup table (categoria, valor) that
backs every status and classification code in the system. Rows are created by
admin-type operations and read constantly by the other domains, so resolution
of a (categoria, valor) pair to its id goes through an in-process LRU cache.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a catalog row does not exist.
	ErrNotFound = errors.New("no encontrado")

	// ErrDuplicate is returned when a (categoria, valor) pair already exists.
	ErrDuplicate = errors.New("el par (categoria, valor) ya existe")

	// ErrEmptyCategoria rejects create/update without a categoria.
	ErrEmptyCategoria = errors.New("categoria es requerida")

	// ErrMissingEntry marks a required catalog row that was never provisioned.
	// This is a deployment problem, not a user error.
	ErrMissingEntry = errors.New("catálogo no provisionado")
)

// Entry is one row of the catalogo table.
type Entry struct {
	ID        int64   `json:"id"`
	Categoria string  `json:"categoria"`
	Valor     *string `json:"valor"`
}

// ListFilter narrows and pages List results.
type ListFilter struct {
	Categoria string
	Valor     string
	Page      int
	Size      int
}

// Repository is the persistence boundary for catalog rows.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// FindPair returns the row matching the exact (categoria, valor) pair,
	// ignoring the row with excludeID (0 to exclude nothing).
	FindPair(ctx context.Context, categoria string, valor *string, excludeID int64) (*Entry, error)
	List(ctx context.Context, f ListFilter) ([]*Entry, int, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id int64) error
	ResolveID(ctx context.Context, categoria, valor string) (int64, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const cols = `id, categoria, valor`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.Categoria, &e.Valor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *pgRepo) Create(ctx context.Context, e *Entry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO catalogo (categoria, valor) VALUES ($1, $2) RETURNING id`,
		e.Categoria, e.Valor).Scan(&e.ID)
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM catalogo WHERE id = $1`, id))
}

func (r *pgRepo) FindPair(ctx context.Context, categoria string, valor *string, excludeID int64) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM catalogo
		 WHERE categoria = $1 AND COALESCE(valor, '') = COALESCE($2, '') AND id <> $3`,
		categoria, valor, excludeID))
}

func (r *pgRepo) List(ctx context.Context, f ListFilter) ([]*Entry, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if f.Categoria != "" {
		where += fmt.Sprintf(` AND categoria ILIKE $%d`, idx)
		args = append(args, "%"+f.Categoria+"%")
		idx++
	}
	if f.Valor != "" {
		where += fmt.Sprintf(` AND valor ILIKE $%d`, idx)
		args = append(args, "%"+f.Valor+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalogo`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cols + ` FROM catalogo` + where +
		fmt.Sprintf(` ORDER BY categoria ASC, valor ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, f.Size, (f.Page-1)*f.Size)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *pgRepo) Update(ctx context.Context, e *Entry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE catalogo SET categoria = $2, valor = $3 WHERE id = $1`,
		e.ID, e.Categoria, e.Valor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalogo WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) ResolveID(ctx context.Context, categoria, valor string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM catalogo WHERE categoria = $1 AND valor = $2`,
		categoria, valor).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}
