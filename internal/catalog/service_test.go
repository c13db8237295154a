package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
)

type memRepo struct {
	nextID     int64
	rows       map[int64]*Entry
	resolveHit int
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, rows: map[int64]*Entry{}}
}

func valorOf(e *Entry) string {
	if e.Valor == nil {
		return ""
	}
	return *e.Valor
}

func (m *memRepo) Create(_ context.Context, e *Entry) error {
	cp := *e
	cp.ID = m.nextID
	m.nextID++
	m.rows[cp.ID] = &cp
	e.ID = cp.ID
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Entry, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepo) FindPair(_ context.Context, categoria string, valor *string, excludeID int64) (*Entry, error) {
	v := ""
	if valor != nil {
		v = *valor
	}
	for _, e := range m.rows {
		if e.ID != excludeID && e.Categoria == categoria && valorOf(e) == v {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, f ListFilter) ([]*Entry, int, error) {
	var all []*Entry
	for _, e := range m.rows {
		if f.Categoria != "" && !strings.Contains(strings.ToLower(e.Categoria), strings.ToLower(f.Categoria)) {
			continue
		}
		if f.Valor != "" && !strings.Contains(strings.ToLower(valorOf(e)), strings.ToLower(f.Valor)) {
			continue
		}
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Categoria != all[j].Categoria {
			return all[i].Categoria < all[j].Categoria
		}
		return valorOf(all[i]) < valorOf(all[j])
	})
	total := len(all)
	start := (f.Page - 1) * f.Size
	if start > total {
		start = total
	}
	end := start + f.Size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memRepo) Update(_ context.Context, e *Entry) error {
	if _, ok := m.rows[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) ResolveID(_ context.Context, categoria, valor string) (int64, error) {
	m.resolveHit++
	for _, e := range m.rows {
		if e.Categoria == categoria && valorOf(e) == valor {
			return e.ID, nil
		}
	}
	return 0, ErrNotFound
}

func str(s string) *string { return &s }

func TestCreateRejectsEmptyCategoria(t *testing.T) {
	svc := NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyCategoria) {
		t.Fatalf("err = %v, want ErrEmptyCategoria", err)
	}
}

func TestCreateDuplicatePair(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "ESTADOUSUARIO", str("ACTIVO")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "ESTADOUSUARIO", str("ACTIVO")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	// Same valor under a different categoria is a different key.
	if _, err := svc.Create(ctx, "OTRACOSA", str("ACTIVO")); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateExcludesSelfFromDupCheck(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.Create(ctx, "NIVEL_PRESION", str("NORMAL"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.Create(ctx, "NIVEL_PRESION", str("ELEVADA"))
	if err != nil {
		t.Fatal(err)
	}

	// Re-saving the same pair on the same row is not a duplicate.
	if _, err := svc.Update(ctx, e.ID, str("NIVEL_PRESION"), str("NORMAL")); err != nil {
		t.Fatalf("self-update flagged as duplicate: %v", err)
	}
	// Colliding with another row is.
	if _, err := svc.Update(ctx, other.ID, nil, str("NORMAL")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(newMemRepo())
	if _, err := svc.Update(context.Background(), 99, str("X"), nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListPagingAndClamp(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, "CAT", str(string(rune('A'+i)))); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 25 || len(items) != defaultPageSize {
		t.Errorf("total = %d len = %d, want 25/%d", total, len(items), defaultPageSize)
	}

	items, _, err = svc.List(ctx, ListFilter{Page: 2, Size: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 5 {
		t.Errorf("page 2 len = %d, want 5", len(items))
	}

	items, _, err = svc.List(ctx, ListFilter{Size: 9999})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 25 {
		t.Errorf("clamped size returned %d items", len(items))
	}

	// Empty result is a slice, not nil.
	items, total, err = svc.List(ctx, ListFilter{Categoria: "nomatch"})
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || total != 0 {
		t.Errorf("empty list: items=%v total=%d", items, total)
	}
}

func TestResolveIDCaches(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.Create(ctx, "ESTADOUSUARIO", str("ACTIVO"))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		id, err := svc.ResolveID(ctx, "ESTADOUSUARIO", "ACTIVO")
		if err != nil {
			t.Fatal(err)
		}
		if id != e.ID {
			t.Fatalf("id = %d, want %d", id, e.ID)
		}
	}
	if repo.resolveHit != 1 {
		t.Errorf("repo hit %d times, want 1 (cache miss only)", repo.resolveHit)
	}

	// Any write purges the cache.
	if _, err := svc.Create(ctx, "OTRA", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResolveID(ctx, "ESTADOUSUARIO", "ACTIVO"); err != nil {
		t.Fatal(err)
	}
	if repo.resolveHit != 2 {
		t.Errorf("repo hit %d times after purge, want 2", repo.resolveHit)
	}
}

func TestResolveIDMissing(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.ResolveID(context.Background(), "NIVEL_PRESION", "NORMAL")
	if !errors.Is(err, ErrMissingEntry) {
		t.Fatalf("err = %v, want ErrMissingEntry", err)
	}
}

func TestVerifyRequired(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, v := range []string{"ACTIVO", "INACTIVO"} {
		if _, err := svc.Create(ctx, "ESTADOUSUARIO", str(v)); err != nil {
			t.Fatal(err)
		}
	}

	ok := map[string][]string{"ESTADOUSUARIO": {"ACTIVO", "INACTIVO"}}
	if err := svc.VerifyRequired(ctx, ok); err != nil {
		t.Fatal(err)
	}

	missing := map[string][]string{"NIVEL_PRESION": {"NORMAL"}}
	if err := svc.VerifyRequired(ctx, missing); !errors.Is(err, ErrMissingEntry) {
		t.Fatalf("err = %v, want ErrMissingEntry", err)
	}
}
