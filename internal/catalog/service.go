package catalog

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	idCacheSize     = 256
)

type pairKey struct {
	categoria string
	valor     string
}

// Service wraps the repository with validation and the id resolution cache.
type Service struct {
	repo Repository
	ids  *lru.Cache[pairKey, int64]
}

func NewService(repo Repository) *Service {
	cache, _ := lru.New[pairKey, int64](idCacheSize)
	return &Service{repo: repo, ids: cache}
}

func (s *Service) Create(ctx context.Context, categoria string, valor *string) (*Entry, error) {
	categoria = strings.TrimSpace(categoria)
	if categoria == "" {
		return nil, ErrEmptyCategoria
	}

	if _, err := s.repo.FindPair(ctx, categoria, valor, 0); err == nil {
		return nil, ErrDuplicate
	} else if err != ErrNotFound {
		return nil, err
	}

	e := &Entry{Categoria: categoria, Valor: valor}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.ids.Purge()
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Entry, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = defaultPageSize
	}
	if f.Size > maxPageSize {
		f.Size = maxPageSize
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Entry{}
	}
	return items, total, nil
}

// Update changes categoria and/or valor, re-checking pair uniqueness against
// every row but the one being updated. Nil inputs keep the stored values.
func (s *Service) Update(ctx context.Context, id int64, categoria *string, valor *string) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if categoria != nil {
		c := strings.TrimSpace(*categoria)
		if c == "" {
			return nil, ErrEmptyCategoria
		}
		e.Categoria = c
	}
	if valor != nil {
		e.Valor = valor
	}

	if categoria != nil || valor != nil {
		if _, err := s.repo.FindPair(ctx, e.Categoria, e.Valor, e.ID); err == nil {
			return nil, ErrDuplicate
		} else if err != ErrNotFound {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.ids.Purge()
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.ids.Purge()
	return nil
}

// ResolveID maps a (categoria, valor) lookup key to its row id. Hits are
// served from the LRU cache; any catalog write purges it.
func (s *Service) ResolveID(ctx context.Context, categoria, valor string) (int64, error) {
	key := pairKey{categoria: categoria, valor: valor}
	if id, ok := s.ids.Get(key); ok {
		return id, nil
	}
	id, err := s.repo.ResolveID(ctx, categoria, valor)
	if err == ErrNotFound {
		return 0, fmt.Errorf("%w: %s/%s", ErrMissingEntry, categoria, valor)
	}
	if err != nil {
		return 0, err
	}
	s.ids.Add(key, id)
	return id, nil
}

// VerifyRequired checks at startup that every (categoria, valor) pair the
// application depends on exists. A missing row is a configuration error and
// the server refuses to start.
func (s *Service) VerifyRequired(ctx context.Context, required map[string][]string) error {
	for categoria, valores := range required {
		for _, valor := range valores {
			if _, err := s.ResolveID(ctx, categoria, valor); err != nil {
				return err
			}
		}
	}
	return nil
}
