package patient

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields   = errors.New("debe enviar primer_nombre, segundo_nombre, primer_apellido, segundo_apellido, usuario y contraseña")
	ErrUsernameTaken   = errors.New("el usuario ya está en uso por otra cuenta")
	ErrAmbiguousName   = errors.New("ambigüedad con los nombres")
	ErrBadCredentials  = errors.New("usuario o contraseña incorrectos")
	ErrInactive        = errors.New("cuenta inactiva")
	ErrIncompleteNames = errors.New("se requieren los cuatro campos de nombre/apellido para actualizar")
)

// RegisterOutcome tells the handler which of the three register paths ran.
type RegisterOutcome int

const (
	OutcomeCreated RegisterOutcome = iota
	OutcomeUpdated
	OutcomeReactivated
)

// CatalogResolver resolves a (categoria, valor) pair to its catalog id.
type CatalogResolver interface {
	ResolveID(ctx context.Context, categoria, valor string) (int64, error)
}

type Service struct {
	repo    Repository
	catalog CatalogResolver
}

func NewService(repo Repository, catalog CatalogResolver) *Service {
	return &Service{repo: repo, catalog: catalog}
}

type RegisterInput struct {
	PrimerNombre    string
	SegundoNombre   string
	PrimerApellido  string
	SegundoApellido string
	Usuario         string
	Contrasena      string
}

func (in *RegisterInput) normalize() {
	in.PrimerNombre = normalizeSpaces(in.PrimerNombre)
	in.SegundoNombre = normalizeSpaces(in.SegundoNombre)
	in.PrimerApellido = normalizeSpaces(in.PrimerApellido)
	in.SegundoApellido = normalizeSpaces(in.SegundoApellido)
	in.Usuario = strings.TrimSpace(in.Usuario)
}

func (in *RegisterInput) complete() bool {
	for _, f := range []string{in.PrimerNombre, in.SegundoNombre, in.PrimerApellido,
		in.SegundoApellido, in.Usuario, in.Contrasena} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Register resolves the incoming identity in order: an existing account with
// the same username is overwritten and activated, otherwise a single inactive
// account with the same name key is reclaimed, otherwise a new row is created.
// The whole sequence runs in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, RegisterOutcome, error) {
	in.normalize()
	if !in.complete() {
		return nil, 0, ErrMissingFields
	}

	idActivo, err := s.catalog.ResolveID(ctx, EstadoCategoria, EstadoActivo)
	if err != nil {
		return nil, 0, err
	}
	idInactivo, err := s.catalog.ResolveID(ctx, EstadoCategoria, EstadoInactivo)
	if err != nil {
		return nil, 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		return nil, 0, err
	}

	nombreKey := BuildNombreKey(in.PrimerNombre, in.SegundoNombre, in.PrimerApellido, in.SegundoApellido)

	var (
		result  *Patient
		outcome RegisterOutcome
	)
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		apply := func(p *Patient) {
			p.PrimerNombre = in.PrimerNombre
			p.SegundoNombre = in.SegundoNombre
			p.PrimerApellido = in.PrimerApellido
			p.SegundoApellido = in.SegundoApellido
			p.Nombre = fullNombre(in.PrimerNombre, in.SegundoNombre)
			p.Apellido = fullApellido(in.PrimerApellido, in.SegundoApellido)
			p.NombreKey = nombreKey
			p.Usuario = in.Usuario
			p.PasswordHash = string(hash)
			p.EstadoID = idActivo
		}

		existing, err := tx.FindByUsuarioCI(ctx, in.Usuario)
		if err != nil {
			return err
		}
		if existing != nil {
			apply(existing)
			if err := tx.Update(ctx, existing); err != nil {
				return err
			}
			result, outcome = existing, OutcomeUpdated
			return nil
		}

		candidates, err := tx.FindInactiveByNombreKey(ctx, nombreKey, idInactivo)
		if err != nil {
			return err
		}
		switch {
		case len(candidates) == 1:
			p := &candidates[0]
			collision, err := tx.FindByUsuarioCI(ctx, in.Usuario)
			if err != nil {
				return err
			}
			if collision != nil && collision.ID != p.ID {
				return ErrUsernameTaken
			}
			apply(p)
			if err := tx.Update(ctx, p); err != nil {
				return err
			}
			result, outcome = p, OutcomeReactivated
			return nil
		case len(candidates) > 1:
			return ErrAmbiguousName
		}

		p := &Patient{}
		apply(p)
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		result, outcome = p, OutcomeCreated
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, 0, ErrUsernameTaken
		}
		return nil, 0, err
	}
	return result, outcome, nil
}

// Login looks the username up case-insensitively, compares the password and
// requires the stored status to resolve to an active account.
func (s *Service) Login(ctx context.Context, usuario, contrasena string) (*Patient, error) {
	usuario = strings.TrimSpace(usuario)
	if usuario == "" || contrasena == "" {
		return nil, ErrMissingFields
	}

	p, err := s.repo.FindByUsuarioCI(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(contrasena)) != nil {
		return nil, ErrBadCredentials
	}

	idActivo, err := s.catalog.ResolveID(ctx, EstadoCategoria, EstadoActivo)
	if err != nil {
		return nil, err
	}
	if p.EstadoID != idActivo {
		return nil, ErrInactive
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

type UpdateInput struct {
	PrimerNombre    *string
	SegundoNombre   *string
	PrimerApellido  *string
	SegundoApellido *string
	Usuario         *string
	Contrasena      *string
}

// UpdateProfile applies the supplied fields. Changing any name part requires
// all four parts to end up non-empty, and the derived nombre, apellido and
// nombre_key are rebuilt from them.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Usuario != nil && strings.TrimSpace(*in.Usuario) != p.Usuario {
		nuevo := strings.TrimSpace(*in.Usuario)
		dup, err := s.repo.FindByUsuarioCI(ctx, nuevo)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != p.ID {
			return nil, ErrUsernameTaken
		}
		p.Usuario = nuevo
	}

	if in.PrimerNombre != nil || in.SegundoNombre != nil || in.PrimerApellido != nil || in.SegundoApellido != nil {
		n1 := pick(in.PrimerNombre, p.PrimerNombre)
		n2 := pick(in.SegundoNombre, p.SegundoNombre)
		a1 := pick(in.PrimerApellido, p.PrimerApellido)
		a2 := pick(in.SegundoApellido, p.SegundoApellido)
		for _, f := range []string{n1, n2, a1, a2} {
			if strings.TrimSpace(f) == "" {
				return nil, ErrIncompleteNames
			}
		}
		p.PrimerNombre = normalizeSpaces(n1)
		p.SegundoNombre = normalizeSpaces(n2)
		p.PrimerApellido = normalizeSpaces(a1)
		p.SegundoApellido = normalizeSpaces(a2)
		p.Nombre = fullNombre(p.PrimerNombre, p.SegundoNombre)
		p.Apellido = fullApellido(p.PrimerApellido, p.SegundoApellido)
		p.NombreKey = BuildNombreKey(p.PrimerNombre, p.SegundoNombre, p.PrimerApellido, p.SegundoApellido)
	}

	if in.Contrasena != nil && *in.Contrasena != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Contrasena), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return p, nil
}

// Deactivate flips the status to inactive. The row stays so the name key can
// reclaim it on a later register.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	idInactivo, err := s.catalog.ResolveID(ctx, EstadoCategoria, EstadoInactivo)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateEstado(ctx, id, idInactivo)
}

// LogoutAll invalidates every outstanding refresh token for the patient.
func (s *Service) LogoutAll(ctx context.Context, id int64) error {
	return s.repo.BumpRefreshVersion(ctx, id)
}

func pick(v *string, fallback string) string {
	if v != nil && strings.TrimSpace(*v) != "" {
		return *v
	}
	return fallback
}
