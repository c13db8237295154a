package presion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tensia/internal/patient"
)

var ErrOutOfRange = errors.New("valores fuera de rango")

// CrisisNotification is attached to the create response when the reading
// classifies as a hypertensive crisis.
const CrisisNotification = "CRISIS de hipertensión: consulte a su médico de inmediato."

// CatalogResolver resolves a (categoria, valor) pair to its catalog id.
type CatalogResolver interface {
	ResolveID(ctx context.Context, categoria, valor string) (int64, error)
}

// PatientGetter loads the patient row for the report header.
type PatientGetter interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	catalog  CatalogResolver
	patients PatientGetter
	now      func() time.Time
}

func NewService(repo Repository, catalog CatalogResolver, patients PatientGetter) *Service {
	return &Service{repo: repo, catalog: catalog, patients: patients, now: time.Now}
}

type CreateInput struct {
	PacienteID int64
	Sistolica  float64
	Diastolica float64
	Fecha      string
	Hora       string
}

// CreateResult carries the stored reading plus the classification outcome.
type CreateResult struct {
	Reading      *Reading
	Nivel        string
	Notification string
}

// Create validates the pair, classifies it, resolves the catalog level and
// persists the reading. Missing fecha/hora default to the current moment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if msg := ValidarRangos(in.Sistolica, in.Diastolica); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, msg)
	}

	now := s.now()
	if in.Fecha == "" {
		in.Fecha = now.Format(dateLayout)
	}
	if in.Hora == "" {
		in.Hora = now.Format(timeLayout)
	}

	nivel := Clasificar(in.Sistolica, in.Diastolica)
	nivelID, err := s.catalog.ResolveID(ctx, NivelCategoria, nivel)
	if err != nil {
		return nil, err
	}

	r := &Reading{
		PacienteID: in.PacienteID,
		Sistolica:  in.Sistolica,
		Diastolica: in.Diastolica,
		Fecha:      in.Fecha,
		Hora:       in.Hora,
		NivelID:    nivelID,
		Nivel:      nivel,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	notification := "Nivel: " + nivel
	if nivel == NivelCrisis {
		notification = CrisisNotification
	}
	return &CreateResult{Reading: r, Nivel: nivel, Notification: notification}, nil
}

func (s *Service) PorFecha(ctx context.Context, pacienteID int64, fecha string) ([]Reading, error) {
	return s.repo.ListByFecha(ctx, pacienteID, fecha)
}

// Semana returns the Monday-to-Sunday window containing the reference date
// along with the readings inside it.
func (s *Service) Semana(ctx context.Context, pacienteID int64, referencia time.Time) (string, string, []Reading, error) {
	inicio := StartOfWeekMonday(referencia).Format(dateLayout)
	fin := EndOfWeekSunday(referencia).Format(dateLayout)
	tomas, err := s.repo.ListBetween(ctx, pacienteID, inicio, fin)
	return inicio, fin, tomas, err
}

// MonthlyData is everything the PDF needs.
type MonthlyData struct {
	Paciente *patient.Patient
	Inicio   string
	Fin      string
	Tomas    []Reading
}

// ReporteMensual gathers patient and readings for the month. The two lookups
// are independent and run concurrently. A vanished patient row is not an
// error; the report falls back to the id in the header.
func (s *Service) ReporteMensual(ctx context.Context, pacienteID int64, year int, month time.Month) (*MonthlyData, error) {
	inicio, fin := MonthRange(year, month)
	data := &MonthlyData{
		Inicio: inicio.Format(dateLayout),
		Fin:    fin.Format(dateLayout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.patients.Get(gctx, pacienteID)
		if err != nil && !errors.Is(err, patient.ErrNotFound) {
			return err
		}
		data.Paciente = p
		return nil
	})
	g.Go(func() error {
		tomas, err := s.repo.ListBetween(gctx, pacienteID, data.Inicio, data.Fin)
		if err != nil {
			return err
		}
		data.Tomas = tomas
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a reading permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
