package presion

import (
	"context"
	"errors"
	"testing"
	"time"

	"tensia/internal/patient"
)

type mockRepo struct {
	created  []Reading
	readings []Reading
	deleted  []int64
}

func (m *mockRepo) Create(_ context.Context, r *Reading) error {
	r.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *r)
	return nil
}

func (m *mockRepo) DeleteByID(_ context.Context, id int64) error {
	for _, r := range m.readings {
		if r.ID == id {
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) ListByFecha(_ context.Context, pacienteID int64, fecha string) ([]Reading, error) {
	var out []Reading
	for _, r := range m.readings {
		if r.PacienteID == pacienteID && r.Fecha == fecha {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) ListBetween(_ context.Context, pacienteID int64, desde, hasta string) ([]Reading, error) {
	var out []Reading
	for _, r := range m.readings {
		if r.PacienteID == pacienteID && r.Fecha >= desde && r.Fecha <= hasta {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockResolver struct {
	ids map[string]int64
}

func (m *mockResolver) ResolveID(_ context.Context, categoria, valor string) (int64, error) {
	id, ok := m.ids[categoria+"/"+valor]
	if !ok {
		return 0, errors.New("catálogo no provisionado")
	}
	return id, nil
}

type mockPatients struct {
	p *patient.Patient
}

func (m *mockPatients) Get(_ context.Context, id int64) (*patient.Patient, error) {
	if m.p == nil {
		return nil, patient.ErrNotFound
	}
	return m.p, nil
}

func newTestService(repo *mockRepo) *Service {
	ids := map[string]int64{}
	for i, n := range Niveles() {
		ids[NivelCategoria+"/"+n] = int64(i + 1)
	}
	svc := NewService(repo, &mockResolver{ids: ids}, &mockPatients{})
	svc.now = func() time.Time { return time.Date(2025, 8, 13, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestCreateRejectsOutOfRangeBeforePersist(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{PacienteID: 1, Sistolica: 300, Diastolica: 80})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("reading was persisted despite invalid values")
	}
}

func TestCreateDefaultsFechaHora(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	res, err := svc.Create(context.Background(), CreateInput{PacienteID: 1, Sistolica: 118, Diastolica: 76})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reading.Fecha != "2025-08-13" || res.Reading.Hora != "09:30" {
		t.Errorf("fecha/hora = %s/%s, want 2025-08-13/09:30", res.Reading.Fecha, res.Reading.Hora)
	}
	if res.Nivel != NivelNormal {
		t.Errorf("nivel = %q, want %q", res.Nivel, NivelNormal)
	}
	if res.Notification != "Nivel: "+NivelNormal {
		t.Errorf("notification = %q", res.Notification)
	}
}

func TestCreateCrisisNotification(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	res, err := svc.Create(context.Background(), CreateInput{PacienteID: 1, Sistolica: 190, Diastolica: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.Nivel != NivelCrisis {
		t.Fatalf("nivel = %q, want crisis", res.Nivel)
	}
	if res.Notification != CrisisNotification {
		t.Errorf("notification = %q, want %q", res.Notification, CrisisNotification)
	}
	if len(repo.created) != 1 {
		t.Fatalf("crisis reading must still be persisted")
	}
}

func TestSemanaWindow(t *testing.T) {
	repo := &mockRepo{readings: []Reading{
		{ID: 1, PacienteID: 1, Fecha: "2025-08-10"}, // previous Sunday
		{ID: 2, PacienteID: 1, Fecha: "2025-08-11"}, // Monday
		{ID: 3, PacienteID: 1, Fecha: "2025-08-17"}, // Sunday
		{ID: 4, PacienteID: 1, Fecha: "2025-08-18"}, // next Monday
		{ID: 5, PacienteID: 2, Fecha: "2025-08-13"}, // other patient
	}}
	svc := newTestService(repo)

	inicio, fin, tomas, err := svc.Semana(context.Background(), 1, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if inicio != "2025-08-11" || fin != "2025-08-17" {
		t.Errorf("window = %s..%s, want 2025-08-11..2025-08-17", inicio, fin)
	}
	if len(tomas) != 2 || tomas[0].ID != 2 || tomas[1].ID != 3 {
		t.Errorf("unexpected readings in window: %+v", tomas)
	}
}

func TestReporteMensualMissingPatient(t *testing.T) {
	repo := &mockRepo{readings: []Reading{
		{ID: 1, PacienteID: 7, Fecha: "2025-08-05", Sistolica: 150, Diastolica: 95},
	}}
	svc := newTestService(repo)

	data, err := svc.ReporteMensual(context.Background(), 7, 2025, time.August)
	if err != nil {
		t.Fatal(err)
	}
	if data.Paciente != nil {
		t.Errorf("expected nil patient")
	}
	if data.Inicio != "2025-08-01" || data.Fin != "2025-08-31" {
		t.Errorf("period = %s..%s", data.Inicio, data.Fin)
	}
	if len(data.Tomas) != 1 {
		t.Fatalf("tomas = %d, want 1", len(data.Tomas))
	}
	if got := displayName(data.Paciente, 7); got != "Paciente ID 7" {
		t.Errorf("displayName = %q", got)
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
