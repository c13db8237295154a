package presion

import "testing"

func TestClasificarBoundaries(t *testing.T) {
	cases := []struct {
		name string
		s, d float64
		want string
	}{
		{"normal low", 110, 70, NivelNormal},
		{"just below elevated", 119, 79, NivelNormal},
		{"elevated floor", 120, 70, NivelElevada},
		{"elevated ceiling", 129, 79, NivelElevada},
		{"level1 by systolic floor", 130, 70, NivelHT1},
		{"level1 by systolic ceiling", 139, 70, NivelHT1},
		{"level1 by diastolic floor", 110, 80, NivelHT1},
		{"level1 by diastolic ceiling", 110, 89, NivelHT1},
		{"level2 by systolic", 140, 70, NivelHT2},
		{"level2 by diastolic", 110, 90, NivelHT2},
		{"just below crisis", 179, 119, NivelHT2},
		{"crisis by systolic", 180, 70, NivelCrisis},
		{"crisis by diastolic", 110, 120, NivelCrisis},
		{"crisis dominates severe pair", 185, 70, NivelCrisis},
		{"elevated systolic but high diastolic", 125, 85, NivelHT1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clasificar(tc.s, tc.d); got != tc.want {
				t.Errorf("Clasificar(%v, %v) = %q, want %q", tc.s, tc.d, got, tc.want)
			}
		})
	}
}

// Every in-range pair must land on exactly one of the five labels.
func TestClasificarTotality(t *testing.T) {
	valid := map[string]bool{}
	for _, n := range Niveles() {
		valid[n] = true
	}
	for s := 70.0; s <= 250; s++ {
		for d := 40.0; d <= 150; d++ {
			if got := Clasificar(s, d); !valid[got] {
				t.Fatalf("Clasificar(%v, %v) = %q, not a known level", s, d, got)
			}
		}
	}
}

func TestValidarRangos(t *testing.T) {
	cases := []struct {
		s, d   float64
		wantOK bool
	}{
		{120, 80, true},
		{70, 40, true},
		{250, 150, true},
		{69, 80, false},
		{251, 80, false},
		{120, 39, false},
		{120, 151, false},
		{300, 80, false},
	}
	for _, tc := range cases {
		msg := ValidarRangos(tc.s, tc.d)
		if (msg == "") != tc.wantOK {
			t.Errorf("ValidarRangos(%v, %v) = %q, want ok=%v", tc.s, tc.d, msg, tc.wantOK)
		}
	}
}
