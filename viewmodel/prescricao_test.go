package viewmodel

import (
	"testing"
	"time"
)

// TestNormalizePrescricaoLinhaDataDerivation tests the date preference order:
// application timestamp, then mes/ano at day 1, then now
func TestNormalizePrescricaoLinhaDataDerivation(t *testing.T) {
	t.Run("aplicacao_data_hora wins", func(t *testing.T) {
		got := NormalizePrescricaoLinha(map[string]any{
			"id_prescricao":       float64(1),
			"aplicacao_data_hora": "2025-02-10T08:30:00Z",
			"mes":                 "01",
			"ano":                 "2020",
		})
		if got.DataIso != "2025-02-10T08:30:00.000Z" {
			t.Errorf("DataIso = %q", got.DataIso)
		}
		if got.Horario == nil || *got.Horario != "08:30" {
			t.Errorf("Horario = %v, want 08:30", got.Horario)
		}
	})

	t.Run("mes e ano synthesize day 1", func(t *testing.T) {
		got := NormalizePrescricaoLinha(map[string]any{
			"id_prescricao": float64(2),
			"mes":           "03",
			"ano":           "2025",
		})
		if got.DataIso != "2025-03-01T00:00:00.000Z" {
			t.Errorf("DataIso = %q", got.DataIso)
		}
		if got.Horario != nil {
			t.Errorf("Horario should be nil without an application, got %v", *got.Horario)
		}
	})

	t.Run("single-digit mes is padded", func(t *testing.T) {
		got := NormalizePrescricaoLinha(map[string]any{
			"id_prescricao": float64(3),
			"mes":           "3",
			"ano":           float64(2025),
		})
		if got.DataIso != "2025-03-01T00:00:00.000Z" {
			t.Errorf("DataIso = %q", got.DataIso)
		}
	})

	t.Run("neither falls back to now", func(t *testing.T) {
		before := time.Now()
		got := NormalizePrescricaoLinha(map[string]any{"id_prescricao": float64(4)})
		parsed, ok := ParseTimestamp(got.DataIso)
		if !ok {
			t.Fatalf("DataIso not parseable: %q", got.DataIso)
		}
		if parsed.Before(before.Add(-time.Second)) || parsed.After(time.Now().Add(time.Second)) {
			t.Errorf("DataIso %v not within a second of now", parsed)
		}
	})

	t.Run("unparseable application keeps horario nil", func(t *testing.T) {
		got := NormalizePrescricaoLinha(map[string]any{
			"id_prescricao":       float64(5),
			"aplicacao_data_hora": "invalid",
			"mes":                 "05",
			"ano":                 "2025",
		})
		if got.Horario != nil {
			t.Errorf("Horario should be nil for unparseable application, got %v", *got.Horario)
		}
		if got.DataIso != "2025-05-01T00:00:00.000Z" {
			t.Errorf("DataIso = %q, want mes/ano fallback", got.DataIso)
		}
	})
}

// TestNormalizePrescricaoLinhaObservacoes tests the display-string join
func TestNormalizePrescricaoLinhaObservacoes(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "nome and posologia joined with em dash",
			raw:  map[string]any{"nome_medicamento": "Dipirona 500mg", "posologia": "1 comprimido 8/8h"},
			want: "Dipirona 500mg — 1 comprimido 8/8h",
		},
		{
			name: "only nome",
			raw:  map[string]any{"nome_medicamento": "Dipirona 500mg"},
			want: "Dipirona 500mg",
		},
		{
			name: "only posologia",
			raw:  map[string]any{"posologia": "8/8h"},
			want: "8/8h",
		},
		{
			name: "neither",
			raw:  map[string]any{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrescricaoLinha(tt.raw)
			if got.Observacoes != tt.want {
				t.Errorf("Observacoes = %q, want %q", got.Observacoes, tt.want)
			}
		})
	}
}

// TestNormalizePrescricaoLinhaCuidador tests the responsible-person chain,
// which must skip empty strings, not only missing fields
func TestNormalizePrescricaoLinhaCuidador(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "cuidador_nome wins",
			raw:  map[string]any{"cuidador_nome": "Rita", "usuario_nome": "outro"},
			want: "Rita",
		},
		{
			name: "empty cuidador_nome is skipped",
			raw:  map[string]any{"cuidador_nome": "", "enfermeiro_nome": "Paula"},
			want: "Paula",
		},
		{
			name: "vinculado_por before aplicador",
			raw:  map[string]any{"vinculado_por": "admin", "aplicador": "plantonista"},
			want: "admin",
		},
		{
			name: "aplicador as last resort",
			raw:  map[string]any{"aplicador": "plantonista"},
			want: "plantonista",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrescricaoLinha(tt.raw)
			if got.Cuidador == nil || *got.Cuidador != tt.want {
				t.Errorf("Cuidador = %v, want %q", got.Cuidador, tt.want)
			}
		})
	}

	t.Run("no candidate leaves nil", func(t *testing.T) {
		got := NormalizePrescricaoLinha(map[string]any{"id_prescricao": float64(1)})
		if got.Cuidador != nil {
			t.Errorf("Cuidador = %v, want nil", *got.Cuidador)
		}
	})
}

// TestNormalizePrescricaoLinhaIDs tests line identifiers
func TestNormalizePrescricaoLinhaIDs(t *testing.T) {
	got := NormalizePrescricaoLinha(map[string]any{
		"id_prescricao":             float64(10),
		"id_medicamento_prescricao": float64(55),
		"id_medicamento":            float64(7),
		"posologia":                 "12/12h",
	})
	if got.IDPrescricao != 10 || got.IDSintetico {
		t.Errorf("IDPrescricao = %d (sintetico=%v), want 10", got.IDPrescricao, got.IDSintetico)
	}
	if got.IDMedicamentoPrescricao == nil || *got.IDMedicamentoPrescricao != 55 {
		t.Errorf("IDMedicamentoPrescricao = %v, want 55", got.IDMedicamentoPrescricao)
	}
	if got.IDMedicamento == nil || *got.IDMedicamento != 7 {
		t.Errorf("IDMedicamento = %v, want 7", got.IDMedicamento)
	}
	if got.Posologia == nil || *got.Posologia != "12/12h" {
		t.Errorf("Posologia = %v, want 12/12h", got.Posologia)
	}

	semID := NormalizePrescricaoLinha(map[string]any{})
	if !semID.IDSintetico {
		t.Error("missing id_prescricao should be synthesized and flagged")
	}
}
