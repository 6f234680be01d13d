package viewmodel

// MedicoResumo is the catalog entry used by prescription form selects.
type MedicoResumo struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// MedicamentoResumo is the catalog entry used by prescription form selects.
type MedicamentoResumo struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// NormalizeMedico maps a raw doctor record to its catalog summary.
// Entries without both an id and a name are unusable in selects; callers
// drop entries where Valido reports false.
func NormalizeMedico(raw map[string]any) MedicoResumo {
	id, _ := firstInt(raw, "id_medico", "id")
	nome, _ := firstNonEmptyString(raw, "nome_completo", "nome")
	return MedicoResumo{ID: id, Nome: nome}
}

// Valido reports whether the entry carries the minimum for rendering.
func (m MedicoResumo) Valido() bool { return m.ID != 0 && m.Nome != "" }

// NormalizeMedicamento maps a raw medication record to its catalog summary.
func NormalizeMedicamento(raw map[string]any) MedicamentoResumo {
	id, _ := firstInt(raw, "id_medicamento", "id")
	nome, _ := firstNonEmptyString(raw, "nome_medicamento", "nome")
	return MedicamentoResumo{ID: id, Nome: nome}
}

// Valido reports whether the entry carries the minimum for rendering.
func (m MedicamentoResumo) Valido() bool { return m.ID != 0 && m.Nome != "" }

// NormalizeMedicos converts and filters a raw doctor list.
func NormalizeMedicos(brutos []map[string]any) []MedicoResumo {
	resumos := make([]MedicoResumo, 0, len(brutos))
	for _, raw := range brutos {
		if r := NormalizeMedico(raw); r.Valido() {
			resumos = append(resumos, r)
		}
	}
	return resumos
}

// NormalizeMedicamentos converts and filters a raw medication list.
func NormalizeMedicamentos(brutos []map[string]any) []MedicamentoResumo {
	resumos := make([]MedicamentoResumo, 0, len(brutos))
	for _, raw := range brutos {
		if r := NormalizeMedicamento(raw); r.Valido() {
			resumos = append(resumos, r)
		}
	}
	return resumos
}
