package viewmodel

import (
	"fmt"
	"time"
)

// PrescricaoLinha is one flattened row of the analytic prescription listing:
// prescription header + medication line + application, denormalized by the
// backend. IDPrescricao repeats across rows of the same prescription.
type PrescricaoLinha struct {
	IDPrescricao int     `json:"id_prescricao"`
	DataIso      string  `json:"data_iso"`
	Horario      *string `json:"horario"`
	Medico       *string `json:"medico"`
	Aplicador    *string `json:"aplicador"`
	VinculadoPor *string `json:"vinculado_por"`
	Cuidador     *string `json:"cuidador"`
	Observacoes  string  `json:"observacoes"`

	IDMedicamentoPrescricao *int    `json:"id_medicamento_prescricao,omitempty"`
	IDMedicamento           *int    `json:"id_medicamento"`
	Posologia               *string `json:"posologia"`

	IDSintetico bool `json:"-"`
}

// Quando returns the row timestamp for date-range filtering.
func (p PrescricaoLinha) Quando() (time.Time, bool) {
	return ParseTimestamp(p.DataIso)
}

// TextoBusca joins the display fields the prescription table filters on.
func (p PrescricaoLinha) TextoBusca() string {
	campos := []*string{p.Medico, p.Aplicador, p.VinculadoPor, p.Cuidador}
	texto := p.Observacoes
	for _, c := range campos {
		texto += " "
		if c != nil {
			texto += *c
		}
	}
	return texto
}

// NormalizePrescricaoLinha maps a raw analytic row to its canonical shape.
//
// The row date prefers the application timestamp; rows without applications
// fall back to the first day of the prescription's month; rows with neither
// get "now" so they still sort somewhere sensible. The cuidador column went
// through several backend renames, hence the long fallback chain.
func NormalizePrescricaoLinha(raw map[string]any) PrescricaoLinha {
	p := PrescricaoLinha{}

	if id, ok := firstInt(raw, "id_prescricao"); ok {
		p.IDPrescricao = id
	} else {
		p.IDPrescricao = sintetizarID()
		p.IDSintetico = true
	}

	aplicacao, _ := firstString(raw, "aplicacao_data_hora")
	if t, ok := ParseTimestamp(aplicacao); ok {
		p.DataIso = FormatISO(t)
		h := t.Format("15:04")
		p.Horario = &h
	} else if t, ok := dataDeMesAno(raw); ok {
		p.DataIso = FormatISO(t)
	} else {
		p.DataIso = FormatISO(time.Now())
	}

	p.Medico = optionalString(raw, "medico_nome")
	p.Aplicador = optionalString(raw, "aplicador")
	p.VinculadoPor = optionalString(raw, "vinculado_por")

	// Ordered by how trustworthy each backend variant proved to be; the
	// registering user (vinculado_por) beats the applier as a last resort.
	if nome, ok := firstNonEmptyString(raw,
		"cuidador_nome", "enfermeiro_nome", "nome_cuidador", "nome_enfermeiro",
		"usuario_nome", "vinculado_por", "aplicador"); ok {
		p.Cuidador = &nome
	}

	nome, _ := firstNonEmptyString(raw, "nome_medicamento")
	posologia, _ := firstNonEmptyString(raw, "posologia")
	p.Observacoes = juntarObservacoes(nome, posologia)

	if id, ok := firstInt(raw, "id_medicamento_prescricao"); ok {
		p.IDMedicamentoPrescricao = &id
	}
	if id, ok := firstInt(raw, "id_medicamento"); ok {
		p.IDMedicamento = &id
	}
	if posologia != "" {
		p.Posologia = &posologia
	}

	return p
}

// dataDeMesAno synthesizes a timestamp at day 1 from the mes/ano columns.
func dataDeMesAno(raw map[string]any) (time.Time, bool) {
	ano, okAno := scalarString(raw["ano"])
	mes, okMes := scalarString(raw["mes"])
	if !okAno || !okMes {
		return time.Time{}, false
	}
	if len(mes) == 1 {
		mes = "0" + mes
	}
	return ParseTimestamp(fmt.Sprintf("%s-%s-01T00:00:00", ano, mes))
}

// juntarObservacoes builds the "<medicamento> — <posologia>" display string,
// omitting whichever part is empty.
func juntarObservacoes(nome, posologia string) string {
	switch {
	case nome != "" && posologia != "":
		return nome + " — " + posologia
	case nome != "":
		return nome
	default:
		return posologia
	}
}

// optionalString returns a pointer to the field when present and non-empty.
func optionalString(raw map[string]any, key string) *string {
	if s, ok := firstNonEmptyString(raw, key); ok {
		return &s
	}
	return nil
}
