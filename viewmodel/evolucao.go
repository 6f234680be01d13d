package viewmodel

import "time"

// EvolucaoIndividual is the canonical shape of a resident evolution note.
type EvolucaoIndividual struct {
	ID          int    `json:"id_evolucao_individual"`
	DataHora    string `json:"data_hora"`
	Observacoes string `json:"observacoes"`
	IDUsuario   int    `json:"id_usuario,omitempty"`
	Autor       string `json:"autor,omitempty"`

	// IDSintetico marks IDs invented during normalization. They keep table
	// keys unique but must never be used on mutation requests.
	IDSintetico bool `json:"-"`
}

// Quando returns the note timestamp for date-range filtering.
func (e EvolucaoIndividual) Quando() (time.Time, bool) {
	return ParseTimestamp(e.DataHora)
}

// TextoBusca returns the display fields joined for client-side text filtering.
func (e EvolucaoIndividual) TextoBusca() string {
	return e.Observacoes + " " + e.Autor
}

// NormalizeEvolucao maps a raw evolution-note record to its canonical shape.
// Field name variants accumulated across backend revisions are tried in
// order; anything missing degrades to a default instead of failing.
func NormalizeEvolucao(raw map[string]any) EvolucaoIndividual {
	e := EvolucaoIndividual{}

	if id, ok := firstInt(raw, "id_evolucao_individual", "id_evolucao", "id"); ok {
		e.ID = id
	} else {
		e.ID = sintetizarID()
		e.IDSintetico = true
	}

	dataRaw, _ := firstString(raw, "data_hora", "data", "data_evolucao", "criado_em")
	if t, ok := ParseTimestamp(dataRaw); ok {
		e.DataHora = FormatISO(t)
	} else {
		e.DataHora = FormatISO(time.Now())
	}

	e.Observacoes, _ = firstString(raw, "observacoes", "descricao", "observacao")
	e.Autor = resolveAutor(raw)
	e.IDUsuario, _ = firstInt(raw, "id_usuario")

	return e
}
