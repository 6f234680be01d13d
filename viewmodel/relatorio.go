package viewmodel

import "time"

// RelatorioDiarioGeral is the canonical shape of a daily general report:
// an aggregate note referencing the evolution notes of a given day.
type RelatorioDiarioGeral struct {
	ID          int                  `json:"id_relatorio_diario_geral"`
	DataHora    string               `json:"data_hora"`
	Observacoes string               `json:"observacoes"`
	Autor       string               `json:"autor,omitempty"`
	Evolucoes   []EvolucaoIndividual `json:"evolucoes"`

	IDSintetico bool `json:"-"`
}

// Quando returns the report timestamp for date-range filtering.
func (r RelatorioDiarioGeral) Quando() (time.Time, bool) {
	return ParseTimestamp(r.DataHora)
}

// TextoBusca joins the display fields the report table filters on.
func (r RelatorioDiarioGeral) TextoBusca() string {
	return r.Observacoes + " " + r.Autor
}

// NormalizeRelatorio maps a raw daily-report record to its canonical shape.
// Linked evolution notes arrive either as the modern N:N list
// (evolucoes: [{evolucao: {...}}, ...]) or as the legacy single embedded
// object (evolucaoindividual); both are accepted, the modern list wins.
func NormalizeRelatorio(raw map[string]any) RelatorioDiarioGeral {
	r := RelatorioDiarioGeral{}

	if id, ok := firstInt(raw, "id_relatorio_diario_geral", "id_relatorio", "id"); ok {
		r.ID = id
	} else {
		r.ID = sintetizarID()
		r.IDSintetico = true
	}

	dataRaw, _ := firstString(raw, "data_hora", "data", "criado_em")
	if t, ok := ParseTimestamp(dataRaw); ok {
		r.DataHora = FormatISO(t)
	} else {
		r.DataHora = FormatISO(time.Now())
	}

	r.Observacoes, _ = firstString(raw, "observacoes", "descricao", "observacao")
	r.Autor = resolveAutor(raw)
	r.Evolucoes = normalizeEvolucoesVinculadas(raw)

	return r
}

// normalizeEvolucoesVinculadas resolves the linked notes of a report.
func normalizeEvolucoesVinculadas(raw map[string]any) []EvolucaoIndividual {
	evolucoes := []EvolucaoIndividual{}

	if lista, ok := raw["evolucoes"].([]any); ok {
		for _, item := range lista {
			wrap, ok := asMap(item)
			if !ok {
				continue
			}
			// Modern rows wrap the note under an "evolucao" key; tolerate
			// rows that embed the note directly.
			if ev, ok := asMap(wrap["evolucao"]); ok {
				evolucoes = append(evolucoes, NormalizeEvolucao(ev))
			} else {
				evolucoes = append(evolucoes, NormalizeEvolucao(wrap))
			}
		}
	}

	if len(evolucoes) == 0 {
		if legado, ok := asMap(raw["evolucaoindividual"]); ok {
			evolucoes = append(evolucoes, NormalizeEvolucao(legado))
		}
	}

	return evolucoes
}
