// Package handlers: resident-facing endpoints. Evolution notes, prescription
// rows and daily general reports all follow the same pipeline: validate at
// the edge, fetch the raw upstream page, normalize every record, refine
// client-side filters over the normalized page, and answer with the standard
// list shape.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/casadonazulmira/painel-api/listview"
	"github.com/casadonazulmira/painel-api/upstream"
	"github.com/casadonazulmira/painel-api/validation"
	"github.com/casadonazulmira/painel-api/viewmodel"
	"github.com/go-chi/chi/v5"
)

// maxBodySize caps write-request bodies.
const maxBodySize = 1 << 20

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(dst)
}

// idDaRota validates the integer route parameter named nome.
func idDaRota(r *http.Request, nome string) (int, error) {
	return validation.ValidateID(chi.URLParam(r, nome))
}

// ListEvolucoes serves one page of a resident's evolution notes. The
// observacoes and date filters are forwarded upstream; normalization and
// pagination math happen here.
func (h *HTTPHandlerImpl) ListEvolucoes(w http.ResponseWriter, r *http.Request) {
	idMorador, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, limit, err := paginacaoDaConsulta(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	consulta := r.URL.Query()
	for _, param := range []string{"data_inicio", "data_fim"} {
		if err := validation.ValidateData(consulta.Get(param)); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validation.ValidateBusca(consulta.Get("observacoes")); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	chave, servido := h.servirDoCache(w, r)
	if servido {
		return
	}

	pagina, err := h.upstream.ListarEvolucoes(r.Context(), autorizacao(r), upstream.EvolucoesParams{
		IDMorador:   idMorador,
		Page:        page,
		Limit:       limit,
		Observacoes: consulta.Get("observacoes"),
		DataInicio:  consulta.Get("data_inicio"),
		DataFim:     consulta.Get("data_fim"),
	})
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	evolucoes := make([]viewmodel.EvolucaoIndividual, 0, len(pagina.Itens))
	for _, raw := range pagina.Itens {
		evolucoes = append(evolucoes, viewmodel.NormalizeEvolucao(raw))
	}

	total := len(evolucoes)
	if pagina.Total != nil {
		total = *pagina.Total
	}
	lastPage := listview.DerivePaging(total, limit, pagina.UltimaPagina)

	h.responderLista(w, r, chave, novaListaResposta(evolucoes, page, limit, total, lastPage))
}

// CreateEvolucao validates and forwards a new evolution note.
func (h *HTTPHandlerImpl) CreateEvolucao(w http.ResponseWriter, r *http.Request) {
	idMorador, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var corpo struct {
		Observacoes string `json:"observacoes"`
		DataHora    string `json:"data_hora"`
	}
	if err := decodeBody(r, &corpo); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := validation.ValidateObservacoes(corpo.Observacoes); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	criada, err := h.upstream.CriarEvolucao(r.Context(), autorizacao(r), upstream.EvolucaoCreate{
		IDMorador:   idMorador,
		Observacoes: corpo.Observacoes,
		DataHora:    corpo.DataHora,
	})
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, viewmodel.NormalizeEvolucao(criada))
}

// UpdateEvolucao validates and forwards a partial update of a note.
func (h *HTTPHandlerImpl) UpdateEvolucao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var corpo struct {
		Observacoes *string `json:"observacoes"`
		DataHora    *string `json:"data_hora"`
	}
	if err := decodeBody(r, &corpo); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if corpo.Observacoes == nil && corpo.DataHora == nil {
		h.RespondWithError(w, http.StatusBadRequest, "nada para atualizar")
		return
	}
	if corpo.Observacoes != nil {
		if err := validation.ValidateObservacoes(*corpo.Observacoes); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	atualizada, err := h.upstream.AtualizarEvolucao(r.Context(), autorizacao(r), id, upstream.EvolucaoUpdate{
		Observacoes: corpo.Observacoes,
		DataHora:    corpo.DataHora,
	})
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, viewmodel.NormalizeEvolucao(atualizada))
}

// DeleteEvolucao forwards a note deletion.
func (h *HTTPHandlerImpl) DeleteEvolucao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.upstream.ExcluirEvolucao(r.Context(), autorizacao(r), id); err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "evolução excluída"})
}

// ListPrescricoes serves one page of a resident's prescription rows. The
// backend route has no filters, so texto and date bounds refine the
// normalized page here before it goes out.
func (h *HTTPHandlerImpl) ListPrescricoes(w http.ResponseWriter, r *http.Request) {
	idMorador, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, limit, err := paginacaoDaConsulta(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	consulta := r.URL.Query()
	for _, param := range []string{"data_inicio", "data_fim"} {
		if err := validation.ValidateData(consulta.Get(param)); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validation.ValidateBusca(consulta.Get("texto")); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	chave, servido := h.servirDoCache(w, r)
	if servido {
		return
	}

	pagina, err := h.upstream.ListarPrescricoesAnalitico(r.Context(), autorizacao(r), idMorador, page, limit)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	linhas := make([]viewmodel.PrescricaoLinha, 0, len(pagina.Itens))
	for _, raw := range pagina.Itens {
		linhas = append(linhas, viewmodel.NormalizePrescricaoLinha(raw))
	}

	criterio := listview.CriterioDeParams(consulta.Get("texto"), consulta.Get("data_inicio"), consulta.Get("data_fim"))
	linhas = listview.Filtrar(linhas, criterio,
		viewmodel.PrescricaoLinha.TextoBusca,
		viewmodel.PrescricaoLinha.Quando)

	total := len(linhas)
	if pagina.Total != nil {
		total = *pagina.Total
	}
	lastPage := listview.DerivePaging(total, limit, pagina.UltimaPagina)

	h.responderLista(w, r, chave, novaListaResposta(linhas, page, limit, total, lastPage))
}

// CreatePrescricao forwards a full prescription payload (header plus items).
func (h *HTTPHandlerImpl) CreatePrescricao(w http.ResponseWriter, r *http.Request) {
	var corpo map[string]any
	if err := decodeBody(r, &corpo); err != nil || len(corpo) == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	criada, err := h.upstream.CriarPrescricaoCompleta(r.Context(), autorizacao(r), corpo)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, criada)
}

// UpdateMedicamentoPrescricao forwards a prescription-item update.
func (h *HTTPHandlerImpl) UpdateMedicamentoPrescricao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var corpo map[string]any
	if err := decodeBody(r, &corpo); err != nil || len(corpo) == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	atualizado, err := h.upstream.AtualizarMedicamentoPrescricao(r.Context(), autorizacao(r), id, corpo)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, atualizado)
}

// ListRelatorios serves one page of daily general reports with client-side
// busca and date refinement over the normalized page.
func (h *HTTPHandlerImpl) ListRelatorios(w http.ResponseWriter, r *http.Request) {
	page, limit, err := paginacaoDaConsulta(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	consulta := r.URL.Query()
	for _, param := range []string{"data_inicio", "data_fim"} {
		if err := validation.ValidateData(consulta.Get(param)); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validation.ValidateBusca(consulta.Get("busca")); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	chave, servido := h.servirDoCache(w, r)
	if servido {
		return
	}

	pagina, err := h.upstream.ListarRelatorios(r.Context(), autorizacao(r), page, limit)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	relatorios := make([]viewmodel.RelatorioDiarioGeral, 0, len(pagina.Itens))
	for _, raw := range pagina.Itens {
		relatorios = append(relatorios, viewmodel.NormalizeRelatorio(raw))
	}

	criterio := listview.CriterioDeParams(consulta.Get("busca"), consulta.Get("data_inicio"), consulta.Get("data_fim"))
	relatorios = listview.Filtrar(relatorios, criterio,
		viewmodel.RelatorioDiarioGeral.TextoBusca,
		viewmodel.RelatorioDiarioGeral.Quando)

	total := len(relatorios)
	if pagina.Total != nil {
		total = *pagina.Total
	}
	lastPage := listview.DerivePaging(total, limit, pagina.UltimaPagina)

	h.responderLista(w, r, chave, novaListaResposta(relatorios, page, limit, total, lastPage))
}

// GetRelatorio serves one report with its linked evolution notes.
func (h *HTTPHandlerImpl) GetRelatorio(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.upstream.ObterRelatorio(r.Context(), autorizacao(r), id)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, viewmodel.NormalizeRelatorio(raw))
}

// CreateRelatorio validates and forwards a new daily general report.
func (h *HTTPHandlerImpl) CreateRelatorio(w http.ResponseWriter, r *http.Request) {
	var corpo struct {
		Observacoes  string `json:"observacoes"`
		IDsEvolucoes []int  `json:"ids_evolucoes"`
		DataHora     string `json:"data_hora"`
	}
	if err := decodeBody(r, &corpo); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := validation.ValidateObservacoes(corpo.Observacoes); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(corpo.IDsEvolucoes) == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "selecione ao menos uma evolução")
		return
	}

	criado, err := h.upstream.CriarRelatorio(r.Context(), autorizacao(r), upstream.RelatorioCreate{
		Observacoes:  corpo.Observacoes,
		IDsEvolucoes: corpo.IDsEvolucoes,
		DataHora:     corpo.DataHora,
	})
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, viewmodel.NormalizeRelatorio(criado))
}

// UpdateRelatorio validates and forwards a report update.
func (h *HTTPHandlerImpl) UpdateRelatorio(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var corpo struct {
		Observacoes  *string `json:"observacoes"`
		IDsEvolucoes []int   `json:"ids_evolucoes"`
		DataHora     *string `json:"data_hora"`
	}
	if err := decodeBody(r, &corpo); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if corpo.Observacoes == nil && corpo.IDsEvolucoes == nil && corpo.DataHora == nil {
		h.RespondWithError(w, http.StatusBadRequest, "nada para atualizar")
		return
	}
	if corpo.Observacoes != nil {
		if err := validation.ValidateObservacoes(*corpo.Observacoes); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	atualizado, err := h.upstream.AtualizarRelatorio(r.Context(), autorizacao(r), id, upstream.RelatorioUpdate{
		Observacoes:  corpo.Observacoes,
		IDsEvolucoes: corpo.IDsEvolucoes,
		DataHora:     corpo.DataHora,
	})
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, viewmodel.NormalizeRelatorio(atualizado))
}
