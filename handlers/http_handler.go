// Package handlers provides HTTP request handlers for the panel gateway.
// This file implements the HTTPHandler interface with dependency injection,
// plus the response helpers and the catalog and health endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/casadonazulmira/painel-api/cache"
	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/listview"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/scheduler"
	"github.com/casadonazulmira/painel-api/search"
	"github.com/casadonazulmira/painel-api/upstream"
	"github.com/casadonazulmira/painel-api/validation"
)

// Compile-time checks: the concrete types satisfy the contracts
var (
	_ interfaces.HTTPHandler    = (*HTTPHandlerImpl)(nil)
	_ interfaces.UpstreamClient = (*upstream.Client)(nil)
)

// DefaultLimit is the page size used when the caller does not send one.
const DefaultLimit = 20

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	upstream  interfaces.UpstreamClient
	catalogos interfaces.CatalogStore
	cache     interfaces.ResponseCache
	health    interfaces.HealthChecker
	agendador interfaces.Scheduler
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	client interfaces.UpstreamClient,
	catalogos interfaces.CatalogStore,
	respCache interfaces.ResponseCache,
	healthChecker interfaces.HealthChecker,
	agendador interfaces.Scheduler,
) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		upstream:  client,
		catalogos: catalogos,
		cache:     respCache,
		health:    healthChecker,
		agendador: agendador,
	}
}

// listaResposta is the wire shape of every list endpoint. Paginas carries the
// ready-to-render page-button model so the UI never recomputes it.
type listaResposta struct {
	Data     any                 `json:"data"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	Total    int                 `json:"total"`
	LastPage int                 `json:"lastPage"`
	Paginas  []listview.PageItem `json:"paginas"`
}

func novaListaResposta(data any, page, limit, total, lastPage int) listaResposta {
	return listaResposta{
		Data:     data,
		Page:     page,
		Limit:    limit,
		Total:    total,
		LastPage: lastPage,
		Paginas:  listview.PaginationItems(page, lastPage),
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondUpstreamError maps an upstream failure onto the gateway response.
// Backend statuses pass through; transport failures become 502.
func (h *HTTPHandlerImpl) respondUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Status
		if code == 0 {
			code = http.StatusBadGateway
		}
		h.RespondWithError(w, code, apiErr.Mensagem)
		return
	}
	h.RespondWithError(w, http.StatusBadGateway, "erro ao contatar o servidor")
}

// autorizacao returns the caller's Authorization header, forwarded verbatim.
// The route middleware already guaranteed it is present.
func autorizacao(r *http.Request) string {
	return r.Header.Get("Authorization")
}

// servirDoCache answers a list request from the response cache when possible.
// Returns true when the response was served.
func (h *HTTPHandlerImpl) servirDoCache(w http.ResponseWriter, r *http.Request) (string, bool) {
	chave := cache.Chave(r.URL.Path, r.URL.RawQuery, autorizacao(r))
	if corpo, ok := h.cache.Get(r.Context(), chave); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write(corpo)
		return chave, true
	}
	return chave, false
}

// responderLista writes a list response and stores it in the cache.
func (h *HTTPHandlerImpl) responderLista(w http.ResponseWriter, r *http.Request, chave string, resposta listaResposta) {
	corpo, err := json.Marshal(resposta)
	if err != nil {
		logging.Error("Failed to marshal list response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.cache.Set(r.Context(), chave, corpo)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(corpo)
}

// paginacaoDaConsulta parses and validates the page and limit parameters.
func paginacaoDaConsulta(r *http.Request) (page, limit int, err error) {
	page, err = validation.ValidatePage(r.URL.Query().Get("page"))
	if err != nil {
		return 0, 0, err
	}
	limit, err = validation.ValidateLimit(r.URL.Query().Get("limit"), DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// filtrarCatalogo applies the boolean-aware matcher over the raw records and
// keeps the index-aligned summaries of the matches. An empty term keeps all.
func filtrarCatalogo[T any](resumos []T, brutos []map[string]any, busca string) []T {
	if busca == "" {
		return resumos
	}
	selecionados := make([]T, 0)
	for i, raw := range brutos {
		if i < len(resumos) && search.ItemMatches(raw, busca) {
			selecionados = append(selecionados, resumos[i])
		}
	}
	return selecionados
}

// ListMedicos serves the physician catalog with boolean-aware search.
func (h *HTTPHandlerImpl) ListMedicos(w http.ResponseWriter, r *http.Request) {
	busca, page, limit, ok := h.parametrosDeCatalogo(w, r)
	if !ok {
		return
	}

	chave, servido := h.servirDoCache(w, r)
	if servido {
		return
	}

	selecionados := filtrarCatalogo(h.catalogos.GetMedicos(), h.catalogos.GetMedicosBrutos(), busca)
	total := len(selecionados)
	lastPage := listview.DerivePaging(total, limit, nil)
	janela := listview.SliceForPage(total, page, limit)

	h.responderLista(w, r, chave, novaListaResposta(selecionados[janela.Start:janela.End], page, limit, total, lastPage))
}

// ListMedicamentos serves the medication catalog with boolean-aware search.
func (h *HTTPHandlerImpl) ListMedicamentos(w http.ResponseWriter, r *http.Request) {
	busca, page, limit, ok := h.parametrosDeCatalogo(w, r)
	if !ok {
		return
	}

	chave, servido := h.servirDoCache(w, r)
	if servido {
		return
	}

	selecionados := filtrarCatalogo(h.catalogos.GetMedicamentos(), h.catalogos.GetMedicamentosBrutos(), busca)
	total := len(selecionados)
	lastPage := listview.DerivePaging(total, limit, nil)
	janela := listview.SliceForPage(total, page, limit)

	h.responderLista(w, r, chave, novaListaResposta(selecionados[janela.Start:janela.End], page, limit, total, lastPage))
}

// parametrosDeCatalogo validates the shared catalog query parameters.
func (h *HTTPHandlerImpl) parametrosDeCatalogo(w http.ResponseWriter, r *http.Request) (busca string, page, limit int, ok bool) {
	busca = r.URL.Query().Get("busca")
	if err := validation.ValidateBusca(busca); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", 0, 0, false
	}

	page, limit, err := paginacaoDaConsulta(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", 0, 0, false
	}
	return busca, page, limit, true
}

// RefreshCatalogos triggers an immediate catalog refresh. A refresh already
// in progress answers 409 so callers know nothing new was loaded.
func (h *HTTPHandlerImpl) RefreshCatalogos(w http.ResponseWriter, r *http.Request) {
	if err := h.agendador.RefreshNow(r.Context()); err != nil {
		if errors.Is(err, scheduler.ErrRefreshEmAndamento) {
			h.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		logging.Error("Manual catalog refresh failed", "error", err)
		h.RespondWithError(w, http.StatusBadGateway, "não foi possível atualizar os catálogos")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":      "catálogos atualizados",
		"medicos":      len(h.catalogos.GetMedicos()),
		"medicamentos": len(h.catalogos.GetMedicamentos()),
	})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	response := map[string]any{
		"status":      status,
		"next_update": h.health.CalculateNextUpdate().Format(time.RFC3339),
	}
	for k, v := range data {
		response[k] = v
	}

	h.RespondWithJSON(w, httpStatus, response)
}
