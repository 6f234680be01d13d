package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/casadonazulmira/painel-api/cache"
	"github.com/casadonazulmira/painel-api/health"
	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/scheduler"
	"github.com/casadonazulmira/painel-api/upstream"
	"github.com/casadonazulmira/painel-api/viewmodel"
	"github.com/go-chi/chi/v5"
)

// fakeUpstream serves canned pages and records what it was asked
type fakeUpstream struct {
	evolucoes    upstream.PaginaBruta
	prescricoes  upstream.PaginaBruta
	relatorios   upstream.PaginaBruta
	detalhe      map[string]any
	criada       map[string]any
	err          error
	gotAuth      string
	gotParams    upstream.EvolucoesParams
	gotCreate    upstream.EvolucaoCreate
	gotRelCreate upstream.RelatorioCreate
	excluidos    []int
}

func (f *fakeUpstream) ListarEvolucoes(ctx context.Context, auth string, p upstream.EvolucoesParams) (upstream.PaginaBruta, error) {
	f.gotAuth = auth
	f.gotParams = p
	return f.evolucoes, f.err
}

func (f *fakeUpstream) CriarEvolucao(ctx context.Context, auth string, payload upstream.EvolucaoCreate) (map[string]any, error) {
	f.gotAuth = auth
	f.gotCreate = payload
	return f.criada, f.err
}

func (f *fakeUpstream) AtualizarEvolucao(ctx context.Context, auth string, id int, payload upstream.EvolucaoUpdate) (map[string]any, error) {
	return f.criada, f.err
}

func (f *fakeUpstream) ExcluirEvolucao(ctx context.Context, auth string, id int) error {
	f.excluidos = append(f.excluidos, id)
	return f.err
}

func (f *fakeUpstream) ListarPrescricoesAnalitico(ctx context.Context, auth string, idMorador, page, limit int) (upstream.PaginaBruta, error) {
	f.gotAuth = auth
	return f.prescricoes, f.err
}

func (f *fakeUpstream) CriarPrescricaoCompleta(ctx context.Context, auth string, payload map[string]any) (map[string]any, error) {
	return f.criada, f.err
}

func (f *fakeUpstream) AtualizarMedicamentoPrescricao(ctx context.Context, auth string, id int, payload map[string]any) (map[string]any, error) {
	return f.criada, f.err
}

func (f *fakeUpstream) ListarRelatorios(ctx context.Context, auth string, page, limit int) (upstream.PaginaBruta, error) {
	f.gotAuth = auth
	return f.relatorios, f.err
}

func (f *fakeUpstream) ObterRelatorio(ctx context.Context, auth string, id int) (map[string]any, error) {
	return f.detalhe, f.err
}

func (f *fakeUpstream) CriarRelatorio(ctx context.Context, auth string, payload upstream.RelatorioCreate) (map[string]any, error) {
	f.gotRelCreate = payload
	return f.criada, f.err
}

func (f *fakeUpstream) AtualizarRelatorio(ctx context.Context, auth string, id int, payload upstream.RelatorioUpdate) (map[string]any, error) {
	return f.detalhe, f.err
}

func (f *fakeUpstream) ListarMedicos(ctx context.Context, auth string, limit int) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeUpstream) ListarMedicamentos(ctx context.Context, auth string, limit int) ([]map[string]any, error) {
	return nil, nil
}

// fakeCatalogStore serves fixed catalogs
type fakeCatalogStore struct {
	medicos      []viewmodel.MedicoResumo
	brutos       []map[string]any
	medicamentos []viewmodel.MedicamentoResumo
	medBrutos    []map[string]any
	lastUpdated  time.Time
}

func (f *fakeCatalogStore) GetMedicos() []viewmodel.MedicoResumo           { return f.medicos }
func (f *fakeCatalogStore) GetMedicamentos() []viewmodel.MedicamentoResumo { return f.medicamentos }
func (f *fakeCatalogStore) GetMedicosBrutos() []map[string]any             { return f.brutos }
func (f *fakeCatalogStore) GetMedicamentosBrutos() []map[string]any        { return f.medBrutos }

func (f *fakeCatalogStore) GetMedicosMap() map[int]viewmodel.MedicoResumo {
	return make(map[int]viewmodel.MedicoResumo)
}

func (f *fakeCatalogStore) GetMedicamentosMap() map[int]viewmodel.MedicamentoResumo {
	return make(map[int]viewmodel.MedicamentoResumo)
}

func (f *fakeCatalogStore) GetLastUpdated() time.Time                                     { return f.lastUpdated }
func (f *fakeCatalogStore) IsUpdating() bool                                              { return false }
func (f *fakeCatalogStore) GetServerStartTime() time.Time                                 { return time.Now() }
func (f *fakeCatalogStore) UpdateMedicos([]viewmodel.MedicoResumo, []map[string]any)      {}
func (f *fakeCatalogStore) UpdateMedicamentos([]viewmodel.MedicamentoResumo, []map[string]any) {
}
func (f *fakeCatalogStore) BeginUpdate() bool { return true }
func (f *fakeCatalogStore) EndUpdate()        {}

// fakeScheduler records refresh requests
type fakeScheduler struct {
	refreshed int
	err       error
}

func (f *fakeScheduler) Start() error { return nil }
func (f *fakeScheduler) Stop()        {}

func (f *fakeScheduler) RefreshNow(ctx context.Context) error {
	f.refreshed++
	return f.err
}

// memCache is an in-memory ResponseCache for the cache-path tests
type memCache struct {
	entradas map[string][]byte
}

func (m *memCache) Get(ctx context.Context, chave string) ([]byte, bool) {
	v, ok := m.entradas[chave]
	return v, ok
}

func (m *memCache) Set(ctx context.Context, chave string, valor []byte) {
	if m.entradas == nil {
		m.entradas = make(map[string][]byte)
	}
	m.entradas[chave] = valor
}

func (m *memCache) Enabled() bool { return true }

type ambiente struct {
	upstream *fakeUpstream
	store    *fakeCatalogStore
	agenda   *fakeScheduler
	router   *chi.Mux
}

func novoAmbiente(t *testing.T, respCache interfaces.ResponseCache) *ambiente {
	t.Helper()
	logging.InitLogger("")

	up := &fakeUpstream{}
	store := &fakeCatalogStore{lastUpdated: time.Now()}
	agenda := &fakeScheduler{}
	if respCache == nil {
		respCache = cache.New("", "", time.Minute)
	}

	h := NewHTTPHandler(up, store, respCache, health.NewHealthChecker(store, 15*time.Minute), agenda)

	r := chi.NewRouter()
	r.Get("/api/moradores/{id}/evolucoes", h.ListEvolucoes)
	r.Post("/api/moradores/{id}/evolucoes", h.CreateEvolucao)
	r.Patch("/api/evolucoes/{id}", h.UpdateEvolucao)
	r.Delete("/api/evolucoes/{id}", h.DeleteEvolucao)
	r.Get("/api/moradores/{id}/prescricoes", h.ListPrescricoes)
	r.Post("/api/prescricoes", h.CreatePrescricao)
	r.Patch("/api/medicamentos-prescricao/{id}", h.UpdateMedicamentoPrescricao)
	r.Get("/api/relatorios", h.ListRelatorios)
	r.Get("/api/relatorios/{id}", h.GetRelatorio)
	r.Post("/api/relatorios", h.CreateRelatorio)
	r.Patch("/api/relatorios/{id}", h.UpdateRelatorio)
	r.Get("/api/catalogos/medicos", h.ListMedicos)
	r.Get("/api/catalogos/medicamentos", h.ListMedicamentos)
	r.Post("/api/catalogos/refresh", h.RefreshCatalogos)
	r.Get("/health", h.HealthCheck)

	return &ambiente{upstream: up, store: store, agenda: agenda, router: r}
}

func (a *ambiente) requisitar(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer token-de-teste")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestListEvolucoes(t *testing.T) {
	total := 37
	amb := novoAmbiente(t, nil)
	amb.upstream.evolucoes = upstream.PaginaBruta{
		Itens: []map[string]any{
			{"id_evolucao": float64(9), "data": "2025-03-10T08:30:00Z", "descricao": "Passou bem a noite", "usuario_nome": "Ana Souza"},
		},
		Total: &total,
	}

	rec := amb.requisitar(t, "GET", "/api/moradores/3/evolucoes?page=2&limit=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if amb.upstream.gotAuth != "Bearer token-de-teste" {
		t.Errorf("authorization not forwarded: %q", amb.upstream.gotAuth)
	}
	if amb.upstream.gotParams.IDMorador != 3 || amb.upstream.gotParams.Page != 2 {
		t.Errorf("params = %+v", amb.upstream.gotParams)
	}

	var resp struct {
		Data     []viewmodel.EvolucaoIndividual `json:"data"`
		Page     int                            `json:"page"`
		Limit    int                            `json:"limit"`
		Total    int                            `json:"total"`
		LastPage int                            `json:"lastPage"`
		Paginas  []json.RawMessage              `json:"paginas"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.Data) != 1 || resp.Data[0].ID != 9 || resp.Data[0].Observacoes != "Passou bem a noite" {
		t.Errorf("data = %+v", resp.Data)
	}
	if resp.Data[0].Autor != "Ana Souza" {
		t.Errorf("Autor = %q", resp.Data[0].Autor)
	}
	if resp.Total != 37 || resp.LastPage != 4 {
		t.Errorf("total = %d, lastPage = %d, want 37 and 4", resp.Total, resp.LastPage)
	}
	if len(resp.Paginas) == 0 {
		t.Error("paginas should carry the page-button model")
	}
}

func TestListEvolucoesInvalidParams(t *testing.T) {
	amb := novoAmbiente(t, nil)

	casos := []string{
		"/api/moradores/abc/evolucoes",
		"/api/moradores/3/evolucoes?page=0",
		"/api/moradores/3/evolucoes?limit=9999",
		"/api/moradores/3/evolucoes?data_inicio=31/01/2025",
	}
	for _, alvo := range casos {
		if rec := amb.requisitar(t, "GET", alvo, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", alvo, rec.Code)
		}
	}
}

func TestCreateEvolucao(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.upstream.criada = map[string]any{
		"id_evolucao_individual": float64(55),
		"data_hora":              "2025-03-10T08:30:00Z",
		"observacoes":            "Paciente alimentou-se bem",
	}

	rec := amb.requisitar(t, "POST", "/api/moradores/3/evolucoes", `{"observacoes":"Paciente alimentou-se bem"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if amb.upstream.gotCreate.IDMorador != 3 {
		t.Errorf("id_morador = %d", amb.upstream.gotCreate.IDMorador)
	}

	var criada viewmodel.EvolucaoIndividual
	if err := json.Unmarshal(rec.Body.Bytes(), &criada); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if criada.ID != 55 {
		t.Errorf("ID = %d, want the upstream id", criada.ID)
	}
}

func TestCreateEvolucaoShortObservacoes(t *testing.T) {
	amb := novoAmbiente(t, nil)

	rec := amb.requisitar(t, "POST", "/api/moradores/3/evolucoes", `{"observacoes":"curta"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pelo menos 10") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDeleteEvolucao(t *testing.T) {
	amb := novoAmbiente(t, nil)

	rec := amb.requisitar(t, "DELETE", "/api/evolucoes/12", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(amb.upstream.excluidos) != 1 || amb.upstream.excluidos[0] != 12 {
		t.Errorf("excluidos = %v", amb.upstream.excluidos)
	}
}

func TestListPrescricoesRefinaTexto(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.upstream.prescricoes = upstream.PaginaBruta{
		Itens: []map[string]any{
			{"id_prescricao": float64(1), "nome_medicamento": "Dipirona", "posologia": "8/8h", "aplicacao_data_hora": "2025-03-01T08:00:00Z"},
			{"id_prescricao": float64(2), "nome_medicamento": "Losartana", "posologia": "1x dia", "aplicacao_data_hora": "2025-03-01T09:00:00Z"},
		},
	}

	rec := amb.requisitar(t, "GET", "/api/moradores/3/prescricoes?texto=dipirona", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []viewmodel.PrescricaoLinha `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].IDPrescricao != 1 {
		t.Errorf("data = %+v, want only the Dipirona row", resp.Data)
	}
}

func TestCreateRelatorioSemEvolucoes(t *testing.T) {
	amb := novoAmbiente(t, nil)

	rec := amb.requisitar(t, "POST", "/api/relatorios", `{"observacoes":"Resumo geral do dia de hoje","ids_evolucoes":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpstreamErrorPassthrough(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.upstream.err = &upstream.APIError{Status: 404, Mensagem: "relatório não encontrado"}

	rec := amb.requisitar(t, "GET", "/api/relatorios/9", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want upstream 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "relatório não encontrado") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpstreamTransportFailureIs502(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.upstream.err = &upstream.APIError{Status: 0, Mensagem: "não foi possível contatar o servidor"}

	rec := amb.requisitar(t, "GET", "/api/moradores/3/evolucoes", "")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestListMedicosBuscaBooleana(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.store.medicos = []viewmodel.MedicoResumo{
		{ID: 1, Nome: "Dra. Vera"},
		{ID: 2, Nome: "Dr. Hélio"},
	}
	amb.store.brutos = []map[string]any{
		{"id_medico": float64(1), "nome_completo": "Dra. Vera", "ativo": true},
		{"id_medico": float64(2), "nome_completo": "Dr. Hélio", "ativo": false},
	}

	rec := amb.requisitar(t, "GET", "/api/catalogos/medicos?busca=ativo", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data  []viewmodel.MedicoResumo `json:"data"`
		Total int                      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].ID != 1 {
		t.Errorf("busca=ativo should keep only the active physician: %+v", resp)
	}

	// Negative keyword selects the inactive one
	rec = amb.requisitar(t, "GET", "/api/catalogos/medicos?busca=inativo", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].ID != 2 {
		t.Errorf("busca=inativo should keep only the inactive physician: %+v", resp)
	}
}

func TestListMedicamentosPaginacao(t *testing.T) {
	amb := novoAmbiente(t, nil)
	for i := 1; i <= 25; i++ {
		amb.store.medicamentos = append(amb.store.medicamentos, viewmodel.MedicamentoResumo{ID: i, Nome: "Remédio"})
		amb.store.medBrutos = append(amb.store.medBrutos, map[string]any{"id_medicamento": float64(i)})
	}

	rec := amb.requisitar(t, "GET", "/api/catalogos/medicamentos?page=3&limit=10", "")

	var resp struct {
		Data     []viewmodel.MedicamentoResumo `json:"data"`
		Total    int                           `json:"total"`
		LastPage int                           `json:"lastPage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 25 || resp.LastPage != 3 {
		t.Errorf("total = %d, lastPage = %d", resp.Total, resp.LastPage)
	}
	if len(resp.Data) != 5 || resp.Data[0].ID != 21 {
		t.Errorf("page 3 = %+v, want ids 21..25", resp.Data)
	}
}

func TestRefreshCatalogos(t *testing.T) {
	amb := novoAmbiente(t, nil)

	rec := amb.requisitar(t, "POST", "/api/catalogos/refresh", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if amb.agenda.refreshed != 1 {
		t.Errorf("refreshed = %d, want 1", amb.agenda.refreshed)
	}
}

func TestRefreshCatalogosEmAndamento(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.agenda.err = scheduler.ErrRefreshEmAndamento

	rec := amb.requisitar(t, "POST", "/api/catalogos/refresh", "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 while a refresh is running", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "em andamento") {
		t.Errorf("body should explain the running refresh, got: %s", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	amb := novoAmbiente(t, nil)
	amb.store.medicos = []viewmodel.MedicoResumo{{ID: 1, Nome: "Dra. Vera"}}

	rec := amb.requisitar(t, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %v", resp["status"])
	}
}

func TestListaServidaDoCache(t *testing.T) {
	mc := &memCache{}
	amb := novoAmbiente(t, mc)
	amb.upstream.relatorios = upstream.PaginaBruta{Itens: []map[string]any{
		{"id_relatorio": float64(1), "observacoes": "Dia tranquilo na casa"},
	}}

	primeira := amb.requisitar(t, "GET", "/api/relatorios?page=1&limit=10", "")
	if primeira.Code != http.StatusOK || primeira.Header().Get("X-Cache") == "HIT" {
		t.Fatalf("first request should miss the cache: %d %q", primeira.Code, primeira.Header().Get("X-Cache"))
	}

	segunda := amb.requisitar(t, "GET", "/api/relatorios?page=1&limit=10", "")
	if segunda.Code != http.StatusOK || segunda.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request should hit the cache: %d %q", segunda.Code, segunda.Header().Get("X-Cache"))
	}
	if primeira.Body.String() != segunda.Body.String() {
		t.Error("cached body should match the original response")
	}
}
