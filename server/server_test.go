package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casadonazulmira/painel-api/config"
	"github.com/casadonazulmira/painel-api/logging"
)

// stubHandler records which handler the router dispatched to
type stubHandler struct {
	chamado string
}

func (s *stubHandler) marcar(nome string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.chamado = nome
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stubHandler) ListEvolucoes(w http.ResponseWriter, r *http.Request) {
	s.marcar("ListEvolucoes")(w, r)
}
func (s *stubHandler) CreateEvolucao(w http.ResponseWriter, r *http.Request) {
	s.marcar("CreateEvolucao")(w, r)
}
func (s *stubHandler) UpdateEvolucao(w http.ResponseWriter, r *http.Request) {
	s.marcar("UpdateEvolucao")(w, r)
}
func (s *stubHandler) DeleteEvolucao(w http.ResponseWriter, r *http.Request) {
	s.marcar("DeleteEvolucao")(w, r)
}
func (s *stubHandler) ListPrescricoes(w http.ResponseWriter, r *http.Request) {
	s.marcar("ListPrescricoes")(w, r)
}
func (s *stubHandler) CreatePrescricao(w http.ResponseWriter, r *http.Request) {
	s.marcar("CreatePrescricao")(w, r)
}
func (s *stubHandler) UpdateMedicamentoPrescricao(w http.ResponseWriter, r *http.Request) {
	s.marcar("UpdateMedicamentoPrescricao")(w, r)
}
func (s *stubHandler) ListRelatorios(w http.ResponseWriter, r *http.Request) {
	s.marcar("ListRelatorios")(w, r)
}
func (s *stubHandler) GetRelatorio(w http.ResponseWriter, r *http.Request) {
	s.marcar("GetRelatorio")(w, r)
}
func (s *stubHandler) CreateRelatorio(w http.ResponseWriter, r *http.Request) {
	s.marcar("CreateRelatorio")(w, r)
}
func (s *stubHandler) UpdateRelatorio(w http.ResponseWriter, r *http.Request) {
	s.marcar("UpdateRelatorio")(w, r)
}
func (s *stubHandler) ListMedicos(w http.ResponseWriter, r *http.Request) {
	s.marcar("ListMedicos")(w, r)
}
func (s *stubHandler) ListMedicamentos(w http.ResponseWriter, r *http.Request) {
	s.marcar("ListMedicamentos")(w, r)
}
func (s *stubHandler) RefreshCatalogos(w http.ResponseWriter, r *http.Request) {
	s.marcar("RefreshCatalogos")(w, r)
}
func (s *stubHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.marcar("HealthCheck")(w, r)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8002",
		Address:         "127.0.0.1",
		Env:             "test",
		LogLevel:        "error",
		MaxRequestBody:  1048576,
		MaxHeaderSize:   1048576,
		UpstreamBaseURL: "http://localhost:3333",
		UpstreamTimeout: 5 * time.Second,
		CatalogRefresh:  15 * time.Minute,
		CacheTTL:        time.Minute,
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
}

func newTestServer(t *testing.T) (*Server, *stubHandler) {
	t.Helper()
	if logging.Default == nil {
		logging.InitLogger(t.TempDir())
	}
	handler := &stubHandler{}
	return NewServer(testConfig(), handler), handler
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t)

	if srv.server.Addr != "127.0.0.1:8002" {
		t.Errorf("Addr = %s, want 127.0.0.1:8002", srv.server.Addr)
	}
	if srv.server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", srv.server.ReadTimeout)
	}
}

func TestAPIRoutesRequireAuthorization(t *testing.T) {
	srv, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/relatorios", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without Authorization", rec.Code)
	}
	if handler.chamado != "" {
		t.Errorf("handler %s was reached without authorization", handler.chamado)
	}
}

func TestRouteDispatch(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/api/moradores/3/evolucoes", "ListEvolucoes"},
		{"POST", "/api/moradores/3/evolucoes", "CreateEvolucao"},
		{"PATCH", "/api/evolucoes/7", "UpdateEvolucao"},
		{"DELETE", "/api/evolucoes/7", "DeleteEvolucao"},
		{"GET", "/api/moradores/3/prescricoes", "ListPrescricoes"},
		{"POST", "/api/prescricoes", "CreatePrescricao"},
		{"PATCH", "/api/medicamentos-prescricao/5", "UpdateMedicamentoPrescricao"},
		{"GET", "/api/relatorios", "ListRelatorios"},
		{"GET", "/api/relatorios/2", "GetRelatorio"},
		{"POST", "/api/relatorios", "CreateRelatorio"},
		{"PATCH", "/api/relatorios/2", "UpdateRelatorio"},
		{"GET", "/api/catalogos/medicos", "ListMedicos"},
		{"GET", "/api/catalogos/medicamentos", "ListMedicamentos"},
		{"POST", "/api/catalogos/refresh", "RefreshCatalogos"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			srv, handler := newTestServer(t)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer token-de-teste")
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if handler.chamado != tt.want {
				t.Errorf("dispatched to %q, want %q", handler.chamado, tt.want)
			}
		})
	}
}

func TestHealthDoesNotRequireAuthorization(t *testing.T) {
	srv, handler := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if handler.chamado != "HealthCheck" {
		t.Errorf("dispatched to %q, want HealthCheck", handler.chamado)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
