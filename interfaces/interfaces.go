// Package interfaces defines core abstractions for the panel gateway
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/casadonazulmira/painel-api/upstream"
	"github.com/casadonazulmira/painel-api/viewmodel"
)

// CatalogStore defines the contract for catalog storage operations.
// It provides thread-safe access to the médicos and medicamentos catalogs
// with atomic operations for zero-downtime refreshes.
type CatalogStore interface {
	// Catalog retrieval methods
	GetMedicos() []viewmodel.MedicoResumo
	GetMedicamentos() []viewmodel.MedicamentoResumo
	GetMedicosBrutos() []map[string]any
	GetMedicamentosBrutos() []map[string]any
	GetMedicosMap() map[int]viewmodel.MedicoResumo
	GetMedicamentosMap() map[int]viewmodel.MedicamentoResumo
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Catalog update methods
	UpdateMedicos(medicos []viewmodel.MedicoResumo, brutos []map[string]any)
	UpdateMedicamentos(medicamentos []viewmodel.MedicamentoResumo, brutos []map[string]any)
	BeginUpdate() bool
	EndUpdate()
}

// UpstreamClient defines the contract for the care-facility backend client.
// Every call carries the Authorization header value to forward; the service
// token is used for catalog refreshes, the caller's token for everything else.
type UpstreamClient interface {
	ListarEvolucoes(ctx context.Context, autorizacao string, p upstream.EvolucoesParams) (upstream.PaginaBruta, error)
	CriarEvolucao(ctx context.Context, autorizacao string, payload upstream.EvolucaoCreate) (map[string]any, error)
	AtualizarEvolucao(ctx context.Context, autorizacao string, id int, payload upstream.EvolucaoUpdate) (map[string]any, error)
	ExcluirEvolucao(ctx context.Context, autorizacao string, id int) error

	ListarPrescricoesAnalitico(ctx context.Context, autorizacao string, idMorador, page, limit int) (upstream.PaginaBruta, error)
	CriarPrescricaoCompleta(ctx context.Context, autorizacao string, payload map[string]any) (map[string]any, error)
	AtualizarMedicamentoPrescricao(ctx context.Context, autorizacao string, id int, payload map[string]any) (map[string]any, error)

	ListarRelatorios(ctx context.Context, autorizacao string, page, limit int) (upstream.PaginaBruta, error)
	ObterRelatorio(ctx context.Context, autorizacao string, id int) (map[string]any, error)
	CriarRelatorio(ctx context.Context, autorizacao string, payload upstream.RelatorioCreate) (map[string]any, error)
	AtualizarRelatorio(ctx context.Context, autorizacao string, id int, payload upstream.RelatorioUpdate) (map[string]any, error)

	ListarMedicos(ctx context.Context, autorizacao string, limit int) ([]map[string]any, error)
	ListarMedicamentos(ctx context.Context, autorizacao string, limit int) ([]map[string]any, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated catalog refreshes and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()

	// RefreshNow triggers an immediate catalog refresh outside the schedule
	RefreshNow(ctx context.Context) error
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Evolução individual
	ListEvolucoes(w http.ResponseWriter, r *http.Request)
	CreateEvolucao(w http.ResponseWriter, r *http.Request)
	UpdateEvolucao(w http.ResponseWriter, r *http.Request)
	DeleteEvolucao(w http.ResponseWriter, r *http.Request)

	// Prescrições
	ListPrescricoes(w http.ResponseWriter, r *http.Request)
	CreatePrescricao(w http.ResponseWriter, r *http.Request)
	UpdateMedicamentoPrescricao(w http.ResponseWriter, r *http.Request)

	// Relatórios diários gerais
	ListRelatorios(w http.ResponseWriter, r *http.Request)
	GetRelatorio(w http.ResponseWriter, r *http.Request)
	CreateRelatorio(w http.ResponseWriter, r *http.Request)
	UpdateRelatorio(w http.ResponseWriter, r *http.Request)

	// Catalogs
	ListMedicos(w http.ResponseWriter, r *http.Request)
	ListMedicamentos(w http.ResponseWriter, r *http.Request)
	RefreshCatalogos(w http.ResponseWriter, r *http.Request)

	// Health
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status and the HTTP code
	// the /health endpoint should answer with
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled catalog refresh time
	CalculateNextUpdate() time.Time
}

// ResponseCache defines the contract for the short-TTL list-response cache.
// Implementations must never serve one bearer token's entry to another.
type ResponseCache interface {
	Get(ctx context.Context, chave string) ([]byte, bool)
	Set(ctx context.Context, chave string, valor []byte)
	Enabled() bool
}
