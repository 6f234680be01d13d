package interfaces

import (
	"context"
	"testing"
	"time"

	"github.com/casadonazulmira/painel-api/viewmodel"
)

// MockCatalogStore implements CatalogStore for testing
type MockCatalogStore struct {
	medicos            []viewmodel.MedicoResumo
	medicamentos       []viewmodel.MedicamentoResumo
	medicosBrutos      []map[string]any
	medicamentosBrutos []map[string]any
	lastUpdated        time.Time
	updating           bool
	serverStart        time.Time
}

func (m *MockCatalogStore) GetMedicos() []viewmodel.MedicoResumo           { return m.medicos }
func (m *MockCatalogStore) GetMedicamentos() []viewmodel.MedicamentoResumo { return m.medicamentos }
func (m *MockCatalogStore) GetMedicosBrutos() []map[string]any             { return m.medicosBrutos }
func (m *MockCatalogStore) GetMedicamentosBrutos() []map[string]any        { return m.medicamentosBrutos }

func (m *MockCatalogStore) GetMedicosMap() map[int]viewmodel.MedicoResumo {
	out := make(map[int]viewmodel.MedicoResumo, len(m.medicos))
	for _, med := range m.medicos {
		out[med.ID] = med
	}
	return out
}

func (m *MockCatalogStore) GetMedicamentosMap() map[int]viewmodel.MedicamentoResumo {
	out := make(map[int]viewmodel.MedicamentoResumo, len(m.medicamentos))
	for _, med := range m.medicamentos {
		out[med.ID] = med
	}
	return out
}

func (m *MockCatalogStore) GetLastUpdated() time.Time     { return m.lastUpdated }
func (m *MockCatalogStore) IsUpdating() bool              { return m.updating }
func (m *MockCatalogStore) GetServerStartTime() time.Time { return m.serverStart }

func (m *MockCatalogStore) UpdateMedicos(medicos []viewmodel.MedicoResumo, brutos []map[string]any) {
	m.medicos = medicos
	m.medicosBrutos = brutos
	m.lastUpdated = time.Now()
}

func (m *MockCatalogStore) UpdateMedicamentos(medicamentos []viewmodel.MedicamentoResumo, brutos []map[string]any) {
	m.medicamentos = medicamentos
	m.medicamentosBrutos = brutos
	m.lastUpdated = time.Now()
}

func (m *MockCatalogStore) BeginUpdate() bool {
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *MockCatalogStore) EndUpdate() { m.updating = false }

// Compile-time check that the mock satisfies the contract
var _ CatalogStore = (*MockCatalogStore)(nil)

// MockResponseCache implements ResponseCache for testing
type MockResponseCache struct {
	entradas map[string][]byte
}

func (m *MockResponseCache) Get(ctx context.Context, chave string) ([]byte, bool) {
	v, ok := m.entradas[chave]
	return v, ok
}

func (m *MockResponseCache) Set(ctx context.Context, chave string, valor []byte) {
	if m.entradas == nil {
		m.entradas = make(map[string][]byte)
	}
	m.entradas[chave] = valor
}

func (m *MockResponseCache) Enabled() bool { return true }

var _ ResponseCache = (*MockResponseCache)(nil)

func TestMockCatalogStoreContract(t *testing.T) {
	var store CatalogStore = &MockCatalogStore{}

	if store.IsUpdating() {
		t.Error("fresh store should not be updating")
	}
	if !store.BeginUpdate() {
		t.Fatal("BeginUpdate should succeed on a fresh store")
	}
	if store.BeginUpdate() {
		t.Error("BeginUpdate should fail while an update is in progress")
	}
	store.EndUpdate()

	store.UpdateMedicos(
		[]viewmodel.MedicoResumo{{ID: 1, Nome: "Dr. Hélio"}},
		[]map[string]any{{"id_medico": float64(1)}},
	)
	if len(store.GetMedicos()) != 1 || store.GetMedicosMap()[1].Nome != "Dr. Hélio" {
		t.Errorf("store state after update: %v", store.GetMedicos())
	}
	if store.GetLastUpdated().IsZero() {
		t.Error("UpdateMedicos should stamp lastUpdated")
	}
}

func TestMockResponseCacheContract(t *testing.T) {
	var cache ResponseCache = &MockResponseCache{}

	if _, ok := cache.Get(context.Background(), "chave"); ok {
		t.Error("empty cache should miss")
	}
	cache.Set(context.Background(), "chave", []byte("valor"))
	if v, ok := cache.Get(context.Background(), "chave"); !ok || string(v) != "valor" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}
