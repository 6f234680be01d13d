// Package data provides thread-safe storage for the catalog snapshots the
// gateway keeps in memory. It includes the CatalogContainer struct with atomic
// operations for zero-downtime swaps and thread-safe access to the médicos and
// medicamentos catalogs, both as normalized summaries and as the raw upstream
// records the boolean-aware search runs against.
package data

import (
	"sync/atomic"
	"time"

	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/viewmodel"
)

// Compile-time check to ensure CatalogContainer implements CatalogStore
var _ interfaces.CatalogStore = (*CatalogContainer)(nil)

// CatalogContainer holds the catalogs with atomic pointers for zero-downtime updates
type CatalogContainer struct {
	medicos            atomic.Value // []viewmodel.MedicoResumo
	medicamentos       atomic.Value // []viewmodel.MedicamentoResumo
	medicosBrutos      atomic.Value // []map[string]any
	medicamentosBrutos atomic.Value // []map[string]any
	medicosMap         atomic.Value // map[int]viewmodel.MedicoResumo
	medicamentosMap    atomic.Value // map[int]viewmodel.MedicamentoResumo
	lastUpdated        atomic.Value // time.Time
	updating           atomic.Bool
	serverStartTime    atomic.Value // time.Time
}

// NewCatalogContainer creates a new CatalogContainer with empty catalogs.
// The server start time is stamped here, at process boot, so /health uptime
// is measured from construction.
func NewCatalogContainer() *CatalogContainer {
	cc := &CatalogContainer{}
	cc.medicos.Store(make([]viewmodel.MedicoResumo, 0))
	cc.medicamentos.Store(make([]viewmodel.MedicamentoResumo, 0))
	cc.medicosBrutos.Store(make([]map[string]any, 0))
	cc.medicamentosBrutos.Store(make([]map[string]any, 0))
	cc.medicosMap.Store(make(map[int]viewmodel.MedicoResumo))
	cc.medicamentosMap.Store(make(map[int]viewmodel.MedicamentoResumo))
	cc.lastUpdated.Store(time.Time{})
	cc.serverStartTime.Store(time.Now())
	return cc
}

// Thread-safe getters with type check

// GetMedicos returns the normalized physician catalog
func (cc *CatalogContainer) GetMedicos() []viewmodel.MedicoResumo {
	if v := cc.medicos.Load(); v != nil {
		if medicos, ok := v.([]viewmodel.MedicoResumo); ok {
			return medicos
		}
	}

	logging.Warn("Medicos catalog is empty or invalid")
	return []viewmodel.MedicoResumo{}
}

// GetMedicamentos returns the normalized medication catalog
func (cc *CatalogContainer) GetMedicamentos() []viewmodel.MedicamentoResumo {
	if v := cc.medicamentos.Load(); v != nil {
		if medicamentos, ok := v.([]viewmodel.MedicamentoResumo); ok {
			return medicamentos
		}
	}

	logging.Warn("Medicamentos catalog is empty or invalid")
	return []viewmodel.MedicamentoResumo{}
}

// GetMedicosBrutos returns the raw physician records, index-aligned with
// GetMedicos, for field-by-field search
func (cc *CatalogContainer) GetMedicosBrutos() []map[string]any {
	if v := cc.medicosBrutos.Load(); v != nil {
		if brutos, ok := v.([]map[string]any); ok {
			return brutos
		}
	}

	logging.Warn("Raw medicos catalog is empty or invalid")
	return []map[string]any{}
}

// GetMedicamentosBrutos returns the raw medication records, index-aligned
// with GetMedicamentos
func (cc *CatalogContainer) GetMedicamentosBrutos() []map[string]any {
	if v := cc.medicamentosBrutos.Load(); v != nil {
		if brutos, ok := v.([]map[string]any); ok {
			return brutos
		}
	}

	logging.Warn("Raw medicamentos catalog is empty or invalid")
	return []map[string]any{}
}

// GetMedicosMap returns the physician map for O(1) lookups
func (cc *CatalogContainer) GetMedicosMap() map[int]viewmodel.MedicoResumo {
	if v := cc.medicosMap.Load(); v != nil {
		if medicosMap, ok := v.(map[int]viewmodel.MedicoResumo); ok {
			return medicosMap
		}
	}

	logging.Warn("MedicosMap is empty or invalid")
	return make(map[int]viewmodel.MedicoResumo)
}

// GetMedicamentosMap returns the medication map for O(1) lookups
func (cc *CatalogContainer) GetMedicamentosMap() map[int]viewmodel.MedicamentoResumo {
	if v := cc.medicamentosMap.Load(); v != nil {
		if medicamentosMap, ok := v.(map[int]viewmodel.MedicamentoResumo); ok {
			return medicamentosMap
		}
	}

	logging.Warn("MedicamentosMap is empty or invalid")
	return make(map[int]viewmodel.MedicamentoResumo)
}

// GetLastUpdated returns the timestamp of the last catalog refresh
func (cc *CatalogContainer) GetLastUpdated() time.Time {
	if v := cc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a catalog refresh is currently in progress
func (cc *CatalogContainer) IsUpdating() bool {
	return cc.updating.Load()
}

// SetServerStartTime sets the server start time
func (cc *CatalogContainer) SetServerStartTime(startTime time.Time) {
	cc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (cc *CatalogContainer) GetServerStartTime() time.Time {
	if v := cc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateMedicos atomically swaps the physician catalog
func (cc *CatalogContainer) UpdateMedicos(medicos []viewmodel.MedicoResumo, brutos []map[string]any) {
	medicosMap := make(map[int]viewmodel.MedicoResumo, len(medicos))
	for _, m := range medicos {
		medicosMap[m.ID] = m
	}

	// Atomic swap (zero downtime replacement)
	cc.medicos.Store(medicos)
	cc.medicosBrutos.Store(brutos)
	cc.medicosMap.Store(medicosMap)
	cc.lastUpdated.Store(time.Now())
}

// UpdateMedicamentos atomically swaps the medication catalog
func (cc *CatalogContainer) UpdateMedicamentos(medicamentos []viewmodel.MedicamentoResumo, brutos []map[string]any) {
	medicamentosMap := make(map[int]viewmodel.MedicamentoResumo, len(medicamentos))
	for _, m := range medicamentos {
		medicamentosMap[m.ID] = m
	}

	cc.medicamentos.Store(medicamentos)
	cc.medicamentosBrutos.Store(brutos)
	cc.medicamentosMap.Store(medicamentosMap)
	cc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a catalog refresh
// Returns true if the refresh can proceed, false if another one is in progress
func (cc *CatalogContainer) BeginUpdate() bool {
	return cc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a catalog refresh
func (cc *CatalogContainer) EndUpdate() {
	cc.updating.Store(false)
}
