// Package health provides health checking functionality for the panel gateway.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/casadonazulmira/painel-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store     interfaces.CatalogStore
	intervalo time.Duration
}

// NewHealthChecker creates a new health checker with injected dependencies.
// intervalo is the configured catalog refresh interval; the thresholds below
// scale with it.
func NewHealthChecker(store interfaces.CatalogStore, intervalo time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:     store,
		intervalo: intervalo,
	}
}

// HealthCheck returns HTTP-specific health data.
// Used by the /health HTTP endpoint.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	medicos := h.store.GetMedicos()
	medicamentos := h.store.GetMedicamentos()
	lastUpdate := h.store.GetLastUpdated()
	isUpdating := h.store.IsUpdating()

	catalogAge := time.Since(lastUpdate)

	// Determine health status and HTTP code. Empty catalogs right after boot
	// count as degraded, not unhealthy: the proxy routes still work.
	switch {
	case lastUpdate.IsZero():
		status = "degraded"
		httpStatus = http.StatusOK

	case catalogAge > 8*h.intervalo:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case catalogAge > 4*h.intervalo:
		status = "degraded"
		httpStatus = http.StatusOK

	case len(medicos) == 0 && len(medicamentos) == 0:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	// A zero start time would read as decades of uptime
	uptime := time.Duration(0)
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	// Build response data (no system metrics, only catalog-related fields)
	data = map[string]any{
		"last_update":       lastUpdate.Format(time.RFC3339),
		"catalog_age_hours": math.Round(catalogAge.Hours()*10) / 10,
		"medicos":           len(medicos),
		"medicamentos":      len(medicamentos),
		"is_updating":       isUpdating,
		"uptime_hours":      math.Round(uptime.Hours()*10) / 10,
	}
	if lastUpdate.IsZero() {
		data["last_update"] = "never"
		data["catalog_age_hours"] = nil
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled catalog refresh time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	lastUpdate := h.store.GetLastUpdated()
	if lastUpdate.IsZero() {
		return time.Now()
	}
	return lastUpdate.Add(h.intervalo)
}
