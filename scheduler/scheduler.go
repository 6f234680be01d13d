// Package scheduler provides automated catalog refreshes and health
// monitoring for the panel gateway. It handles cron-based refreshes of the
// médicos and medicamentos catalogs and coordinates them with the catalog
// container using dependency injection. Both catalogs are fetched through
// loader.Carregador instances, so the refresh path shares the loading
// contract with everything else in the service.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/loader"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/metrics"
	"github.com/casadonazulmira/painel-api/viewmodel"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure CatalogScheduler implements Scheduler
var _ interfaces.Scheduler = (*CatalogScheduler)(nil)

// ErrRefreshEmAndamento reports that a catalog refresh was requested while
// another one was still running. Callers can treat it as a conflict rather
// than a failure.
var ErrRefreshEmAndamento = errors.New("atualização de catálogos já em andamento")

// catalogLimit is the page size for catalog fetches. Both catalogs are
// small; one page covers them.
const catalogLimit = 500

// medicoEntrada pairs the normalized summary with the raw record it came
// from, keeping the two catalogs index-aligned for the search handlers.
type medicoEntrada struct {
	Resumo viewmodel.MedicoResumo
	Bruto  map[string]any
}

type medicamentoEntrada struct {
	Resumo viewmodel.MedicamentoResumo
	Bruto  map[string]any
}

// CatalogScheduler refreshes the catalogs on a fixed interval.
type CatalogScheduler struct {
	store     interfaces.CatalogStore
	scheduler *gocron.Scheduler
	intervalo time.Duration

	medicos      *loader.Carregador[int, medicoEntrada]
	medicamentos *loader.Carregador[int, medicamentoEntrada]
}

// NewCatalogScheduler creates a scheduler with injected dependencies. The
// service token authenticates refreshes; caller tokens never reach this path.
func NewCatalogScheduler(store interfaces.CatalogStore, client interfaces.UpstreamClient, serviceToken string, intervalo time.Duration) *CatalogScheduler {
	autorizacao := "Bearer " + serviceToken

	medicos := loader.Novo(func(ctx context.Context, limit int) (loader.Pagina[medicoEntrada], error) {
		brutos, err := client.ListarMedicos(ctx, autorizacao, limit)
		if err != nil {
			return loader.Pagina[medicoEntrada]{}, err
		}
		entradas := make([]medicoEntrada, 0, len(brutos))
		for _, raw := range brutos {
			if r := viewmodel.NormalizeMedico(raw); r.Valido() {
				entradas = append(entradas, medicoEntrada{Resumo: r, Bruto: raw})
			}
		}
		return loader.Pagina[medicoEntrada]{Itens: entradas, Total: len(entradas), UltimaPagina: 1}, nil
	})

	medicamentos := loader.Novo(func(ctx context.Context, limit int) (loader.Pagina[medicamentoEntrada], error) {
		brutos, err := client.ListarMedicamentos(ctx, autorizacao, limit)
		if err != nil {
			return loader.Pagina[medicamentoEntrada]{}, err
		}
		entradas := make([]medicamentoEntrada, 0, len(brutos))
		for _, raw := range brutos {
			if r := viewmodel.NormalizeMedicamento(raw); r.Valido() {
				entradas = append(entradas, medicamentoEntrada{Resumo: r, Bruto: raw})
			}
		}
		return loader.Pagina[medicamentoEntrada]{Itens: entradas, Total: len(entradas), UltimaPagina: 1}, nil
	})

	return &CatalogScheduler{
		store:        store,
		scheduler:    gocron.NewScheduler(time.Local),
		intervalo:    intervalo,
		medicos:      medicos,
		medicamentos: medicamentos,
	}
}

// Start performs the initial catalog load and schedules the periodic
// refreshes. A failed initial load is logged but does not abort startup;
// the gateway still proxies, only the catalog routes stay empty until the
// first successful refresh.
func (s *CatalogScheduler) Start() error {
	if err := s.RefreshNow(context.Background()); err != nil {
		logging.Warn("Initial catalog load failed, catalogs start empty", "error", err)
	}

	_, err := s.scheduler.Every(s.intervalo).Do(func() {
		if err := s.RefreshNow(context.Background()); err != nil && !errors.Is(err, ErrRefreshEmAndamento) {
			logging.Error("Failed to refresh catalogs", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule catalog refreshes", "error", err)
		return fmt.Errorf("failed to schedule catalog refreshes: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *CatalogScheduler) Stop() {
	s.scheduler.Stop()
}

// RefreshNow refreshes both catalogs immediately, outside the schedule.
// Returns ErrRefreshEmAndamento when another refresh holds the update lock.
func (s *CatalogScheduler) RefreshNow(ctx context.Context) error {
	// Prevent concurrent refreshes
	if !s.store.BeginUpdate() {
		logging.Info("Catalog refresh already in progress, skipping...")
		return ErrRefreshEmAndamento
	}
	defer s.store.EndUpdate()

	logging.Info("Starting catalog refresh")
	start := time.Now()

	if err := s.medicos.Load(ctx, catalogLimit); err != nil {
		return fmt.Errorf("failed to refresh medicos: %w", err)
	}
	if err := s.medicamentos.Load(ctx, catalogLimit); err != nil {
		return fmt.Errorf("failed to refresh medicamentos: %w", err)
	}

	medicosSnap := s.medicos.Snapshot()
	resumosMedicos := make([]viewmodel.MedicoResumo, len(medicosSnap.Dados))
	brutosMedicos := make([]map[string]any, len(medicosSnap.Dados))
	for i, e := range medicosSnap.Dados {
		resumosMedicos[i] = e.Resumo
		brutosMedicos[i] = e.Bruto
	}

	medicamentosSnap := s.medicamentos.Snapshot()
	resumosMedicamentos := make([]viewmodel.MedicamentoResumo, len(medicamentosSnap.Dados))
	brutosMedicamentos := make([]map[string]any, len(medicamentosSnap.Dados))
	for i, e := range medicamentosSnap.Dados {
		resumosMedicamentos[i] = e.Resumo
		brutosMedicamentos[i] = e.Bruto
	}

	// Atomic swap of both catalogs
	s.store.UpdateMedicos(resumosMedicos, brutosMedicos)
	s.store.UpdateMedicamentos(resumosMedicamentos, brutosMedicamentos)
	metrics.CatalogAgeSeconds.Set(0)

	elapsed := time.Since(start)
	logging.Info("Catalog refresh completed",
		"duration", elapsed.String(),
		"medico_count", len(resumosMedicos),
		"medicamento_count", len(resumosMedicamentos))

	return nil
}

// startHealthMonitoring tracks catalog age and warns when refreshes stall
func (s *CatalogScheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if lastUpdate.IsZero() {
				continue
			}
			idade := time.Since(lastUpdate)
			metrics.CatalogAgeSeconds.Set(idade.Seconds())
			if idade > 2*s.intervalo {
				logging.Warn("Catalogs have not refreshed within two intervals",
					"age", idade.String())
			}
		}
	}()
}
