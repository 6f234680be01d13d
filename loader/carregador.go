// Package loader implements the page-loading contract shared by every data
// domain of the panel: issue a fetch for the current parameters, track
// loading/error/empty state, expose an idempotent refresh, and let the most
// recent request win when several overlap. It is the single fetch path for
// the catalog subsystem and the reference behavior the listing handlers
// reproduce per request.
package loader

import (
	"context"
	"sync"

	"github.com/casadonazulmira/painel-api/logging"
)

// Pagina is one fetched-and-normalized page of records plus the response
// metadata the pagination widget needs.
type Pagina[T any] struct {
	Itens        []T
	Total        int
	UltimaPagina int
}

// BuscarFunc fetches and normalizes one page for the given parameters.
type BuscarFunc[P, T any] func(ctx context.Context, params P) (Pagina[T], error)

// Snapshot is the externally visible loader state. Dados is never nil and
// Erro is empty unless the most recent fetch failed.
type Snapshot[T any] struct {
	Dados        []T
	Carregando   bool
	Erro         string
	Total        int
	UltimaPagina int
}

// Carregador drives the fetch lifecycle for one data domain.
//
// Every Load bumps a generation counter; a resolution only lands in the
// snapshot when its generation is still the newest, so rapid parameter
// changes are last-request-wins and a slow stale response can never
// overwrite a newer one.
type Carregador[P, T any] struct {
	buscar BuscarFunc[P, T]

	mu        sync.Mutex
	geracao   uint64
	params    P
	temParams bool
	snap      Snapshot[T]
}

// Novo creates a loader around a fetch function.
func Novo[P, T any](buscar BuscarFunc[P, T]) *Carregador[P, T] {
	return &Carregador[P, T]{
		buscar: buscar,
		snap:   Snapshot[T]{Dados: []T{}, UltimaPagina: 1},
	}
}

// Load fetches the page for the given parameters and, if no newer Load was
// issued meanwhile, publishes the result. A fetch failure publishes an
// empty page with a user-facing error instead of propagating; the returned
// error is informational (nil for superseded calls).
func (c *Carregador[P, T]) Load(ctx context.Context, params P) error {
	c.mu.Lock()
	c.geracao++
	minha := c.geracao
	c.params = params
	c.temParams = true
	c.snap.Carregando = true
	c.snap.Erro = ""
	c.mu.Unlock()

	pagina, err := c.buscarSeguro(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if minha != c.geracao {
		// A newer request owns the snapshot now.
		return nil
	}

	c.snap.Carregando = false
	if err != nil {
		c.snap.Dados = []T{}
		c.snap.Total = 0
		c.snap.UltimaPagina = 1
		c.snap.Erro = err.Error()
		return err
	}

	if pagina.Itens == nil {
		pagina.Itens = []T{}
	}
	if pagina.UltimaPagina < 1 {
		pagina.UltimaPagina = 1
	}
	c.snap.Dados = pagina.Itens
	c.snap.Total = pagina.Total
	c.snap.UltimaPagina = pagina.UltimaPagina
	c.snap.Erro = ""
	return nil
}

// Recarregar re-issues the most recent Load with the same parameters.
// Calling it before any Load is a no-op.
func (c *Carregador[P, T]) Recarregar(ctx context.Context) error {
	c.mu.Lock()
	if !c.temParams {
		c.mu.Unlock()
		return nil
	}
	params := c.params
	c.mu.Unlock()

	return c.Load(ctx, params)
}

// Snapshot returns the current loader state.
func (c *Carregador[P, T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// buscarSeguro shields the snapshot from fetch panics: normalizers promise
// not to panic, but a loader must degrade to the error state regardless.
func (c *Carregador[P, T]) buscarSeguro(ctx context.Context, params P) (pagina Pagina[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Busca de página entrou em pânico", "panic", r)
			err = errBuscaInterna
		}
	}()
	return c.buscar(ctx, params)
}

type erroInterno struct{}

func (erroInterno) Error() string { return "erro interno ao carregar dados" }

var errBuscaInterna = erroInterno{}
