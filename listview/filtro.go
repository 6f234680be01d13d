package listview

import (
	"strings"
	"time"
)

// Criterio is the client-side refinement applied after a page has been
// fetched and normalized: a plain substring term plus an inclusive date
// range. This is not the boolean-aware catalog search; list refinement is
// simple containment over the display fields.
type Criterio struct {
	Texto      string
	DataInicio *time.Time
	DataFim    *time.Time
}

// Ativo reports whether any refinement is in effect.
func (c Criterio) Ativo() bool {
	return strings.TrimSpace(c.Texto) != "" || c.DataInicio != nil || c.DataFim != nil
}

// temLimiteData reports whether a date bound is active.
func (c Criterio) temLimiteData() bool {
	return c.DataInicio != nil || c.DataFim != nil
}

// InicioDoDia returns 00:00:00.000 UTC of the given calendar day.
func InicioDoDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FimDoDia returns 23:59:59.999 UTC of the given calendar day.
func FimDoDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

// ParseDia parses a yyyy-mm-dd query parameter.
func ParseDia(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CriterioDeParams builds a Criterio from raw query parameters, expanding
// the day strings to inclusive UTC bounds. Malformed dates are ignored
// rather than failing the request.
func CriterioDeParams(texto, dataInicio, dataFim string) Criterio {
	c := Criterio{Texto: texto}
	if dia, ok := ParseDia(dataInicio); ok {
		inicio := InicioDoDia(dia)
		c.DataInicio = &inicio
	}
	if dia, ok := ParseDia(dataFim); ok {
		fim := FimDoDia(dia)
		c.DataFim = &fim
	}
	return c
}

// Filtrar applies the refinement over normalized records and returns a new
// slice; the input is never mutated. The texto accessor supplies the
// entity-specific display fields joined with spaces; the quando accessor
// supplies the record timestamp, with ok=false for unparseable dates.
// Records without a parseable date are excluded while a date bound is
// active and included otherwise.
func Filtrar[T any](items []T, c Criterio, texto func(T) string, quando func(T) (time.Time, bool)) []T {
	term := strings.ToLower(strings.TrimSpace(c.Texto))
	resultado := make([]T, 0, len(items))

	for _, item := range items {
		if term != "" && !strings.Contains(strings.ToLower(texto(item)), term) {
			continue
		}
		if c.temLimiteData() {
			t, ok := quando(item)
			if !ok {
				continue
			}
			if c.DataInicio != nil && t.Before(*c.DataInicio) {
				continue
			}
			if c.DataFim != nil && t.After(*c.DataFim) {
				continue
			}
		}
		resultado = append(resultado, item)
	}
	return resultado
}
