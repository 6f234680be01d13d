// Package upstream is the typed client for the external care-facility REST
// API. It owns the transport concerns the rest of the service should never
// see: bearer-token forwarding, request timeouts, list-envelope decoding
// across the backend's schema revisions, charset repair for legacy
// responses, and the extraction of a single user-facing message from error
// bodies.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/metrics"
	"golang.org/x/text/encoding/charmap"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 16 * 1024 * 1024

// Client talks to the upstream API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL. The timeout applies to the
// whole request; the legacy panel had none, which let a hung backend hang
// the UI forever.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx upstream response reduced to a user-facing message.
type APIError struct {
	Status   int
	Mensagem string
}

func (e *APIError) Error() string { return e.Mensagem }

// PaginaBruta is one decoded page of raw records plus whatever pagination
// metadata the backend chose to include this time.
type PaginaBruta struct {
	Itens        []map[string]any
	Total        *int
	UltimaPagina *int
}

// request performs one upstream call and returns the decoded JSON body.
// rotulo is the low-cardinality endpoint label used for metrics.
func (c *Client) request(ctx context.Context, rotulo, method, path, autorizacao string, query url.Values, body any) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("falha ao montar requisição: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("falha ao montar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if autorizacao != "" {
		req.Header.Set("Authorization", autorizacao)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestTotal.WithLabelValues(rotulo, "erro").Inc()
		logging.Warn("Falha de transporte com o backend", "endpoint", rotulo, "error", err)
		return nil, &APIError{Status: 0, Mensagem: "não foi possível contatar o servidor"}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Falha ao fechar corpo da resposta", "error", err)
		}
	}()

	metrics.UpstreamRequestTotal.WithLabelValues(rotulo, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(rotulo).Observe(time.Since(start).Seconds())

	parsed := decodeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractErrorMessage(parsed)
		if msg == "" {
			msg = fmt.Sprintf("erro HTTP %d", resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Mensagem: msg}
	}

	return parsed, nil
}

// decodeBody reads and parses a response body. Some legacy backend routes
// still emit ISO-8859-1; anything that is not valid UTF-8 is re-decoded
// before parsing. A missing or non-JSON body (204, proxies) yields nil.
func decodeBody(r io.Reader) any {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil || len(raw) == 0 {
		return nil
	}

	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err == nil {
			raw = decoded
		}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	return parsed
}

// extractErrorMessage pulls a single display string out of an error body.
// The backend answers with message (string or string array), or error, or
// nothing at all.
func extractErrorMessage(body any) string {
	switch b := body.(type) {
	case string:
		return b
	case map[string]any:
		switch m := b["message"].(type) {
		case []any:
			partes := make([]string, 0, len(m))
			for _, item := range m {
				if s, ok := item.(string); ok {
					partes = append(partes, s)
				}
			}
			if len(partes) > 0 {
				return strings.Join(partes, ", ")
			}
		case string:
			return m
		}
		if s, ok := b["error"].(string); ok {
			return s
		}
	}
	return ""
}

// decodePagina interprets the list envelope variants: {data: [...]} with
// total/lastPage at the top level or under meta, a domain-named array key,
// or a bare array.
func decodePagina(parsed any, chavesLista ...string) PaginaBruta {
	pagina := PaginaBruta{Itens: []map[string]any{}}

	var lista []any
	switch corpo := parsed.(type) {
	case []any:
		lista = corpo
	case map[string]any:
		for _, chave := range append([]string{"data"}, chavesLista...) {
			if arr, ok := corpo[chave].([]any); ok {
				lista = arr
				break
			}
		}
		if n, ok := numeroDe(corpo["total"]); ok {
			pagina.Total = &n
		} else if meta, ok := corpo["meta"].(map[string]any); ok {
			if n, ok := numeroDe(meta["total"]); ok {
				pagina.Total = &n
			}
		}
		if n, ok := numeroDe(corpo["lastPage"]); ok {
			pagina.UltimaPagina = &n
		} else if meta, ok := corpo["meta"].(map[string]any); ok {
			if n, ok := numeroDe(meta["lastPage"]); ok {
				pagina.UltimaPagina = &n
			}
		}
	}

	for _, item := range lista {
		if m, ok := item.(map[string]any); ok {
			pagina.Itens = append(pagina.Itens, m)
		}
	}
	return pagina
}

// desembrulhar unwraps single-resource responses that may or may not be
// enveloped in {data: {...}}.
func desembrulhar(parsed any) map[string]any {
	corpo, ok := parsed.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	if interno, ok := corpo["data"].(map[string]any); ok {
		return interno
	}
	return corpo
}

func numeroDe(v any) (int, bool) {
	if f, ok := v.(float64); ok {
		return int(f), true
	}
	return 0, false
}
