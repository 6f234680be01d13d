package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// EvolucoesParams selects one page of individual evolution notes.
type EvolucoesParams struct {
	IDMorador   int
	Page        int
	Limit       int
	Observacoes string
	DataInicio  string // yyyy-mm-dd
	DataFim     string // yyyy-mm-dd, expanded to end of day
}

// EvolucaoCreate is the write payload for a new evolution note.
type EvolucaoCreate struct {
	IDMorador   int    `json:"id_morador"`
	Observacoes string `json:"observacoes"`
	DataHora    string `json:"data_hora,omitempty"`
}

// EvolucaoUpdate patches an existing note. Nil fields are left untouched.
type EvolucaoUpdate struct {
	Observacoes *string `json:"observacoes,omitempty"`
	DataHora    *string `json:"data_hora,omitempty"`
}

// ListarEvolucoes fetches one page of evolution notes. The end-of-range date
// is sent expanded to 23:59:59.999 so the backend's timestamp comparison
// includes the whole day.
func (c *Client) ListarEvolucoes(ctx context.Context, autorizacao string, p EvolucoesParams) (PaginaBruta, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.IDMorador > 0 {
		q.Set("id_morador", strconv.Itoa(p.IDMorador))
	}
	if p.Observacoes != "" {
		q.Set("observacoes", p.Observacoes)
	}
	if p.DataInicio != "" {
		q.Set("data_inicio", p.DataInicio)
	}
	if p.DataFim != "" {
		q.Set("data_fim", p.DataFim+"T23:59:59.999")
	}

	parsed, err := c.request(ctx, "listar_evolucoes", "GET", "/evolucao-individual", autorizacao, q, nil)
	if err != nil {
		return PaginaBruta{Itens: []map[string]any{}}, err
	}
	return decodePagina(parsed), nil
}

// CriarEvolucao creates an evolution note and returns the raw created record.
func (c *Client) CriarEvolucao(ctx context.Context, autorizacao string, payload EvolucaoCreate) (map[string]any, error) {
	parsed, err := c.request(ctx, "criar_evolucao", "POST", "/evolucao-individual", autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// AtualizarEvolucao patches an evolution note.
func (c *Client) AtualizarEvolucao(ctx context.Context, autorizacao string, id int, payload EvolucaoUpdate) (map[string]any, error) {
	parsed, err := c.request(ctx, "atualizar_evolucao", "PATCH", fmt.Sprintf("/evolucao-individual/%d", id), autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// ExcluirEvolucao deletes an evolution note.
func (c *Client) ExcluirEvolucao(ctx context.Context, autorizacao string, id int) error {
	_, err := c.request(ctx, "excluir_evolucao", "DELETE", fmt.Sprintf("/evolucao-individual/%d", id), autorizacao, nil, nil)
	return err
}

// ListarPrescricoesAnalitico fetches the flattened prescription rows for one
// resident. The backend does not support text or date filters on this route;
// any refinement happens on the gateway side.
func (c *Client) ListarPrescricoesAnalitico(ctx context.Context, autorizacao string, idMorador, page, limit int) (PaginaBruta, error) {
	q := url.Values{}
	q.Set("id_morador", strconv.Itoa(idMorador))
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	parsed, err := c.request(ctx, "listar_prescricoes", "GET", "/prescricao/analitico/all", autorizacao, q, nil)
	if err != nil {
		return PaginaBruta{Itens: []map[string]any{}}, err
	}
	return decodePagina(parsed), nil
}

// CriarPrescricaoCompleta forwards a full prescription (header plus items) as
// received. The upstream owns its schema; the gateway only validates shape.
func (c *Client) CriarPrescricaoCompleta(ctx context.Context, autorizacao string, payload map[string]any) (map[string]any, error) {
	parsed, err := c.request(ctx, "criar_prescricao", "POST", "/prescricao/completa", autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// AtualizarMedicamentoPrescricao patches one prescription item.
func (c *Client) AtualizarMedicamentoPrescricao(ctx context.Context, autorizacao string, id int, payload map[string]any) (map[string]any, error) {
	parsed, err := c.request(ctx, "atualizar_medicamento_prescricao", "PATCH", fmt.Sprintf("/medicamento-prescricao/%d", id), autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// RelatorioCreate creates a daily general report linked to evolution notes.
type RelatorioCreate struct {
	Observacoes  string `json:"observacoes"`
	IDsEvolucoes []int  `json:"ids_evolucoes"`
	DataHora     string `json:"data_hora,omitempty"`
}

// RelatorioUpdate patches a report. Nil fields are left untouched.
type RelatorioUpdate struct {
	Observacoes  *string `json:"observacoes,omitempty"`
	IDsEvolucoes []int   `json:"ids_evolucoes,omitempty"`
	DataHora     *string `json:"data_hora,omitempty"`
}

// ListarRelatorios fetches one page of daily general reports.
func (c *Client) ListarRelatorios(ctx context.Context, autorizacao string, page, limit int) (PaginaBruta, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	parsed, err := c.request(ctx, "listar_relatorios", "GET", "/relatorio-geral", autorizacao, q, nil)
	if err != nil {
		return PaginaBruta{Itens: []map[string]any{}}, err
	}
	return decodePagina(parsed), nil
}

// ObterRelatorio fetches one report with its linked notes. The backend's
// findOne answers with the bare object today but may gain a data envelope.
func (c *Client) ObterRelatorio(ctx context.Context, autorizacao string, id int) (map[string]any, error) {
	parsed, err := c.request(ctx, "obter_relatorio", "GET", fmt.Sprintf("/relatorio-geral/%d", id), autorizacao, nil, nil)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// CriarRelatorio creates a daily general report.
func (c *Client) CriarRelatorio(ctx context.Context, autorizacao string, payload RelatorioCreate) (map[string]any, error) {
	parsed, err := c.request(ctx, "criar_relatorio", "POST", "/relatorio-geral", autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// AtualizarRelatorio patches a daily general report.
func (c *Client) AtualizarRelatorio(ctx context.Context, autorizacao string, id int, payload RelatorioUpdate) (map[string]any, error) {
	parsed, err := c.request(ctx, "atualizar_relatorio", "PATCH", fmt.Sprintf("/relatorio-geral/%d", id), autorizacao, nil, payload)
	if err != nil {
		return nil, err
	}
	return desembrulhar(parsed), nil
}

// ListarMedicos fetches the physician catalog. The route answers with a data
// envelope or a bare array depending on the backend revision.
func (c *Client) ListarMedicos(ctx context.Context, autorizacao string, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	parsed, err := c.request(ctx, "listar_medicos", "GET", "/medicos", autorizacao, q, nil)
	if err != nil {
		return nil, err
	}
	return decodePagina(parsed).Itens, nil
}

// ListarMedicamentos fetches the medication catalog, which may also arrive
// under a medicamentos key.
func (c *Client) ListarMedicamentos(ctx context.Context, autorizacao string, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	parsed, err := c.request(ctx, "listar_medicamentos", "GET", "/medicamentos", autorizacao, q, nil)
	if err != nil {
		return nil, err
	}
	return decodePagina(parsed, "medicamentos").Itens, nil
}
