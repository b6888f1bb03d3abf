package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ChainResponse — цепочка из API.
type ChainResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	FlowIDs        []string `json:"flow_ids"`
	SelectedFlowID string   `json:"selected_flow_id,omitempty"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
}

// FlowResponse — flow из API.
type FlowResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Nodes       []map[string]any `json:"nodes"`
	Edges       []map[string]any `json:"edges"`
	Inputs      []any            `json:"inputs,omitempty"`
	Status      string           `json:"status"`
	LastResults []map[string]any `json:"last_results,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

// RunChainResponse — итог запуска цепочки.
type RunChainResponse struct {
	Status  string           `json:"status"`
	Results []map[string]any `json:"results"`
}

// RunFlowResponse — итог запуска flow.
type RunFlowResponse struct {
	ExecutionID string           `json:"execution_id"`
	Status      string           `json:"status"`
	Results     []map[string]any `json:"results"`
}

// ScheduleResponse — расписание из API.
type ScheduleResponse struct {
	ID          string `json:"id"`
	ChainID     string `json:"chain_id"`
	Name        string `json:"name,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone"`
	Enabled     bool   `json:"enabled"`
	NextDueAt   string `json:"next_due_at,omitempty"`
	LastRunAt   string `json:"last_run_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// --- Request types ---

// CreateChainRequest — создание цепочки.
type CreateChainRequest struct {
	Name    string   `json:"name"`
	FlowIDs []string `json:"flow_ids,omitempty"`
}

// UpdateChainRequest — обновление цепочки.
type UpdateChainRequest struct {
	Name           *string   `json:"name,omitempty"`
	FlowIDs        *[]string `json:"flow_ids,omitempty"`
	SelectedFlowID *string   `json:"selected_flow_id,omitempty"`
}

// CreateScheduleRequest — создание расписания.
type CreateScheduleRequest struct {
	Name        string `json:"name,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// UpdateScheduleRequest — обновление расписания.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Nodeflow API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Запуски цепочек синхронные, таймаут с запасом
			Timeout: 5 * time.Minute,
		},
	}
}

// --- Chains ---

// ListChains возвращает все цепочки.
func (c *Client) ListChains() ([]ChainResponse, error) {
	var chains []ChainResponse
	err := c.list("/api/v1/chains", nil, &chains)
	return chains, err
}

// CreateChain создаёт новую цепочку.
func (c *Client) CreateChain(req CreateChainRequest) (*ChainResponse, error) {
	var chain ChainResponse
	err := c.post("/api/v1/chains", req, &chain)
	return &chain, err
}

// GetChain возвращает цепочку по ID.
func (c *Client) GetChain(id string) (*ChainResponse, error) {
	var chain ChainResponse
	err := c.get("/api/v1/chains/"+id, &chain)
	return &chain, err
}

// UpdateChain обновляет цепочку.
func (c *Client) UpdateChain(id string, req UpdateChainRequest) (*ChainResponse, error) {
	var chain ChainResponse
	err := c.put("/api/v1/chains/"+id, req, &chain)
	return &chain, err
}

// DeleteChain удаляет цепочку.
func (c *Client) DeleteChain(id string) error {
	return c.delete("/api/v1/chains/" + id)
}

// RunChain запускает цепочку и ждёт её завершения.
func (c *Client) RunChain(id string, inputs []any) (*RunChainResponse, error) {
	body := map[string]any{}
	if inputs != nil {
		body["inputs"] = inputs
	}
	var result RunChainResponse
	err := c.post("/api/v1/chains/"+id+"/run", body, &result)
	return &result, err
}

// --- Flows ---

// ListFlows возвращает flows цепочки.
func (c *Client) ListFlows(chainID string) ([]FlowResponse, error) {
	var flows []FlowResponse
	err := c.list("/api/v1/chains/"+chainID+"/flows", nil, &flows)
	return flows, err
}

// ImportFlow импортирует документ flow в цепочку.
func (c *Client) ImportFlow(chainID string, doc json.RawMessage) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.post("/api/v1/chains/"+chainID+"/flows", doc, &flow)
	return &flow, err
}

// GetFlow возвращает flow по ID.
func (c *Client) GetFlow(chainID, flowID string) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.get("/api/v1/chains/"+chainID+"/flows/"+flowID, &flow)
	return &flow, err
}

// DeleteFlow удаляет flow из цепочки.
func (c *Client) DeleteFlow(chainID, flowID string) error {
	return c.delete("/api/v1/chains/" + chainID + "/flows/" + flowID)
}

// RunFlow запускает один flow и ждёт его завершения.
func (c *Client) RunFlow(chainID, flowID string, inputs []any) (*RunFlowResponse, error) {
	body := map[string]any{}
	if inputs != nil {
		body["inputs"] = inputs
	}
	var result RunFlowResponse
	err := c.post("/api/v1/chains/"+chainID+"/flows/"+flowID+"/run", body, &result)
	return &result, err
}

// --- Export / Import ---

// Export возвращает бандл всех цепочек с flows.
func (c *Client) Export(structureOnly bool) (json.RawMessage, error) {
	path := "/api/v1/export"
	if structureOnly {
		path += "?structure_only=true"
	}
	var bundle json.RawMessage
	err := c.get(path, &bundle)
	return bundle, err
}

// Import загружает бандл цепочек.
func (c *Client) Import(bundle json.RawMessage) error {
	return c.post("/api/v1/import", bundle, nil)
}

// --- Schedules ---

// ListSchedules возвращает все расписания.
func (c *Client) ListSchedules() ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", nil, &schedules)
	return schedules, err
}

// CreateSchedule создаёт расписание для цепочки.
func (c *Client) CreateSchedule(chainID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/chains/"+chainID+"/schedules", req, &schedule)
	return &schedule, err
}

// GetSchedule возвращает расписание по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// UpdateSchedule обновляет расписание.
func (c *Client) UpdateSchedule(id string, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.put("/api/v1/schedules/"+id, req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет расписание.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// EnableSchedule включает расписание.
func (c *Client) EnableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// DisableSchedule выключает расписание.
func (c *Client) DisableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
