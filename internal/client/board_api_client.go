package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/middleware"
)

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("board api %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("board api %d", e.StatusCode)
}

// BoardAPIClient talks to the REST API on behalf of one signed-in user
type BoardAPIClient interface {
	Login(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	ListBoards(ctx context.Context) ([]*dto.BoardResponse, error)
	ListCards(ctx context.Context, boardID uuid.UUID) ([]*dto.CardResponse, error)
	ListTasks(ctx context.Context, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error)
	ReorderCards(ctx context.Context, boardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderCardsResponse, error)
	ReorderTasks(ctx context.Context, boardID, cardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderTasksResponse, error)
	MoveTask(ctx context.Context, boardID uuid.UUID, req dto.MoveTaskRequest) (*dto.MoveTaskResponse, error)

	// Token returns the bearer token in use
	Token() string
	// SetConnectionID makes later mutations carry the realtime connection id
	// so this client's own socket is not notified of them
	SetConnectionID(id string)
}

type boardAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu           sync.RWMutex
	token        string
	connectionID string
}

// NewBoardAPIClient creates a client for the API at baseURL (including the
// base path, e.g. http://localhost:8000/api). token may be empty until Login.
func NewBoardAPIClient(baseURL, token string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) BoardAPIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &boardAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
		token:   token,
	}
}

func (c *boardAPIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *boardAPIClient) SetConnectionID(id string) {
	c.mu.Lock()
	c.connectionID = id
	c.mu.Unlock()
}

// Login exchanges credentials for a token and keeps it for later calls
func (c *boardAPIClient) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	var token dto.TokenResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &token); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.token = token.AccessToken
	c.mu.Unlock()
	return &token, nil
}

func (c *boardAPIClient) ListBoards(ctx context.Context) ([]*dto.BoardResponse, error) {
	var boards []*dto.BoardResponse
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (c *boardAPIClient) ListCards(ctx context.Context, boardID uuid.UUID) ([]*dto.CardResponse, error) {
	var cards []*dto.CardResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/boards/%s/cards", boardID), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *boardAPIClient) ListTasks(ctx context.Context, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error) {
	var tasks []*dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/boards/%s/cards/%s/tasks", boardID, cardID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *boardAPIClient) ReorderCards(ctx context.Context, boardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderCardsResponse, error) {
	var result dto.ReorderCardsResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/boards/%s/cards/reorder", boardID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *boardAPIClient) ReorderTasks(ctx context.Context, boardID, cardID uuid.UUID, req dto.ReorderRequest) (*dto.ReorderTasksResponse, error) {
	var result dto.ReorderTasksResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/boards/%s/cards/%s/tasks/reorder", boardID, cardID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *boardAPIClient) MoveTask(ctx context.Context, boardID uuid.UUID, req dto.MoveTaskRequest) (*dto.MoveTaskResponse, error) {
	var result dto.MoveTaskResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/boards/%s/tasks/move", boardID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends one request and decodes the "data" field of the envelope into out
func (c *boardAPIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token, connID := c.token, c.connectionID
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if connID != "" {
		req.Header.Set(middleware.ConnectionIDHeader, connID)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(url, method, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Error("Board API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call board api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		c.logger.Warn("Board API returned non-success status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
