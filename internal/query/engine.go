package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EngineClient talks to a remote query-engine service (vector search +
// LLM) over HTTP: POST <base>/query with {"question": ...}, the full
// Response JSON back.
type EngineClient struct {
	baseURL string
	httpc   *http.Client
}

func NewEngine(baseURL string) *EngineClient {
	return &EngineClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type engineRequest struct {
	Question string `json:"question"`
}

func (c *EngineClient) Query(ctx context.Context, question string) (Response, error) {
	body, err := json.Marshal(engineRequest{Question: question})
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("query engine request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("query engine returned status %d", resp.StatusCode)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode engine response: %w", err)
	}
	return out, nil
}
