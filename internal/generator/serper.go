package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const serperNewsURL = "https://google.serper.dev/news"

// NewsResult is a single headline from the news search.
type NewsResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

// SerperClient searches Google News through the Serper API.
type SerperClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerperClient creates a news search client.
func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		apiKey:   apiKey,
		endpoint: serperNewsURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchNews returns up to num recent headlines for the query.
func (c *SerperClient) SearchNews(ctx context.Context, query string, num int) ([]NewsResult, error) {
	jsonBody, err := json.Marshal(map[string]any{
		"q":   query,
		"num": num,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		News []NewsResult `json:"news"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return apiResp.News, nil
}
