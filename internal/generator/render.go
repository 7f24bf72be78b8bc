package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRenderAPIBase = "https://api.wavespeed.ai/api/v3"

// RenderClient submits text-to-image jobs to the render API and polls for
// the result.
type RenderClient struct {
	apiKey       string
	apiBase      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	httpClient   *http.Client
}

// NewRenderClient creates a render API client.
func NewRenderClient(apiKey, apiBase string) *RenderClient {
	if apiBase == "" {
		apiBase = defaultRenderAPIBase
	}
	return &RenderClient{
		apiKey:       apiKey,
		apiBase:      strings.TrimSuffix(apiBase, "/"),
		pollInterval: time.Second,
		pollTimeout:  2 * time.Minute,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Render submits the prompt and blocks until the job completes, returning
// the output image URLs.
func (c *RenderClient) Render(ctx context.Context, prompt string) ([]string, string, error) {
	requestID, err := c.submit(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	urls, err := c.poll(ctx, requestID)
	if err != nil {
		return nil, requestID, err
	}
	return urls, requestID, nil
}

func (c *RenderClient) submit(ctx context.Context, prompt string) (string, error) {
	// Square output and medium-high stylization suit the feed format.
	body, err := c.do(ctx, "POST", c.apiBase+"/midjourney/text-to-image", map[string]any{
		"prompt":               prompt,
		"aspect_ratio":         "1:1",
		"version":              "7",
		"quality":              1,
		"chaos":                20,
		"stylize":              500,
		"weird":                0,
		"seed":                 -1,
		"enable_base64_output": false,
	})
	if err != nil {
		return "", fmt.Errorf("submit render job: %w", err)
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse submit response: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("no request id in submit response")
	}
	return resp.Data.ID, nil
}

func (c *RenderClient) poll(ctx context.Context, requestID string) ([]string, error) {
	deadline := time.Now().Add(c.pollTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		body, err := c.do(ctx, "GET", c.apiBase+"/predictions/"+requestID+"/result", nil)
		if err != nil {
			return nil, fmt.Errorf("poll render job: %w", err)
		}

		var resp struct {
			Data struct {
				Status  string   `json:"status"`
				Outputs []string `json:"outputs"`
				Error   string   `json:"error"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parse poll response: %w", err)
		}

		switch resp.Data.Status {
		case "completed":
			if len(resp.Data.Outputs) == 0 {
				return nil, fmt.Errorf("render job completed with no outputs")
			}
			return resp.Data.Outputs, nil
		case "failed":
			return nil, fmt.Errorf("render job failed: %s", resp.Data.Error)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("render job timed out after %s", c.pollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *RenderClient) do(ctx context.Context, method, url string, payload map[string]any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return nil, fmt.Errorf("render API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
