package ollama

import (
	"bytes"
	"encoding/base64"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moment4u/moment4u/internal/providers"
)

// DefaultURL is where a local Ollama listens
const DefaultURL = "http://localhost:11434"

// Ollama generates text with a local Ollama server
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// New returns an Ollama provider for baseURL; empty selects DefaultURL
func New(baseURL string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExtractText runs a non-streaming generate call
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	payload := map[string]any{
		"model":  config.Model,
		"prompt": config.Prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": config.Temperature,
		},
	}
	if len(config.Images) > 0 {
		encoded := make([]string, 0, len(config.Images))
		for _, img := range config.Images {
			encoded = append(encoded, base64.StdEncoding.EncodeToString(img.Data))
		}
		payload["images"] = encoded
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
