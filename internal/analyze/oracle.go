// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/httputil"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// Oracle abstracts the generation backend so tests can supply a mock.
// Implementations treat the completion as opaque text; decoding is the
// normalizer's job. Per-call deadlines arrive through ctx.
type Oracle interface {
	Name() string
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// NewOracle builds the configured backend.
func NewOracle(cfg types.OracleConfig) (Oracle, error) {
	switch cfg.Backend {
	case types.BackendOllama, "":
		base := cfg.BaseURL
		if base == "" {
			base = defaultOllamaURL
		}
		return &OllamaBackend{BaseURL: base}, nil
	case types.BackendAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic backend requires an API key")
		}
		return &AnthropicBackend{APIKey: cfg.APIKey}, nil
	default:
		return nil, fmt.Errorf("unknown oracle backend %q", cfg.Backend)
	}
}

const defaultOllamaURL = "http://localhost:11434"

// OllamaBackend calls a local Ollama server's generate endpoint.
type OllamaBackend struct {
	BaseURL string
	Client  *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	// Temperature is pinned to zero so retries are comparable.
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *OllamaBackend) Name() string { return "ollama" }

// Complete sends the prompt to Ollama and returns the raw completion.
func (o *OllamaBackend) Complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(o.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, string(b))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	return oResp.Response, nil
}

// anthropicAPIURL is the messages endpoint. Package-level var for test
// substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicBackend calls the Anthropic Messages API as a hosted
// alternative to a local model.
type AnthropicBackend struct {
	APIKey string
	Client *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (a *AnthropicBackend) Name() string { return "anthropic" }

// Complete sends the prompt and returns the concatenated text blocks.
// Rate-limit responses retry with backoff before surfacing an error.
func (a *AnthropicBackend) Complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: 4096,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(b))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("Anthropic API returned no text content")
	}
	return sb.String(), nil
}
