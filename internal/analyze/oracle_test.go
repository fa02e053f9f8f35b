// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

func TestNewOracle(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.OracleConfig
		wantName string
		wantErr  bool
	}{
		{"default is ollama", types.OracleConfig{}, "ollama", false},
		{"explicit ollama", types.OracleConfig{Backend: types.BackendOllama}, "ollama", false},
		{"anthropic with key", types.OracleConfig{Backend: types.BackendAnthropic, APIKey: "sk-ant-x"}, "anthropic", false},
		{"anthropic without key", types.OracleConfig{Backend: types.BackendAnthropic}, "", true},
		{"unknown backend", types.OracleConfig{Backend: "gpt"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOracle(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if o.Name() != tt.wantName {
				t.Errorf("name = %s, want %s", o.Name(), tt.wantName)
			}
		})
	}
}

func TestOllamaBackend_Complete(t *testing.T) {
	var gotReq ollamaRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: "completion text", Done: true})
	}))
	defer ts.Close()

	backend := &OllamaBackend{BaseURL: ts.URL, Client: ts.Client()}
	got, err := backend.Complete(context.Background(), "llama3", "score this note")
	if err != nil {
		t.Fatal(err)
	}
	if got != "completion text" {
		t.Errorf("completion = %q", got)
	}
	if gotReq.Model != "llama3" || gotReq.Prompt != "score this note" {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Stream {
		t.Error("streaming must be off")
	}
	if gotReq.Options.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotReq.Options.Temperature)
	}
}

func TestOllamaBackend_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	backend := &OllamaBackend{BaseURL: ts.URL, Client: ts.Client()}
	_, err := backend.Complete(context.Background(), "missing", "prompt")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v", err)
	}
}

func TestAnthropicBackend_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicContent{
			{Type: "text", Text: "first "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "second"},
		}})
	}))
	defer ts.Close()

	old := anthropicAPIURL
	anthropicAPIURL = ts.URL
	defer func() { anthropicAPIURL = old }()

	backend := &AnthropicBackend{APIKey: "sk-ant-test", Client: ts.Client()}
	got, err := backend.Complete(context.Background(), "model-x", "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "first second" {
		t.Errorf("completion = %q", got)
	}
}

func TestAnthropicBackend_NoTextContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{})
	}))
	defer ts.Close()

	old := anthropicAPIURL
	anthropicAPIURL = ts.URL
	defer func() { anthropicAPIURL = old }()

	backend := &AnthropicBackend{APIKey: "sk-ant-test", Client: ts.Client()}
	if _, err := backend.Complete(context.Background(), "model-x", "prompt"); err == nil {
		t.Fatal("expected error for empty content")
	}
}
