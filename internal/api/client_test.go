// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(endpoint string) *Client {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.SubmitsPerSecond = 1000 // don't throttle tests
	return NewClientWithConfig(cfg)
}

func TestCompleteSendsExpectedRequest(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "hello back"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	reply, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("expected reply text, got %q", reply)
	}

	if got.Prompt != "hello" {
		t.Errorf("expected prompt %q, got %q", "hello", got.Prompt)
	}
	if got.MaxNewTokens != 200 {
		t.Errorf("expected max_new_tokens 200, got %d", got.MaxNewTokens)
	}
	if got.Temperature != 0.7 || got.TopP != 0.9 {
		t.Errorf("unexpected sampling params: %+v", got)
	}
	if !got.DoSample {
		t.Error("expected do_sample true")
	}
}

func TestCompleteFallsBackToPrettyJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": "something unexpected"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	reply, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "generated_text") {
		t.Errorf("expected pretty-printed raw JSON, got %q", reply)
	}
	if !strings.Contains(reply, "\n") {
		t.Error("fallback should be indented")
	}
}

func TestCompleteFallsBackToPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	reply, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "No response received" {
		t.Errorf("expected placeholder, got %q", reply)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %T", err)
	}
	if clientErr.Type != ErrTypeHTTP {
		t.Errorf("expected ErrTypeHTTP, got %d", clientErr.Type)
	}
	if clientErr.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", clientErr.Status)
	}
	if !strings.Contains(clientErr.Message, "503") {
		t.Errorf("message should name the status: %q", clientErr.Message)
	}
}

func TestCompleteAcceptsAny2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"response": "made"}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	reply, err := client.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("2xx status should succeed: %v", err)
	}
	if reply != "made" {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestCompleteConnectionError(t *testing.T) {
	// A closed server gives a refused connection.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
	if !IsUnreachable(err) {
		t.Errorf("expected connectivity classification, got %v", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Endpoint = server.URL
	cfg.Timeout = 20 * time.Millisecond
	cfg.SubmitsPerSecond = 1000
	client := NewClientWithConfig(cfg)

	_, err := client.Complete(context.Background(), "hi")
	if !IsTimeout(err) {
		t.Errorf("expected timeout classification, got %v", err)
	}
}

func TestCompleteContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "hi")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDefaultsFilledIn(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})
	cfg := client.GetConfig()

	if cfg.Endpoint == "" || cfg.Timeout != 25*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.MaxNewTokens != 200 || cfg.Temperature != 0.7 || cfg.TopP != 0.9 {
		t.Errorf("sampling defaults not applied: %+v", cfg)
	}
}

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"expected shape", `{"response": "text"}`, "text"},
		{"empty response field falls back", `{"response": ""}`, "{\n  \"response\": \"\"\n}"},
		{"garbage", "garbage", "No response received"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractReply([]byte(tt.raw)); got != tt.want {
				t.Errorf("extractReply(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
