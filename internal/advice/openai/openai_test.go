package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	var gotAuth, gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"- Spend less\n- Save more"},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	c, err := New("sk-test", ts.URL+"/v1/", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "- Spend less\n- Save more" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotModel != DefaultModel {
		t.Fatalf("unexpected model %q", gotModel)
	}
}

func TestGenerateAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	c, _ := New("sk-test", ts.URL+"/v1", "gpt-x")
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "", ""); err == nil {
		t.Fatalf("expected error")
	}
}
