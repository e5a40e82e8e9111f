package image

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"auraserver/internal/domain"
)

func TestGenerateInlineImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "gk_test" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": "here you go"},
						{"inlineData": map[string]any{"mimeType": "image/jpeg", "data": "QUJD"}},
					},
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "gk_test", BaseURL: srv.URL})
	result, err := client.Generate(context.Background(), "a serene portrait")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ImageBase64 != "QUJD" {
		t.Fatalf("image = %q", result.ImageBase64)
	}
	if result.MimeType != "image/jpeg" {
		t.Fatalf("mime = %q", result.MimeType)
	}
}

func TestGenerateDefaultsMimeType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"inlineData": map[string]any{"data": "QUJD"}}},
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "gk_test", BaseURL: srv.URL})
	result, err := client.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.MimeType != "image/png" {
		t.Fatalf("mime = %q, want image/png", result.MimeType)
	}
}

func TestGenerateTextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "cannot draw that"}},
				},
			}, {
				"content": map[string]any{
					"parts": []map[string]any{{"text": "try another prompt"}},
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "gk_test", BaseURL: srv.URL})
	_, err := client.Generate(context.Background(), "p")

	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Kind != domain.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if derr.Details != "cannot draw that\ntry another prompt" {
		t.Fatalf("details = %q", derr.Details)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "API key not valid"},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.Generate(context.Background(), "p")
	if err == nil {
		t.Fatalf("expected error")
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		t.Fatalf("transport failures should stay unclassified, got kind %s", derr.Kind)
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateBatch(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":predict") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]any{
				{"bytesBase64Encoded": "QQ==", "mimeType": "image/png"},
				{"bytesBase64Encoded": ""},
				{"bytesBase64Encoded": "Qg==", "mimeType": "image/png"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "gk_test", BaseURL: srv.URL})
	images, err := client.GenerateBatch(context.Background(), "robot on a skateboard", 9)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("images len = %d", len(images))
	}
	if images[0].Index != 1 || images[1].Index != 2 {
		t.Fatalf("indexes = %d, %d", images[0].Index, images[1].Index)
	}
	if images[1].ImageBytes != "Qg==" {
		t.Fatalf("second image = %q", images[1].ImageBytes)
	}

	params, _ := captured["parameters"].(map[string]any)
	if params["sampleCount"] != float64(4) {
		t.Fatalf("sampleCount = %v, want clamped 4", params["sampleCount"])
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{APIKey: "gk_test"})
	if client.Model() != defaultModel {
		t.Fatalf("model = %q", client.Model())
	}
	if client.batchModel != defaultBatchModel {
		t.Fatalf("batch model = %q", client.batchModel)
	}
	if client.baseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
}
