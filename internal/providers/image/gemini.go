// Package image calls the Google generative image APIs: Gemini
// generateContent for single portraits and Imagen predict for batches.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auraserver/internal/domain"
)

const (
	defaultModel      = "gemini-2.5-flash-image-preview"
	defaultBatchModel = "imagen-4.0-generate-001"
	defaultTimeout    = 60 * time.Second
	defaultMimeType   = "image/png"
)

// Result is a single generated image, still base64 encoded the way the API
// returned it.
type Result struct {
	ImageBase64 string
	MimeType    string
}

// BatchImage is one Imagen output with its 1-based position in the batch.
type BatchImage struct {
	ImageBytes string `json:"imageBytes"`
	Index      int    `json:"index"`
}

// Generator abstracts the generative image upstream for the handlers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
	GenerateBatch(ctx context.Context, prompt string, count int) ([]BatchImage, error)
}

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	Model      string
	BatchModel string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is immutable after construction and safe to share across requests.
type Client struct {
	apiKey     string
	model      string
	batchModel string
	baseURL    string
	client     *http.Client
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int `json:"sampleCount"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults. Callers may provide a nil
// HTTP client; a reusable one with a request timeout will be created.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	batchModel := strings.TrimSpace(opts.BatchModel)
	if batchModel == "" {
		batchModel = defaultBatchModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		batchModel: batchModel,
		baseURL:    baseURL,
		client:     client,
	}
}

// Model returns the configured generateContent model identifier.
func (c *Client) Model() string { return c.model }

// Generate issues a single generateContent call and returns the first inline
// image found in the candidates. When the model answers with text only, the
// joined text is attached to the error so the caller can surface it as
// diagnostic detail.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	payload := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
	}

	var response generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	var texts []string
	for _, candidate := range response.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				mimeType := p.InlineData.MimeType
				if mimeType == "" {
					mimeType = defaultMimeType
				}
				return &Result{ImageBase64: p.InlineData.Data, MimeType: mimeType}, nil
			}
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
	}

	return nil, &domain.Error{
		Kind:    domain.KindUpstream,
		Message: "No image data returned from Gemini",
		Details: strings.Join(texts, "\n"),
	}
}

// GenerateBatch issues a single Imagen predict call for up to four images.
func (c *Client) GenerateBatch(ctx context.Context, prompt string, count int) ([]BatchImage, error) {
	if count <= 0 {
		count = 4
	}
	if count > 4 {
		count = 4
	}
	payload := predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{SampleCount: count},
	}

	var response predictResponse
	path := fmt.Sprintf("/models/%s:predict", url.PathEscape(c.batchModel))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	var images []BatchImage
	for _, prediction := range response.Predictions {
		if prediction.BytesBase64Encoded == "" {
			continue
		}
		images = append(images, BatchImage{
			ImageBytes: prediction.BytesBase64Encoded,
			Index:      len(images) + 1,
		})
	}
	return images, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if detail := strings.TrimSpace(string(data)); detail != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, detail)
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

var _ Generator = (*Client)(nil)
