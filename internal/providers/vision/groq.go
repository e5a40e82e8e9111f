// Package vision calls the Groq-hosted vision model that performs the aura
// analysis. The wire protocol is OpenAI-compatible chat completions with a
// multimodal user message.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auraserver/internal/domain"
)

const defaultModel = "meta-llama/llama-4-maverick-17b-128e-instruct"

const defaultTimeout = 60 * time.Second

const systemInstruction = `You are an empathetic "AI Partner Aura Analyst". Review the person's selfie and short self-description.
Return a JSON object ONLY, using this exact schema:
{
  "rating": number (1-10, integer),
  "aura_summary": string (2-3 sentences explaining the vibe you see),
  "partner_persona": string (a playful one-sentence description of their ideal AI partner),
  "pollinations_prompt": string (rich, single prompt for generating a stylised AI partner portrait matching the person),
  "color_palette": string[] (3-5 evocative color words),
  "guidance": string (one friendly suggestion for connecting with the AI partner)
}
Ensure the prompt references aesthetic cues that align with the photo + description, avoids explicit mention of the user or real names, and stays positive.`

// AnalyzeRequest carries the validated selfie and description.
type AnalyzeRequest struct {
	Description  string
	ImageDataURL string
	MimeType     string
}

// Analyzer produces the raw JSON content string emitted by the vision model.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
}

// Options controls how the Groq client is configured.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Groq chat completions endpoint. It is immutable after
// construction and safe to share across concurrent requests.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model               string        `json:"model"`
	Temperature         float64       `json:"temperature,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *chatFormat   `json:"response_format,omitempty"`
	Messages            []chatMessage `json:"messages"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePayload `json:"image_url,omitempty"`
}

type imagePayload struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// Content is decoded as raw JSON so a provider that hands back a non-string
// value can be reported as an unexpected response instead of silently
// coerced.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient constructs a Groq client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a request timeout will be created.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Analyze issues a single chat completion and returns the message content.
// The call is attempted exactly once; transient failures are reported, not
// retried.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	payload := chatRequest{
		Model:               c.model,
		Temperature:         0.65,
		MaxCompletionTokens: 800,
		ResponseFormat:      &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: []contentPart{
				{
					Type: "text",
					Text: fmt.Sprintf("User description: %s\n\nRespond strictly with JSON following the provided schema.", req.Description),
				},
				{
					Type:     "image_url",
					ImageURL: &imagePayload{URL: req.ImageDataURL, MimeType: req.MimeType},
				},
			}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", domain.Wrap(domain.KindUpstream, "Aura analysis failed", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.Wrap(domain.KindUpstream, "Aura analysis failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", domain.Wrap(domain.KindUpstream, "Aura analysis failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &domain.Error{
			Kind:    domain.KindUpstream,
			Message: "Aura analysis failed",
			Details: upstreamDetail(resp),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.Wrap(domain.KindUnexpectedResponse, "Unexpected response from analysis model", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.E(domain.KindUnexpectedResponse, "Unexpected response from analysis model")
	}
	var content string
	if err := json.Unmarshal(out.Choices[0].Message.Content, &content); err != nil {
		return "", domain.E(domain.KindUnexpectedResponse, "Unexpected response from analysis model")
	}
	return content, nil
}

func upstreamDetail(resp *http.Response) string {
	var apiErr apiErrorResponse
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("groq status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	if detail := strings.TrimSpace(string(data)); detail != "" {
		return fmt.Sprintf("groq status %d: %s", resp.StatusCode, detail)
	}
	return fmt.Sprintf("groq status %d", resp.StatusCode)
}

var _ Analyzer = (*Client)(nil)
