package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"auraserver/internal/providers/image"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
	ID       string `json:"id"`
}

type batchRequest struct {
	Prompt         string `json:"prompt"`
	NumberOfImages int    `json:"numberOfImages"`
}

// ImagesGenerate turns a text prompt into a single image via Gemini. The id
// is generated locally so every call yields a distinct artifact even for
// identical prompts.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	if !a.Config.HasGemini() {
		a.error(w, http.StatusInternalServerError, "Missing GOOGLE_GEMINI_API_KEY environment variable")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	result, err := a.Images.Generate(r.Context(), prompt)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		Success:  true,
		Image:    result.ImageBase64,
		MimeType: result.MimeType,
		ID:       uuid.NewString(),
	})
}

// ImagesBatch produces up to four Imagen variations for one prompt.
func (a *App) ImagesBatch(w http.ResponseWriter, r *http.Request) {
	if !a.Config.HasGemini() {
		a.error(w, http.StatusInternalServerError, "Missing GOOGLE_GEMINI_API_KEY environment variable")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	count := req.NumberOfImages
	if count <= 0 {
		count = 4
	}

	images, err := a.Images.GenerateBatch(r.Context(), prompt, count)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Failed to generate images")
		return
	}
	if images == nil {
		images = []image.BatchImage{}
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":        true,
		"images":         images,
		"prompt":         prompt,
		"numberOfImages": len(images),
	})
}
