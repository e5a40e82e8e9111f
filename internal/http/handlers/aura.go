package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"auraserver/internal/domain"
	"auraserver/internal/providers/vision"
	"auraserver/pkg/pollinations"
)

type auraRequest struct {
	Photo       string `json:"photo"`
	Description string `json:"description"`
}

type auraResponse struct {
	Success            bool     `json:"success"`
	Rating             *int     `json:"rating"`
	AuraSummary        string   `json:"auraSummary"`
	PartnerPersona     string   `json:"partnerPersona"`
	PollinationsPrompt string   `json:"pollinationsPrompt"`
	ColorPalette       []string `json:"colorPalette"`
	Guidance           string   `json:"guidance"`
}

// AuraAnalyze validates a selfie data URL plus a short self-description,
// forwards both to the vision model, and returns the normalized analysis.
// One upstream attempt, no retries.
func (a *App) AuraAnalyze(w http.ResponseWriter, r *http.Request) {
	if !a.Config.HasGroq() {
		a.error(w, http.StatusInternalServerError, "GROQ_API_KEY environment variable is required")
		return
	}

	var req auraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		a.error(w, http.StatusBadRequest, "Description is required")
		return
	}
	if req.Photo == "" {
		a.error(w, http.StatusBadRequest, "Photo is required")
		return
	}

	photo := strings.TrimSpace(req.Photo)
	if !strings.HasPrefix(photo, "data:") {
		a.error(w, http.StatusBadRequest, "Photo must be a base64 data URL")
		return
	}
	if len(photo) > domain.MaxPhotoBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "Photo is too large. Please upload an image under ~5MB.")
		return
	}
	parsed, err := domain.ParseDataURL(photo)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	content, err := a.Vision.Analyze(r.Context(), vision.AnalyzeRequest{
		Description:  description,
		ImageDataURL: photo,
		MimeType:     parsed.MimeType,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := domain.ParseAuraResult(content)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.json(w, http.StatusOK, auraResponse{
		Success:            true,
		Rating:             result.Rating,
		AuraSummary:        result.AuraSummary,
		PartnerPersona:     result.PartnerPersona,
		PollinationsPrompt: result.PollinationsPrompt,
		ColorPalette:       result.ColorPalette,
		Guidance:           result.Guidance,
	})
}

// PortraitURL constructs the Pollinations image URL for a generation prompt.
// No network call is made; the service renders on fetch.
func (a *App) PortraitURL(w http.ResponseWriter, r *http.Request) {
	prompt := strings.TrimSpace(r.URL.Query().Get("prompt"))
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	opts := pollinations.Options{
		Width:  queryInt(r, "width"),
		Height: queryInt(r, "height"),
		Seed:   queryInt(r, "seed"),
		NoLogo: r.URL.Query().Get("nologo") == "true",
	}
	a.json(w, http.StatusOK, map[string]string{"url": pollinations.PortraitURL(prompt, opts)})
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
