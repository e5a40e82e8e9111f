package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"auraserver/internal/domain"
	"auraserver/internal/infra"
	"auraserver/internal/middleware"
	"auraserver/internal/providers/image"
	"auraserver/internal/providers/storage"
	"auraserver/internal/providers/vision"
)

// App bundles the configuration and provider clients the handlers depend on.
// Clients are constructed once in main and injected here; handlers never
// build or cache clients themselves.
type App struct {
	Config  *infra.Config
	Logger  zerolog.Logger
	Vision  vision.Analyzer
	Images  image.Generator
	Uploads storage.Uploader
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorBody{Error: message})
}

// fail maps a classified error to its HTTP status. Unclassified errors are
// reported as 500 with the underlying message, matching how unexpected
// exceptions surfaced in each handler's catch-all.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("unclassified handler error")
		a.json(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	a.Logger.Warn().
		Err(err).
		Str("kind", string(derr.Kind)).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")

	body := errorBody{Error: derr.Message, Details: derr.Details}
	if derr.Kind == domain.KindUpstream && derr.Details == "" && derr.Err != nil {
		body.Details = derr.Err.Error()
	}
	a.json(w, statusOf(derr.Kind), body)
}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindUpstream, domain.KindUnexpectedResponse, domain.KindMalformedOutput, domain.KindMissingPrompt:
		return http.StatusBadGateway
	case domain.KindConfig, domain.KindUpload:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
