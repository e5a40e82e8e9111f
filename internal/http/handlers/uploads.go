package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"auraserver/internal/providers/storage"
)

type uploadRequest struct {
	File     string `json:"file"`
	FileName string `json:"fileName"`
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	URL     string         `json:"url"`
	FileID  string         `json:"fileId"`
}

// Upload forwards a file payload to the CDN under the configured folder.
// Credentials are checked before any network call is attempted.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	if !a.Config.HasImageKit() {
		a.error(w, http.StatusInternalServerError, "ImageKit configuration is missing")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.File == "" || req.FileName == "" {
		a.error(w, http.StatusBadRequest, "File and fileName are required")
		return
	}

	result, err := a.Uploads.Upload(r.Context(), storage.UploadRequest{
		File:     req.File,
		FileName: req.FileName,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.json(w, http.StatusOK, uploadResponse{
		Success: true,
		Data:    result.Raw,
		URL:     result.URL,
		FileID:  result.FileID,
	})
}

// UploadAuth issues short-lived signed credentials for a direct
// client-to-CDN upload; the file bytes never pass through this service.
func (a *App) UploadAuth(w http.ResponseWriter, r *http.Request) {
	if a.Config.ImageKitPrivateKey == "" || a.Config.ImageKitPublicKey == "" {
		a.error(w, http.StatusInternalServerError, "ImageKit credentials not configured. Please set IMAGEKIT_PRIVATE_KEY and IMAGEKIT_PUBLIC_KEY in your environment variables.")
		return
	}

	a.json(w, http.StatusOK, a.Uploads.AuthParams(time.Now()))
}
