package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"auraserver/internal/domain"
	"auraserver/internal/infra"
	"auraserver/internal/providers/storage"
)

type stubUploader struct {
	result    *storage.UploadResult
	err       error
	calls     int
	authCalls int
	lastReq   storage.UploadRequest
}

func (s *stubUploader) Upload(ctx context.Context, req storage.UploadRequest) (*storage.UploadResult, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubUploader) AuthParams(now time.Time) storage.AuthParams {
	s.authCalls++
	return storage.AuthParams{
		Token:     "tok-1",
		Expire:    now.Unix() + 1800,
		Signature: "sig-1",
		PublicKey: "pub_test",
	}
}

func newUploadsApp(uploader *stubUploader, cfg infra.Config) *App {
	return &App{
		Config:  &cfg,
		Logger:  zerolog.Nop(),
		Uploads: uploader,
	}
}

func imagekitConfig() infra.Config {
	return infra.Config{
		ImageKitPublicKey:   "pub_test",
		ImageKitPrivateKey:  "priv_test",
		ImageKitURLEndpoint: "https://ik.imagekit.io/demo",
	}
}

func TestUpload(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        infra.Config
		body       string
		uploader   *stubUploader
		wantStatus int
		wantCalls  int
		wantError  string
	}{{
		name: "success",
		cfg:  imagekitConfig(),
		body: `{"file": "data:image/png;base64,QUJD", "fileName": "selfie.png"}`,
		uploader: &stubUploader{result: &storage.UploadResult{
			URL:    "https://ik.imagekit.io/demo/uploads/selfie.png",
			FileID: "file-1",
			Raw:    map[string]any{"url": "https://ik.imagekit.io/demo/uploads/selfie.png", "fileId": "file-1", "size": float64(42)},
		}},
		wantStatus: http.StatusOK,
		wantCalls:  1,
	}, {
		name:       "missing configuration",
		cfg:        infra.Config{},
		body:       `{"file": "x", "fileName": "y"}`,
		uploader:   &stubUploader{},
		wantStatus: http.StatusInternalServerError,
		wantCalls:  0,
		wantError:  "ImageKit configuration is missing",
	}, {
		name:       "missing file name",
		cfg:        imagekitConfig(),
		body:       `{"file": "data:image/png;base64,QUJD"}`,
		uploader:   &stubUploader{},
		wantStatus: http.StatusBadRequest,
		wantCalls:  0,
		wantError:  "File and fileName are required",
	}, {
		name:       "missing file",
		cfg:        imagekitConfig(),
		body:       `{"fileName": "selfie.png"}`,
		uploader:   &stubUploader{},
		wantStatus: http.StatusBadRequest,
		wantCalls:  0,
		wantError:  "File and fileName are required",
	}, {
		name: "upstream rejection",
		cfg:  imagekitConfig(),
		body: `{"file": "x", "fileName": "y"}`,
		uploader: &stubUploader{err: &domain.Error{
			Kind:    domain.KindUpload,
			Message: "Failed to upload image",
			Details: "Please check your ImageKit credentials and configuration",
		}},
		wantStatus: http.StatusInternalServerError,
		wantCalls:  1,
		wantError:  "Failed to upload image",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newUploadsApp(tc.uploader, tc.cfg)

			req := httptest.NewRequest(http.MethodPost, "/v1/uploads", bytes.NewReader([]byte(tc.body)))
			rr := httptest.NewRecorder()
			app.Upload(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if tc.uploader.calls != tc.wantCalls {
				t.Fatalf("uploader calls = %d, want %d", tc.uploader.calls, tc.wantCalls)
			}

			var resp map[string]any
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if tc.wantError != "" {
				if resp["error"] != tc.wantError {
					t.Fatalf("error = %v, want %q", resp["error"], tc.wantError)
				}
				return
			}

			if resp["success"] != true {
				t.Fatalf("success = %v", resp["success"])
			}
			if resp["url"] != tc.uploader.result.URL {
				t.Fatalf("url = %v", resp["url"])
			}
			if resp["fileId"] != tc.uploader.result.FileID {
				t.Fatalf("fileId = %v", resp["fileId"])
			}
			data, ok := resp["data"].(map[string]any)
			if !ok || data["size"] != float64(42) {
				t.Fatalf("data = %v", resp["data"])
			}
		})
	}
}

func TestUploadForwardsRequestFields(t *testing.T) {
	uploader := &stubUploader{result: &storage.UploadResult{URL: "u", FileID: "f"}}
	app := newUploadsApp(uploader, imagekitConfig())

	body := []byte(`{"file": "data:image/png;base64,QUJD", "fileName": "selfie.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	app.Upload(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	if uploader.lastReq.File != "data:image/png;base64,QUJD" {
		t.Fatalf("file = %q", uploader.lastReq.File)
	}
	if uploader.lastReq.FileName != "selfie.png" {
		t.Fatalf("fileName = %q", uploader.lastReq.FileName)
	}
}

func TestUploadAuth(t *testing.T) {
	uploader := &stubUploader{}
	app := newUploadsApp(uploader, imagekitConfig())

	req := httptest.NewRequest(http.MethodGet, "/v1/uploads/auth", nil)
	rr := httptest.NewRecorder()
	app.UploadAuth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if uploader.authCalls != 1 {
		t.Fatalf("auth calls = %d", uploader.authCalls)
	}

	var params storage.AuthParams
	if err := json.NewDecoder(rr.Body).Decode(&params); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if params.Token != "tok-1" || params.Signature != "sig-1" || params.PublicKey != "pub_test" {
		t.Fatalf("params = %+v", params)
	}
	if params.Expire <= time.Now().Unix() {
		t.Fatalf("expire %d not in the future", params.Expire)
	}
}

func TestUploadAuthMissingCredentials(t *testing.T) {
	uploader := &stubUploader{}
	app := newUploadsApp(uploader, infra.Config{ImageKitPublicKey: "pub_test"})

	req := httptest.NewRequest(http.MethodGet, "/v1/uploads/auth", nil)
	rr := httptest.NewRecorder()
	app.UploadAuth(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if uploader.authCalls != 0 {
		t.Fatalf("auth calls = %d, want 0", uploader.authCalls)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "ImageKit credentials not configured. Please set IMAGEKIT_PRIVATE_KEY and IMAGEKIT_PUBLIC_KEY in your environment variables." {
		t.Fatalf("error = %v", resp["error"])
	}
}
