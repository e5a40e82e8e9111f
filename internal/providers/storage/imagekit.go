// Package storage talks to the ImageKit media CDN: server-side uploads and
// signed credentials for direct client-to-CDN uploads.
package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"auraserver/internal/domain"
)

const (
	defaultUploadBaseURL = "https://upload.imagekit.io"
	defaultAuthTTL       = 30 * time.Minute
	defaultTimeout       = 60 * time.Second

	uploadPath = "/api/v1/files/upload"
)

// UploadRequest carries the validated payload. File is either a base64 string,
// a data URL, or a remote URL, all of which the upload API accepts verbatim.
type UploadRequest struct {
	File     string
	FileName string
}

// UploadResult is the stored object. Raw preserves the full upstream response
// for callers that want fields beyond the URL and id.
type UploadResult struct {
	URL    string
	FileID string
	Raw    map[string]any
}

// AuthParams are short-lived signed credentials for a direct client upload.
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// Uploader abstracts the CDN for the handlers.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	AuthParams(now time.Time) AuthParams
}

// Options controls how the ImageKit client is configured.
type Options struct {
	PublicKey     string
	PrivateKey    string
	UploadBaseURL string
	Folder        string
	AuthTTL       time.Duration
	HTTPClient    *http.Client
}

// Client is immutable after construction and safe to share across requests.
type Client struct {
	publicKey  string
	privateKey string
	baseURL    string
	folder     string
	authTTL    time.Duration
	client     *http.Client
}

// NewClient constructs an ImageKit client with sane defaults.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.UploadBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultUploadBaseURL
	}
	folder := opts.Folder
	if folder == "" {
		folder = "/uploads"
	}
	ttl := opts.AuthTTL
	if ttl <= 0 {
		ttl = defaultAuthTTL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		publicKey:  strings.TrimSpace(opts.PublicKey),
		privateKey: strings.TrimSpace(opts.PrivateKey),
		baseURL:    baseURL,
		folder:     folder,
		authTTL:    ttl,
		client:     client,
	}
}

// Upload forwards the payload to the upload API under the configured folder.
// The call is attempted exactly once.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"file":              req.File,
		"fileName":          req.FileName,
		"folder":            c.folder,
		"useUniqueFileName": "true",
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &body)
	if err != nil {
		return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.SetBasicAuth(c.privateKey, "")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.Error{
			Kind:    domain.KindUpload,
			Message: uploadErrorMessage(data, resp.StatusCode),
			Details: "Please check your ImageKit credentials and configuration",
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.Wrap(domain.KindUpload, "Upload failed", err)
	}
	result := &UploadResult{Raw: raw}
	if v, ok := raw["url"].(string); ok {
		result.URL = v
	}
	if v, ok := raw["fileId"].(string); ok {
		result.FileID = v
	}
	return result, nil
}

// AuthParams issues signed upload credentials: a fresh token, an expiry
// timestamp, and an HMAC-SHA1 signature over token+expire keyed with the
// private key. This matches the scheme the CDN verifies for direct uploads.
func (c *Client) AuthParams(now time.Time) AuthParams {
	token := uuid.NewString()
	expire := now.Add(c.authTTL).Unix()
	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: c.sign(token, expire),
		PublicKey: c.publicKey,
	}
}

func (c *Client) sign(token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(c.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func uploadErrorMessage(data []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "imagekit upload failed with status " + strconv.Itoa(status)
}

var _ Uploader = (*Client)(nil)
