package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
//
// Provider credentials are optional at load time: each handler verifies the
// credentials it needs before calling out, so a deployment can serve a subset
// of the endpoints without configuring every upstream.
type Config struct {
	AppEnv string
	Port   string

	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	ImagenModel   string

	ImageKitPublicKey    string
	ImageKitPrivateKey   string
	ImageKitURLEndpoint  string
	ImageKitUploadURL    string
	ImageKitUploadFolder string
	UploadAuthTTL        time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqModel:   getEnv("GROQ_MODEL", "meta-llama/llama-4-maverick-17b-128e-instruct"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),

		GeminiAPIKey:  os.Getenv("GOOGLE_GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ImagenModel:   getEnv("IMAGEN_MODEL", "imagen-4.0-generate-001"),

		ImageKitPublicKey:    os.Getenv("IMAGEKIT_PUBLIC_KEY"),
		ImageKitPrivateKey:   os.Getenv("IMAGEKIT_PRIVATE_KEY"),
		ImageKitURLEndpoint:  os.Getenv("IMAGEKIT_URL_ENDPOINT"),
		ImageKitUploadURL:    getEnv("IMAGEKIT_UPLOAD_URL", "https://upload.imagekit.io"),
		ImageKitUploadFolder: getEnv("IMAGEKIT_UPLOAD_FOLDER", "/uploads"),
		UploadAuthTTL:        time.Second * time.Duration(getEnvInt("UPLOAD_AUTH_TTL_SECONDS", 1800)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitEnvList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	return cfg, nil
}

// HasGroq reports whether the aura analysis upstream is configured.
func (c *Config) HasGroq() bool {
	return strings.TrimSpace(c.GroqAPIKey) != ""
}

// HasGemini reports whether the image generation upstream is configured.
func (c *Config) HasGemini() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// HasImageKit reports whether all three CDN credentials are configured.
func (c *Config) HasImageKit() bool {
	return strings.TrimSpace(c.ImageKitPublicKey) != "" &&
		strings.TrimSpace(c.ImageKitPrivateKey) != "" &&
		strings.TrimSpace(c.ImageKitURLEndpoint) != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitEnvList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
