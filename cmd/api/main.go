package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"auraserver/internal/http/handlers"
	httpapi "auraserver/internal/http/httpapi"
	"auraserver/internal/infra"
	"auraserver/internal/providers/image"
	"auraserver/internal/providers/storage"
	"auraserver/internal/providers/vision"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if !cfg.HasGroq() {
		logger.Warn().Msg("GROQ_API_KEY not set; aura analysis will report a configuration error")
	}
	if !cfg.HasGemini() {
		logger.Warn().Msg("GOOGLE_GEMINI_API_KEY not set; image generation will report a configuration error")
	}
	if !cfg.HasImageKit() {
		logger.Warn().Msg("ImageKit credentials incomplete; uploads will report a configuration error")
	}

	// Provider clients are built once and shared read-only across requests.
	app := &handlers.App{
		Config: cfg,
		Logger: logger,
		Vision: vision.NewClient(vision.Options{
			APIKey:  cfg.GroqAPIKey,
			Model:   cfg.GroqModel,
			BaseURL: cfg.GroqBaseURL,
		}),
		Images: image.NewClient(image.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BatchModel: cfg.ImagenModel,
			BaseURL:    cfg.GeminiBaseURL,
		}),
		Uploads: storage.NewClient(storage.Options{
			PublicKey:     cfg.ImageKitPublicKey,
			PrivateKey:    cfg.ImageKitPrivateKey,
			UploadBaseURL: cfg.ImageKitUploadURL,
			Folder:        cfg.ImageKitUploadFolder,
			AuthTTL:       cfg.UploadAuthTTL,
		}),
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
