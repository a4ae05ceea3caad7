// Package main is the entry point for the blogcms API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogcms/internal/ai"
	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/database"
	"blogcms/internal/draft"
	"blogcms/internal/handlers"
	"blogcms/internal/imagesearch"
	"blogcms/internal/metrics"
	"blogcms/internal/middleware"
	"blogcms/internal/router"
	"blogcms/internal/session"
	"blogcms/internal/storage"
	"blogcms/internal/store"
)

// mirrorTimeout bounds one featured image download plus upload.
const mirrorTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := database.Seed(db, database.AdminAccount{
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
	}); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are Secure everywhere except local development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	m, metricsHandler := metrics.Setup("blogcms")
	responseCache := cache.NewResponseCache(valkeyClient, cfg.CacheTTL, m)

	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	userStore := store.NewUserStore(db)
	commentStore := store.NewCommentStore(db)

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openrouter": {
			APIKey: cfg.OpenRouterKey, Model: cfg.OpenRouterModel, BaseURL: cfg.OpenRouterBaseURL,
			Timeout: cfg.AITimeout, Referer: cfg.OpenRouterReferer, Title: cfg.OpenRouterTitle,
		},
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.AITimeout},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL, Timeout: cfg.AITimeout},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL, Timeout: cfg.AITimeout},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	var images draft.ImageSearcher
	if cfg.PexelsKey != "" {
		images = imagesearch.New(cfg.PexelsKey, cfg.PexelsBaseURL, cfg.AITimeout)
	} else {
		slog.Warn("pexels not configured, drafts will use the fallback image")
	}

	generator := draft.NewGenerator(aiRegistry, images, categoryStore,
		draft.WithFallbackImage(cfg.FallbackImage),
		draft.WithObserver(m),
	)

	// Object storage is optional. Without it featured images are stored as
	// submitted and nothing is deleted on post removal.
	var (
		mirror  handlers.ImageMirror
		objects handlers.ObjectRemover
	)
	if storageClient := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	); storageClient != nil {
		mirror = storage.NewMirror(storageClient, mirrorTimeout)
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
	} else {
		slog.Warn("s3 storage not configured, featured images will not be mirrored")
	}

	aiLimiter := middleware.NewRateLimiter(cfg.AIRateLimit, time.Minute).TrustProxies(cfg.TrustedProxies)
	defer aiLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute).TrustProxies(cfg.TrustedProxies)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Public:   handlers.NewPublic(postStore, categoryStore, commentStore, responseCache, m),
		Auth:     handlers.NewAuth(sessionStore, userStore),
		Admin:    handlers.NewAdmin(postStore, categoryStore, userStore, commentStore, responseCache, mirror, objects),
		AI:       handlers.NewAI(generator, aiRegistry),

		Recorder:     m,
		Metrics:      metricsHandler,
		MetricsToken: cfg.MetricsToken,

		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: secureCookies,

		AILimiter:    aiLimiter,
		LoginLimiter: loginLimiter,
	})

	// WriteTimeout must cover draft generation, which waits on the slowest
	// of three completions.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
