package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"orbitarium-server/internal/auth"
	"orbitarium-server/internal/editor"
	"orbitarium-server/internal/middleware"
	"orbitarium-server/internal/server"
	"orbitarium-server/internal/session"
	"orbitarium-server/internal/shared/config"
	"orbitarium-server/internal/shared/database"
	"orbitarium-server/internal/shared/logger"
	"orbitarium-server/internal/shared/redis"
	"orbitarium-server/internal/universe"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatal("Failed to initialize configuration:", err)
	}
	logger.Init()

	slog.Info("Starting orbitarium server",
		"environment", config.GlobalConfig.Server.Environment,
		"port", config.GlobalConfig.Server.Port,
	)

	db, err := database.Connect()
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	oauthConfig := auth.InitOAuth()

	editorService := editor.NewService(editor.NewRepository(db), slog.With("component", "editor_service"))
	authService := auth.NewService(auth.NewRepository(db), slog.With("component", "auth_service"))

	newUniverse := universeFactory(config.GlobalConfig.Simulation.PresetPath)
	u, err := newUniverse()
	if err != nil {
		slog.Error("Failed to build initial universe", "error", err)
		os.Exit(1)
	}
	slog.Info("Universe built", "body_count", u.BodyCount())

	simService := universe.NewService(u, config.GlobalConfig.Simulation)
	simService.Start()
	defer simService.Shutdown()

	var sessionBackend *goredis.Client
	if redisClient != nil {
		sessionBackend = redisClient.Client
	}
	sessionService := session.NewService(sessionBackend)

	universeRepo := universe.NewRepository(db)

	routes := server.NewRoutes(
		db,
		redisClient,
		editorService,
		authService,
		oauthConfig,
		simService,
		sessionService,
		universeRepo,
		newUniverse,
		slog.With("component", "routes"),
	)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: config.GlobalConfig.RateLimit.RequestsPerSecond,
		BurstSize:         config.GlobalConfig.RateLimit.BurstSize,
		Enabled:           config.GlobalConfig.RateLimit.Enabled,
		TrustProxy:        config.GlobalConfig.Server.Environment == "production",
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + config.GlobalConfig.Server.Port,
		Handler:      handler,
		ReadTimeout:  config.GlobalConfig.Server.ReadTimeout,
		WriteTimeout: config.GlobalConfig.Server.WriteTimeout,
		IdleTimeout:  config.GlobalConfig.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Graceful shutdown failed, forcing close", "error", err)
			_ = srv.Close()
		}
	}

	slog.Info("Server stopped")
}

// universeFactory returns a builder for the configured universe preset so
// the reset endpoint can rebuild the same world the server booted with.
func universeFactory(presetPath string) func() (*universe.Universe, error) {
	return func() (*universe.Universe, error) {
		if presetPath == "" {
			return universe.DefaultPreset().Build()
		}
		preset, err := universe.LoadPreset(presetPath)
		if err != nil {
			return nil, err
		}
		return preset.Build()
	}
}
