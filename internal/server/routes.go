package server

import (
	"log/slog"
	"net/http"

	"orbitarium-server/internal/auth"
	authHandlers "orbitarium-server/internal/auth/handlers"
	"orbitarium-server/internal/editor"
	editorHandlers "orbitarium-server/internal/editor/handlers"
	"orbitarium-server/internal/middleware"
	serverHandlers "orbitarium-server/internal/server/handlers"
	"orbitarium-server/internal/session"
	sessionHandlers "orbitarium-server/internal/session/handlers"
	"orbitarium-server/internal/shared/database"
	"orbitarium-server/internal/shared/redis"
	"orbitarium-server/internal/universe"
	universeHandlers "orbitarium-server/internal/universe/handlers"
)

type Routes struct {
	db             *database.DB
	redis          *redis.Client
	editorService  *editor.Service
	authService    *auth.Service
	oauthConfig    *auth.OAuthConfig
	simService     *universe.Service
	sessionService *session.Service
	universeRepo   *universe.Repository
	newUniverse    func() (*universe.Universe, error)
	logger         *slog.Logger
}

func NewRoutes(
	db *database.DB,
	redisClient *redis.Client,
	editorService *editor.Service,
	authService *auth.Service,
	oauthConfig *auth.OAuthConfig,
	simService *universe.Service,
	sessionService *session.Service,
	universeRepo *universe.Repository,
	newUniverse func() (*universe.Universe, error),
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:             db,
		redis:          redisClient,
		editorService:  editorService,
		authService:    authService,
		oauthConfig:    oauthConfig,
		simService:     simService,
		sessionService: sessionService,
		universeRepo:   universeRepo,
		newUniverse:    newUniverse,
		logger:         logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis)
	meHandler := editorHandlers.NewMeHandler()
	logoutHandler := authHandlers.NewLogoutHandler()

	universeHandler := universeHandlers.NewUniverseHandler(r.simService, r.newUniverse)
	bodiesHandler := universeHandlers.NewBodiesHandler(r.simService)
	positionsHandler := universeHandlers.NewPositionsHandler(r.simService)
	snapshotsHandler := universeHandlers.NewSnapshotsHandler(r.simService, r.universeRepo)

	sessionsHandler := sessionHandlers.NewSessionsHandler(r.sessionService, r.simService)
	sceneHandler := sessionHandlers.NewSceneHandler(r.sessionService, r.simService)

	githubAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GitHubProvider,
		r.editorService,
		r.authService,
		r.oauthConfig.GitHubConfigured,
	)
	googleAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GoogleProvider,
		r.editorService,
		r.authService,
		r.oauthConfig.GoogleConfigured,
	)

	jwt := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTMiddleware(h)
	}

	// Public read endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.HandleFunc("GET /api/universe", universeHandler.Info)
	mux.Handle("GET /api/universe/positions", positionsHandler)
	mux.HandleFunc("GET /api/universe/bodies", bodiesHandler.ListBodies)
	mux.HandleFunc("GET /api/universe/bodies/{id}", bodiesHandler.GetBody)

	// Viewer sessions
	mux.HandleFunc("POST /api/sessions", sessionsHandler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", sessionsHandler.GetSession)
	mux.HandleFunc("POST /api/sessions/{id}/focus", sessionsHandler.SwitchFocus)
	mux.HandleFunc("POST /api/sessions/{id}/camera", sessionsHandler.MoveCamera)
	mux.Handle("POST /api/sessions/{id}/scene", sceneHandler)

	// Protected endpoints (authenticated editors)
	mux.Handle("GET /api/editors/me", middleware.JWTMiddleware(meHandler))
	mux.Handle("POST /api/universe/bodies", jwt(bodiesHandler.CreateBody))
	mux.Handle("PATCH /api/universe/bodies/{id}", jwt(bodiesHandler.UpdateBody))
	mux.Handle("DELETE /api/universe/bodies/{id}", jwt(bodiesHandler.DeleteBody))
	mux.Handle("POST /api/universe/bodies/{id}/duplicate", jwt(bodiesHandler.DuplicateBody))
	mux.Handle("POST /api/universe/bodies/{id}/move", jwt(bodiesHandler.MoveBody))
	mux.Handle("POST /api/universe/bodies/{id}/reorder", jwt(bodiesHandler.ReorderBody))
	mux.Handle("PUT /api/universe/settings", jwt(universeHandler.Settings))
	mux.Handle("POST /api/universe/tick", jwt(universeHandler.Tick))
	mux.Handle("POST /api/universe/reset", jwt(universeHandler.Reset))
	mux.Handle("/api/snapshots", middleware.JWTMiddleware(http.HandlerFunc(snapshotsHandler.Snapshots)))
	mux.Handle("/api/snapshots/{id}", middleware.JWTMiddleware(http.HandlerFunc(snapshotsHandler.Snapshot)))
	mux.Handle("POST /api/snapshots/{id}/restore", jwt(snapshotsHandler.RestoreSnapshot))

	// OAuth endpoints
	mux.HandleFunc("/auth/github", githubAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/github/callback", githubAuthHandler.HandleCallback)
	mux.HandleFunc("/auth/google", googleAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/google/callback", googleAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", logoutHandler)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/universe", "/api/universe/bodies", "/api/universe/positions", "/api/sessions"},
		"protected_endpoints", []string{"/api/editors/me", "/api/snapshots"},
		"auth_endpoints", []string{"/auth/github", "/auth/google", "/auth/logout"},
	)

	return mux
}
