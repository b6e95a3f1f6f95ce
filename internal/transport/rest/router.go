package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"surveystudio/internal/config"
	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest/handler"
	"surveystudio/internal/transport/rest/middleware"
	"surveystudio/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	SurveyService   *service.SurveyService
	EditorService   *service.EditorService
	ResultsService  *service.ResultsService
	ExportService   *service.ExportService
	AdminService    *service.AdminService
	ResponseService *service.ResponseService
	WSHub           *ws.Hub
	AI              *config.AIConfig
	AILimiter       *middleware.RateLimiter
	AllowedOrigins  []string
	Log             logrus.FieldLogger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	editorHandler := handler.NewEditorHandler(c.EditorService)
	resultsHandler := handler.NewResultsHandler(c.ResultsService)
	exportHandler := handler.NewExportHandler(c.ExportService, c.Log)
	adminHandler := handler.NewAdminHandler(c.AdminService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.EditorService, c.AllowedOrigins, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	v1.HandleFunc("/auth/google", authHandler.Google).Methods("POST")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/editor/{id}", wsHandler.EditorWS).Methods("GET")

	// Any signed-in session, banned or not
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)
	sessionRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	sessionRoutes.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")
	sessionRoutes.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	bannedRoutes := v1.NewRoute().Subrouter()
	bannedRoutes.Use(authMW.RequireSession, authMW.Require(service.PartitionBanned))
	bannedRoutes.HandleFunc("/banned", authHandler.Banned).Methods("GET")

	// User routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireSession, authMW.Require(service.PartitionUser))

	userRoutes.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	userRoutes.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")

	userRoutes.HandleFunc("/browse", responseHandler.Browse).Methods("GET")
	userRoutes.HandleFunc("/browse/{niceUrl}", responseHandler.Form).Methods("GET")
	userRoutes.HandleFunc("/browse/{niceUrl}/responses", responseHandler.Submit).Methods("POST")

	userRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET")
	userRoutes.HandleFunc("/surveys/{niceUrl}/close", surveyHandler.Close).Methods("POST")
	userRoutes.HandleFunc("/surveys/{surveyId}/export/{format}", exportHandler.Export).Methods("GET")
	userRoutes.HandleFunc("/exports", exportHandler.ExportAll).Methods("POST")

	userRoutes.HandleFunc("/editors", editorHandler.Open).Methods("POST")
	userRoutes.HandleFunc("/editors", editorHandler.List).Methods("GET")
	userRoutes.HandleFunc("/editors/{id}", editorHandler.Get).Methods("GET")
	userRoutes.HandleFunc("/editors/{id}", editorHandler.Discard).Methods("DELETE")
	userRoutes.HandleFunc("/editors/{id}/commands", editorHandler.Command).Methods("POST")
	userRoutes.HandleFunc("/editors/{id}/save", editorHandler.Save).Methods("POST")
	userRoutes.HandleFunc("/editors/{id}/navigate", editorHandler.Navigate).Methods("POST")
	userRoutes.HandleFunc("/editors/{id}/navigate/confirm", editorHandler.ConfirmNavigation).Methods("POST")
	userRoutes.HandleFunc("/editors/{id}/navigate/cancel", editorHandler.CancelNavigation).Methods("POST")

	userRoutes.HandleFunc("/results/{surveyId}", resultsHandler.Get).Methods("GET")
	userRoutes.HandleFunc("/results/{surveyId}/view", resultsHandler.View).Methods("GET")
	userRoutes.HandleFunc("/results/{surveyId}/trend", resultsHandler.Trend).Methods("GET")

	// AI assist routes (rate limited per session)
	if c.AI != nil && c.AI.IsEnabled() {
		limiter := c.AILimiter
		if limiter == nil {
			limiter = middleware.NewRateLimiter(c.AI.RatePerMinute, c.AI.Burst)
		}
		aiRoutes := userRoutes.NewRoute().Subrouter()
		aiRoutes.Use(limiter.Middleware)
		aiRoutes.HandleFunc("/editors/{id}/generate", editorHandler.Generate).Methods("POST")
		aiRoutes.HandleFunc("/editors/{id}/questions/{index:[0-9]+}/refine", editorHandler.Refine).Methods("POST")
	}

	// Admin routes
	adminRoutes := v1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireSession, authMW.Require(service.PartitionAdmin))
	adminRoutes.HandleFunc("/users", adminHandler.Users).Methods("GET")
	adminRoutes.HandleFunc("/ban/{userId}", adminHandler.Ban).Methods("POST")

	return corsHandler(c.AllowedOrigins).Handler(r)
}

// corsHandler allows every origin when none are configured
func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	})
}
