package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"surveystudio/internal/backend"
	"surveystudio/internal/cache"
	"surveystudio/internal/config"
	"surveystudio/internal/events"
	"surveystudio/internal/logger"
	"surveystudio/internal/service"
	"surveystudio/internal/transport/rest"
	"surveystudio/internal/transport/rest/middleware"
	"surveystudio/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info("started")
	ctx := context.Background()

	log.Infof("Backend: %s (timeout %v, %d attempts)", cfg.BackendURL, cfg.BackendTimeout, cfg.BackendMaxRetries)
	if cfg.AI.IsEnabled() {
		log.Infof("AI assist: enabled (%.1f/min, burst %d, timeout %v)", cfg.AI.RatePerMinute, cfg.AI.Burst, cfg.AI.Timeout())
	} else {
		log.Info("AI assist: disabled")
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}
	log.Info("Connected to Redis")

	// Lifecycle events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	} else {
		log.Warn("KAFKA_BROKERS not set, lifecycle events are dropped")
	}
	defer publisher.Close()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()
	log.Info("WebSocket hub started")

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)
	draftCache := cache.NewDraftCache(rdb, cfg.EditorSessionTTL)
	resultsCache := cache.NewResultsCache(rdb, cfg.ResultsCacheTTL)

	// Initialize services
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, cfg.BackendMaxRetries, log)
	authSvc := service.NewAuthService(client, sessionCache, cfg.JWTSecret, cfg.SessionTTL, log)
	surveySvc := service.NewSurveyService(client, resultsCache, publisher, authSvc, log)
	editorSvc := service.NewEditorService(client, client, draftCache, publisher, authSvc, cfg.AI.Timeout(), log)
	resultsSvc := service.NewResultsService(client, resultsCache, authSvc, log)
	exportSvc := service.NewExportService(client, publisher, authSvc, log)
	adminSvc := service.NewAdminService(client, authSvc, log)
	responseSvc := service.NewResponseService(client, resultsCache, publisher, authSvc, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	editorSvc.SetBroadcaster(wsHub)

	// AI rate limiter, idle sessions pruned in the background
	aiLimiter := middleware.NewRateLimiter(cfg.AI.RatePerMinute, cfg.AI.Burst)
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go aiLimiter.Cleanup(limiterCtx, time.Minute, time.Hour)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		SurveyService:   surveySvc,
		EditorService:   editorSvc,
		ResultsService:  resultsSvc,
		ExportService:   exportSvc,
		AdminService:    adminSvc,
		ResponseService: responseSvc,
		WSHub:           wsHub,
		AI:              cfg.AI,
		AILimiter:       aiLimiter,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Log:             log,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on :%s", cfg.Port)
		log.Info("Endpoints:")
		log.Info("  POST /v1/auth/login | register | google")
		log.Info("  GET  /v1/surveys, /v1/profile, /v1/browse/{niceUrl}")
		log.Info("  POST /v1/browse/{niceUrl}/responses")
		log.Info("  POST /v1/editors, /v1/editors/{id}/commands, /v1/editors/{id}/save")
		log.Info("  GET  /v1/results/{surveyId}")
		log.Info("  GET  /v1/surveys/{surveyId}/export/{format}, POST /v1/exports")
		log.Info("  GET  /v1/admin/users, POST /v1/admin/ban/{userId}")
		log.Info("  WS   /v1/ws/editor/{id}")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
