package handler

import (
	"net/http"

	"github.com/CloudGreet/voice-service/internal/cache"
	"github.com/CloudGreet/voice-service/internal/config"
	"github.com/CloudGreet/voice-service/internal/repository"
	callsvc "github.com/CloudGreet/voice-service/internal/services/call"
	"github.com/CloudGreet/voice-service/internal/services/conversation"
	"github.com/CloudGreet/voice-service/internal/telephony"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/CloudGreet/voice-service/pkg/notify"
	"github.com/CloudGreet/voice-service/pkg/redis"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// webhook endpoint rate limit
const (
	webhookRatePerSecond = 50
	webhookRateBurst     = 100
)

// HandlerManager wires repositories, services, and handlers together and
// registers all HTTP routes
type HandlerManager struct {
	config      *config.Config
	repoManager repository.RepositoryManager
	redisSvc    redis.RedisServiceInterface

	voiceHandler  *VoiceWebhookHandler
	adminHandler  *AdminHandler
	healthHandler *HealthHandler
}

// NewHandlerManager creates and initializes all handlers and services
func NewHandlerManager(cfg *config.Config) (*HandlerManager, error) {
	// Initialize database connection
	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Redis is optional; without it, webhook dedup falls back to the
	// in-process cache
	var redisSvc redis.RedisServiceInterface
	svc, err := redis.NewRedisService(redis.LoadRedisConfigFromEnv())
	if err != nil {
		logger.Base().Warn("failed to initialize redis service, webhook dedup is process-local", zap.Error(err))
	} else {
		redisSvc = svc
	}

	lookup := cache.NewReceptionistCache()
	generator := conversation.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, repoManager)
	telnyxClient := telephony.NewClient(cfg.TelnyxAPIKey)
	notifier := notify.NewClient(cfg.NotifyEndpoint, cfg.NotifyAPIKey)

	service := callsvc.NewService(repoManager, lookup, generator, telnyxClient, notifier)

	return &HandlerManager{
		config:        cfg,
		repoManager:   repoManager,
		redisSvc:      redisSvc,
		voiceHandler:  NewVoiceWebhookHandler(service, cache.NewEventDeduper(redisSvc), cache.NewCallLocker(), cfg.TelnyxWebhookSecret),
		adminHandler:  NewAdminHandler(repoManager, lookup),
		healthHandler: NewHealthHandler(repoManager),
	}, nil
}

// SetupRoutes registers all routes on the router
func (m *HandlerManager) SetupRoutes(router *mux.Router) {
	router.Use(CORSMiddleware)
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware)

	// Telephony provider webhook
	webhook := router.PathPrefix("/webhooks").Subrouter()
	webhook.Use(RateLimitMiddleware(webhookRatePerSecond, webhookRateBurst))
	webhook.HandleFunc("/voice", m.voiceHandler.HandleWebhook).Methods("POST")

	// Admin back-office API
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(ValidationMiddleware)
	admin.Use(APIKeyMiddleware(m.config.JWTSecret))

	admin.HandleFunc("/businesses", m.adminHandler.CreateBusiness).Methods("POST")
	admin.HandleFunc("/businesses", m.adminHandler.ListBusinesses).Methods("GET")
	admin.HandleFunc("/businesses/{id}", m.adminHandler.GetBusiness).Methods("GET")
	admin.HandleFunc("/businesses/{id}", m.adminHandler.UpdateBusiness).Methods("PUT")
	admin.HandleFunc("/businesses/{id}", m.adminHandler.DisableBusiness).Methods("DELETE")

	admin.HandleFunc("/businesses/{id}/agents", m.adminHandler.CreateAgent).Methods("POST")
	admin.HandleFunc("/businesses/{id}/agents", m.adminHandler.ListAgents).Methods("GET")
	admin.HandleFunc("/agents/{id}", m.adminHandler.UpdateAgent).Methods("PUT")
	admin.HandleFunc("/agents/{id}/activate", m.adminHandler.ActivateAgent).Methods("POST")
	admin.HandleFunc("/agents/{id}", m.adminHandler.DeleteAgent).Methods("DELETE")

	admin.HandleFunc("/phone-numbers", m.adminHandler.AssignPhoneNumber).Methods("POST")
	admin.HandleFunc("/phone-numbers/{id}", m.adminHandler.UpdatePhoneNumber).Methods("PUT")
	admin.HandleFunc("/businesses/{id}/phone-numbers", m.adminHandler.ListPhoneNumbers).Methods("GET")

	admin.HandleFunc("/businesses/{id}/calls", m.adminHandler.ListCalls).Methods("GET")
	admin.HandleFunc("/calls/{callControlId}", m.adminHandler.GetCall).Methods("GET")

	// Health check
	router.HandleFunc("/health", m.healthHandler.HandleHealth).Methods("GET")

	logger.Base().Info("routes registered")
}

// Close releases the manager's connections
func (m *HandlerManager) Close() {
	if err := m.repoManager.Close(); err != nil {
		logger.Base().Warn("failed to close database connection", zap.Error(err))
	}
	if m.redisSvc != nil {
		if err := m.redisSvc.Close(); err != nil {
			logger.Base().Warn("failed to close redis connection", zap.Error(err))
		}
	}
}

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	repos repository.RepositoryManager
}

// NewHealthHandler creates the health handler
func NewHealthHandler(repos repository.RepositoryManager) *HealthHandler {
	return &HealthHandler{repos: repos}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.repos.Ping(r.Context()); err != nil {
		logger.Base().Warn("health check database ping failed", zap.Error(err))
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{"status": status})
}
