// Package api exposes the HTTP surface: route wiring, request validation
// and the translation of service results into status codes.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/billing"
	"github.com/getori/ori/core-api/matching"
	"github.com/getori/ori/core-api/models"
)

type Server struct {
	logger        *slog.Logger
	store         *models.ApiStore
	billing       *billing.Service
	webhooks      *billing.WebhookProcessor
	notifications billing.Notifier
	matcher       *matching.Matcher
	verifier      *auth.Verifier
	webhookSecret string
}

type ServerConfig struct {
	Logger        *slog.Logger
	Store         *models.ApiStore
	Billing       *billing.Service
	Webhooks      *billing.WebhookProcessor
	Notifications billing.Notifier
	Matcher       *matching.Matcher
	Verifier      *auth.Verifier
	WebhookSecret string
}

func NewServer(cfg ServerConfig) *Server {
	return &Server{
		logger:        cfg.Logger.With("component", "api"),
		store:         cfg.Store,
		billing:       cfg.Billing,
		webhooks:      cfg.Webhooks,
		notifications: cfg.Notifications,
		matcher:       cfg.Matcher,
		verifier:      cfg.Verifier,
		webhookSecret: cfg.WebhookSecret,
	}
}

// Router mounts every route. The webhook and the unsubscribe-by-token
// routes skip bearer auth; everything else under /api/v1 requires it.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")

	// Raw-body routes stay outside the auth middleware.
	v1.POST("/payments/webhook", s.handleWebhook)
	v1.POST("/notifications/unsubscribe/:token", s.handleUnsubscribeByToken)

	authed := v1.Group("")
	authed.Use(auth.Middleware(s.verifier, s.logger))

	authed.POST("/payments/checkout", s.handleCheckout)
	authed.POST("/payments/portal", s.handlePortal)
	authed.POST("/subscriptions", s.handleCreateSubscription)
	authed.POST("/setup-intent", s.handleSetupIntent)

	authed.GET("/applications", s.handleListApplications)
	authed.POST("/applications", s.handleCreateApplication)
	authed.GET("/applications/stats", s.handleApplicationStats)
	authed.PUT("/applications/:id", s.handleUpdateApplication)
	authed.DELETE("/applications/:id", s.handleDeleteApplication)

	authed.GET("/experiences", s.handleListExperiences)
	authed.POST("/experiences", s.handleCreateExperience)
	authed.PUT("/experiences/:id", s.handleUpdateExperience)
	authed.DELETE("/experiences/:id", s.handleDeleteExperience)

	authed.GET("/education", s.handleListEducation)
	authed.POST("/education", s.handleCreateEducation)
	authed.PUT("/education/:id", s.handleUpdateEducation)
	authed.DELETE("/education/:id", s.handleDeleteEducation)

	authed.GET("/jobs", s.handleListJobs)
	authed.POST("/jobs/find-matches", s.handleFindMatches)
	authed.POST("/jobs/initial-search", s.handleInitialSearch)

	authed.GET("/dashboard", s.handleDashboard)
	authed.GET("/users/me", s.handleMe)

	authed.GET("/notifications/preferences", s.handleGetPreferences)
	authed.PUT("/notifications/preferences", s.handleUpdatePreferences)
	authed.GET("/notifications/history", s.handleNotificationHistory)
	authed.POST("/notifications/unsubscribe", s.handleUnsubscribe)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
