package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
)

const notificationHistoryLimit = 50

func (s *Server) handleGetPreferences(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.FetchOrCreatePreferences(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

type preferencesUpdateRequest struct {
	PaymentFailureEmails    *bool `json:"payment_failure_emails"`
	CardExpiringEmails      *bool `json:"card_expiring_emails"`
	TrialEndingEmails       *bool `json:"trial_ending_emails"`
	SubscriptionEmails      *bool `json:"subscription_emails"`
	RecommendationEmails    *bool `json:"recommendation_emails"`
	ApplicationStatusEmails *bool `json:"application_status_emails"`
	SecurityEmails          *bool `json:"security_emails"`
	WeeklyDigest            *bool `json:"weekly_digest"`
	Unsubscribed            *bool `json:"unsubscribed"`
}

func (s *Server) handleUpdatePreferences(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req preferencesUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	for column, value := range map[string]*bool{
		"payment_failure_emails":    req.PaymentFailureEmails,
		"card_expiring_emails":      req.CardExpiringEmails,
		"trial_ending_emails":       req.TrialEndingEmails,
		"subscription_emails":       req.SubscriptionEmails,
		"recommendation_emails":     req.RecommendationEmails,
		"application_status_emails": req.ApplicationStatusEmails,
		"security_emails":           req.SecurityEmails,
		"weekly_digest":             req.WeeklyDigest,
		"unsubscribed":              req.Unsubscribed,
	} {
		if value != nil {
			updates[column] = *value
		}
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	// Ensure the row exists before updating it; preferences are created
	// lazily on first read.
	if ensure := s.store.FetchOrCreatePreferences(identity.ID); ensure.Failure() {
		s.respondResultError(c, ensure)
		return
	}

	result := s.store.UpdatePreferences(identity.ID, updates)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

func (s *Server) handleNotificationHistory(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.ListNotifications(identity.ID, notificationHistoryLimit)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": result.Value()})
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	if ensure := s.store.FetchOrCreatePreferences(identity.ID); ensure.Failure() {
		s.respondResultError(c, ensure)
		return
	}

	result := s.store.UnsubscribeByUserID(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}

// handleUnsubscribeByToken serves one-click unsubscribe links from emails;
// the token is the only credential.
func (s *Server) handleUnsubscribeByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	result := s.store.UnsubscribeByToken(token)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}
