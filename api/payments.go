package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/billing"
)

const maxWebhookBodyBytes = int64(65536)

type checkoutRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	PriceID string `json:"price_id" binding:"required"`
}

func (s *Server) handleCheckout(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	// Users can only start checkout for themselves.
	if req.UserID != identity.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	result := s.billing.CreateCheckoutSession(c.Request.Context(), identity.ID, identity.Email, req.PriceID)
	if result.Failure() {
		if errors.Is(result.Error(), billing.ErrUnknownPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown price id"})
			return
		}
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.Value()})
}

func (s *Server) handlePortal(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.billing.CreatePortalSession(c.Request.Context(), identity.ID)
	if result.Failure() {
		if errors.Is(result.Error(), billing.ErrNoCustomer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no billing customer on file"})
			return
		}
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.Value()})
}

type createSubscriptionRequest struct {
	PriceID         string `json:"price_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

func (s *Server) handleCreateSubscription(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req createSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	result := s.billing.CreateSubscription(c.Request.Context(), identity.ID, identity.Email, req.PriceID, req.PaymentMethodID)
	if result.Failure() {
		if errors.Is(result.Error(), billing.ErrUnknownPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown price id"})
			return
		}
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusCreated, result.Value())
}

func (s *Server) handleSetupIntent(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.billing.CreateSetupIntent(c.Request.Context(), identity.ID, identity.Email)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client_secret": result.Value()})
}

// handleWebhook verifies the provider signature before any processing.
// Bad signatures are a 400 with no writes; failures after verification are
// a 500 so the provider redelivers.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		s.logger.Info("webhook signature verification failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	result := s.webhooks.ProcessEvent(c.Request.Context(), event)
	if result.Failure() {
		if result.ErrorCode() == billing.ErrorCodeInvalidPayload {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
