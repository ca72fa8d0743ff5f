package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 100
)

func (s *Server) handleListJobs(c *gin.Context) {
	limit := defaultJobListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(parsed, maxJobListLimit)
	}

	result := s.store.ListJobs(limit)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": result.Value()})
}

type findMatchesRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// handleFindMatches enforces the monthly quota before scoring: premium
// plans are unlimited, everyone else burns one use per call.
func (s *Server) handleFindMatches(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req findMatchesRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.UserID != identity.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	profileResult := s.store.FetchProfileByUserID(identity.ID)
	if profileResult.Failure() {
		s.respondResultError(c, profileResult)
		return
	}
	profile := profileResult.Value()

	if !profile.HasUnlimitedMatches() && profile.MonthlyJobMatchesUsed >= profile.MonthlyJobMatchesLimit {
		c.JSON(http.StatusForbidden, gin.H{"error": "monthly match limit reached"})
		return
	}

	jobsResult := s.store.ListJobs(defaultJobListLimit)
	if jobsResult.Failure() {
		s.respondResultError(c, jobsResult)
		return
	}

	matches := s.matcher.Rank(c.Request.Context(), profile, jobsResult.Value())

	if !profile.HasUnlimitedMatches() {
		if usageResult := s.store.IncrementMatchUsage(identity.ID); usageResult.Failure() {
			s.logger.Error("failed to increment match usage",
				"user_id", identity.ID,
				"error", usageResult.ErrorMsg())
		}
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

type initialSearchRequest struct {
	Query string `json:"query" binding:"required,min=2,max=100"`
}

func (s *Server) handleInitialSearch(c *gin.Context) {
	var req initialSearchRequest
	if !bindJSON(c, &req) {
		return
	}

	// Strip SQL wildcards so user input cannot widen the LIKE pattern.
	query := strings.NewReplacer("%", "", "_", "").Replace(req.Query)
	query = strings.TrimSpace(query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	result := s.store.SearchJobsByTitle(query, 20)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": result.Value()})
}
