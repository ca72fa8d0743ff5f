package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/models"
)

type dashboardResponse struct {
	Profile     *models.UserProfile      `json:"profile"`
	Stats       *models.ApplicationStats `json:"stats"`
	Recent      []models.Application     `json:"recent_applications"`
	Experiences []models.Experience      `json:"experiences"`
	Education   []models.Education       `json:"education"`
}

// handleDashboard aggregates the profile page in parallel; one failed
// lookup fails the whole response.
func (s *Server) handleDashboard(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var response dashboardResponse

	group, _ := errgroup.WithContext(c.Request.Context())

	group.Go(func() error {
		result := s.store.FetchProfileByUserID(identity.ID)
		if result.Failure() {
			return result.Error()
		}
		response.Profile = result.Value()
		return nil
	})

	group.Go(func() error {
		result := s.store.FetchApplicationStats(identity.ID)
		if result.Failure() {
			return result.Error()
		}
		response.Stats = result.Value()
		return nil
	})

	group.Go(func() error {
		result := s.store.ListApplications(identity.ID, "")
		if result.Failure() {
			return result.Error()
		}
		applications := result.Value()
		if len(applications) > 5 {
			applications = applications[:5]
		}
		response.Recent = applications
		return nil
	})

	group.Go(func() error {
		result := s.store.ListExperiences(identity.ID)
		if result.Failure() {
			return result.Error()
		}
		response.Experiences = result.Value()
		return nil
	})

	group.Go(func() error {
		result := s.store.ListEducation(identity.ID)
		if result.Failure() {
			return result.Error()
		}
		response.Education = result.Value()
		return nil
	})

	if err := group.Wait(); err != nil {
		s.logger.Error("dashboard aggregation failed",
			"user_id", identity.ID,
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response)
}
