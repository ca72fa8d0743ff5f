package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/models"
)

type applicationRequest struct {
	JobTitle        string  `json:"job_title" binding:"required"`
	Company         string  `json:"company" binding:"required"`
	Location        *string `json:"location"`
	JobURL          *string `json:"job_url" binding:"omitempty,url"`
	Status          string  `json:"status" binding:"omitempty,oneof=saved applied interviewing offer rejected"`
	Notes           *string `json:"notes"`
	ApplicationDate *string `json:"application_date" binding:"omitempty,datetime=2006-01-02"`
}

type applicationUpdateRequest struct {
	JobTitle        *string `json:"job_title"`
	Company         *string `json:"company"`
	Location        *string `json:"location"`
	JobURL          *string `json:"job_url" binding:"omitempty,url"`
	Status          *string `json:"status" binding:"omitempty,oneof=saved applied interviewing offer rejected"`
	Notes           *string `json:"notes"`
	ApplicationDate *string `json:"application_date" binding:"omitempty,datetime=2006-01-02"`
}

func (s *Server) handleListApplications(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.ListApplications(identity.ID, c.Query("status"))
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": result.Value()})
}

func (s *Server) handleApplicationStats(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.FetchApplicationStats(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

func (s *Server) handleCreateApplication(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req applicationRequest
	if !bindJSON(c, &req) {
		return
	}

	application := &models.Application{
		UserID:   identity.ID,
		JobTitle: req.JobTitle,
		Company:  req.Company,
		Location: req.Location,
		JobURL:   req.JobURL,
		Status:   req.Status,
		Notes:    req.Notes,
	}
	if application.Status == "" {
		application.Status = models.ApplicationSaved
	}
	if req.ApplicationDate != nil {
		date, _ := time.Parse("2006-01-02", *req.ApplicationDate)
		application.ApplicationDate = date
	}

	result := s.store.CreateApplication(application)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusCreated, result.Value())
}

func (s *Server) handleUpdateApplication(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req applicationUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.JobTitle != nil {
		updates["job_title"] = *req.JobTitle
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.JobURL != nil {
		updates["job_url"] = *req.JobURL
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.ApplicationDate != nil {
		date, _ := time.Parse("2006-01-02", *req.ApplicationDate)
		updates["application_date"] = date
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	result := s.store.UpdateApplication(identity.ID, c.Param("id"), updates)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

func (s *Server) handleDeleteApplication(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.DeleteApplication(identity.ID, c.Param("id"))
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.Status(http.StatusNoContent)
}
