package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/models"
)

type experienceRequest struct {
	Company     string  `json:"company" binding:"required"`
	Role        string  `json:"role" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	IsCurrent   bool    `json:"is_current"`
	Description *string `json:"description"`
}

type experienceUpdateRequest struct {
	Company     *string `json:"company"`
	Role        *string `json:"role"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	IsCurrent   *bool   `json:"is_current"`
	Description *string `json:"description"`
}

func (s *Server) handleListExperiences(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.ListExperiences(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"experiences": result.Value()})
}

func (s *Server) handleCreateExperience(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req experienceRequest
	if !bindJSON(c, &req) {
		return
	}

	experience := &models.Experience{
		UserID:      identity.ID,
		Company:     req.Company,
		Role:        req.Role,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsCurrent:   req.IsCurrent,
		Description: req.Description,
	}

	result := s.store.CreateExperience(experience)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusCreated, result.Value())
}

func (s *Server) handleUpdateExperience(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req experienceUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.IsCurrent != nil {
		updates["is_current"] = *req.IsCurrent
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	result := s.store.UpdateExperience(identity.ID, c.Param("id"), updates)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

func (s *Server) handleDeleteExperience(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.DeleteExperience(identity.ID, c.Param("id"))
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.Status(http.StatusNoContent)
}
