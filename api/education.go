package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/models"
)

type educationRequest struct {
	Institution  string  `json:"institution" binding:"required"`
	Degree       string  `json:"degree" binding:"required"`
	FieldOfStudy *string `json:"field_of_study"`
	StartDate    string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	IsCurrent    bool    `json:"is_current"`
	Description  *string `json:"description"`
}

type educationUpdateRequest struct {
	Institution  *string `json:"institution"`
	Degree       *string `json:"degree"`
	FieldOfStudy *string `json:"field_of_study"`
	StartDate    *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	IsCurrent    *bool   `json:"is_current"`
	Description  *string `json:"description"`
}

func (s *Server) handleListEducation(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.ListEducation(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"education": result.Value()})
}

func (s *Server) handleCreateEducation(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req educationRequest
	if !bindJSON(c, &req) {
		return
	}

	education := &models.Education{
		UserID:       identity.ID,
		Institution:  req.Institution,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsCurrent:    req.IsCurrent,
		Description:  req.Description,
	}

	result := s.store.CreateEducation(education)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusCreated, result.Value())
}

func (s *Server) handleUpdateEducation(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	var req educationUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.Institution != nil {
		updates["institution"] = *req.Institution
	}
	if req.Degree != nil {
		updates["degree"] = *req.Degree
	}
	if req.FieldOfStudy != nil {
		updates["field_of_study"] = *req.FieldOfStudy
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

	result := s.store.UpdateEducation(identity.ID, c.Param("id"), updates)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, result.Value())
}

func (s *Server) handleDeleteEducation(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.DeleteEducation(identity.ID, c.Param("id"))
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.Status(http.StatusNoContent)
}
