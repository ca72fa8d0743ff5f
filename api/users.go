package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getori/ori/core-api/auth"
)

func (s *Server) handleMe(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c.Request.Context())

	result := s.store.FetchProfileByUserID(identity.ID)
	if result.Failure() {
		s.respondResultError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      identity.ID,
		"email":   identity.Email,
		"profile": result.Value(),
	})
}
