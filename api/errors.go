package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/getori/ori/core-api/utils"
)

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON binds and validates a request body, answering 400 with
// field-level errors on failure. Returns false when the request was
// already answered.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			details := make([]fieldError, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				details = append(details, fieldError{
					Field: fieldErr.Field(),
					Rule:  fieldErr.Tag(),
				})
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation failed",
				"details": details,
			})
			return false
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}

	return true
}

// respondResultError maps a failed service result to a status code:
// not-found rows become 404, everything else is captured and becomes 500.
func (s *Server) respondResultError(c *gin.Context, result utils.AnyResult) {
	if errors.Is(result.Error(), gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"error", result.ErrorMsg())

	if result.IsCapturable() {
		utils.CaptureErrorResult(result)
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
