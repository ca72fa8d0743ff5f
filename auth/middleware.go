package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware enforces bearer auth and injects the verified identity into
// the request context. Stateless per request, no session cache.
func Middleware(verifier *Verifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondUnauthorized(c, "missing authorization header")
			return
		}

		token, ok := extractBearerToken(header)
		if !ok {
			respondUnauthorized(c, "invalid authorization header")
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Info("token rejected", "path", c.Request.URL.Path, "error", err.Error())
			respondUnauthorized(c, "invalid token")
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
