package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"files-manager/internal/model/apperr"
	"files-manager/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	TokenHeader = "X-Token"

	userIDKey = "userID"
	tokenKey  = "token"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (int64, error)
}

// RequireSession aborts with 401 unless the request carries a live session token.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolve(c, sessions) {
			return
		}
		if _, ok := c.Get(userIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalSession resolves a token when one is present and lets anonymous
// requests through. An invalid token is still rejected.
func OptionalSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolve(c, sessions) {
			c.Next()
		}
	}
}

// resolve stores the caller in c and returns false when the request was aborted.
func resolve(c *gin.Context, sessions SessionResolver) bool {
	token := extractToken(c.Request)
	if token == "" {
		return true
	}

	userID, err := sessions.ResolveSession(c.Request.Context(), token)
	if errors.Is(err, apperr.ErrUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	if err != nil {
		logger.GetLogger(c.Request.Context()).Error("failed to resolve session", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}

	c.Set(userIDKey, userID)
	c.Set(tokenKey, token)
	return true
}

func extractToken(r *http.Request) string {
	if token := r.Header.Get(TokenHeader); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// UserID is the authenticated caller, or 0 for anonymous requests.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
