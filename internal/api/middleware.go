package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"greenpulse/internal/auth"
	"greenpulse/internal/models"
)

// Context key under which the auth middleware stores the acting user.
const ctxUserKey = "user"

// requireAuth resolves the bearer token into the acting user and aborts
// with 401 otherwise. Every verification failure looks identical to the
// client; the specific kind only reaches the log.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			unauthorized(c)
			return
		}

		user, err := h.resolver.Resolve(c.Request.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			if !auth.IsAuthError(err) {
				// Store failure, not a bad credential
				log.Printf("[api] identity resolution failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
				return
			}
			log.Printf("[api] token rejected: %v", err)
			unauthorized(c)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
}

// actingUser returns the user the auth middleware resolved for this request.
func actingUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// recordStats feeds every completed request into the stats tracker.
func (h *Handler) recordStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.stats.Record(c.Writer.Status(), time.Since(start))
	}
}
