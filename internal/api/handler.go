// Package api wires the GreenPulse services to HTTP through gin. Handlers
// bind typed request payloads, call a service, and map domain errors to
// statuses; no business rule lives here.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"greenpulse/internal/auth"
	"greenpulse/internal/models"
	"greenpulse/internal/service"
)

// Handler carries the service dependencies for all routes.
type Handler struct {
	users    *service.UserService
	trees    *service.TreeService
	tokens   *auth.TokenService
	resolver *auth.IdentityResolver
	stats    *Stats
	db       *gorm.DB
}

// NewHandler builds the handler from explicitly injected dependencies.
func NewHandler(users *service.UserService, trees *service.TreeService, tokens *auth.TokenService, db *gorm.DB) *Handler {
	return &Handler{
		users:    users,
		trees:    trees,
		tokens:   tokens,
		resolver: auth.NewIdentityResolver(tokens, subjectStore{users: users}),
		stats:    NewStats(),
		db:       db,
	}
}

// subjectStore adapts UserService to the identity resolver's contract:
// only a missing user maps to ErrUnknownSubject, store failures pass
// through untouched.
type subjectStore struct {
	users *service.UserService
}

func (s subjectStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, auth.ErrUnknownSubject
		}
		return nil, err
	}
	return user, nil
}

// NewRouter builds the gin engine with CORS, stats tracking and all routes.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(h.recordStats())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches every endpoint to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/stats", h.RequestStats)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/validate", h.Validate)

	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	r.GET("/users/:id/trees", h.ListUserTrees)

	r.GET("/trees", h.ListTrees)
	r.GET("/trees/:id", h.GetTree)

	protected := r.Group("/", h.requireAuth())
	protected.PUT("/users/:id", h.UpdateUser)
	protected.DELETE("/users/:id", h.DeleteUser)
	protected.POST("/trees", h.CreateTree)
	protected.PUT("/trees/:id", h.UpdateTree)
	protected.DELETE("/trees/:id", h.DeleteTree)
}

// Health reports liveness, including whether the store answers.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequestStats serves a snapshot of the in-process request statistics.
func (h *Handler) RequestStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}

// writeError maps domain errors to HTTP statuses. Anything unexpected is
// logged and reported as a plain 500 without internals.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	default:
		log.Printf("[api] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// idParam parses the :id path segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// intQuery reads an integer query parameter, falling back to def when the
// parameter is absent or unparsable. Range clamping happens in the services.
func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
