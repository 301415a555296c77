package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenpulse/internal/models"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type validateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Register creates a user and, as a convenience, logs it straight in by
// including a freshly issued token in the response.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         user,
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.tokens.TTL().Seconds()),
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
	})
}

// Validate introspects a token. It never returns an error status: an
// unusable token is simply {"valid": false}.
func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "username": nil})
		return
	}

	subject, err := h.tokens.Verify(req.Token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "username": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "username": subject})
}

// GetUser returns a user by id.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers returns users with offset/limit pagination and an optional
// exact username filter.
func (h *Handler) ListUsers(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)

	users, err := h.users.List(c.Request.Context(), offset, limit, c.Query("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser applies a partial update. Only the user itself may update.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, patch, actingUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and, with it, every tree it owns. Only
// self-delete is permitted.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id, actingUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserTrees returns the trees owned by a user.
func (h *Handler) ListUserTrees(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	// 404 for a missing owner, not an empty list
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	trees, err := h.trees.ListByOwner(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trees)
}
