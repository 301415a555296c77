package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenpulse/internal/models"
)

type createTreeRequest struct {
	Species   string  `json:"species" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateTree plants a tree owned by the authenticated caller. Any owner
// field in the payload is ignored; ownership comes from the token alone.
func (h *Handler) CreateTree(c *gin.Context) {
	var req createTreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tree, err := h.trees.Create(c.Request.Context(), req.Species, req.Latitude, req.Longitude, actingUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tree)
}

// GetTree returns a tree by id.
func (h *Handler) GetTree(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	tree, err := h.trees.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// ListTrees returns trees with offset/limit pagination.
func (h *Handler) ListTrees(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)

	trees, err := h.trees.List(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trees)
}

// UpdateTree applies a partial update. Only the owner may update.
func (h *Handler) UpdateTree(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch models.TreePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tree, err := h.trees.Update(c.Request.Context(), id, patch, actingUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// DeleteTree removes a tree. Only the owner may delete.
func (h *Handler) DeleteTree(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.trees.Delete(c.Request.Context(), id, actingUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
