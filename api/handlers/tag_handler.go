package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kutbudev/duedeck/internal/service"
)

// TagInput DTO for creating a tag
type TagInput struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required,hexcolor"`
}

// ListTags returns all tags.
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.store.ListTags(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag creates a new tag.
func (h *Handler) CreateTag(c *gin.Context) {
	var input TagInput
	if !h.bindJSON(c, &input) {
		return
	}
	tag, err := h.store.CreateTag(c.Request.Context(), service.TagInput{Name: input.Name, Color: input.Color})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// DeleteTag detaches a tag from all tasks and deletes it.
func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	tag, err := h.store.DeleteTag(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
