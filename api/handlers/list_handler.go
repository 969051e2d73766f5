package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kutbudev/duedeck/internal/service"
)

// ListInput DTO for creating a list
type ListInput struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required,hexcolor"`
}

// RenameListInput DTO for renaming a list
type RenameListInput struct {
	Name string `json:"name" binding:"required,min=3"`
}

// ListLists returns all lists.
func (h *Handler) ListLists(c *gin.Context) {
	lists, err := h.store.ListLists(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// CreateList creates a new list.
func (h *Handler) CreateList(c *gin.Context) {
	var input ListInput
	if !h.bindJSON(c, &input) {
		return
	}
	list, err := h.store.CreateList(c.Request.Context(), service.ListInput{Name: input.Name, Color: input.Color})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// UpdateList renames a list.
func (h *Handler) UpdateList(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	var input RenameListInput
	if !h.bindJSON(c, &input) {
		return
	}
	list, err := h.store.UpdateList(c.Request.Context(), id, input.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteList deletes a list. Lists that still hold tasks answer 409.
func (h *Handler) DeleteList(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	list, err := h.store.DeleteList(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
