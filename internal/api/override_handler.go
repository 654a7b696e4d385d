package api

import (
	"errors"
	"net/http"

	"flaggate/internal/dto/req"
	"flaggate/internal/dto/resp"
	"flaggate/internal/service"

	"github.com/gin-gonic/gin"
)

type OverrideHandler struct {
	service FlagProvider
}

func NewOverrideHandler(service FlagProvider) *OverrideHandler {
	return &OverrideHandler{service: service}
}

func (h *OverrideHandler) UpsertOverride(c *gin.Context) {
	var r req.UpsertOverrideRequest

	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID, feature name and enabled are required"})
		return
	}

	if err := h.service.UpsertOverride(c.Request.Context(), r.UserID, r.FeatureName, *r.Enabled); err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID, feature name and enabled are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, resp.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp.MessageResponse{Message: "User feature override created/updated successfully"})
}

func (h *OverrideHandler) DeleteOverride(c *gin.Context) {
	var r req.DeleteOverrideRequest

	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID and feature name are required"})
		return
	}

	err := h.service.DeleteOverride(c.Request.Context(), r.UserID, r.FeatureName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOverrideNotFound):
			c.JSON(http.StatusNotFound, resp.ErrorResponse{Error: "User feature override not found"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID and feature name are required"})
		default:
			c.JSON(http.StatusInternalServerError, resp.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp.MessageResponse{Message: "User feature override deleted successfully"})
}
