package api

import (
	"context"
	"errors"
	"net/http"

	"flaggate/internal/dto/req"
	"flaggate/internal/dto/resp"
	"flaggate/internal/service"
	v1 "flaggate/pkg/api/v1"

	"github.com/gin-gonic/gin"
)

type FlagProvider interface {
	CreateFlag(ctx context.Context, name string, enabled bool, description string) (uint64, error)
	Evaluate(ctx context.Context, userID, featureName string) (*v1.Decision, error)
	UpsertOverride(ctx context.Context, userID, featureName string, enabled bool) error
	DeleteOverride(ctx context.Context, userID, featureName string) error
	Health(ctx context.Context) error
}

type FlagHandler struct {
	service FlagProvider
}

func NewFlagHandler(service FlagProvider) *FlagHandler {
	return &FlagHandler{service: service}
}

func (h *FlagHandler) CreateFlag(c *gin.Context) {
	var r req.CreateFlagRequest

	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "Name and enabled are required"})
		return
	}

	_, err := h.service.CreateFlag(c.Request.Context(), r.Name, *r.Enabled, r.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFlagExists):
			c.JSON(http.StatusConflict, resp.ErrorResponse{Error: "Feature flag already exists"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "Name and enabled are required"})
		default:
			c.JSON(http.StatusInternalServerError, resp.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, resp.MessageResponse{Message: "Feature flag created successfully"})
}

func (h *FlagHandler) Evaluate(c *gin.Context) {
	var r req.EvaluateRequest
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID and feature name are required"})
		return
	}

	decision, err := h.service.Evaluate(c.Request.Context(), r.UserID, r.FeatureName)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, resp.ErrorResponse{Error: "User ID and feature name are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, resp.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}

func (h *FlagHandler) HealthCheck(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
