package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// GymHandler exposes gym administration endpoints.
type GymHandler struct {
	gyms *service.GymService
}

// NewGymHandler constructs GymHandler.
func NewGymHandler(gyms *service.GymService) *GymHandler {
	return &GymHandler{gyms: gyms}
}

// Create registers a gym.
func (h *GymHandler) Create(c *gin.Context) {
	var req service.CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	gym, err := h.gyms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gym)
}

// Get returns one gym.
func (h *GymHandler) Get(c *gin.Context) {
	gym, err := h.gyms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gym, nil)
}

// List returns all gyms.
func (h *GymHandler) List(c *gin.Context) {
	gyms, err := h.gyms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gyms, nil)
}

// Delete removes a gym that owns no boxers or classes.
func (h *GymHandler) Delete(c *gin.Context) {
	if err := h.gyms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
