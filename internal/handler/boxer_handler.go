package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// BoxerHandler exposes athlete endpoints.
type BoxerHandler struct {
	boxers *service.BoxerService
}

// NewBoxerHandler constructs BoxerHandler.
func NewBoxerHandler(boxers *service.BoxerService) *BoxerHandler {
	return &BoxerHandler{boxers: boxers}
}

// Create registers an athlete.
func (h *BoxerHandler) Create(c *gin.Context) {
	var req service.CreateBoxerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	boxer, err := h.boxers.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, boxer)
}

// Get resolves a boxer by id, public id or exact name.
func (h *BoxerHandler) Get(c *gin.Context) {
	boxer, err := h.boxers.Get(c.Request.Context(), actorFromContext(c), c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, boxer, nil)
}

// List returns the actor's visible boxers with optional search.
func (h *BoxerHandler) List(c *gin.Context) {
	req := service.ListBoxersRequest{Search: c.Query("search")}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = size
	}
	boxers, pagination, err := h.boxers.List(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, boxers, pagination)
}

// Delete removes a boxer.
func (h *BoxerHandler) Delete(c *gin.Context) {
	actor := actorFromContext(c)
	boxer, err := h.boxers.Get(c.Request.Context(), actor, c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.boxers.Delete(c.Request.Context(), actor, boxer.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Share makes a boxer visible to another gym.
func (h *BoxerHandler) Share(c *gin.Context) {
	var req struct {
		GymID string `json:"gym_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	actor := actorFromContext(c)
	boxer, err := h.boxers.Get(c.Request.Context(), actor, c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.boxers.Share(c.Request.Context(), actor, boxer.ID, req.GymID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkImport registers a batch of athletes with per-row validation.
func (h *BoxerHandler) BulkImport(c *gin.Context) {
	var req service.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.boxers.BulkImport(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
