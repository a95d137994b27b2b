package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// VitalsHandler exposes weight and heart-rate endpoints.
type VitalsHandler struct {
	weights    *service.WeightService
	heartRates *service.HeartRateService
}

// NewVitalsHandler constructs VitalsHandler.
func NewVitalsHandler(weights *service.WeightService, heartRates *service.HeartRateService) *VitalsHandler {
	return &VitalsHandler{weights: weights, heartRates: heartRates}
}

// RecordWeight stores a standalone weight sample.
func (h *VitalsHandler) RecordWeight(c *gin.Context) {
	var req service.RecordWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sample, err := h.weights.Record(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sample)
}

// LatestWeight returns a boxer's most recent sample.
func (h *VitalsHandler) LatestWeight(c *gin.Context) {
	sample, err := h.weights.Latest(c.Request.Context(), actorFromContext(c), c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sample, nil)
}

// WeightProgress summarises a boxer's weight history per day.
func (h *VitalsHandler) WeightProgress(c *gin.Context) {
	progress, err := h.weights.Progress(c.Request.Context(), actorFromContext(c),
		c.Param("ref"), c.Query("fighting_weight"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// RecordHeartRate stores a resting heart-rate sample.
func (h *VitalsHandler) RecordHeartRate(c *gin.Context) {
	var req service.RecordHeartRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sample, err := h.heartRates.Record(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sample)
}

// HeartRateHistory returns a boxer's samples, newest first.
func (h *VitalsHandler) HeartRateHistory(c *gin.Context) {
	samples, err := h.heartRates.History(c.Request.Context(), actorFromContext(c), c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, samples, nil)
}

// HeartRateLatest returns each visible boxer's most recent sample.
func (h *VitalsHandler) HeartRateLatest(c *gin.Context) {
	latest, err := h.heartRates.LatestSummary(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, latest, nil)
}
