package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// PerformanceHandler exposes fitness test endpoints.
type PerformanceHandler struct {
	performance *service.PerformanceService
}

// NewPerformanceHandler constructs PerformanceHandler.
func NewPerformanceHandler(performance *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performance: performance}
}

// CreateTest registers a fitness test.
func (h *PerformanceHandler) CreateTest(c *gin.Context) {
	var req service.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	test, err := h.performance.CreateTest(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, test)
}

// ListTests returns the tests visible to the actor.
func (h *PerformanceHandler) ListTests(c *gin.Context) {
	tests, err := h.performance.ListTests(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tests, nil)
}

// DeleteTest removes a test with its results.
func (h *PerformanceHandler) DeleteTest(c *gin.Context) {
	if err := h.performance.DeleteTest(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordResult upserts one result sheet.
func (h *PerformanceHandler) RecordResult(c *gin.Context) {
	var req service.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.performance.RecordResult(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// DeleteResult clears one result sheet.
func (h *PerformanceHandler) DeleteResult(c *gin.Context) {
	err := h.performance.DeleteResult(c.Request.Context(), actorFromContext(c),
		c.Param("boxerId"), c.Param("id"), c.Query("phase"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BestResult returns a boxer's best score for a test and phase.
func (h *PerformanceHandler) BestResult(c *gin.Context) {
	best, err := h.performance.BestResult(c.Request.Context(), actorFromContext(c),
		c.Param("boxerId"), c.Param("id"), c.Query("phase"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"best": best}, nil)
}

// Improvement compares preparation vs peak bests for a boxer and test.
func (h *PerformanceHandler) Improvement(c *gin.Context) {
	improvement, err := h.performance.Improvement(c.Request.Context(), actorFromContext(c),
		c.Param("boxerId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, improvement, nil)
}

// Ranking orders visible boxers by their best score for a test.
func (h *PerformanceHandler) Ranking(c *gin.Context) {
	rows, err := h.performance.Ranking(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
