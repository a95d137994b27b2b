package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Mark saves one boxer's mark for a class and date. A save without status
// and weight clears the mark and returns 204.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stored, err := h.attendance.Mark(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if stored == nil {
		response.NoContent(c)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveMark(string(stored.Status()))
	}
	response.JSON(c, http.StatusOK, stored, nil)
}

// BatchMark saves a whole class form for one date.
func (h *AttendanceHandler) BatchMark(c *gin.Context) {
	var req service.BatchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.BatchMark(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SweepAbsent marks every enrolled, unmarked boxer absent.
func (h *AttendanceHandler) SweepAbsent(c *gin.Context) {
	var req struct {
		ClassID string `json:"class_id"`
		Date    string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.SweepAbsent(c.Request.Context(), actorFromContext(c), req.ClassID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSweep()
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List returns attendance rows inside the actor's scope.
func (h *AttendanceHandler) List(c *gin.Context) {
	req := service.AttendanceListRequest{
		BoxerID: c.Query("boxer_id"),
		ClassID: c.Query("class_id"),
		Search:  c.Query("search"),
	}
	if raw := c.Query("date"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			req.Date = &date
		}
	}
	if raw := c.Query("from"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			req.DateFrom = &date
		}
	}
	if raw := c.Query("to"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			req.DateTo = &date
		}
	}
	if raw := c.Query("present"); raw != "" {
		if present, err := strconv.ParseBool(raw); err == nil {
			req.Present = &present
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = size
	}
	rows, pagination, err := h.attendance.List(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Summary aggregates one boxer's attendance counts and percentages.
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.attendance.Summary(c.Request.Context(), actorFromContext(c), c.Param("boxerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
