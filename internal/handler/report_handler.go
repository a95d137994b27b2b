package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	"github.com/ringside/boxclub-api/pkg/response"
)

// ReportHandler exposes report and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// BoxerReport returns the season report as JSON, CSV or PDF depending on
// the format query parameter.
func (h *ReportHandler) BoxerReport(c *gin.Context) {
	actor := actorFromContext(c)
	boxerID := c.Param("boxerId")

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, filename, err := h.reports.BoxerReportCSV(c.Request.Context(), actor, boxerID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, filename, err := h.reports.BoxerReportPDF(c.Request.Context(), actor, boxerID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		report, err := h.reports.BoxerReport(c.Request.Context(), actor, boxerID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, report, nil)
	}
}

// AttendanceExport streams scoped attendance rows as CSV.
func (h *ReportHandler) AttendanceExport(c *gin.Context) {
	req := service.AttendanceExportRequest{
		ClassID: c.Query("class_id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
	data, err := h.reports.AttendanceCSV(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
