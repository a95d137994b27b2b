package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/models"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/export"
)

type reportAttendanceRepository interface {
	HistoryForBoxer(ctx context.Context, boxerID string) ([]models.Attendance, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	Summary(ctx context.Context, boxerID string) (*models.AttendanceSummary, error)
}

type reportWeightRepository interface {
	DaysForBoxer(ctx context.Context, boxerID string) ([]models.Weight, error)
}

type reportEnrollmentRepository interface {
	ClassesForBoxer(ctx context.Context, boxerID string) ([]models.ClassTemplate, error)
}

// BoxerReportRow is one attendance mark joined with the same-day weight.
type BoxerReportRow struct {
	Date    string   `json:"date"`
	Status  string   `json:"status"`
	Kg      *float64 `json:"kg,omitempty"`
}

// BoxerReport is the per-boxer season report.
type BoxerReport struct {
	Boxer     models.Boxer             `json:"boxer"`
	Classes   []string                 `json:"classes"`
	Rows      []BoxerReportRow         `json:"rows"`
	Summary   models.AttendanceSummary `json:"summary"`
	WeightMin *float64                 `json:"weight_min,omitempty"`
	WeightMax *float64                 `json:"weight_max,omitempty"`
	WeightAvg *float64                 `json:"weight_avg,omitempty"`
}

// ReportService assembles the per-boxer report and the attendance export,
// rendering them as JSON, CSV or PDF.
type ReportService struct {
	attendance  reportAttendanceRepository
	weights     reportWeightRepository
	enrollments reportEnrollmentRepository
	scope       boxerScope
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(attendance reportAttendanceRepository, weights reportWeightRepository, enrollments reportEnrollmentRepository, scope boxerScope, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		attendance:  attendance,
		weights:     weights,
		enrollments: enrollments,
		scope:       scope,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// BoxerReport joins a boxer's attendance history with the last weight sample
// of each attended day and the weight min/max/avg over the report.
func (s *ReportService) BoxerReport(ctx context.Context, actor *models.User, boxerID string) (*BoxerReport, error) {
	boxer, err := s.scope.RequireBoxer(ctx, actor, boxerID)
	if err != nil {
		return nil, err
	}
	history, err := s.attendance.HistoryForBoxer(ctx, boxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	samples, err := s.weights.DaysForBoxer(ctx, boxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weights")
	}
	summary, err := s.attendance.Summary(ctx, boxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}
	enrolled, err := s.enrollments.ClassesForBoxer(ctx, boxerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	summary.PresentPct = roundPct(summary.Present, summary.Total)
	summary.AbsentPct = roundPct(summary.Absent, summary.Total)
	summary.ExcusedPct = roundPct(summary.Excused, summary.Absent)

	kgByDay := make(map[string]float64, len(samples))
	for _, sample := range samples {
		kgByDay[sample.MeasuredAt.Format("2006-01-02")] = sample.Kg
	}

	report := &BoxerReport{Boxer: *boxer, Rows: make([]BoxerReportRow, 0, len(history)), Summary: *summary}
	report.Classes = make([]string, 0, len(enrolled))
	for _, class := range enrolled {
		report.Classes = append(report.Classes, class.Title)
	}
	for _, mark := range history {
		row := BoxerReportRow{
			Date:   mark.Date.Format("2006-01-02"),
			Status: string(mark.Status()),
		}
		if kg, ok := kgByDay[row.Date]; ok {
			row.Kg = &kg
		}
		report.Rows = append(report.Rows, row)
	}

	if len(samples) > 0 {
		min, max, sum := samples[0].Kg, samples[0].Kg, 0.0
		for _, sample := range samples {
			if sample.Kg < min {
				min = sample.Kg
			}
			if sample.Kg > max {
				max = sample.Kg
			}
			sum += sample.Kg
		}
		avg := math.Round(sum/float64(len(samples))*10) / 10
		report.WeightMin = &min
		report.WeightMax = &max
		report.WeightAvg = &avg
	}
	return report, nil
}

// BoxerReportCSV renders the report as CSV bytes.
func (s *ReportService) BoxerReportCSV(ctx context.Context, actor *models.User, boxerID string) ([]byte, string, error) {
	report, err := s.BoxerReport(ctx, actor, boxerID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.csv.Render(reportDataset(report))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, reportFilename(report, "csv"), nil
}

// BoxerReportPDF renders the report as PDF bytes.
func (s *ReportService) BoxerReportPDF(ctx context.Context, actor *models.User, boxerID string) ([]byte, string, error) {
	report, err := s.BoxerReport(ctx, actor, boxerID)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Season report - %s", report.Boxer.DisplayName)
	data, err := s.pdf.Render(reportDataset(report), title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, reportFilename(report, "pdf"), nil
}

// AttendanceExportRequest bounds the attendance CSV export.
type AttendanceExportRequest struct {
	ClassID string
	From    string
	To      string
}

// AttendanceCSV exports attendance rows inside the actor's scope over a date
// window as CSV.
func (s *ReportService) AttendanceCSV(ctx context.Context, actor *models.User, req AttendanceExportRequest) ([]byte, error) {
	visible, err := s.scope.VisibleBoxerIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	filter := models.AttendanceFilter{
		BoxerIDs: visible,
		ClassID:  req.ClassID,
		Page:     1,
		PageSize: 10000,
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	rows, _, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	dataset := export.Dataset{
		Headers: []string{"date", "boxer", "class", "status"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		class := ""
		if row.ClassTitle != nil {
			class = *row.ClassTitle
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":   row.Date.Format("2006-01-02"),
			"boxer":  fmt.Sprintf("%s %s", row.BoxerFirstName, row.BoxerLastName),
			"class":  class,
			"status": string(row.Status()),
		})
	}
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

func reportDataset(report *BoxerReport) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"date", "status", "kg"},
		Rows:    make([]map[string]string, 0, len(report.Rows)),
	}
	for _, row := range report.Rows {
		kg := ""
		if row.Kg != nil {
			kg = fmt.Sprintf("%.1f", *row.Kg)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":   row.Date,
			"status": row.Status,
			"kg":     kg,
		})
	}
	return dataset
}

func reportFilename(report *BoxerReport, ext string) string {
	return fmt.Sprintf("report-%s.%s", report.Boxer.PublicID, ext)
}
