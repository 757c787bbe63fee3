package dto

import (
	"crack-go/internal/models"
)

// CreateReportRequest persists the analysis of an uploaded image.
// ImagePath must be a path returned by the upload endpoint.
type CreateReportRequest struct {
	Filename       string              `json:"filename" binding:"required,max=255"`
	ImagePath      string              `json:"image_path" binding:"required,max=512"`
	LengthMM       float64             `json:"length_mm" binding:"gte=0"`
	WidthMM        float64             `json:"width_mm" binding:"gte=0"`
	DepthMM        float64             `json:"depth_mm" binding:"gte=0"`
	Severity       models.Severity     `json:"severity" binding:"required,severity"`
	Recommendation string              `json:"recommendation" binding:"required"`
	AnalysisData   models.AnalysisData `json:"analysis_data"`
}

// ReportResponse wraps a single report.
type ReportResponse struct {
	Report *models.CrackReport `json:"report"`
}

// ReportListResponse lists the caller's reports, newest first.
type ReportListResponse struct {
	Reports []models.CrackReport `json:"reports"`
}
