package handler

import (
	"strconv"

	"crack-go/internal/dto"
	"crack-go/internal/middleware"
	"crack-go/internal/service"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportHandler serves the caller's crack reports.
type ReportHandler struct {
	reportService *service.ReportService
	logger        *logrus.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportService *service.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// ListReports returns the caller's reports, newest first.
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	reports, err := h.reportService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch reports")
		return
	}

	utils.SuccessResponse(c, dto.ReportListResponse{Reports: reports})
}

// CreateReport saves an analysis for a previously uploaded image.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err))
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create report")
		return
	}

	utils.CreatedResponse(c, dto.ReportResponse{Report: report})
}

// GetReport returns one of the caller's reports.
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), userID, reportID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch report")
		return
	}

	utils.SuccessResponse(c, dto.ReportResponse{Report: report})
}

// DeleteReport removes one of the caller's reports.
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), userID, reportID); err != nil {
		respondError(c, h.logger, err, "Failed to delete report")
		return
	}

	utils.SuccessResponse(c, dto.SuccessResponse{Success: true})
}

func parseReportID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "Invalid report id")
		return 0, false
	}
	return uint(id), true
}
