package handler

import (
	"errors"
	"net/http"

	"crack-go/internal/dto"
	"crack-go/internal/middleware"
	"crack-go/internal/service"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// multipartSlack is allowed on top of the image size for multipart framing.
const multipartSlack = 1 << 20

// UploadHandler accepts crack images.
type UploadHandler struct {
	uploadService *service.UploadService
	logger        *logrus.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploadService *service.UploadService, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload stores the multipart field "image" and returns its analysis
// @Summary Upload a crack image
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "image"
// @Success 200 {object} dto.UploadResponse
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadService.MaxSize()+multipartSlack)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.BadRequest(c, "File too large")
			return
		}
		utils.BadRequest(c, "No file uploaded")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err, "Failed to store file")
		return
	}
	defer src.Close()

	result, err := h.uploadService.Upload(c.Request.Context(), userID, service.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        src,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to store file")
		return
	}

	utils.SuccessResponse(c, dto.UploadResponse{
		Success:          true,
		Filename:         result.Filename,
		OriginalFilename: result.OriginalFilename,
		Path:             result.Path,
		Analysis:         result.Analysis,
	})
}
