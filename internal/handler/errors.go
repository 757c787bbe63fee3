package handler

import (
	"errors"

	"crack-go/internal/service"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps service errors to client responses. Unknown errors are
// logged with their cause and answered with fallback as a 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, service.ErrUserExists):
		utils.Conflict(c, "User already exists")
	case errors.Is(err, service.ErrUserNotFound):
		utils.NotFound(c, "User not found")
	case errors.Is(err, service.ErrReportNotFound):
		utils.NotFound(c, "Report not found")
	case errors.Is(err, service.ErrImageNotFound):
		utils.BadRequest(c, "Image not found")
	case errors.Is(err, service.ErrNoFile):
		utils.BadRequest(c, "No file uploaded")
	case errors.Is(err, service.ErrNotImage):
		utils.BadRequest(c, "Only image files are allowed")
	case errors.Is(err, service.ErrFileTooLarge):
		utils.BadRequest(c, "File too large")
	case errors.Is(err, service.ErrUploadBusy):
		utils.TooManyRequests(c, "Too many concurrent uploads")
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		_ = c.Error(err)
		utils.InternalError(c, fallback)
	}
}
