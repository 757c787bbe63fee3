package handler

import (
	"crack-go/internal/dto"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Health answers liveness probes at the API root.
func Health(c *gin.Context) {
	utils.SuccessResponse(c, dto.HealthResponse{
		Message: "Crack detection API",
		Version: Version,
	})
}
