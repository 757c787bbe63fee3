package middleware

import (
	"errors"
	"strings"

	"crack-go/internal/models"
	"crack-go/internal/repository"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextKeyUserID = "user_id"
	contextKeyUser   = "user"
)

// AuthMiddleware requires a valid bearer token whose user still exists.
func AuthMiddleware(jwtManager *utils.JWTManager, userRepo *repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "No token provided")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			utils.Unauthorized(c, "Invalid authorization header")
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			utils.Unauthorized(c, "Invalid token")
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.NotFound(c, "User not found")
				return
			}
			logger.WithError(err).WithField("user_id", claims.UserID).Error("Failed to load user")
			utils.InternalError(c, "Internal server error")
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUser, user)

		c.Next()
	}
}

// GetUserID returns the authenticated user's id.
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser returns the authenticated user.
func GetUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(contextKeyUser)
	if !exists {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}
