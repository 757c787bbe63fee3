package router

import (
	"crack-go/internal/config"
	"crack-go/internal/handler"
	"crack-go/internal/middleware"
	"crack-go/internal/repository"
	"crack-go/internal/service"
	"crack-go/internal/storage"
	"crack-go/internal/utils"
	"crack-go/pkg/analyzer"
	"crack-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// uploadSlotPrefix namespaces the per-user upload counters in redis.
const uploadSlotPrefix = "crack:upload:"

// SetupRouter wires repositories, services and handlers into an engine.
// redisClient may be nil, in which case uploads are not throttled.
func SetupRouter(
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	db *gorm.DB,
	store storage.ImageStore,
	crackAnalyzer analyzer.Analyzer,
	redisClient redis.UniversalClient,
) *gin.Engine {
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS))

	r.NoMethod(utils.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Not found")
	})

	r.GET("/", handler.Health)

	if local, ok := store.(*storage.LocalStore); ok {
		r.Static(local.PublicPrefix(), local.Dir())
	}

	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewCrackReportRepository(db)

	var limiter service.SlotLimiter
	if redisClient != nil {
		limiter = redis_limiter.NewRedisLimiter(
			redisClient,
			cfg.Redis.UploadMaxConcurrency,
			uploadSlotPrefix,
			cfg.Redis.GetSlotTTL(),
			logger,
		)
	}

	authService := service.NewAuthService(userRepo, jwtManager)
	uploadService := service.NewUploadService(store, crackAnalyzer, limiter, cfg.Upload.MaxSize, logger)
	reportService := service.NewReportService(reportRepo, store, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)

	requireAuth := middleware.AuthMiddleware(jwtManager, userRepo, logger)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.GetMe)
	}

	authorized := r.Group("/")
	authorized.Use(requireAuth)
	{
		authorized.POST("/upload", uploadHandler.Upload)

		authorized.GET("/reports", reportHandler.ListReports)
		authorized.POST("/reports", reportHandler.CreateReport)
		authorized.GET("/reports/:id", reportHandler.GetReport)
		authorized.DELETE("/reports/:id", reportHandler.DeleteReport)
	}

	return r
}
