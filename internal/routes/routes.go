package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/controllers"
	"github.com/abikoy/ddu-rims/internal/repositories"
	"github.com/abikoy/ddu-rims/internal/services"
	"github.com/abikoy/ddu-rims/pkg/config"
	"github.com/abikoy/ddu-rims/pkg/middleware"
	"github.com/abikoy/ddu-rims/pkg/service"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	api := e.Group("/api/v1")

	// repositories
	userRepo := repositories.NewUserRepository(dbConn, logger)
	resourceRepo := repositories.NewResourceRepository(dbConn, logger)
	transferRepo := repositories.NewTransferRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// services
	authService := services.NewAuthService(userRepo, cacheRepo, logger, &cfg.Auth)
	userService := services.NewUserService(userRepo, logger)
	resourceService := services.NewResourceService(resourceRepo, logger)
	transferService := services.NewTransferService(dbConn, transferRepo, resourceRepo, userRepo, logger)

	// controllers
	authCtrl := controllers.NewAuthController(authService, jwtSvc, logger)
	userCtrl := controllers.NewUserController(userService, logger)
	resourceCtrl := controllers.NewResourceController(resourceService, logger)
	transferCtrl := controllers.NewTransferController(transferService, logger)
	reportCtrl := controllers.NewReportController(resourceService, logger)

	authMW := middleware.NewAuthMiddleware(jwtSvc, authService, logger)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl, authMW)
	runUserRouter(secureGroup, userCtrl, authMW)
	runResourceRouter(secureGroup, resourceCtrl, transferCtrl, reportCtrl, authMW)
	runTransferRouter(secureGroup, transferCtrl)
}
