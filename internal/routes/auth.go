package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/abikoy/ddu-rims/internal/controllers"
	"github.com/abikoy/ddu-rims/pkg/middleware"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authCtrl.Signup)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh", authCtrl.RefreshToken)
		authGroup.POST("/logout", authCtrl.Logout)
		authGroup.POST("/forgot-password", authCtrl.ForgotPassword)
		authGroup.POST("/reset-password", authCtrl.ResetPassword)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
}
