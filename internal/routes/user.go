package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/controllers"
	"github.com/abikoy/ddu-rims/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	adminOnly := authMW.RequireRoles(authz.RoleAdmin)

	secureGroup.GET("/users", userCtrl.GetUsers, adminOnly)
	secureGroup.GET("/users/pending", userCtrl.GetPendingUsers, adminOnly)
	secureGroup.GET("/users/approved", userCtrl.GetApprovedUsers, adminOnly)
	secureGroup.GET("/users/profile", userCtrl.GetProfile)
	secureGroup.PATCH("/users/profile", userCtrl.UpdateProfile)
	secureGroup.GET("/users/:id", userCtrl.GetUser, adminOnly)
	secureGroup.PATCH("/users/:id/approve", userCtrl.ApproveUser, adminOnly)
	secureGroup.PATCH("/users/:id", userCtrl.UpdateUser, adminOnly)
	secureGroup.DELETE("/users/:id", userCtrl.DeleteUser, adminOnly)
}
