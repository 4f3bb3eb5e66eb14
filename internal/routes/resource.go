package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/controllers"
	"github.com/abikoy/ddu-rims/pkg/middleware"
)

func runResourceRouter(
	secureGroup *echo.Group,
	resourceCtrl *controllers.ResourceController,
	transferCtrl *controllers.TransferController,
	reportCtrl *controllers.ReportController,
	authMW *middleware.AuthMiddleware,
) {
	managers := authMW.RequireRoles(authz.RoleAdmin, authz.RoleAssetManager)

	secureGroup.GET("/resources", resourceCtrl.GetResources)
	secureGroup.GET("/resources/stats", resourceCtrl.GetResourceStats, managers)
	secureGroup.GET("/resources/stats/:department", resourceCtrl.GetResourceStats, managers)
	secureGroup.GET("/resources/export", reportCtrl.ExportResources, managers)
	secureGroup.GET("/resources/department/:department", resourceCtrl.GetResourcesByDepartment)
	secureGroup.POST("/resources", resourceCtrl.CreateResource, managers)
	secureGroup.GET("/resources/:id", resourceCtrl.GetResource)
	secureGroup.PATCH("/resources/:id", resourceCtrl.UpdateResource, managers)
	secureGroup.DELETE("/resources/:id", resourceCtrl.DeleteResource, managers)

	// A transfer starts from the resource it moves.
	secureGroup.POST("/resources/:id/transfer", transferCtrl.CreateTransfer)
}
