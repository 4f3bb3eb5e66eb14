package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/abikoy/ddu-rims/internal/controllers"
)

func runTransferRouter(secureGroup *echo.Group, transferCtrl *controllers.TransferController) {
	secureGroup.GET("/transfers", transferCtrl.GetTransfers)
	secureGroup.GET("/transfers/:id", transferCtrl.GetTransfer)
	secureGroup.PATCH("/transfers/:id/status", transferCtrl.UpdateTransferStatus)
}
