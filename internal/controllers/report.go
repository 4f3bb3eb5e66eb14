package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/internal/services"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/middleware"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

// ReportController exports the inventory as a spreadsheet for the store
// ledger books.
type ReportController struct {
	resourceService services.ResourceServiceInterface
	logger          *zap.Logger
}

func NewReportController(resourceService services.ResourceServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{resourceService: resourceService, logger: logger}
}

func (ctrl *ReportController) ExportResources(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return utils.ErrorResponse(c, apperrors.ErrUserIDNotFoundInContext, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	// The whole inventory goes into the file regardless of paging params.
	filter.WithPagination = false

	resources, total, err := ctrl.resourceService.GetResources(c.Request().Context(), filter, actor)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	format := strings.ToLower(c.QueryParam("format"))
	if format != "" && format != "xlsx" {
		return utils.ErrorResponse(c, apperrors.NewBadRequestError("Only the xlsx export format is supported."), ctrl.logger)
	}

	ctrl.logger.Debug("exporting resources", zap.Uint64("total", total))
	return ctrl.respondWithXLSX(c, resources)
}

var resourceHeaders = []string{
	"No", "Department", "Expenditure Reg. No", "Incoming Goods Reg. No", "Stock Classification",
	"Store No", "Shelf No", "Outgoing Goods Reg. No", "Order No", "Date",
	"Description", "Model", "Serial", "From No", "To No",
	"Quantity", "Unit Price (Birr)", "Total Price (Birr)", "Type", "Status", "Location", "Remarks",
}

func resourceToRow(i int, item entities.Resource) []interface{} {
	dateFmt := "02.01.2006"
	return []interface{}{
		i + 1, item.Department,
		item.RegistryInfo.ExpenditureRegistryNo, item.RegistryInfo.IncomingGoodsRegistryNo,
		item.RegistryInfo.StockClassification, item.RegistryInfo.StoreNo, item.RegistryInfo.ShelfNo,
		item.RegistryInfo.OutgoingGoodsRegistryNo, item.RegistryInfo.OrderNo,
		item.RegistryInfo.DateOf.Format(dateFmt),
		item.Description, item.Model.String, item.Serial.String, item.FromNo.String, item.ToNo.String,
		item.Quantity, item.UnitPrice.String(), item.TotalPrice.String(),
		item.ResourceType, item.Status, item.Location.String, item.Remarks.String,
	}
}

func (ctrl *ReportController) respondWithXLSX(c echo.Context, data []entities.Resource) error {
	f := excelize.NewFile()
	sheet := "Resources"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &resourceHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "V1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := resourceToRow(i, item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "I", 18)
	f.SetColWidth(sheet, "K", "K", 40)
	f.SetColWidth(sheet, "L", "O", 16)
	f.SetColWidth(sheet, "V", "V", 35)

	fileName := fmt.Sprintf("resources_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}
