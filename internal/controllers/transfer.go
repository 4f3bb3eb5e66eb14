package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/services"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/middleware"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

type TransferController struct {
	transferService services.TransferServiceInterface
	logger          *zap.Logger
}

func NewTransferController(transferService services.TransferServiceInterface, logger *zap.Logger) *TransferController {
	return &TransferController{transferService: transferService, logger: logger}
}

func (ctrl *TransferController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *TransferController) GetTransfers(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	transfers, total, err := ctrl.transferService.GetTransfers(c.Request().Context(), filter, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "transfers", transfers, "Transfers fetched.", total)
}

func (ctrl *TransferController) GetTransfer(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	tr, err := ctrl.transferService.GetTransfer(c.Request().Context(), id, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, tr, "Transfer fetched.", http.StatusOK)
}

// CreateTransfer is mounted under the resource path, the id parameter is
// the resource being moved.
func (ctrl *TransferController) CreateTransfer(c echo.Context) error {
	resourceID, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	var payload dto.CreateTransferDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid transfer payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	tr, err := ctrl.transferService.CreateTransfer(c.Request().Context(), resourceID, payload, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, tr, "Transfer requested.", http.StatusCreated)
}

func (ctrl *TransferController) UpdateTransferStatus(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	var payload dto.UpdateTransferStatusDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid transfer status payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	tr, err := ctrl.transferService.UpdateTransferStatus(c.Request().Context(), id, payload, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, tr, "Transfer status updated.", http.StatusOK)
}
