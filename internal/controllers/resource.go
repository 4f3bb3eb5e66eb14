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

type ResourceController struct {
	resourceService services.ResourceServiceInterface
	logger          *zap.Logger
}

func NewResourceController(resourceService services.ResourceServiceInterface, logger *zap.Logger) *ResourceController {
	return &ResourceController{resourceService: resourceService, logger: logger}
}

func (ctrl *ResourceController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *ResourceController) GetResources(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	resources, total, err := ctrl.resourceService.GetResources(c.Request().Context(), filter, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "resources", resources, "Resources fetched.", total)
}

func (ctrl *ResourceController) GetResourcesByDepartment(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	resources, total, err := ctrl.resourceService.GetResourcesByDepartment(c.Request().Context(), c.Param("department"), filter, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "resources", resources, "Resources fetched.", total)
}

func (ctrl *ResourceController) GetResource(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	res, err := ctrl.resourceService.GetResource(c.Request().Context(), id, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Resource fetched.", http.StatusOK)
}

func (ctrl *ResourceController) CreateResource(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	var payload dto.CreateResourceDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("CreateResource: failed to bind payload", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid resource payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.resourceService.CreateResource(c.Request().Context(), payload, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Resource created.", http.StatusCreated)
}

func (ctrl *ResourceController) UpdateResource(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	var payload dto.UpdateResourceDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid resource payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.resourceService.UpdateResource(c.Request().Context(), id, payload, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Resource updated.", http.StatusOK)
}

func (ctrl *ResourceController) DeleteResource(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	if err := ctrl.resourceService.DeleteResource(c.Request().Context(), id, actor); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Resource deleted.", http.StatusOK)
}

func (ctrl *ResourceController) GetResourceStats(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	department := c.Param("department")
	if department == "" {
		department = c.QueryParam("department")
	}
	stats, err := ctrl.resourceService.GetResourceStats(c.Request().Context(), department, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, stats, "Resource statistics fetched.", http.StatusOK)
}
