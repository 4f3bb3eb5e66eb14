package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/services"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/middleware"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (ctrl *UserController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func parseIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError("Invalid id parameter.")
	}
	return id, nil
}

func (ctrl *UserController) GetUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	users, total, err := ctrl.userService.GetUsers(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "users", dto.UsersToDTO(users), "Users fetched.", total)
}

func (ctrl *UserController) GetPendingUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	users, total, err := ctrl.userService.GetUsersByApproval(c.Request().Context(), filter, false)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "users", dto.UsersToDTO(users), "Pending users fetched.", total)
}

func (ctrl *UserController) GetApprovedUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	users, total, err := ctrl.userService.GetUsersByApproval(c.Request().Context(), filter, true)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessListResponse(c, "users", dto.UsersToDTO(users), "Approved users fetched.", total)
}

func (ctrl *UserController) GetUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	user, err := ctrl.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "User fetched.", http.StatusOK)
}

func (ctrl *UserController) ApproveUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	user, err := ctrl.userService.ApproveUser(c.Request().Context(), id, actor)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "User approved.", http.StatusOK)
}

func (ctrl *UserController) UpdateUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateUserDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid user payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.userService.UpdateUser(c.Request().Context(), id, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "User updated.", http.StatusOK)
}

func (ctrl *UserController) DeleteUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	if err := ctrl.userService.DeleteUser(c.Request().Context(), id, actor); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "User deleted.", http.StatusOK)
}

func (ctrl *UserController) GetProfile(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}
	user, err := ctrl.userService.GetUser(c.Request().Context(), actor.ID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "Profile fetched.", http.StatusOK)
}

func (ctrl *UserController) UpdateProfile(c echo.Context) error {
	actor, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return ctrl.errorResponse(c, apperrors.ErrUserIDNotFoundInContext)
	}

	var payload dto.UpdateProfileDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid profile payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.userService.UpdateProfile(c.Request().Context(), actor.ID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "Profile updated.", http.StatusOK)
}
