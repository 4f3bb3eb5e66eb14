package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/services"
	"github.com/abikoy/ddu-rims/pkg/contextkeys"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/service"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	jwtSvc      service.JWTService
	logger      *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSvc:      jwtSvc,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

// registrarFromRequest resolves an optional bearer token on the signup
// route. A valid admin token turns the signup into an admin-registration
// with immediate approval; no token means plain self-registration.
func (ctrl *AuthController) registrarFromRequest(c echo.Context) *authz.Identity {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}
	claims, err := ctrl.jwtSvc.ValidateToken(parts[1])
	if err != nil || claims.IsRefreshToken {
		return nil
	}
	identity, err := ctrl.authService.ResolveIdentity(c.Request().Context(), claims.UserID)
	if err != nil {
		return nil
	}
	return identity
}

func (ctrl *AuthController) Signup(c echo.Context) error {
	var payload dto.SignupDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Signup: failed to bind payload", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid signup payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	registrar := ctrl.registrarFromRequest(c)
	user, err := ctrl.authService.Signup(c.Request().Context(), payload, registrar)
	if err != nil {
		ctrl.logger.Warn("Signup: registration failed", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	message := "Account registered. An admin has to approve it before you can sign in."
	if user.IsApproved {
		message = "Account registered and approved."
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), message, http.StatusCreated)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Login: failed to bind payload", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid login payload."))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: authentication failed", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	return ctrl.generateTokensAndRespond(c, user.ID, user.Role, dto.UserToDTO(user), "Signed in successfully.")
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err != nil {
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}

	claims, err := ctrl.jwtSvc.ValidateToken(cookie.Value)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if !claims.IsRefreshToken {
		return ctrl.errorResponse(c, apperrors.ErrTokenIsNotRefresh)
	}

	user, err := ctrl.authService.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	return ctrl.generateTokensAndRespond(c, user.ID, user.Role, dto.UserToDTO(user), "Tokens refreshed.")
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	cookie := &http.Cookie{
		Name:     "refreshToken",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	c.SetCookie(cookie)

	return utils.SuccessResponse(c, nil, "Signed out.", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	userID, ok := c.Request().Context().Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		ctrl.logger.Error("Me: no user id in request context")
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UserToDTO(user), "Profile fetched.", http.StatusOK)
}

func (ctrl *AuthController) ForgotPassword(c echo.Context) error {
	var payload dto.ForgotPasswordDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.ErrBadRequest)
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.authService.ForgotPassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "If the account exists, reset instructions have been issued.", http.StatusOK)
}

func (ctrl *AuthController) ResetPassword(c echo.Context) error {
	var payload dto.ResetPasswordDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.ErrBadRequest)
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.authService.ResetPassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Password updated.", http.StatusOK)
}

func (ctrl *AuthController) generateTokensAndRespond(c echo.Context, userID uint64, role string, data interface{}, message string) error {
	accessToken, refreshToken, err := ctrl.jwtSvc.GenerateTokens(userID, role)
	if err != nil {
		ctrl.logger.Error("failed to generate tokens", zap.Uint64("userID", userID), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	cookie := &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(ctrl.jwtSvc.GetRefreshTokenTTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	c.SetCookie(cookie)

	return utils.TokenResponse(c, accessToken, data, message)
}
