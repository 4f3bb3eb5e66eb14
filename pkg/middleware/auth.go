package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/pkg/contextkeys"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/service"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

// IdentityResolver loads the live account behind a token. Returning
// apperrors.ErrNotFound means the account was deleted after the token
// was issued.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint64) (*authz.Identity, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	resolver   IdentityResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, resolver IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		resolver:   resolver,
		logger:     logger,
	}
}

// Auth validates the bearer token, resolves it to a live account and
// stores the normalized identity in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			m.logger.Warn("auth: empty Authorization header")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("auth: malformed Authorization header")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("auth: token validation failed", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("auth: refresh token used for access")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		identity, err := m.resolver.ResolveIdentity(c.Request().Context(), claims.UserID)
		if err != nil {
			m.logger.Warn("auth: account behind token is gone", zap.Uint64("userID", claims.UserID), zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrUserNoLongerExists, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, identity.ID)
		ctx = context.WithValue(ctx, contextkeys.IdentityKey, identity)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRoles rejects with 403 unless the resolved role is in the
// allowed set. Comparison is case-insensitive on both sides.
func (m *AuthMiddleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[authz.NormalizeRole(role)] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return utils.ErrorResponse(c, apperrors.ErrUserIDNotFoundInContext, m.logger)
			}
			if !allowed[authz.NormalizeRole(identity.Role)] {
				m.logger.Warn("auth: role not permitted",
					zap.String("role", identity.Role),
					zap.String("path", c.Request().URL.Path),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(ctx context.Context) (*authz.Identity, bool) {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(*authz.Identity)
	return identity, ok
}
