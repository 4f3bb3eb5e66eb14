package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/internal/repositories"
	"github.com/abikoy/ddu-rims/pkg/config"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

type AuthServiceInterface interface {
	Signup(ctx context.Context, payload dto.SignupDTO, registrar *authz.Identity) (*entities.User, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
	ResolveIdentity(ctx context.Context, userID uint64) (*authz.Identity, error)
	ForgotPassword(ctx context.Context, payload dto.ForgotPasswordDTO) error
	ResetPassword(ctx context.Context, payload dto.ResetPasswordDTO) error
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cfg       *config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cfg:       cfg,
	}
}

// Signup registers a new account. Self-registered accounts start
// unapproved; when an admin performs the registration the account is
// approved immediately and the registrar is recorded.
func (s *AuthService) Signup(ctx context.Context, payload dto.SignupDTO, registrar *authz.Identity) (*entities.User, error) {
	role := authz.NormalizeRole(payload.Role)
	if role == "" {
		role = authz.RoleStaff
	}

	registeredByAdmin := registrar != nil && registrar.IsAdmin()
	if role == authz.RoleAdmin && !registeredByAdmin {
		return nil, apperrors.NewForbiddenError("Admin accounts can only be registered by an admin.")
	}

	user := &entities.User{
		FullName:   strings.TrimSpace(payload.FullName),
		Email:      strings.ToLower(strings.TrimSpace(payload.Email)),
		Department: authz.NormalizeDepartment(payload.Department),
		Role:       role,
	}

	hashedPassword, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password.", err)
	}
	user.Password = hashedPassword

	if registeredByAdmin {
		user.IsApproved = true
		user.ApprovedBy = null.Int64From(int64(registrar.ID))
		user.ApprovedAt = null.TimeFrom(time.Now())
		user.RegisteredBy = null.Int64From(int64(registrar.ID))
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Uint64("userID", created.ID),
		zap.String("role", created.Role),
		zap.Bool("autoApproved", registeredByAdmin))
	return created, nil
}

// Login authenticates by email and password. Unapproved accounts are
// rejected with a distinct error so clients can tell the states apart,
// except admins, who are never gated on approval.
func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsApproved && !authz.IsAdmin(user.Role) {
		return nil, apperrors.ErrAccountPendingApproval
	}
	s.resetLoginAttempts(ctx, user.ID)
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to find user by id", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUserNoLongerExists
	}
	return user, nil
}

// ResolveIdentity turns a token subject into the live, normalized actor
// used for authorization checks.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID uint64) (*authz.Identity, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUserNoLongerExists
	}
	return &authz.Identity{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		Role:       authz.NormalizeRole(user.Role),
		Department: authz.NormalizeDepartment(user.Department),
		IsApproved: user.IsApproved,
	}, nil
}

// ForgotPassword issues a reset token. It never reveals whether the
// email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, payload dto.ForgotPasswordDTO) error {
	logger := s.logger.With(zap.String("email", payload.Email))

	spamProtectionKey := fmt.Sprintf("reset_spam_protect:%s", strings.ToLower(payload.Email))
	if _, err := s.cacheRepo.Get(ctx, spamProtectionKey); err == nil {
		logger.Warn("password reset requested too frequently")
		return apperrors.NewHttpError(http.StatusTooManyRequests, "Reset tokens can only be requested once per minute.", nil, nil)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		// Quietly succeed so the endpoint cannot be used to probe accounts.
		logger.Warn("password reset requested for unknown email")
		return nil
	}

	s.cacheRepo.Set(ctx, spamProtectionKey, "active", time.Minute)

	resetToken := uuid.New().String()
	cacheKey := fmt.Sprintf("reset_token:%s", resetToken)
	if err := s.cacheRepo.Set(ctx, cacheKey, user.ID, s.cfg.ResetTokenTTL); err != nil {
		return apperrors.NewInternalError("Failed to store reset token.", err)
	}

	// TODO: deliver the token by email once SMTP credentials are provisioned.
	logger.Warn("password reset token issued",
		zap.Uint64("userID", user.ID),
		zap.String("resetToken", resetToken))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, payload dto.ResetPasswordDTO) error {
	cacheKey := fmt.Sprintf("reset_token:%s", payload.Token)
	userIDStr, err := s.cacheRepo.Get(ctx, cacheKey)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid or expired password reset token.")
	}
	s.cacheRepo.Del(ctx, cacheKey)

	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil || userID == 0 {
		return apperrors.NewInternalError("Failed to read user id from reset token.", err)
	}

	hashedPassword, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return apperrors.NewInternalError("Failed to hash new password.", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	s.resetLoginAttempts(ctx, userID)
	s.logger.Info("password reset completed", zap.Uint64("userID", userID))
	return nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, _ := s.cacheRepo.Incr(ctx, attemptsKey)
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		s.cacheRepo.Del(ctx, attemptsKey)
	} else {
		s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
