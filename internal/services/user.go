package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/internal/repositories"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
	"github.com/abikoy/ddu-rims/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	GetUsersByApproval(ctx context.Context, filter types.Filter, approved bool) ([]entities.User, uint64, error)
	GetUser(ctx context.Context, id uint64) (*entities.User, error)
	ApproveUser(ctx context.Context, id uint64, actor *authz.Identity) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error)
	DeleteUser(ctx context.Context, id uint64, actor *authz.Identity) error
	UpdateProfile(ctx context.Context, userID uint64, payload dto.UpdateProfileDTO) (*entities.User, error)
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	return s.userRepo.GetUsers(ctx, filter)
}

func (s *UserService) GetUsersByApproval(ctx context.Context, filter types.Filter, approved bool) ([]entities.User, uint64, error) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	if approved {
		filter.Filter["is_approved"] = "true"
	} else {
		filter.Filter["is_approved"] = "false"
	}
	return s.userRepo.GetUsers(ctx, filter)
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*entities.User, error) {
	return s.userRepo.FindUserByID(ctx, id)
}

// ApproveUser activates a pending account. The stored credentials are
// left untouched, only the approval fields change.
func (s *UserService) ApproveUser(ctx context.Context, id uint64, actor *authz.Identity) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsApproved {
		return user, nil
	}

	approved, err := s.userRepo.ApproveUser(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user approved", zap.Uint64("userID", id), zap.Uint64("approvedBy", actor.ID))
	return approved, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error) {
	updates := make(map[string]interface{})
	if payload.FullName != nil {
		updates["full_name"] = *payload.FullName
	}
	if payload.Department != nil {
		updates["department"] = authz.NormalizeDepartment(*payload.Department)
	}
	if payload.Role != nil {
		updates["role"] = authz.NormalizeRole(*payload.Role)
	}
	return s.userRepo.UpdateUser(ctx, id, updates)
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64, actor *authz.Identity) error {
	if actor.ID == id {
		return apperrors.NewBadRequestError("You cannot delete your own account.")
	}
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Uint64("userID", id), zap.Uint64("deletedBy", actor.ID))
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, payload dto.UpdateProfileDTO) (*entities.User, error) {
	updates := make(map[string]interface{})
	if payload.FullName != nil {
		updates["full_name"] = *payload.FullName
	}
	if payload.Password != nil {
		hashed, err := utils.HashPassword(*payload.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to hash password.", err)
		}
		updates["password"] = hashed
	}
	return s.userRepo.UpdateUser(ctx, userID, updates)
}
