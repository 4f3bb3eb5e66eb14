package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/internal/repositories"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

type TransferServiceInterface interface {
	GetTransfers(ctx context.Context, filter types.Filter, actor *authz.Identity) ([]entities.Transfer, uint64, error)
	GetTransfer(ctx context.Context, id uint64, actor *authz.Identity) (*entities.Transfer, error)
	CreateTransfer(ctx context.Context, resourceID uint64, payload dto.CreateTransferDTO, actor *authz.Identity) (*entities.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id uint64, payload dto.UpdateTransferStatusDTO, actor *authz.Identity) (*entities.Transfer, error)
}

type TransferService struct {
	storage      *pgxpool.Pool
	transferRepo repositories.TransferRepositoryInterface
	resourceRepo repositories.ResourceRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	logger       *zap.Logger
}

func NewTransferService(
	storage *pgxpool.Pool,
	transferRepo repositories.TransferRepositoryInterface,
	resourceRepo repositories.ResourceRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) TransferServiceInterface {
	return &TransferService{
		storage:      storage,
		transferRepo: transferRepo,
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func (s *TransferService) GetTransfers(ctx context.Context, filter types.Filter, actor *authz.Identity) ([]entities.Transfer, uint64, error) {
	var securityFilter string
	var securityArgs []interface{}
	switch {
	case actor.IsAdmin():
	case actor.IsAssetManager():
		securityFilter = "res.department = $1"
		securityArgs = []interface{}{actor.Department}
	default:
		securityFilter = "(t.from_user_id = $1 OR t.to_user_id = $2)"
		securityArgs = []interface{}{actor.ID, actor.ID}
	}
	return s.transferRepo.GetTransfers(ctx, filter, securityFilter, securityArgs)
}

func (s *TransferService) GetTransfer(ctx context.Context, id uint64, actor *authz.Identity) (*entities.Transfer, error) {
	tr, err := s.transferRepo.FindTransferByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsAssetManager():
		if !authz.SameDepartment(actor.Department, tr.ResourceDepartment.String) {
			return nil, apperrors.ErrForbidden
		}
	default:
		if tr.FromUserID != actor.ID && tr.ToUserID != actor.ID {
			return nil, apperrors.ErrForbidden
		}
	}
	return tr, nil
}

// CreateTransfer opens a pending transfer of one resource to another
// user. The sender is the current holder when the resource is assigned,
// otherwise the requesting actor.
func (s *TransferService) CreateTransfer(ctx context.Context, resourceID uint64, payload dto.CreateTransferDTO, actor *authz.Identity) (*entities.Transfer, error) {
	res, err := s.resourceRepo.FindResourceByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	fromUserID := actor.ID
	fromDepartment := actor.Department
	if res.AssignedTo.Valid {
		fromUserID = uint64(res.AssignedTo.Int64)
		holder, err := s.userRepo.FindUserByID(ctx, fromUserID)
		if err != nil {
			return nil, err
		}
		fromDepartment = holder.Department
	}

	// Only the holder, the department's manager or an admin may move it.
	if fromUserID != actor.ID && !actor.CanManage(res.Department) {
		return nil, apperrors.ErrForbidden
	}
	// A transfer always originates from the department currently holding
	// the resource.
	if !authz.SameDepartment(fromDepartment, res.Department) {
		return nil, apperrors.NewBadRequestError("Transfer source must be in the same department as the resource.")
	}
	if payload.ToUserID == fromUserID {
		return nil, apperrors.NewBadRequestError("A resource cannot be transferred to its current holder.")
	}

	recipient, err := s.userRepo.FindUserByID(ctx, payload.ToUserID)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Recipient account does not exist.")
	}
	if !recipient.IsApproved {
		return nil, apperrors.NewBadRequestError("Recipient account is not approved yet.")
	}

	tr := &entities.Transfer{
		ResourceID: resourceID,
		FromUserID: fromUserID,
		ToUserID:   payload.ToUserID,
		Reason:     payload.Reason,
		Status:     entities.TransferStatusPending,
	}

	created, err := s.transferRepo.CreateTransfer(ctx, tr)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer requested",
		zap.Uint64("transferID", created.ID),
		zap.Uint64("resourceID", resourceID),
		zap.Uint64("toUserID", payload.ToUserID))
	return created, nil
}

// UpdateTransferStatus moves a transfer along its lifecycle. Completion
// also reassigns the resource to the recipient, both rows changing in
// one transaction.
func (s *TransferService) UpdateTransferStatus(ctx context.Context, id uint64, payload dto.UpdateTransferStatusDTO, actor *authz.Identity) (*entities.Transfer, error) {
	tr, err := s.transferRepo.FindTransferByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Approval decisions are admin-only; handover into completed may
	// also be confirmed by the asset manager of the source department.
	switch payload.Status {
	case entities.TransferStatusCompleted:
		if !actor.CanManage(tr.ResourceDepartment.String) {
			return nil, apperrors.ErrForbidden
		}
	default:
		if !actor.IsAdmin() {
			return nil, apperrors.ErrForbidden
		}
	}
	if !entities.AllowedTransition(tr.Status, payload.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	if payload.Status == entities.TransferStatusCompleted {
		recipient, err := s.userRepo.FindUserByID(ctx, tr.ToUserID)
		if err != nil {
			return nil, err
		}
		err = repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
			if err := s.transferRepo.UpdateTransferStatusInTx(ctx, tx, id, payload.Status, actor.ID, payload.Remarks); err != nil {
				return err
			}
			return s.resourceRepo.ReassignResourceInTx(ctx, tx, tr.ResourceID, recipient.Department, recipient.ID)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("transfer completed",
			zap.Uint64("transferID", id),
			zap.Uint64("resourceID", tr.ResourceID),
			zap.Uint64("newHolder", recipient.ID))
		return s.transferRepo.FindTransferByID(ctx, id)
	}

	updated, err := s.transferRepo.UpdateTransferStatus(ctx, id, payload.Status, actor.ID, payload.Remarks)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer status changed",
		zap.Uint64("transferID", id),
		zap.String("status", payload.Status))
	return updated, nil
}
