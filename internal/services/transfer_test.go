package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

type stubTransferRepo struct {
	transfers map[uint64]*entities.Transfer
	nextID    uint64

	lastSecurityFilter string
}

func newStubTransferRepo() *stubTransferRepo {
	return &stubTransferRepo{transfers: make(map[uint64]*entities.Transfer), nextID: 1}
}

func (s *stubTransferRepo) GetTransfers(ctx context.Context, filter types.Filter, securityFilter string, securityArgs []interface{}) ([]entities.Transfer, uint64, error) {
	s.lastSecurityFilter = securityFilter
	out := make([]entities.Transfer, 0, len(s.transfers))
	for _, tr := range s.transfers {
		out = append(out, *tr)
	}
	return out, uint64(len(out)), nil
}

func (s *stubTransferRepo) FindTransferByID(ctx context.Context, id uint64) (*entities.Transfer, error) {
	tr, ok := s.transfers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *tr
	return &copied, nil
}

func (s *stubTransferRepo) CreateTransfer(ctx context.Context, entity *entities.Transfer) (*entities.Transfer, error) {
	created := *entity
	created.ID = s.nextID
	s.nextID++
	s.transfers[created.ID] = &created
	copied := created
	return &copied, nil
}

func (s *stubTransferRepo) UpdateTransferStatus(ctx context.Context, id uint64, status string, approverID uint64, remarks *string) (*entities.Transfer, error) {
	tr, ok := s.transfers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	tr.Status = status
	tr.ApprovedBy = null.Int64From(int64(approverID))
	if remarks != nil {
		tr.Remarks = null.StringFrom(*remarks)
	}
	copied := *tr
	return &copied, nil
}

func (s *stubTransferRepo) UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, approverID uint64, remarks *string) error {
	_, err := s.UpdateTransferStatus(ctx, id, status, approverID, remarks)
	return err
}

func newTransferFixture(t *testing.T) (*stubTransferRepo, *stubResourceRepo, *stubUserRepo, TransferServiceInterface, *entities.Resource) {
	t.Helper()
	transferRepo := newStubTransferRepo()
	resourceRepo := newStubResourceRepo()
	userRepo := newStubUserRepo()
	svc := NewTransferService(nil, transferRepo, resourceRepo, userRepo, zap.NewNop())

	userRepo.users[10] = &entities.User{
		ID:         10,
		FullName:   "Holder",
		Email:      "holder@ddu.edu.et",
		Department: authz.DepartmentDDU,
		Role:       authz.RoleStaff,
		IsApproved: true,
	}

	res, err := resourceRepo.CreateResource(context.Background(), &entities.Resource{
		Department:   authz.DepartmentDDU,
		Description:  "HP ProBook",
		Quantity:     1,
		ResourceType: entities.ResourceTypeITResources,
		Status:       entities.ResourceStatusAssigned,
		AssignedTo:   null.Int64From(10),
		CreatedBy:    1,
	})
	require.NoError(t, err)
	return transferRepo, resourceRepo, userRepo, svc, res
}

func approvedUser(t *testing.T, repo *stubUserRepo, email string) *entities.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), &entities.User{
		FullName:   "Recipient",
		Email:      email,
		Department: authz.DepartmentIOT,
		Role:       authz.RoleStaff,
		IsApproved: true,
	})
	require.NoError(t, err)
	return u
}

func TestCreateTransferByHolder(t *testing.T) {
	_, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	holder := staffIdentity(10)
	tr, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "lab relocation",
	}, holder)
	require.NoError(t, err)

	assert.Equal(t, entities.TransferStatusPending, tr.Status)
	assert.Equal(t, uint64(10), tr.FromUserID)
	assert.Equal(t, recipient.ID, tr.ToUserID)
}

func TestCreateTransferByNonHolderStaff(t *testing.T) {
	_, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	_, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "not mine to move",
	}, staffIdentity(99))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateTransferSourceDepartmentMustMatch(t *testing.T) {
	_, resourceRepo, userRepo, svc, _ := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	unassigned, err := resourceRepo.CreateResource(context.Background(), &entities.Resource{
		Department:   authz.DepartmentDDU,
		Description:  "Projector",
		Quantity:     1,
		ResourceType: entities.ResourceTypeEquipment,
		Status:       entities.ResourceStatusUnassigned,
		CreatedBy:    1,
	})
	require.NoError(t, err)

	// Staff from another department cannot originate the move even when
	// nobody holds the resource.
	iotStaff := &authz.Identity{ID: 77, Role: authz.RoleStaff, Department: authz.DepartmentIOT, IsApproved: true}
	_, err = svc.CreateTransfer(context.Background(), unassigned.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "grab it",
	}, iotStaff)
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)

	// Same-department staff may open the transfer.
	_, err = svc.CreateTransfer(context.Background(), unassigned.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "lab relocation",
	}, staffIdentity(10))
	require.NoError(t, err)
}

func TestCreateTransferToCurrentHolder(t *testing.T) {
	_, _, _, svc, res := newTransferFixture(t)

	_, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: 10,
		Reason:   "no-op move",
	}, staffIdentity(10))
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestCreateTransferToUnapprovedRecipient(t *testing.T) {
	_, _, userRepo, svc, res := newTransferFixture(t)
	pending, err := userRepo.CreateUser(context.Background(), &entities.User{
		FullName: "Pending", Email: "pending@ddu.edu.et",
		Department: authz.DepartmentDDU, Role: authz.RoleStaff,
	})
	require.NoError(t, err)

	_, err = svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: pending.ID,
		Reason:   "handover",
	}, staffIdentity(10))
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestUpdateTransferStatusApprove(t *testing.T) {
	transferRepo, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	created, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "handover",
	}, staffIdentity(10))
	require.NoError(t, err)
	transferRepo.transfers[created.ID].ResourceDepartment = null.StringFrom(authz.DepartmentDDU)

	updated, err := svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusApproved,
	}, adminIdentity())
	require.NoError(t, err)
	assert.Equal(t, entities.TransferStatusApproved, updated.Status)
}

func TestUpdateTransferStatusInvalidTransition(t *testing.T) {
	transferRepo, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	created, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "handover",
	}, staffIdentity(10))
	require.NoError(t, err)
	transferRepo.transfers[created.ID].ResourceDepartment = null.StringFrom(authz.DepartmentDDU)

	// pending cannot jump straight to completed
	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusCompleted,
	}, managerIdentity(authz.DepartmentDDU))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// reject, then nothing more is allowed
	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusRejected,
	}, adminIdentity())
	require.NoError(t, err)

	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusApproved,
	}, adminIdentity())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestUpdateTransferStatusApprovalIsAdminOnly(t *testing.T) {
	transferRepo, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	created, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "handover",
	}, staffIdentity(10))
	require.NoError(t, err)
	transferRepo.transfers[created.ID].ResourceDepartment = null.StringFrom(authz.DepartmentDDU)

	// Even the manager of the resource's own department may not decide
	// pending transfers; that call belongs to admins.
	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusApproved,
	}, managerIdentity(authz.DepartmentDDU))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusRejected,
	}, staffIdentity(10))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCompleteTransferForeignManagerForbidden(t *testing.T) {
	transferRepo, _, userRepo, svc, res := newTransferFixture(t)
	recipient := approvedUser(t, userRepo, "recipient@ddu.edu.et")

	created, err := svc.CreateTransfer(context.Background(), res.ID, dto.CreateTransferDTO{
		ToUserID: recipient.ID,
		Reason:   "handover",
	}, staffIdentity(10))
	require.NoError(t, err)
	transferRepo.transfers[created.ID].ResourceDepartment = null.StringFrom(authz.DepartmentDDU)
	transferRepo.transfers[created.ID].Status = entities.TransferStatusApproved

	_, err = svc.UpdateTransferStatus(context.Background(), created.ID, dto.UpdateTransferStatusDTO{
		Status: entities.TransferStatusCompleted,
	}, managerIdentity(authz.DepartmentIOT))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTransferListVisibility(t *testing.T) {
	transferRepo, resourceRepo, userRepo, svc, _ := newTransferFixture(t)
	_ = resourceRepo
	_ = userRepo

	ctx := context.Background()
	_, _, err := svc.GetTransfers(ctx, types.Filter{}, adminIdentity())
	require.NoError(t, err)
	assert.Empty(t, transferRepo.lastSecurityFilter)

	_, _, err = svc.GetTransfers(ctx, types.Filter{}, managerIdentity(authz.DepartmentIOT))
	require.NoError(t, err)
	assert.Equal(t, "res.department = $1", transferRepo.lastSecurityFilter)

	_, _, err = svc.GetTransfers(ctx, types.Filter{}, staffIdentity(10))
	require.NoError(t, err)
	assert.Equal(t, "(t.from_user_id = $1 OR t.to_user_id = $2)", transferRepo.lastSecurityFilter)
}
