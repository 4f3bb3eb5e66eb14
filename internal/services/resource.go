package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/authz"
	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	"github.com/abikoy/ddu-rims/internal/repositories"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

type ResourceServiceInterface interface {
	GetResources(ctx context.Context, filter types.Filter, actor *authz.Identity) ([]entities.Resource, uint64, error)
	GetResourcesByDepartment(ctx context.Context, department string, filter types.Filter, actor *authz.Identity) ([]entities.Resource, uint64, error)
	GetResource(ctx context.Context, id uint64, actor *authz.Identity) (*entities.Resource, error)
	CreateResource(ctx context.Context, payload dto.CreateResourceDTO, actor *authz.Identity) (*entities.Resource, error)
	UpdateResource(ctx context.Context, id uint64, payload dto.UpdateResourceDTO, actor *authz.Identity) (*entities.Resource, error)
	DeleteResource(ctx context.Context, id uint64, actor *authz.Identity) error
	GetResourceStats(ctx context.Context, department string, actor *authz.Identity) (*dto.ResourceStatsDTO, error)
}

type ResourceService struct {
	resourceRepo repositories.ResourceRepositoryInterface
	logger       *zap.Logger
}

func NewResourceService(resourceRepo repositories.ResourceRepositoryInterface, logger *zap.Logger) ResourceServiceInterface {
	return &ResourceService{resourceRepo: resourceRepo, logger: logger}
}

// visibilityFilter narrows listings by actor: admins see everything,
// asset managers see their department, staff see what is assigned to
// them.
func visibilityFilter(actor *authz.Identity) (string, []interface{}) {
	switch {
	case actor.IsAdmin():
		return "", nil
	case actor.IsAssetManager():
		return "r.department = $1", []interface{}{actor.Department}
	default:
		return "r.assigned_to = $1", []interface{}{actor.ID}
	}
}

func (s *ResourceService) GetResources(ctx context.Context, filter types.Filter, actor *authz.Identity) ([]entities.Resource, uint64, error) {
	securityFilter, securityArgs := visibilityFilter(actor)
	return s.resourceRepo.GetResources(ctx, filter, securityFilter, securityArgs)
}

func (s *ResourceService) GetResourcesByDepartment(ctx context.Context, department string, filter types.Filter, actor *authz.Identity) ([]entities.Resource, uint64, error) {
	department = authz.NormalizeDepartment(department)
	if !authz.ValidDepartment(department) {
		return nil, 0, apperrors.NewBadRequestError("Unknown department.")
	}

	securityFilter := "r.department = $1"
	securityArgs := []interface{}{department}
	if !actor.IsAdmin() && !actor.IsAssetManager() {
		securityFilter += " AND r.assigned_to = $2"
		securityArgs = append(securityArgs, actor.ID)
	} else if actor.IsAssetManager() && !authz.SameDepartment(actor.Department, department) {
		return nil, 0, apperrors.ErrForbidden
	}
	return s.resourceRepo.GetResources(ctx, filter, securityFilter, securityArgs)
}

func (s *ResourceService) GetResource(ctx context.Context, id uint64, actor *authz.Identity) (*entities.Resource, error) {
	res, err := s.resourceRepo.FindResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsAssetManager():
		if !authz.SameDepartment(actor.Department, res.Department) {
			return nil, apperrors.ErrForbidden
		}
	default:
		if !res.AssignedTo.Valid || uint64(res.AssignedTo.Int64) != actor.ID {
			return nil, apperrors.ErrForbidden
		}
	}
	return res, nil
}

func moneyFromDTO(m dto.MoneyDTO) types.Money {
	return types.Money{Birr: m.Birr, Cents: m.Cents}
}

func registryInfoFromDTO(ri dto.RegistryInfoDTO) entities.RegistryInfo {
	out := entities.RegistryInfo{
		ExpenditureRegistryNo:   ri.ExpenditureRegistryNo,
		IncomingGoodsRegistryNo: ri.IncomingGoodsRegistryNo,
		StockClassification:     ri.StockClassification,
		StoreNo:                 ri.StoreNo,
		ShelfNo:                 ri.ShelfNo,
		OutgoingGoodsRegistryNo: ri.OutgoingGoodsRegistryNo,
		OrderNo:                 ri.OrderNo,
		DateOf:                  ri.DateOf,
	}
	if ri.SignatoryName != nil {
		out.SignatoryName = null.StringFrom(*ri.SignatoryName)
	}
	if ri.SignatoryDate != nil {
		out.SignatoryDate = null.TimeFrom(*ri.SignatoryDate)
	}
	return out
}

// CreateResource writes a new inventory entry. The total price is always
// recomputed from quantity and unit price, whatever the client sent.
func (s *ResourceService) CreateResource(ctx context.Context, payload dto.CreateResourceDTO, actor *authz.Identity) (*entities.Resource, error) {
	department := authz.NormalizeDepartment(payload.Department)
	if department == "" {
		department = actor.Department
	}
	if !authz.ValidDepartment(department) {
		return nil, apperrors.NewBadRequestError("Unknown department.")
	}
	if !actor.CanManage(department) {
		return nil, apperrors.ErrForbidden
	}

	unitPrice := moneyFromDTO(payload.UnitPrice)
	if !unitPrice.IsValid() {
		return nil, apperrors.NewBadRequestError("Unit price must be non-negative with cents between 0 and 99.")
	}

	status := payload.Status
	if status == "" {
		status = entities.ResourceStatusUnassigned
	}

	res := &entities.Resource{
		Department:   department,
		RegistryInfo: registryInfoFromDTO(payload.RegistryInfo),
		Description:  payload.Description,
		Quantity:     payload.Quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice.Mul(payload.Quantity),
		ResourceType: payload.ResourceType,
		Status:       status,
		CreatedBy:    actor.ID,
	}
	if payload.Model != nil {
		res.Model = null.StringFrom(*payload.Model)
	}
	if payload.Serial != nil {
		res.Serial = null.StringFrom(*payload.Serial)
	}
	if payload.FromNo != nil {
		res.FromNo = null.StringFrom(*payload.FromNo)
	}
	if payload.ToNo != nil {
		res.ToNo = null.StringFrom(*payload.ToNo)
	}
	if payload.Location != nil {
		res.Location = null.StringFrom(*payload.Location)
	}
	if payload.Remarks != nil {
		res.Remarks = null.StringFrom(*payload.Remarks)
	}
	if payload.AssignedTo != nil {
		res.AssignedTo = null.Int64From(int64(*payload.AssignedTo))
		res.Status = entities.ResourceStatusAssigned
	}

	created, err := s.resourceRepo.CreateResource(ctx, res)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resource created",
		zap.Uint64("resourceID", created.ID),
		zap.String("department", created.Department),
		zap.Uint64("createdBy", actor.ID))
	return created, nil
}

func (s *ResourceService) UpdateResource(ctx context.Context, id uint64, payload dto.UpdateResourceDTO, actor *authz.Identity) (*entities.Resource, error) {
	existing, err := s.resourceRepo.FindResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(existing.Department) {
		return nil, apperrors.ErrForbidden
	}

	updates := make(map[string]interface{})

	if payload.Department != nil {
		department := authz.NormalizeDepartment(*payload.Department)
		if !authz.ValidDepartment(department) {
			return nil, apperrors.NewBadRequestError("Unknown department.")
		}
		// Moving a resource between departments is an admin action;
		// everyone else moves assets through the transfer workflow.
		if !actor.IsAdmin() && !authz.SameDepartment(existing.Department, department) {
			return nil, apperrors.ErrForbidden
		}
		updates["department"] = department
	}

	if payload.RegistryInfo != nil {
		ri := registryInfoFromDTO(*payload.RegistryInfo)
		updates["expenditure_registry_no"] = ri.ExpenditureRegistryNo
		updates["incoming_goods_registry_no"] = ri.IncomingGoodsRegistryNo
		updates["stock_classification"] = ri.StockClassification
		updates["store_no"] = ri.StoreNo
		updates["shelf_no"] = ri.ShelfNo
		updates["outgoing_goods_registry_no"] = ri.OutgoingGoodsRegistryNo
		updates["order_no"] = ri.OrderNo
		updates["date_of"] = ri.DateOf
		updates["signatory_name"] = ri.SignatoryName
		updates["signatory_date"] = ri.SignatoryDate
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Model != nil {
		updates["model"] = *payload.Model
	}
	if payload.Serial != nil {
		updates["serial"] = *payload.Serial
	}
	if payload.FromNo != nil {
		updates["from_no"] = *payload.FromNo
	}
	if payload.ToNo != nil {
		updates["to_no"] = *payload.ToNo
	}
	if payload.ResourceType != nil {
		updates["resource_type"] = *payload.ResourceType
	}
	if payload.Status != nil {
		updates["status"] = *payload.Status
	}
	if payload.Location != nil {
		updates["location"] = *payload.Location
	}
	if payload.Remarks != nil {
		updates["remarks"] = *payload.Remarks
	}
	if payload.AssignedTo != nil {
		updates["assigned_to"] = int64(*payload.AssignedTo)
		if payload.Status == nil {
			updates["status"] = entities.ResourceStatusAssigned
		}
	}

	// Price changes always flow through a recomputed total.
	quantity := existing.Quantity
	unitPrice := existing.UnitPrice
	priceChanged := false
	if payload.Quantity != nil {
		quantity = *payload.Quantity
		updates["quantity"] = quantity
		priceChanged = true
	}
	if payload.UnitPrice != nil {
		unitPrice = moneyFromDTO(*payload.UnitPrice)
		if !unitPrice.IsValid() {
			return nil, apperrors.NewBadRequestError("Unit price must be non-negative with cents between 0 and 99.")
		}
		updates["unit_price_birr"] = unitPrice.Birr
		updates["unit_price_cents"] = unitPrice.Cents
		priceChanged = true
	}
	if priceChanged {
		total := unitPrice.Mul(quantity)
		updates["total_price_birr"] = total.Birr
		updates["total_price_cents"] = total.Cents
	}

	return s.resourceRepo.UpdateResource(ctx, id, updates)
}

func (s *ResourceService) DeleteResource(ctx context.Context, id uint64, actor *authz.Identity) error {
	existing, err := s.resourceRepo.FindResourceByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(existing.Department) {
		return apperrors.ErrForbidden
	}
	if err := s.resourceRepo.DeleteResource(ctx, id); err != nil {
		return err
	}
	s.logger.Info("resource deleted", zap.Uint64("resourceID", id), zap.Uint64("deletedBy", actor.ID))
	return nil
}

func (s *ResourceService) GetResourceStats(ctx context.Context, department string, actor *authz.Identity) (*dto.ResourceStatsDTO, error) {
	department = authz.NormalizeDepartment(department)
	if department != "" && !authz.ValidDepartment(department) {
		return nil, apperrors.NewBadRequestError("Unknown department.")
	}

	switch {
	case actor.IsAdmin():
	case actor.IsAssetManager():
		// Managers only ever see their own department's numbers.
		if department == "" {
			department = actor.Department
		} else if !authz.SameDepartment(actor.Department, department) {
			return nil, apperrors.ErrForbidden
		}
	default:
		return nil, apperrors.ErrForbidden
	}

	return s.resourceRepo.GetResourceStats(ctx, department)
}
