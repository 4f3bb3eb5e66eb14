package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/dto"
	"github.com/abikoy/ddu-rims/internal/entities"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

const resourceTable = "resources"
const resourceSelectFields = `r.id, r.department,
	r.expenditure_registry_no, r.incoming_goods_registry_no, r.stock_classification,
	r.store_no, r.shelf_no, r.outgoing_goods_registry_no, r.order_no, r.date_of,
	r.signatory_name, r.signatory_date,
	r.description, r.model, r.serial, r.from_no, r.to_no,
	r.quantity, r.unit_price_birr, r.unit_price_cents, r.total_price_birr, r.total_price_cents,
	r.resource_type, r.status, r.location, r.remarks,
	r.assigned_to, r.created_by, r.created_at, r.updated_at`

var resourceAllowedFilterFields = map[string]bool{
	"resource_type": true, "status": true, "department": true, "assigned_to": true,
}
var resourceAllowedSortFields = map[string]bool{
	"id": true, "description": true, "quantity": true, "created_at": true, "updated_at": true,
}

type ResourceRepositoryInterface interface {
	GetResources(ctx context.Context, filter types.Filter, securityFilter string, securityArgs []interface{}) ([]entities.Resource, uint64, error)
	FindResourceByID(ctx context.Context, id uint64) (*entities.Resource, error)
	CreateResource(ctx context.Context, entity *entities.Resource) (*entities.Resource, error)
	UpdateResource(ctx context.Context, id uint64, updates map[string]interface{}) (*entities.Resource, error)
	DeleteResource(ctx context.Context, id uint64) error
	GetResourceStats(ctx context.Context, department string) (*dto.ResourceStatsDTO, error)
	ReassignResourceInTx(ctx context.Context, tx pgx.Tx, resourceID uint64, department string, assignedTo uint64) error
}

type ResourceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewResourceRepository(storage *pgxpool.Pool, logger *zap.Logger) ResourceRepositoryInterface {
	return &ResourceRepository{storage: storage, logger: logger}
}

func scanResource(row pgx.Row) (*entities.Resource, error) {
	var res entities.Resource
	err := row.Scan(
		&res.ID, &res.Department,
		&res.RegistryInfo.ExpenditureRegistryNo, &res.RegistryInfo.IncomingGoodsRegistryNo,
		&res.RegistryInfo.StockClassification, &res.RegistryInfo.StoreNo, &res.RegistryInfo.ShelfNo,
		&res.RegistryInfo.OutgoingGoodsRegistryNo, &res.RegistryInfo.OrderNo, &res.RegistryInfo.DateOf,
		&res.RegistryInfo.SignatoryName, &res.RegistryInfo.SignatoryDate,
		&res.Description, &res.Model, &res.Serial, &res.FromNo, &res.ToNo,
		&res.Quantity, &res.UnitPrice.Birr, &res.UnitPrice.Cents,
		&res.TotalPrice.Birr, &res.TotalPrice.Cents,
		&res.ResourceType, &res.Status, &res.Location, &res.Remarks,
		&res.AssignedTo, &res.CreatedBy, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) GetResources(ctx context.Context, filter types.Filter, securityFilter string, securityArgs []interface{}) ([]entities.Resource, uint64, error) {
	allArgs := make([]interface{}, 0)
	conditions := []string{"TRUE"}

	if securityFilter != "" {
		conditions = append(conditions, securityFilter)
		allArgs = append(allArgs, securityArgs...)
	}

	for key, value := range filter.Filter {
		if !resourceAllowedFilterFields[key] {
			continue
		}
		placeholder := fmt.Sprintf("$%d", len(allArgs)+1)
		if strVal, ok := value.(string); ok && strings.Contains(strVal, ",") {
			conditions = append(conditions, fmt.Sprintf("r.%s::text IN (SELECT unnest(string_to_array(%s, ',')))", key, placeholder))
			allArgs = append(allArgs, value)
		} else {
			conditions = append(conditions, fmt.Sprintf("r.%s::text = %s", key, placeholder))
			allArgs = append(allArgs, fmt.Sprintf("%v", value))
		}
	}

	if filter.Search != "" {
		searchPlaceholder := fmt.Sprintf("$%d", len(allArgs)+1)
		conditions = append(conditions, fmt.Sprintf("(r.description ILIKE %s OR r.model ILIKE %s OR r.serial ILIKE %s)", searchPlaceholder, searchPlaceholder, searchPlaceholder))
		allArgs = append(allArgs, "%"+filter.Search+"%")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(r.id) FROM %s r %s", resourceTable, whereClause)
	r.logger.Debug("counting resources", zap.String("query", countQuery), zap.Any("args", allArgs))

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countQuery, allArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}
	if totalCount == 0 {
		return []entities.Resource{}, 0, nil
	}

	orderByClause := "ORDER BY r.id DESC"
	for key, dir := range filter.Sort {
		if !resourceAllowedSortFields[key] {
			continue
		}
		direction := "ASC"
		if strings.EqualFold(dir, "desc") {
			direction = "DESC"
		}
		orderByClause = fmt.Sprintf("ORDER BY r.%s %s", key, direction)
		break
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", len(allArgs)+1, len(allArgs)+2)
		allArgs = append(allArgs, filter.Limit, filter.Offset)
	}

	mainQuery := fmt.Sprintf("SELECT %s FROM %s r %s %s %s", resourceSelectFields, resourceTable, whereClause, orderByClause, limitClause)
	r.logger.Debug("listing resources", zap.String("query", mainQuery), zap.Any("args", allArgs))

	rows, err := r.storage.Query(ctx, mainQuery, allArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := make([]entities.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		resources = append(resources, *res)
	}
	return resources, totalCount, rows.Err()
}

func (r *ResourceRepository) FindResourceByID(ctx context.Context, id uint64) (*entities.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM %s r WHERE r.id = $1", resourceSelectFields, resourceTable)
	row := r.storage.QueryRow(ctx, query, id)
	return scanResource(row)
}

func (r *ResourceRepository) CreateResource(ctx context.Context, entity *entities.Resource) (*entities.Resource, error) {
	query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO %s (department,
                expenditure_registry_no, incoming_goods_registry_no, stock_classification,
                store_no, shelf_no, outgoing_goods_registry_no, order_no, date_of,
                signatory_name, signatory_date,
                description, model, serial, from_no, to_no,
                quantity, unit_price_birr, unit_price_cents, total_price_birr, total_price_cents,
                resource_type, status, location, remarks, assigned_to, created_by)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                    $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27) RETURNING id
        ) SELECT %s FROM %s r WHERE r.id = (SELECT id FROM ins)
    `, resourceTable, resourceSelectFields, resourceTable)

	row := r.storage.QueryRow(ctx, query,
		entity.Department,
		entity.RegistryInfo.ExpenditureRegistryNo, entity.RegistryInfo.IncomingGoodsRegistryNo,
		entity.RegistryInfo.StockClassification, entity.RegistryInfo.StoreNo, entity.RegistryInfo.ShelfNo,
		entity.RegistryInfo.OutgoingGoodsRegistryNo, entity.RegistryInfo.OrderNo, entity.RegistryInfo.DateOf,
		entity.RegistryInfo.SignatoryName, entity.RegistryInfo.SignatoryDate,
		entity.Description, entity.Model, entity.Serial, entity.FromNo, entity.ToNo,
		entity.Quantity, entity.UnitPrice.Birr, entity.UnitPrice.Cents,
		entity.TotalPrice.Birr, entity.TotalPrice.Cents,
		entity.ResourceType, entity.Status, entity.Location, entity.Remarks,
		entity.AssignedTo, entity.CreatedBy,
	)

	createdEntity, err := scanResource(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "resources_department_serial_key") {
				return nil, apperrors.ErrSerialExists
			}
		}
		return nil, err
	}
	return createdEntity, nil
}

func (r *ResourceRepository) UpdateResource(ctx context.Context, id uint64, updates map[string]interface{}) (*entities.Resource, error) {
	if len(updates) == 0 {
		return r.FindResourceByID(ctx, id)
	}

	builder := sq.Update(resourceTable).
		SetMap(updates).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.ReplaceAll(resourceSelectFields, "r.", "")).
		PlaceholderFormat(sq.Dollar)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build resource update: %w", err)
	}
	r.logger.Debug("updating resource", zap.String("query", query), zap.Any("args", args))

	row := r.storage.QueryRow(ctx, query, args...)
	res, err := scanResource(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "resources_department_serial_key") {
				return nil, apperrors.ErrSerialExists
			}
		}
		return nil, err
	}
	return res, nil
}

func (r *ResourceRepository) DeleteResource(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetResourceStats aggregates counts, quantities and total value, grouped
// by resource type and by status. Money is summed in cents to stay exact.
func (r *ResourceRepository) GetResourceStats(ctx context.Context, department string) (*dto.ResourceStatsDTO, error) {
	where := ""
	args := make([]interface{}, 0, 1)
	if department != "" {
		where = "WHERE department = $1"
		args = append(args, department)
	}

	stats := &dto.ResourceStatsDTO{Department: department}

	totalQuery := fmt.Sprintf(`
		SELECT COUNT(id), COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(total_price_birr * 100 + total_price_cents), 0)
		FROM %s %s`, resourceTable, where)

	var totalCents int64
	if err := r.storage.QueryRow(ctx, totalQuery, args...).Scan(&stats.Total.Count, &stats.Total.Quantity, &totalCents); err != nil {
		return nil, fmt.Errorf("failed to aggregate resources: %w", err)
	}
	stats.Total.Key = "total"
	stats.Total.TotalBirr = totalCents / 100
	stats.Total.TotalCents = totalCents % 100

	byGroup := func(column string) ([]dto.ResourceStatsRow, error) {
		query := fmt.Sprintf(`
			SELECT %s, COUNT(id), COALESCE(SUM(quantity), 0),
			       COALESCE(SUM(total_price_birr * 100 + total_price_cents), 0)
			FROM %s %s GROUP BY %s ORDER BY %s`, column, resourceTable, where, column, column)

		rows, err := r.storage.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to group resources by %s: %w", column, err)
		}
		defer rows.Close()

		out := make([]dto.ResourceStatsRow, 0)
		for rows.Next() {
			var row dto.ResourceStatsRow
			var cents int64
			if err := rows.Scan(&row.Key, &row.Count, &row.Quantity, &cents); err != nil {
				return nil, err
			}
			row.TotalBirr = cents / 100
			row.TotalCents = cents % 100
			out = append(out, row)
		}
		return out, rows.Err()
	}

	var err error
	if stats.ByType, err = byGroup("resource_type"); err != nil {
		return nil, err
	}
	if stats.ByStatus, err = byGroup("status"); err != nil {
		return nil, err
	}
	return stats, nil
}

// ReassignResourceInTx moves a resource to its new holder as part of a
// transfer completion. It runs inside the caller's transaction so the
// transfer row and the resource row change together.
func (r *ResourceRepository) ReassignResourceInTx(ctx context.Context, tx pgx.Tx, resourceID uint64, department string, assignedTo uint64) error {
	query := `
		UPDATE resources
		SET department = $1, assigned_to = $2, status = $3, updated_at = NOW()
		WHERE id = $4`
	result, err := tx.Exec(ctx, query, department, assignedTo, entities.ResourceStatusAssigned, resourceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
