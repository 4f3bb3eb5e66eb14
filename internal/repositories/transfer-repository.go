package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/abikoy/ddu-rims/internal/entities"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

const transferSelectFields = `t.id, t.resource_id, t.from_user_id, t.to_user_id, t.reason, t.status,
	t.approved_by, t.approval_date, t.remarks,
	res.description, res.department, fu.full_name, tu.full_name, tu.department,
	t.created_at, t.updated_at`
const transferJoinClause = `transfers t
	JOIN resources res ON t.resource_id = res.id
	JOIN users fu ON t.from_user_id = fu.id
	JOIN users tu ON t.to_user_id = tu.id`

var transferAllowedFilterFields = map[string]bool{
	"status": true, "resource_id": true, "from_user_id": true, "to_user_id": true,
}
var transferAllowedSortFields = map[string]bool{"id": true, "status": true, "created_at": true}

type TransferRepositoryInterface interface {
	GetTransfers(ctx context.Context, filter types.Filter, securityFilter string, securityArgs []interface{}) ([]entities.Transfer, uint64, error)
	FindTransferByID(ctx context.Context, id uint64) (*entities.Transfer, error)
	CreateTransfer(ctx context.Context, entity *entities.Transfer) (*entities.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id uint64, status string, approverID uint64, remarks *string) (*entities.Transfer, error)
	UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, approverID uint64, remarks *string) error
}

type TransferRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTransferRepository(storage *pgxpool.Pool, logger *zap.Logger) TransferRepositoryInterface {
	return &TransferRepository{storage: storage, logger: logger}
}

func scanTransfer(row pgx.Row) (*entities.Transfer, error) {
	var tr entities.Transfer
	err := row.Scan(
		&tr.ID, &tr.ResourceID, &tr.FromUserID, &tr.ToUserID, &tr.Reason, &tr.Status,
		&tr.ApprovedBy, &tr.ApprovalDate, &tr.Remarks,
		&tr.ResourceDescription, &tr.ResourceDepartment,
		&tr.FromUserName, &tr.ToUserName, &tr.ToUserDepartment,
		&tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

func (r *TransferRepository) GetTransfers(ctx context.Context, filter types.Filter, securityFilter string, securityArgs []interface{}) ([]entities.Transfer, uint64, error) {
	allArgs := make([]interface{}, 0)
	conditions := []string{"TRUE"}

	if securityFilter != "" {
		conditions = append(conditions, securityFilter)
		allArgs = append(allArgs, securityArgs...)
	}

	for key, value := range filter.Filter {
		if !transferAllowedFilterFields[key] {
			continue
		}
		placeholder := fmt.Sprintf("$%d", len(allArgs)+1)
		if strVal, ok := value.(string); ok && strings.Contains(strVal, ",") {
			conditions = append(conditions, fmt.Sprintf("t.%s::text IN (SELECT unnest(string_to_array(%s, ',')))", key, placeholder))
			allArgs = append(allArgs, value)
		} else {
			conditions = append(conditions, fmt.Sprintf("t.%s::text = %s", key, placeholder))
			allArgs = append(allArgs, fmt.Sprintf("%v", value))
		}
	}

	if filter.Search != "" {
		searchPlaceholder := fmt.Sprintf("$%d", len(allArgs)+1)
		conditions = append(conditions, fmt.Sprintf("(res.description ILIKE %s OR t.reason ILIKE %s)", searchPlaceholder, searchPlaceholder))
		allArgs = append(allArgs, "%"+filter.Search+"%")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(t.id) FROM %s %s", transferJoinClause, whereClause)
	r.logger.Debug("counting transfers", zap.String("query", countQuery), zap.Any("args", allArgs))

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countQuery, allArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	if totalCount == 0 {
		return []entities.Transfer{}, 0, nil
	}

	orderByClause := "ORDER BY t.id DESC"
	for key, dir := range filter.Sort {
		if !transferAllowedSortFields[key] {
			continue
		}
		direction := "ASC"
		if strings.EqualFold(dir, "desc") {
			direction = "DESC"
		}
		orderByClause = fmt.Sprintf("ORDER BY t.%s %s", key, direction)
		break
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", len(allArgs)+1, len(allArgs)+2)
		allArgs = append(allArgs, filter.Limit, filter.Offset)
	}

	mainQuery := fmt.Sprintf("SELECT %s FROM %s %s %s %s", transferSelectFields, transferJoinClause, whereClause, orderByClause, limitClause)
	r.logger.Debug("listing transfers", zap.String("query", mainQuery), zap.Any("args", allArgs))

	rows, err := r.storage.Query(ctx, mainQuery, allArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]entities.Transfer, 0)
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, *tr)
	}
	return transfers, totalCount, rows.Err()
}

func (r *TransferRepository) FindTransferByID(ctx context.Context, id uint64) (*entities.Transfer, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE t.id = $1", transferSelectFields, transferJoinClause)
	row := r.storage.QueryRow(ctx, query, id)
	return scanTransfer(row)
}

func (r *TransferRepository) CreateTransfer(ctx context.Context, entity *entities.Transfer) (*entities.Transfer, error) {
	query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO transfers (resource_id, from_user_id, to_user_id, reason, status)
            VALUES ($1, $2, $3, $4, $5) RETURNING id
        ) SELECT %s FROM %s WHERE t.id = (SELECT id FROM ins)
    `, transferSelectFields, transferJoinClause)

	row := r.storage.QueryRow(ctx, query,
		entity.ResourceID, entity.FromUserID, entity.ToUserID, entity.Reason, entity.Status,
	)
	return scanTransfer(row)
}

func (r *TransferRepository) UpdateTransferStatus(ctx context.Context, id uint64, status string, approverID uint64, remarks *string) (*entities.Transfer, error) {
	query := fmt.Sprintf(`
		WITH upd AS (
			UPDATE transfers
			SET status = $1, approved_by = $2, approval_date = NOW(),
			    remarks = COALESCE($3, remarks), updated_at = NOW()
			WHERE id = $4 RETURNING id
		) SELECT %s FROM %s WHERE t.id = (SELECT id FROM upd)
	`, transferSelectFields, transferJoinClause)

	row := r.storage.QueryRow(ctx, query, status, approverID, remarks, id)
	return scanTransfer(row)
}

// UpdateTransferStatusInTx marks a transfer inside the caller's
// transaction. Completion updates the transfer and the resource together.
func (r *TransferRepository) UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, approverID uint64, remarks *string) error {
	query := `
		UPDATE transfers
		SET status = $1, approved_by = $2, approval_date = NOW(),
		    remarks = COALESCE($3, remarks), updated_at = NOW()
		WHERE id = $4`
	result, err := tx.Exec(ctx, query, status, approverID, remarks, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
