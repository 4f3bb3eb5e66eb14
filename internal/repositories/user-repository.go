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

	"github.com/abikoy/ddu-rims/internal/entities"
	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"
)

const userTable = "users"
const userSelectFields = "u.id, u.full_name, u.email, u.password, u.department, u.role, u.is_approved, u.approved_by, u.approved_at, u.registered_by, u.created_at, u.updated_at"

var userAllowedFilterFields = map[string]bool{"role": true, "department": true, "is_approved": true}
var userAllowedSortFields = map[string]bool{"id": true, "full_name": true, "email": true, "created_at": true}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, entity *entities.User) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, updates map[string]interface{}) (*entities.User, error)
	ApproveUser(ctx context.Context, id uint64, approverID uint64) (*entities.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, userID uint64, newPasswordHash string) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.FullName, &user.Email, &user.Password,
		&user.Department, &user.Role, &user.IsApproved,
		&user.ApprovedBy, &user.ApprovedAt, &user.RegisteredBy,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	allArgs := make([]interface{}, 0)
	conditions := []string{"TRUE"}

	for key, value := range filter.Filter {
		if !userAllowedFilterFields[key] {
			continue
		}
		placeholder := fmt.Sprintf("$%d", len(allArgs)+1)
		if strVal, ok := value.(string); ok && strings.Contains(strVal, ",") {
			conditions = append(conditions, fmt.Sprintf("u.%s::text IN (SELECT unnest(string_to_array(%s, ',')))", key, placeholder))
			allArgs = append(allArgs, value)
		} else {
			conditions = append(conditions, fmt.Sprintf("u.%s::text = %s", key, placeholder))
			allArgs = append(allArgs, fmt.Sprintf("%v", value))
		}
	}

	if filter.Search != "" {
		searchPlaceholder := fmt.Sprintf("$%d", len(allArgs)+1)
		conditions = append(conditions, fmt.Sprintf("(u.full_name ILIKE %s OR u.email ILIKE %s)", searchPlaceholder, searchPlaceholder))
		allArgs = append(allArgs, "%"+filter.Search+"%")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(u.id) FROM %s u %s", userTable, whereClause)
	r.logger.Debug("counting users", zap.String("query", countQuery), zap.Any("args", allArgs))

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countQuery, allArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if totalCount == 0 {
		return []entities.User{}, 0, nil
	}

	orderByClause := "ORDER BY u.id DESC"
	for key, dir := range filter.Sort {
		if !userAllowedSortFields[key] {
			continue
		}
		direction := "ASC"
		if strings.EqualFold(dir, "desc") {
			direction = "DESC"
		}
		orderByClause = fmt.Sprintf("ORDER BY u.%s %s", key, direction)
		break
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", len(allArgs)+1, len(allArgs)+2)
		allArgs = append(allArgs, filter.Limit, filter.Offset)
	}

	mainQuery := fmt.Sprintf("SELECT %s FROM %s u %s %s %s", userSelectFields, userTable, whereClause, orderByClause, limitClause)
	r.logger.Debug("listing users", zap.String("query", mainQuery), zap.Any("args", allArgs))

	rows, err := r.storage.Query(ctx, mainQuery, allArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, totalCount, rows.Err()
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s u WHERE u.id = $1", userSelectFields, userTable)
	row := r.storage.QueryRow(ctx, query, id)
	return scanUser(row)
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s u WHERE LOWER(u.email) = LOWER($1) LIMIT 1", userSelectFields, userTable)
	row := r.storage.QueryRow(ctx, query, email)
	return scanUser(row)
}

func (r *UserRepository) CreateUser(ctx context.Context, entity *entities.User) (*entities.User, error) {
	query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO %s (full_name, email, password, department, role, is_approved, approved_by, approved_at, registered_by)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id
        ) SELECT %s FROM %s u WHERE u.id = (SELECT id FROM ins)
    `, userTable, userSelectFields, userTable)

	row := r.storage.QueryRow(ctx, query,
		entity.FullName, entity.Email, entity.Password, entity.Department,
		entity.Role, entity.IsApproved, entity.ApprovedBy, entity.ApprovedAt,
		entity.RegisteredBy,
	)

	createdEntity, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "users_email_key") {
				return nil, apperrors.ErrEmailExists
			}
		}
		return nil, err
	}
	return createdEntity, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, updates map[string]interface{}) (*entities.User, error) {
	if len(updates) == 0 {
		return r.FindUserByID(ctx, id)
	}

	builder := sq.Update(userTable).
		SetMap(updates).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.ReplaceAll(userSelectFields, "u.", "")).
		PlaceholderFormat(sq.Dollar)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user update: %w", err)
	}
	r.logger.Debug("updating user", zap.String("query", query), zap.Any("args", args))

	row := r.storage.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// ApproveUser flips the approval flag and records who did it. The stored
// password hash is untouched.
func (r *UserRepository) ApproveUser(ctx context.Context, id uint64, approverID uint64) (*entities.User, error) {
	query := fmt.Sprintf(`
		WITH upd AS (
			UPDATE %s SET is_approved = TRUE, approved_by = $1, approved_at = NOW(), updated_at = NOW()
			WHERE id = $2 RETURNING id
		) SELECT %s FROM %s u WHERE u.id = (SELECT id FROM upd)
	`, userTable, userSelectFields, userTable)

	row := r.storage.QueryRow(ctx, query, approverID, id)
	return scanUser(row)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, newPasswordHash string) error {
	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.storage.Exec(ctx, query, newPasswordHash, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
