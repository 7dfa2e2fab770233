package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/daily-report/internal/core/employee"
	pgdb "github.com/ogurasousui/daily-report/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// errInvalidWindow は一覧取得の LIMIT/OFFSET が不正な場合に返します。
var errInvalidWindow = errors.New("postgres: limit must be positive and offset non-negative")

const employeeColumns = `id, code, name, password_hash, is_admin, created_at, updated_at, is_deleted`

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (code, name, password_hash, is_admin, created_at, updated_at, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+employeeColumns,
		e.Code,
		e.Name,
		e.PasswordHash,
		e.IsAdmin,
		e.CreatedAt,
		e.UpdatedAt,
		e.IsDeleted,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET code = $1,
               name = $2,
               password_hash = $3,
               is_admin = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+employeeColumns,
		e.Code,
		e.Name,
		e.PasswordHash,
		e.IsAdmin,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で従業員を取得します。論理削除済みも対象です。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// FindByIDForUpdate は行ロックを取得したうえで従業員を取得します。
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

// FindByCode は社員番号で従業員を取得します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, code string) (*employee.Employee, error) {
	return r.findOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE code = $1`, code)
}

func (r *EmployeeRepository) findOne(ctx context.Context, query string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanEmployee(exec.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は従業員の一覧を新しい順に取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, error) {
	if filter.Limit <= 0 || filter.Offset < 0 {
		return nil, errInvalidWindow
	}

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + employeeWhere(filter.IncludeDeleted) + `
         ORDER BY id DESC
         LIMIT $1
        OFFSET $2
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

// Count は従業員の件数を返します。
func (r *EmployeeRepository) Count(ctx context.Context, filter employee.CountEmployeesFilter) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+employeeWhere(filter.IncludeDeleted)).Scan(&total); err != nil {
		return 0, translateEmployeePgError(err)
	}
	return total, nil
}

// SoftDelete は従業員を論理削除します。既に削除済みの場合は false を返します。
func (r *EmployeeRepository) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET is_deleted = TRUE,
               updated_at = $2
         WHERE id = $1 AND NOT is_deleted
    `, id, deletedAt)
	if err != nil {
		return false, translateEmployeePgError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func employeeWhere(includeDeleted bool) string {
	if includeDeleted {
		return ""
	}
	return " WHERE NOT is_deleted"
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var e employee.Employee
	if err := row.Scan(
		&e.ID,
		&e.Code,
		&e.Name,
		&e.PasswordHash,
		&e.IsAdmin,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.IsDeleted,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return employee.ErrEmployeeCodeAlreadyExists
	}
	return err
}
