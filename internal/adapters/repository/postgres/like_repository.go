package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/daily-report/internal/core/report"
	pgdb "github.com/ogurasousui/daily-report/internal/platform/db/postgres"
)

const (
	likesEmployeeFKey = "likes_employee_id_fkey"
	likesReportFKey   = "likes_report_id_fkey"
)

// LikeRepository は PostgreSQL を利用したいいね永続化の実装です。
// (employee_id, report_id) の一意制約が同時実行時の重複を防ぎます。
type LikeRepository struct {
	pool pgdb.Queryer
}

// NewLikeRepository は LikeRepository を生成します。
func NewLikeRepository(pool pgdb.Queryer) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Create はいいねを登録します。既に存在する場合は report.ErrLikeAlreadyExists を返します。
func (r *LikeRepository) Create(ctx context.Context, l *report.Like) (*report.Like, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO likes (employee_id, report_id, created_at)
        VALUES ($1, $2, $3)
        RETURNING id, employee_id, report_id, created_at
    `, l.EmployeeID, l.ReportID, l.CreatedAt)

	var created report.Like
	if err := row.Scan(&created.ID, &created.EmployeeID, &created.ReportID, &created.CreatedAt); err != nil {
		return nil, translateLikePgError(err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

// Delete はいいねを削除し、削除した行があったかを返します。
func (r *LikeRepository) Delete(ctx context.Context, employeeID, reportID int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM likes WHERE employee_id = $1 AND report_id = $2`, employeeID, reportID)
	if err != nil {
		return false, translateLikePgError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists はいいねが存在するかを返します。
func (r *LikeRepository) Exists(ctx context.Context, employeeID, reportID int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM likes WHERE employee_id = $1 AND report_id = $2
        )
    `, employeeID, reportID).Scan(&exists); err != nil {
		return false, translateLikePgError(err)
	}
	return exists, nil
}

// CountByReport は日報に付いたいいね数を返します。
func (r *LikeRepository) CountByReport(ctx context.Context, reportID int64) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE report_id = $1`, reportID).Scan(&total); err != nil {
		return 0, translateLikePgError(err)
	}
	return total, nil
}

func translateLikePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return report.ErrReportNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return report.ErrLikeAlreadyExists
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case likesEmployeeFKey:
				return report.ErrEmployeeNotFound
			case likesReportFKey:
				return report.ErrReportNotFound
			}
		}
	}
	return err
}
