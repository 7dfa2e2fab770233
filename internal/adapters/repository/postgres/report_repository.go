package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/daily-report/internal/core/report"
	pgdb "github.com/ogurasousui/daily-report/internal/platform/db/postgres"
)

const reportsEmployeeFKey = "reports_employee_id_fkey"

const reportSelect = `
        SELECT r.id,
               r.employee_id,
               r.report_date,
               r.title,
               r.content,
               r.created_at,
               r.updated_at,
               e.id,
               e.code,
               e.name,
               e.is_deleted
          FROM reports r
          JOIN employees e ON e.id = r.employee_id`

// ReportRepository は PostgreSQL を利用した日報永続化の実装です。
type ReportRepository struct {
	pool pgdb.Queryer
}

// NewReportRepository は ReportRepository を生成します。
func NewReportRepository(pool pgdb.Queryer) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create は日報を新規作成し、作成者情報と合わせて返します。
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO reports (employee_id, report_date, title, content, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, employee_id, report_date, title, content, created_at, updated_at
        )
        SELECT i.id, i.employee_id, i.report_date, i.title, i.content, i.created_at, i.updated_at,
               e.id, e.code, e.name, e.is_deleted
          FROM inserted i
          JOIN employees e ON e.id = i.employee_id
    `,
		rep.EmployeeID,
		dateOnly(rep.ReportDate),
		rep.Title,
		rep.Content,
		rep.CreatedAt,
		rep.UpdatedAt,
	)

	created, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return created, nil
}

// Update は日報の日付・タイトル・内容を更新します。作成者は変更しません。
func (r *ReportRepository) Update(ctx context.Context, rep *report.Report) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE reports
               SET report_date = $1,
                   title = $2,
                   content = $3,
                   updated_at = $4
             WHERE id = $5
            RETURNING id, employee_id, report_date, title, content, created_at, updated_at
        )
        SELECT u.id, u.employee_id, u.report_date, u.title, u.content, u.created_at, u.updated_at,
               e.id, e.code, e.name, e.is_deleted
          FROM updated u
          JOIN employees e ON e.id = u.employee_id
    `,
		dateOnly(rep.ReportDate),
		rep.Title,
		rep.Content,
		rep.UpdatedAt,
		rep.ID,
	)

	updated, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return updated, nil
}

// FindByID は ID で日報を取得します。
func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanReport(exec.QueryRow(ctx, reportSelect+`
         WHERE r.id = $1
    `, id))
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は日報行をロックして取得します。
func (r *ReportRepository) FindByIDForUpdate(ctx context.Context, id int64) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanReport(exec.QueryRow(ctx, reportSelect+`
         WHERE r.id = $1
           FOR UPDATE OF r
    `, id))
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return found, nil
}

// List は日報を ID の降順で取得します。
func (r *ReportRepository) List(ctx context.Context, filter report.ListReportsFilter) ([]*report.Report, error) {
	if filter.Limit <= 0 || filter.Offset < 0 {
		return nil, errInvalidWindow
	}

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		whereClause = `
         WHERE r.employee_id = $1`
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := reportSelect + whereClause + `
         ORDER BY r.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	defer rows.Close()

	reports := make([]*report.Report, 0, filter.Limit)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, translateReportPgError(err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, translateReportPgError(err)
	}
	return reports, nil
}

// Count は日報の件数を返します。
func (r *ReportRepository) Count(ctx context.Context, filter report.CountReportsFilter) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var row pgx.Row
	if filter.EmployeeID != nil {
		row = exec.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE employee_id = $1`, *filter.EmployeeID)
	} else {
		row = exec.QueryRow(ctx, `SELECT COUNT(*) FROM reports`)
	}

	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, translateReportPgError(err)
	}
	return total, nil
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		rep    report.Report
		author report.Author
	)
	if err := row.Scan(
		&rep.ID,
		&rep.EmployeeID,
		&rep.ReportDate,
		&rep.Title,
		&rep.Content,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&author.ID,
		&author.Code,
		&author.Name,
		&author.IsDeleted,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, err
	}

	rep.ReportDate = dateOnly(rep.ReportDate)
	rep.CreatedAt = rep.CreatedAt.UTC()
	rep.UpdatedAt = rep.UpdatedAt.UTC()
	rep.Author = &author
	return &rep, nil
}

func translateReportPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return report.ErrReportNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode && pgErr.ConstraintName == reportsEmployeeFKey {
		return report.ErrAuthorNotFound
	}
	return err
}

// dateOnly は DATE 列と相互変換するため UTC の 0 時に揃えます。
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
