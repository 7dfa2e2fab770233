package report

import "context"

// Repository は日報永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, report *Report) (*Report, error)
	Update(ctx context.Context, report *Report) (*Report, error)
	FindByID(ctx context.Context, id int64) (*Report, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Report, error)
	List(ctx context.Context, filter ListReportsFilter) ([]*Report, error)
	Count(ctx context.Context, filter CountReportsFilter) (int64, error)
}

// LikeRepository はいいね永続化の抽象です。
// Create は (employee_id, report_id) の一意制約違反時に ErrLikeAlreadyExists を返します。
type LikeRepository interface {
	Create(ctx context.Context, like *Like) (*Like, error)
	Delete(ctx context.Context, employeeID, reportID int64) (bool, error)
	Exists(ctx context.Context, employeeID, reportID int64) (bool, error)
	CountByReport(ctx context.Context, reportID int64) (int64, error)
}

// ListReportsFilter は一覧取得用フィルタです。EmployeeID が nil の場合は全件が対象です。
type ListReportsFilter struct {
	EmployeeID *int64
	Limit      int
	Offset     int
}

// CountReportsFilter は件数取得用フィルタです。
type CountReportsFilter struct {
	EmployeeID *int64
}
