package employee

import (
	"context"
	"time"
)

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Employee, error)
	// FindByCode は論理削除済みを含めて社員番号で検索します。
	FindByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, error)
	Count(ctx context.Context, filter CountEmployeesFilter) (int64, error)
	SoftDelete(ctx context.Context, id int64, deletedAt time.Time) (bool, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// CountEmployeesFilter は件数取得用フィルタです。
type CountEmployeesFilter struct {
	IncludeDeleted bool
}
