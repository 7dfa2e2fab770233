package employee

import "time"

// Employee は従業員エンティティです。
// 論理削除された従業員も既存の日報・いいねから参照されるため行は残ります。
type Employee struct {
	ID           int64
	Code         string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsDeleted    bool
}

// Active は論理削除されていないかを返します。
func (e *Employee) Active() bool {
	return e != nil && !e.IsDeleted
}
