package report

import "time"

// Report は日報エンティティです。
type Report struct {
	ID         int64
	EmployeeID int64
	ReportDate time.Time
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Author     *Author
}

// Author は日報作成者のスナップショットです。論理削除済みの従業員も参照できます。
type Author struct {
	ID        int64
	Code      string
	Name      string
	IsDeleted bool
}

// Like は従業員と日報の「いいね」関係を表します。組ごとに高々 1 件です。
type Like struct {
	ID         int64
	EmployeeID int64
	ReportID   int64
	CreatedAt  time.Time
}

// Detail は詳細画面で必要な日報といいね情報をまとめたものです。
type Detail struct {
	Report        *Report
	LikedByViewer bool
	LikeCount     int64
}
