// Package view は従業員・日報を外部へ出力するための表現と相互変換を提供します。
// パスワードハッシュは表現へ一切コピーしません。
package view

import (
	"time"

	"github.com/ogurasousui/daily-report/internal/core/employee"
	"github.com/ogurasousui/daily-report/internal/core/report"
)

// EmployeeView は従業員の出力表現です。
type EmployeeView struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// ReportView は日報の出力表現です。
type ReportView struct {
	ID         int64         `json:"id"`
	Author     *EmployeeView `json:"author,omitempty"`
	ReportDate string        `json:"report_date"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ReportDetailView は詳細画面向けにいいね情報を加えた表現です。
type ReportDetailView struct {
	ReportView
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// FromEmployee は従業員エンティティを表現に変換します。
func FromEmployee(e *employee.Employee) *EmployeeView {
	if e == nil {
		return nil
	}
	return &EmployeeView{
		ID:        e.ID,
		Code:      e.Code,
		Name:      e.Name,
		IsAdmin:   e.IsAdmin,
		IsDeleted: e.IsDeleted,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// FromEmployees は一覧を変換します。
func FromEmployees(es []*employee.Employee) []*EmployeeView {
	out := make([]*EmployeeView, 0, len(es))
	for _, e := range es {
		out = append(out, FromEmployee(e))
	}
	return out
}

// ToEmployee は表現をエンティティへ戻します。PasswordHash は空のままです。
func ToEmployee(v *EmployeeView) *employee.Employee {
	if v == nil {
		return nil
	}
	return &employee.Employee{
		ID:        v.ID,
		Code:      v.Code,
		Name:      v.Name,
		IsAdmin:   v.IsAdmin,
		IsDeleted: v.IsDeleted,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func fromAuthor(a *report.Author) *EmployeeView {
	if a == nil {
		return nil
	}
	return &EmployeeView{ID: a.ID, Code: a.Code, Name: a.Name, IsDeleted: a.IsDeleted}
}

// FromReport は日報エンティティを表現に変換します。
func FromReport(r *report.Report) *ReportView {
	if r == nil {
		return nil
	}
	return &ReportView{
		ID:         r.ID,
		Author:     fromAuthor(r.Author),
		ReportDate: r.ReportDate.Format(report.DateLayout),
		Title:      r.Title,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// FromReports は一覧を変換します。
func FromReports(rs []*report.Report) []*ReportView {
	out := make([]*ReportView, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromReport(r))
	}
	return out
}

// FromDetail は詳細を変換します。
func FromDetail(d *report.Detail) *ReportDetailView {
	if d == nil || d.Report == nil {
		return nil
	}
	return &ReportDetailView{
		ReportView: *FromReport(d.Report),
		Liked:      d.LikedByViewer,
		LikeCount:  d.LikeCount,
	}
}

// ToReport は表現をエンティティへ戻します。日付が解釈できない場合はエラーを返します。
func ToReport(v *ReportView) (*report.Report, error) {
	if v == nil {
		return nil, nil
	}
	date, err := report.ParseReportDate(v.ReportDate)
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		ID:         v.ID,
		ReportDate: date,
		Title:      v.Title,
		Content:    v.Content,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	if v.Author != nil {
		r.EmployeeID = v.Author.ID
		r.Author = &report.Author{
			ID:        v.Author.ID,
			Code:      v.Author.Code,
			Name:      v.Author.Name,
			IsDeleted: v.Author.IsDeleted,
		}
	}
	return r, nil
}
