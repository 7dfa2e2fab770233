package report

import (
	"strings"
	"time"
)

// DateLayout は日報日付の入力形式です。
const DateLayout = "2006-01-02"

// バリデーションメッセージ
const (
	MsgTitleRequired      = "タイトルを入力してください。"
	MsgContentRequired    = "内容を入力してください。"
	MsgReportDateRequired = "日付を入力してください。"
	MsgReportDateInvalid  = "日付は YYYY-MM-DD 形式で入力してください。"
	MsgAuthorNotFound     = "作成者の従業員が存在しません。"
)

// Candidate は検証対象の日報入力値です。
type Candidate struct {
	ReportDate string
	Title      string
	Content    string
}

// ValidateReport は日報の入力値を検証し、エラーメッセージの一覧を返します。
// すべての規則を評価し、違反がなければ空のスライスを返します。
func ValidateReport(c Candidate) []string {
	errs := make([]string, 0, 3)

	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, MsgTitleRequired)
	}

	if strings.TrimSpace(c.Content) == "" {
		errs = append(errs, MsgContentRequired)
	}

	if strings.TrimSpace(c.ReportDate) == "" {
		errs = append(errs, MsgReportDateRequired)
	} else if _, err := ParseReportDate(c.ReportDate); err != nil {
		errs = append(errs, MsgReportDateInvalid)
	}

	return errs
}

// ParseReportDate は YYYY-MM-DD 形式の日付を UTC の 0 時として解釈します。
func ParseReportDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
