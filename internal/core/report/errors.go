package report

import "errors"

var (
	ErrInvalidID         = errors.New("report: invalid id")
	ErrInvalidEmployeeID = errors.New("report: invalid employee id")
	ErrReportNotFound    = errors.New("report: not found")
	ErrAuthorNotFound    = errors.New("report: author not found")
	ErrEmployeeNotFound  = errors.New("report: employee not found")
	ErrNotAuthor         = errors.New("report: editor is not the author")
	ErrLikeAlreadyExists = errors.New("report: like already exists")
)
