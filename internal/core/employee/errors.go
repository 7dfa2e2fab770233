package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrPepperRequired            = errors.New("employee: pepper is required")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrEmployeeDeleted           = errors.New("employee: already deleted")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
)
