package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ogurasousui/daily-report/internal/adapters/view"
	"github.com/ogurasousui/daily-report/internal/core/employee"
	"github.com/ogurasousui/daily-report/internal/core/paging"
	"github.com/ogurasousui/daily-report/internal/core/report"
)

type app struct {
	employees employee.UseCase
	reports   report.UseCase
	pepper    string
	pageSize  int
	out       io.Writer
	errOut    io.Writer
}

type pageView[T any] struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

type validationView struct {
	Errors []string `json:"errors"`
}

type likeView struct {
	EmployeeID int64 `json:"employee_id"`
	ReportID   int64 `json:"report_id"`
	Liked      bool  `json:"liked"`
	LikeCount  int64 `json:"like_count"`
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	group, rest := args[0], args[1:]
	if group == "login" {
		return a.login(ctx, rest)
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: %s requires a subcommand", errUsage, group)
	}
	action, rest := rest[0], rest[1:]

	switch group + " " + action {
	case "employee list":
		return a.employeeList(ctx, rest)
	case "employee show":
		return a.employeeShow(ctx, rest)
	case "employee create":
		return a.employeeCreate(ctx, rest)
	case "employee update":
		return a.employeeUpdate(ctx, rest)
	case "employee destroy":
		return a.employeeDestroy(ctx, rest)
	case "report list":
		return a.reportList(ctx, rest)
	case "report show":
		return a.reportShow(ctx, rest)
	case "report create":
		return a.reportCreate(ctx, rest)
	case "report update":
		return a.reportUpdate(ctx, rest)
	case "like add", "like remove", "like toggle":
		return a.like(ctx, action, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, group+" "+action)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) invalid(errs []string) error {
	if err := a.print(validationView{Errors: errs}); err != nil {
		return err
	}
	return errValidation
}

func (a *app) employeeList(ctx context.Context, args []string) error {
	fs := a.flags("employee list")
	page := fs.Int("page", 1, "page number (1-based)")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	total, err := a.employees.CountEmployees(ctx)
	if err != nil {
		return err
	}
	found, err := a.employees.ListEmployees(ctx, *page, a.pageSize)
	if err != nil {
		return err
	}
	return a.print(pageView[*view.EmployeeView]{
		Page:  *page,
		Pages: paging.PageCount(total, a.pageSize),
		Total: total,
		Items: view.FromEmployees(found),
	})
}

func (a *app) employeeShow(ctx context.Context, args []string) error {
	fs := a.flags("employee show")
	id := fs.Int64("id", 0, "employee id")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	found, err := a.employees.GetActiveEmployee(ctx, *id)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("employee %d: %w", *id, errNotFound)
	}
	return a.print(view.FromEmployee(found))
}

func (a *app) employeeCreate(ctx context.Context, args []string) error {
	fs := a.flags("employee create")
	code := fs.String("code", "", "employee code")
	name := fs.String("name", "", "employee name")
	pass := fs.String("password", "", "plain password")
	admin := fs.Bool("admin", false, "grant administrator role")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	created, errs, err := a.employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Code:     *code,
		Name:     *name,
		Password: *pass,
		IsAdmin:  *admin,
	}, a.pepper)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return a.invalid(errs)
	}
	return a.print(view.FromEmployee(created))
}

func (a *app) employeeUpdate(ctx context.Context, args []string) error {
	fs := a.flags("employee update")
	id := fs.Int64("id", 0, "employee id")
	code := fs.String("code", "", "employee code")
	name := fs.String("name", "", "employee name")
	pass := fs.String("password", "", "new password (empty keeps the current one)")
	admin := fs.Bool("admin", false, "administrator role")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	updated, errs, err := a.employees.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:       *id,
		Code:     *code,
		Name:     *name,
		Password: *pass,
		IsAdmin:  *admin,
	}, a.pepper)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return a.invalid(errs)
	}
	return a.print(view.FromEmployee(updated))
}

func (a *app) employeeDestroy(ctx context.Context, args []string) error {
	fs := a.flags("employee destroy")
	id := fs.Int64("id", 0, "employee id")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	if err := a.employees.DestroyEmployee(ctx, *id); err != nil {
		return err
	}
	found, err := a.employees.GetEmployee(ctx, *id)
	if err != nil {
		return err
	}
	return a.print(view.FromEmployee(found))
}

func (a *app) reportList(ctx context.Context, args []string) error {
	fs := a.flags("report list")
	page := fs.Int("page", 1, "page number (1-based)")
	author := fs.Int64("author", 0, "restrict to reports written by this employee id")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var (
		total int64
		found []*report.Report
		err   error
	)
	if *author > 0 {
		if total, err = a.reports.CountReportsByAuthor(ctx, *author); err != nil {
			return err
		}
		found, err = a.reports.ListReportsByAuthor(ctx, *author, *page, a.pageSize)
	} else {
		if total, err = a.reports.CountReports(ctx); err != nil {
			return err
		}
		found, err = a.reports.ListReports(ctx, *page, a.pageSize)
	}
	if err != nil {
		return err
	}

	return a.print(pageView[*view.ReportView]{
		Page:  *page,
		Pages: paging.PageCount(total, a.pageSize),
		Total: total,
		Items: view.FromReports(found),
	})
}

func (a *app) reportShow(ctx context.Context, args []string) error {
	fs := a.flags("report show")
	id := fs.Int64("id", 0, "report id")
	viewer := fs.Int64("viewer", 0, "employee id used to resolve the liked flag")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	detail, err := a.reports.ReportDetail(ctx, *id, *viewer)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("report %d: %w", *id, errNotFound)
	}
	return a.print(view.FromDetail(detail))
}

func (a *app) reportCreate(ctx context.Context, args []string) error {
	fs := a.flags("report create")
	author := fs.Int64("author", 0, "author employee id")
	date := fs.String("date", "", "report date (YYYY-MM-DD, defaults to today)")
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "content")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	created, errs, err := a.reports.CreateReport(ctx, report.CreateReportInput{
		EmployeeID: *author,
		ReportDate: *date,
		Title:      *title,
		Content:    *content,
	})
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return a.invalid(errs)
	}
	return a.print(view.FromReport(created))
}

func (a *app) reportUpdate(ctx context.Context, args []string) error {
	fs := a.flags("report update")
	id := fs.Int64("id", 0, "report id")
	editor := fs.Int64("editor", 0, "editing employee id (must be the author)")
	date := fs.String("date", "", "report date (YYYY-MM-DD)")
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "content")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	updated, errs, err := a.reports.UpdateReport(ctx, report.UpdateReportInput{
		ID:         *id,
		EditorID:   *editor,
		ReportDate: *date,
		Title:      *title,
		Content:    *content,
	})
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return a.invalid(errs)
	}
	return a.print(view.FromReport(updated))
}

func (a *app) like(ctx context.Context, action string, args []string) error {
	fs := a.flags("like " + action)
	employeeID := fs.Int64("employee", 0, "employee id")
	reportID := fs.Int64("report", 0, "report id")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var err error
	switch action {
	case "add":
		err = a.reports.AddLike(ctx, *employeeID, *reportID)
	case "remove":
		err = a.reports.RemoveLike(ctx, *employeeID, *reportID)
	default:
		_, err = a.reports.ToggleLike(ctx, *employeeID, *reportID)
	}
	if err != nil {
		return err
	}

	liked, err := a.reports.IsLikedBy(ctx, *employeeID, *reportID)
	if err != nil {
		return err
	}
	count, err := a.reports.LikeCount(ctx, *reportID)
	if err != nil {
		return err
	}
	return a.print(likeView{EmployeeID: *employeeID, ReportID: *reportID, Liked: liked, LikeCount: count})
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	code := fs.String("code", "", "employee code")
	pass := fs.String("password", "", "plain password")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	found, err := a.employees.Authenticate(ctx, *code, *pass, a.pepper)
	if err != nil {
		return err
	}
	if found == nil {
		return a.invalid([]string{msgLoginFailed})
	}
	return a.print(view.FromEmployee(found))
}

const msgLoginFailed = "社員番号またはパスワードが違います。"
