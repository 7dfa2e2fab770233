package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/daily-report/internal/core/employee"
	"github.com/ogurasousui/daily-report/internal/core/report"
)

// 必要なメソッドだけを上書きし、それ以外は埋め込んだ nil インターフェースで panic させる
type stubEmployees struct {
	employee.UseCase
	created  employee.CreateEmployeeInput
	pepper   string
	errs     []string
	accounts map[string]*employee.Employee
	total    int64
	page     []*employee.Employee
}

func (s *stubEmployees) CreateEmployee(_ context.Context, in employee.CreateEmployeeInput, pepper string) (*employee.Employee, []string, error) {
	s.created = in
	s.pepper = pepper
	if len(s.errs) > 0 {
		return nil, s.errs, nil
	}
	return &employee.Employee{ID: 1, Code: in.Code, Name: in.Name, PasswordHash: "secret-hash", IsAdmin: in.IsAdmin}, nil, nil
}

func (s *stubEmployees) Authenticate(_ context.Context, code, plain, _ string) (*employee.Employee, error) {
	e, ok := s.accounts[code+"/"+plain]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (s *stubEmployees) CountEmployees(context.Context) (int64, error) {
	return s.total, nil
}

func (s *stubEmployees) ListEmployees(context.Context, int, int) ([]*employee.Employee, error) {
	return s.page, nil
}

func (s *stubEmployees) GetActiveEmployee(context.Context, int64) (*employee.Employee, error) {
	return nil, nil
}

type stubReports struct {
	report.UseCase
	liked   map[[2]int64]bool
	toggled int
}

func (s *stubReports) ToggleLike(_ context.Context, employeeID, reportID int64) (bool, error) {
	s.toggled++
	key := [2]int64{employeeID, reportID}
	s.liked[key] = !s.liked[key]
	return s.liked[key], nil
}

func (s *stubReports) IsLikedBy(_ context.Context, employeeID, reportID int64) (bool, error) {
	return s.liked[[2]int64{employeeID, reportID}], nil
}

func (s *stubReports) LikeCount(_ context.Context, reportID int64) (int64, error) {
	var n int64
	for key, v := range s.liked {
		if key[1] == reportID && v {
			n++
		}
	}
	return n, nil
}

func (s *stubReports) ReportDetail(_ context.Context, id, _ int64) (*report.Detail, error) {
	if id != 7 {
		return nil, nil
	}
	return &report.Detail{
		Report:    &report.Report{ID: 7, ReportDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Title: "朝会"},
		LikeCount: 2,
	}, nil
}

func newTestApp(emps *stubEmployees, reps *stubReports) (*app, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &app{
		employees: emps,
		reports:   reps,
		pepper:    "pepper",
		pageSize:  15,
		out:       &out,
		errOut:    &errOut,
	}, &out
}

func TestEmployeeCreatePrintsViewWithoutHash(t *testing.T) {
	t.Parallel()

	emps := &stubEmployees{}
	a, out := newTestApp(emps, &stubReports{})

	err := a.dispatch(context.Background(), []string{"employee", "create", "-code", "E001", "-name", "山田", "-password", "pw", "-admin"})
	if err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	if emps.created.Code != "E001" || !emps.created.IsAdmin || emps.pepper != "pepper" {
		t.Fatalf("unexpected input: %+v (pepper %q)", emps.created, emps.pepper)
	}
	if strings.Contains(out.String(), "secret-hash") {
		t.Fatalf("password hash printed: %s", out.String())
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["code"] != "E001" {
		t.Fatalf("unexpected output: %v", got)
	}
}

func TestEmployeeCreateValidationErrors(t *testing.T) {
	t.Parallel()

	emps := &stubEmployees{errs: []string{employee.MsgCodeRequired}}
	a, out := newTestApp(emps, &stubReports{})

	err := a.dispatch(context.Background(), []string{"employee", "create"})
	if !errors.Is(err, errValidation) {
		t.Fatalf("expected errValidation, got %v", err)
	}
	var got validationView
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got.Errors) != 1 || got.Errors[0] != employee.MsgCodeRequired {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
	if exitCode(err, &bytes.Buffer{}) != 3 {
		t.Fatalf("validation failures must exit with 3")
	}
}

func TestEmployeeListPages(t *testing.T) {
	t.Parallel()

	emps := &stubEmployees{total: 31, page: []*employee.Employee{{ID: 31, Code: "E031"}}}
	a, out := newTestApp(emps, &stubReports{})

	if err := a.dispatch(context.Background(), []string{"employee", "list", "-page", "3"}); err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	var got struct {
		Page  int   `json:"page"`
		Pages int   `json:"pages"`
		Total int64 `json:"total"`
		Items []struct {
			Code string `json:"code"`
		} `json:"items"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Page != 3 || got.Pages != 3 || got.Total != 31 || len(got.Items) != 1 || got.Items[0].Code != "E031" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestLikeToggle(t *testing.T) {
	t.Parallel()

	reps := &stubReports{liked: map[[2]int64]bool{}}
	a, out := newTestApp(&stubEmployees{}, reps)

	if err := a.dispatch(context.Background(), []string{"like", "toggle", "-employee", "1", "-report", "7"}); err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	var got likeView
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !got.Liked || got.LikeCount != 1 || reps.toggled != 1 {
		t.Fatalf("unexpected like view: %+v", got)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	emps := &stubEmployees{accounts: map[string]*employee.Employee{
		"E001/pw": {ID: 1, Code: "E001", Name: "山田"},
	}}
	a, out := newTestApp(emps, &stubReports{})

	if err := a.dispatch(context.Background(), []string{"login", "-code", "E001", "-password", "pw"}); err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !strings.Contains(out.String(), `"code": "E001"`) {
		t.Fatalf("unexpected output: %s", out.String())
	}

	out.Reset()
	err := a.dispatch(context.Background(), []string{"login", "-code", "E001", "-password", "wrong"})
	if !errors.Is(err, errValidation) || !strings.Contains(out.String(), msgLoginFailed) {
		t.Fatalf("expected login failure, got %v / %s", err, out.String())
	}
}

func TestShowMissingIsNotFound(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(&stubEmployees{}, &stubReports{})
	if err := a.dispatch(context.Background(), []string{"report", "show", "-id", "99"}); !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound, got %v", err)
	}
	if err := a.dispatch(context.Background(), []string{"employee", "show", "-id", "99"}); !errors.Is(err, errNotFound) {
		t.Fatalf("expected errNotFound, got %v", err)
	}
}

func TestReportShowPrintsDetail(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(&stubEmployees{}, &stubReports{})
	if err := a.dispatch(context.Background(), []string{"report", "show", "-id", "7", "-viewer", "1"}); err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	if !strings.Contains(out.String(), `"report_date": "2025-04-01"`) || !strings.Contains(out.String(), `"like_count": 2`) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestDispatchUsageErrors(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(&stubEmployees{}, &stubReports{})
	for _, args := range [][]string{nil, {"employee"}, {"report", "delete"}, {"like", "add", "-bogus"}} {
		if err := a.dispatch(context.Background(), args); !errors.Is(err, errUsage) {
			t.Fatalf("dispatch(%v): expected errUsage, got %v", args, err)
		}
	}
}
