package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/daily-report/internal/core/paging"
	"go.uber.org/zap"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// PasswordHasher はパスワードと pepper から決定的なハッシュを生成し、定数時間で比較します。
type PasswordHasher interface {
	Hash(plain, pepper string) string
	Equal(a, b string) bool
}

// Metrics は業務上の結果を記録する抽象です。
type Metrics interface {
	ValidationFailed(operation string)
}

type noopMetrics struct{}

func (noopMetrics) ValidationFailed(string) {}

const (
	opCreate = "employee.create"
	opUpdate = "employee.update"
)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	hasher  PasswordHasher
	clock   Clock
	tx      TransactionManager
	logger  *zap.Logger
	metrics Metrics
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context, page, pageSize int) ([]*Employee, error)
	CountEmployees(ctx context.Context) (int64, error)
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	GetActiveEmployee(ctx context.Context, id int64) (*Employee, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput, pepper string) (*Employee, []string, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput, pepper string) (*Employee, []string, error)
	DestroyEmployee(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, code, plainPassword, pepper string) (*Employee, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics はメトリクス記録先を設定します。
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, hasher PasswordHasher, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:    repo,
		hasher:  hasher,
		clock:   clock,
		tx:      tx,
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は従業員作成時の入力です。
type CreateEmployeeInput struct {
	Code     string
	Name     string
	Password string
	IsAdmin  bool
}

// UpdateEmployeeInput は従業員更新時の入力です。Password が空の場合は変更しません。
type UpdateEmployeeInput struct {
	ID       int64
	Code     string
	Name     string
	Password string
	IsAdmin  bool
}

// ListEmployees は論理削除されていない従業員を指定ページ分取得します。
func (s *Service) ListEmployees(ctx context.Context, page, pageSize int) ([]*Employee, error) {
	offset, err := paging.Offset(page, pageSize)
	if err != nil {
		return nil, err
	}

	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, ListEmployeesFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("employee: list: %w", err)
	}
	return employees, nil
}

// CountEmployees は論理削除されていない従業員の件数を返します。
func (s *Service) CountEmployees(ctx context.Context) (int64, error) {
	var total int64
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		n, err := s.repo.Count(txCtx, CountEmployeesFilter{})
		if err != nil {
			return err
		}
		total = n
		return nil
	}); err != nil {
		return 0, fmt.Errorf("employee: count: %w", err)
	}
	return total, nil
}

// GetEmployee は ID で従業員を取得します。論理削除済みも返し、存在しない場合は nil を返します。
func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, nil
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("employee: get: %w", err)
	}
	return result, nil
}

// GetActiveEmployee は論理削除されていない従業員のみを返します。
func (s *Service) GetActiveEmployee(ctx context.Context, id int64) (*Employee, error) {
	found, err := s.GetEmployee(ctx, id)
	if err != nil || !found.Active() {
		return nil, err
	}
	return found, nil
}

// CreateEmployee は従業員を作成します。パスワードは pepper と組み合わせてハッシュ化されます。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput, pepper string) (*Employee, []string, error) {
	if pepper == "" {
		return nil, nil, ErrPepperRequired
	}

	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)

	var (
		created *Employee
		errs    []string
	)
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		taken, err := s.codeTaken(txCtx, code, 0)
		if err != nil {
			return err
		}

		errs = ValidateEmployee(Candidate{Code: code, Name: name, Password: in.Password}, Rules{
			PasswordRequired: true,
			CodeTaken:        taken,
		})
		if len(errs) > 0 {
			return nil
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			Code:         code,
			Name:         name,
			PasswordHash: s.hasher.Hash(in.Password, pepper),
			IsAdmin:      in.IsAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
			IsDeleted:    false,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	})
	if errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		errs = []string{MsgCodeDuplicated}
		err = nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("employee: create: %w", err)
	}
	if len(errs) > 0 {
		s.metrics.ValidationFailed(opCreate)
		return nil, errs, nil
	}

	s.logger.Info("employee created", zap.Int64("employee_id", created.ID), zap.String("code", created.Code))
	return created, nil, nil
}

// UpdateEmployee は従業員情報を更新します。
// Password が空でなければ pepper で再ハッシュし、空なら保存済みのハッシュを維持します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput, pepper string) (*Employee, []string, error) {
	if in.ID <= 0 {
		return nil, nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.Password != "" && pepper == "" {
		return nil, nil, ErrPepperRequired
	}

	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)

	var (
		updated *Employee
		errs    []string
	)
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.IsDeleted {
			return ErrEmployeeDeleted
		}

		taken := false
		if code != existing.Code {
			if taken, err = s.codeTaken(txCtx, code, existing.ID); err != nil {
				return err
			}
		}

		errs = ValidateEmployee(Candidate{Code: code, Name: name, Password: in.Password}, Rules{CodeTaken: taken})
		if len(errs) > 0 {
			return nil
		}

		existing.Code = code
		existing.Name = name
		existing.IsAdmin = in.IsAdmin
		if in.Password != "" {
			existing.PasswordHash = s.hasher.Hash(in.Password, pepper)
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	})
	if errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		errs = []string{MsgCodeDuplicated}
		err = nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("employee: update: %w", err)
	}
	if len(errs) > 0 {
		s.metrics.ValidationFailed(opUpdate)
		return nil, errs, nil
	}

	s.logger.Info("employee updated", zap.Int64("employee_id", updated.ID))
	return updated, nil, nil
}

// DestroyEmployee は従業員を論理削除します。削除済みの場合は何もしません。
func (s *Service) DestroyEmployee(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	deleted := false
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if existing.IsDeleted {
			return nil
		}
		deleted, err = s.repo.SoftDelete(txCtx, id, s.clock.Now())
		return err
	}); err != nil {
		return fmt.Errorf("employee: destroy: %w", err)
	}

	if deleted {
		s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	}
	return nil
}

// Authenticate は社員番号とパスワードで有効な従業員を認証します。
// 社員番号が存在しない場合もパスワードが誤っている場合も nil を返します。
func (s *Service) Authenticate(ctx context.Context, code, plainPassword, pepper string) (*Employee, error) {
	if pepper == "" {
		return nil, ErrPepperRequired
	}

	// 照合前に必ずハッシュ計算を行い、どちらの失敗経路でも同じ処理量にする
	digest := s.hasher.Hash(plainPassword, pepper)

	code = strings.TrimSpace(code)
	if code == "" || plainPassword == "" {
		return nil, nil
	}

	var found *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		e, err := s.repo.FindByCode(txCtx, code)
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = e
		return nil
	}); err != nil {
		return nil, fmt.Errorf("employee: authenticate: %w", err)
	}

	stored := ""
	if found.Active() {
		stored = found.PasswordHash
	}
	if !s.hasher.Equal(stored, digest) || !found.Active() {
		return nil, nil
	}
	return found, nil
}

func (s *Service) codeTaken(ctx context.Context, code string, selfID int64) (bool, error) {
	if code == "" {
		return false, nil
	}
	found, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, ErrEmployeeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return found.ID != selfID, nil
}
