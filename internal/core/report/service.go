package report

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

// Metrics は業務上の結果を記録する抽象です。
type Metrics interface {
	ValidationFailed(operation string)
	LikeConflict()
}

type noopMetrics struct{}

func (noopMetrics) ValidationFailed(string) {}
func (noopMetrics) LikeConflict()           {}

const (
	opCreate = "report.create"
	opUpdate = "report.update"
)

// Service は日報といいねに関するユースケースをまとめます。
type Service struct {
	repo    Repository
	likes   LikeRepository
	clock   Clock
	tx      TransactionManager
	logger  *zap.Logger
	metrics Metrics
}

// UseCase は日報ユースケースの公開インターフェースです。
type UseCase interface {
	ListReports(ctx context.Context, page, pageSize int) ([]*Report, error)
	ListReportsByAuthor(ctx context.Context, employeeID int64, page, pageSize int) ([]*Report, error)
	CountReports(ctx context.Context) (int64, error)
	CountReportsByAuthor(ctx context.Context, employeeID int64) (int64, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	ReportDetail(ctx context.Context, id, viewerID int64) (*Detail, error)
	CreateReport(ctx context.Context, in CreateReportInput) (*Report, []string, error)
	UpdateReport(ctx context.Context, in UpdateReportInput) (*Report, []string, error)
	IsLikedBy(ctx context.Context, employeeID, reportID int64) (bool, error)
	LikeCount(ctx context.Context, reportID int64) (int64, error)
	AddLike(ctx context.Context, employeeID, reportID int64) error
	RemoveLike(ctx context.Context, employeeID, reportID int64) error
	ToggleLike(ctx context.Context, employeeID, reportID int64) (bool, error)
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
func NewService(repo Repository, likes LikeRepository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:    repo,
		likes:   likes,
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

// CreateReportInput は日報作成時の入力です。EmployeeID には呼び出し側が作成者を設定します。
type CreateReportInput struct {
	EmployeeID int64
	ReportDate string
	Title      string
	Content    string
}

// UpdateReportInput は日報更新時の入力です。
// EditorID が 0 以外の場合、作成者本人であることを確認します。
type UpdateReportInput struct {
	ID         int64
	EditorID   int64
	ReportDate string
	Title      string
	Content    string
}

// ListReports は全従業員の日報を指定ページ分取得します。
func (s *Service) ListReports(ctx context.Context, page, pageSize int) ([]*Report, error) {
	return s.list(ctx, nil, page, pageSize)
}

// ListReportsByAuthor は指定従業員の日報を指定ページ分取得します。
func (s *Service) ListReportsByAuthor(ctx context.Context, employeeID int64, page, pageSize int) ([]*Report, error) {
	if employeeID <= 0 {
		return nil, fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}
	return s.list(ctx, &employeeID, page, pageSize)
}

func (s *Service) list(ctx context.Context, employeeID *int64, page, pageSize int) ([]*Report, error) {
	offset, err := paging.Offset(page, pageSize)
	if err != nil {
		return nil, err
	}

	var reports []*Report
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, ListReportsFilter{
			EmployeeID: employeeID,
			Limit:      pageSize,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		reports = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("report: list: %w", err)
	}

	return reports, nil
}

// CountReports は日報の総件数を返します。
func (s *Service) CountReports(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

// CountReportsByAuthor は指定従業員の日報件数を返します。
func (s *Service) CountReportsByAuthor(ctx context.Context, employeeID int64) (int64, error) {
	if employeeID <= 0 {
		return 0, fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}
	return s.count(ctx, &employeeID)
}

func (s *Service) count(ctx context.Context, employeeID *int64) (int64, error) {
	var total int64
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		n, err := s.repo.Count(txCtx, CountReportsFilter{EmployeeID: employeeID})
		if err != nil {
			return err
		}
		total = n
		return nil
	}); err != nil {
		return 0, fmt.Errorf("report: count: %w", err)
	}
	return total, nil
}

// GetReport は ID で日報を取得します。存在しない場合は nil を返します。
func (s *Service) GetReport(ctx context.Context, id int64) (*Report, error) {
	if id <= 0 {
		return nil, nil
	}

	var result *Report
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.findOptional(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("report: get: %w", err)
	}
	return result, nil
}

// ReportDetail は日報と閲覧者のいいね状態、いいね件数をまとめて取得します。
// 日報が存在しない場合は nil を返します。
func (s *Service) ReportDetail(ctx context.Context, id, viewerID int64) (*Detail, error) {
	if id <= 0 {
		return nil, nil
	}

	var detail *Detail
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.findOptional(txCtx, id)
		if err != nil || found == nil {
			return err
		}

		liked := false
		if viewerID > 0 {
			if liked, err = s.likes.Exists(txCtx, viewerID, id); err != nil {
				return err
			}
		}

		count, err := s.likes.CountByReport(txCtx, id)
		if err != nil {
			return err
		}

		detail = &Detail{Report: found, LikedByViewer: liked, LikeCount: count}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("report: detail: %w", err)
	}
	return detail, nil
}

func (s *Service) findOptional(ctx context.Context, id int64) (*Report, error) {
	found, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrReportNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateReport は日報を作成します。
// バリデーションエラーがある場合は何も保存せず、メッセージの一覧を返します。
func (s *Service) CreateReport(ctx context.Context, in CreateReportInput) (*Report, []string, error) {
	if in.EmployeeID <= 0 {
		return nil, nil, fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}

	now := s.clock.Now()

	rawDate := strings.TrimSpace(in.ReportDate)
	if rawDate == "" {
		rawDate = now.Format(DateLayout)
	}

	candidate := Candidate{ReportDate: rawDate, Title: in.Title, Content: in.Content}
	if errs := ValidateReport(candidate); len(errs) > 0 {
		s.metrics.ValidationFailed(opCreate)
		return nil, errs, nil
	}

	reportDate, err := ParseReportDate(rawDate)
	if err != nil {
		return nil, nil, err
	}

	var created *Report
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, &Report{
			EmployeeID: in.EmployeeID,
			ReportDate: dateOf(reportDate),
			Title:      in.Title,
			Content:    in.Content,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	})
	if errors.Is(err, ErrAuthorNotFound) {
		s.metrics.ValidationFailed(opCreate)
		return nil, []string{MsgAuthorNotFound}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("report: create: %w", err)
	}

	s.logger.Info("report created",
		zap.Int64("report_id", created.ID),
		zap.Int64("employee_id", created.EmployeeID),
	)
	return created, nil, nil
}

// UpdateReport は日報の日付、タイトル、内容を更新します。
// 対象が存在しない場合は ErrReportNotFound を返します。
func (s *Service) UpdateReport(ctx context.Context, in UpdateReportInput) (*Report, []string, error) {
	if in.ID <= 0 {
		return nil, nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	candidate := Candidate{ReportDate: in.ReportDate, Title: in.Title, Content: in.Content}
	if errs := ValidateReport(candidate); len(errs) > 0 {
		s.metrics.ValidationFailed(opUpdate)
		return nil, errs, nil
	}

	reportDate, err := ParseReportDate(in.ReportDate)
	if err != nil {
		return nil, nil, err
	}

	var updated *Report
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.EditorID != 0 && existing.EmployeeID != in.EditorID {
			return ErrNotAuthor
		}

		existing.ReportDate = dateOf(reportDate)
		existing.Title = in.Title
		existing.Content = in.Content
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("report: update: %w", err)
	}

	s.logger.Info("report updated", zap.Int64("report_id", updated.ID))
	return updated, nil, nil
}

// IsLikedBy は従業員が日報にいいねしているかを返します。
func (s *Service) IsLikedBy(ctx context.Context, employeeID, reportID int64) (bool, error) {
	var liked bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		exists, err := s.likes.Exists(txCtx, employeeID, reportID)
		if err != nil {
			return err
		}
		liked = exists
		return nil
	}); err != nil {
		return false, fmt.Errorf("report: is liked: %w", err)
	}
	return liked, nil
}

// LikeCount は日報のいいね件数を返します。
func (s *Service) LikeCount(ctx context.Context, reportID int64) (int64, error) {
	var count int64
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		n, err := s.likes.CountByReport(txCtx, reportID)
		if err != nil {
			return err
		}
		count = n
		return nil
	}); err != nil {
		return 0, fmt.Errorf("report: like count: %w", err)
	}
	return count, nil
}

// AddLike は従業員と日報の組にいいねが 1 件だけ存在する状態にします。
// 同時実行で一意制約に違反した場合も、既にいいね済みとして成功扱いにします。
func (s *Service) AddLike(ctx context.Context, employeeID, reportID int64) error {
	if err := validateLikeIDs(employeeID, reportID); err != nil {
		return err
	}

	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.ensureLiked(txCtx, employeeID, reportID)
	})
	if errors.Is(err, ErrLikeAlreadyExists) {
		s.absorbConflict(employeeID, reportID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("report: add like: %w", err)
	}
	return nil
}

// RemoveLike はいいねを物理削除します。存在しない場合は何もしません。
func (s *Service) RemoveLike(ctx context.Context, employeeID, reportID int64) error {
	if err := validateLikeIDs(employeeID, reportID); err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		removed, err := s.likes.Delete(txCtx, employeeID, reportID)
		if err != nil {
			return err
		}
		if removed {
			s.logger.Debug("like removed", zap.Int64("employee_id", employeeID), zap.Int64("report_id", reportID))
		}
		return nil
	}); err != nil {
		return fmt.Errorf("report: remove like: %w", err)
	}
	return nil
}

// ToggleLike はいいね状態を反転し、反転後にいいね済みかどうかを返します。
func (s *Service) ToggleLike(ctx context.Context, employeeID, reportID int64) (bool, error) {
	if err := validateLikeIDs(employeeID, reportID); err != nil {
		return false, err
	}

	liked := false
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		removed, err := s.likes.Delete(txCtx, employeeID, reportID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return nil
		}
		liked = true
		return s.ensureLiked(txCtx, employeeID, reportID)
	})
	if errors.Is(err, ErrLikeAlreadyExists) {
		s.absorbConflict(employeeID, reportID)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("report: toggle like: %w", err)
	}
	return liked, nil
}

func (s *Service) ensureLiked(ctx context.Context, employeeID, reportID int64) error {
	exists, err := s.likes.Exists(ctx, employeeID, reportID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.likes.Create(ctx, &Like{
		EmployeeID: employeeID,
		ReportID:   reportID,
		CreatedAt:  s.clock.Now(),
	})
	return err
}

func (s *Service) absorbConflict(employeeID, reportID int64) {
	s.metrics.LikeConflict()
	s.logger.Debug("duplicate like absorbed",
		zap.Int64("employee_id", employeeID),
		zap.Int64("report_id", reportID),
	)
}

func validateLikeIDs(employeeID, reportID int64) error {
	if employeeID <= 0 {
		return fmt.Errorf("employee_id: %w", ErrInvalidEmployeeID)
	}
	if reportID <= 0 {
		return fmt.Errorf("report_id: %w", ErrInvalidID)
	}
	return nil
}
