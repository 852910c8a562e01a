package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
)

// ── 举报模块业务错误 ──

var (
	ErrReportNotFound     = errors.New("举报不存在")
	ErrReportTargetEmpty  = errors.New("举报需指定用户或物品")
	ErrReportAlreadyFinal = errors.New("举报已处理完毕")
)

// ReportService 举报业务接口
type ReportService interface {
	Create(ctx context.Context, reporterID string, req *dto.CreateReportRequest) (*model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, status string, req *dto.PaginationRequest) ([]model.Report, int64, error)
	Handle(ctx context.Context, id, adminID string, req *dto.HandleReportRequest) (*model.Report, error)
}

type reportService struct {
	repo   *repository.Repository
	notify NotificationService
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, notify NotificationService, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *reportService) Create(ctx context.Context, reporterID string, req *dto.CreateReportRequest) (*model.Report, error) {
	if req.ReportedUserID == nil && req.ListingID == nil {
		return nil, ErrReportTargetEmpty
	}

	report := &model.Report{
		ReporterID:     reporterID,
		ReportedUserID: req.ReportedUserID,
		ListingID:      req.ListingID,
		Reason:         req.Reason,
		Details:        req.Details,
		Status:         model.ReportStatusPending,
	}
	if err := s.repo.Report.Create(ctx, report); err != nil {
		s.logger.Error("创建举报失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("收到新举报",
		zap.String("report_id", report.ReportID),
		zap.String("reporter_id", reporterID),
		zap.String("reason", req.Reason))
	return report, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *reportService) GetByID(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询举报失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// ────────────────────── List ──────────────────────

func (s *reportService) List(ctx context.Context, status string, req *dto.PaginationRequest) ([]model.Report, int64, error) {
	reports, total, err := s.repo.Report.List(ctx, status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询举报列表失败", zap.Error(err))
		return nil, 0, err
	}
	return reports, total, nil
}

// ────────────────────── Handle ──────────────────────

func (s *reportService) Handle(ctx context.Context, id, adminID string, req *dto.HandleReportRequest) (*model.Report, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询举报失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	if report.Status == model.ReportStatusResolved || report.Status == model.ReportStatusDismissed {
		return nil, ErrReportAlreadyFinal
	}

	report.Status = req.Status
	report.AdminNotes = req.AdminNotes
	report.HandledBy = &adminID
	if err := s.repo.Report.Update(ctx, report); err != nil {
		s.logger.Error("更新举报失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}

	// 进入终态时回执举报人
	if req.Status == model.ReportStatusResolved || req.Status == model.ReportStatusDismissed {
		relatedType := "report"
		s.notify.Notify(ctx, report.ReporterID, model.NotificationTypeReport,
			"举报处理结果", "你提交的举报已处理完毕", &relatedType, &report.ReportID)
	}

	s.logger.Info("举报已处理",
		zap.String("report_id", id),
		zap.String("status", req.Status),
		zap.String("handled_by", adminID))
	return report, nil
}
