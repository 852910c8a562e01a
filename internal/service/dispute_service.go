package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
)

// ── 纠纷模块业务错误 ──

var (
	ErrDisputeNotFound     = errors.New("纠纷不存在")
	ErrDisputeForbidden    = errors.New("无权访问该纠纷")
	ErrDisputeSelf         = errors.New("不能对自己发起纠纷")
	ErrDisputeAlreadyFinal = errors.New("纠纷已结案")
)

// 反欺诈预警：滚动窗口与触发阈值
const (
	fraudWindowDays     = 30
	fraudAlertThreshold = 5
)

// DisputeService 纠纷与反欺诈业务接口
//
// 纠纷独立于交易状态机，裁定只影响双方的信誉计数。
// 同一被诉人 30 天内被诉超过阈值时写入预警表提示管理员。
type DisputeService interface {
	Create(ctx context.Context, complainantID string, req *dto.CreateDisputeRequest) (*model.Dispute, error)
	GetByID(ctx context.Context, id, callerID string, isAdmin bool) (*model.Dispute, error)
	List(ctx context.Context, status string, req *dto.PaginationRequest) ([]model.Dispute, int64, error)
	ListByUser(ctx context.Context, userID string, req *dto.PaginationRequest) ([]model.Dispute, int64, error)
	Resolve(ctx context.Context, id, adminID string, req *dto.ResolveDisputeRequest) (*model.Dispute, error)
	ListAlerts(ctx context.Context, req *dto.PaginationRequest) ([]model.FraudAlert, int64, error)
}

type disputeService struct {
	repo   *repository.Repository
	trust  TrustService
	notify NotificationService
	logger *zap.Logger
}

// NewDisputeService 创建 DisputeService 实例
func NewDisputeService(repo *repository.Repository, trust TrustService, notify NotificationService, logger *zap.Logger) DisputeService {
	return &disputeService{repo: repo, trust: trust, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *disputeService) Create(ctx context.Context, complainantID string, req *dto.CreateDisputeRequest) (*model.Dispute, error) {
	if req.RespondentID == complainantID {
		return nil, ErrDisputeSelf
	}
	if _, err := s.repo.User.GetByID(ctx, req.RespondentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询被诉人失败", zap.Error(err))
		return nil, err
	}

	dispute := &model.Dispute{
		ComplainantID:   complainantID,
		RespondentID:    req.RespondentID,
		ListingID:       req.ListingID,
		TransactionType: req.TransactionType,
		TransactionID:   req.TransactionID,
		Reason:          req.Reason,
		Status:          model.DisputeStatusOpen,
	}
	if err := s.repo.Dispute.Create(ctx, dispute); err != nil {
		s.logger.Error("创建纠纷失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.User.IncrementCounter(ctx, req.RespondentID, "dispute_total_count", 1); err != nil {
		s.logger.Warn("更新被诉计数失败", zap.String("user_id", req.RespondentID), zap.Error(err))
	}

	// 预警对双方生效：频繁被诉与频繁发起都值得关注
	s.checkFraudAlert(ctx, req.RespondentID)
	s.checkFraudAlert(ctx, complainantID)

	relatedType := "dispute"
	s.notify.Notify(ctx, req.RespondentID, model.NotificationTypeDispute,
		"你被发起了纠纷", "有用户对你发起了纠纷，管理员将介入处理", &relatedType, &dispute.DisputeID)

	s.logger.Info("纠纷已创建",
		zap.String("dispute_id", dispute.DisputeID),
		zap.String("complainant_id", complainantID),
		zap.String("respondent_id", req.RespondentID))
	return dispute, nil
}

// checkFraudAlert 滚动窗口内卷入纠纷次数超阈值时写预警，仅提示不阻断
func (s *disputeService) checkFraudAlert(ctx context.Context, userID string) {
	windowStart := time.Now().AddDate(0, 0, -fraudWindowDays)
	count, err := s.repo.Dispute.CountRecentByUser(ctx, userID, windowStart)
	if err != nil {
		s.logger.Warn("统计近期纠纷失败", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if count <= fraudAlertThreshold {
		return
	}
	alert := &model.FraudAlert{
		UserID:       userID,
		DisputeCount: int(count),
		WindowStart:  windowStart,
		Note:         fmt.Sprintf("近 %d 天内卷入纠纷 %d 次，超过阈值 %d", fraudWindowDays, count, fraudAlertThreshold),
	}
	if err := s.repo.Dispute.CreateAlert(ctx, alert); err != nil {
		s.logger.Warn("写入反欺诈预警失败", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.logger.Warn("触发反欺诈预警",
		zap.String("user_id", userID),
		zap.Int64("dispute_count", count))
}

// ────────────────────── GetByID ──────────────────────

func (s *disputeService) GetByID(ctx context.Context, id, callerID string, isAdmin bool) (*model.Dispute, error) {
	dispute, err := s.repo.Dispute.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisputeNotFound
		}
		s.logger.Error("查询纠纷失败", zap.String("dispute_id", id), zap.Error(err))
		return nil, err
	}
	if !isAdmin && dispute.ComplainantID != callerID && dispute.RespondentID != callerID {
		return nil, ErrDisputeForbidden
	}
	return dispute, nil
}

// ────────────────────── List / ListByUser ──────────────────────

func (s *disputeService) List(ctx context.Context, status string, req *dto.PaginationRequest) ([]model.Dispute, int64, error) {
	disputes, total, err := s.repo.Dispute.List(ctx, status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询纠纷列表失败", zap.Error(err))
		return nil, 0, err
	}
	return disputes, total, nil
}

func (s *disputeService) ListByUser(ctx context.Context, userID string, req *dto.PaginationRequest) ([]model.Dispute, int64, error) {
	disputes, total, err := s.repo.Dispute.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户纠纷失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return disputes, total, nil
}

// ────────────────────── Resolve ──────────────────────

// Resolve 管理员裁决。败诉方记一次 dispute_lost_count 并重算信誉分，
// outcome=both 时双方各记一次。裁决不回写任何交易状态。
func (s *disputeService) Resolve(ctx context.Context, id, adminID string, req *dto.ResolveDisputeRequest) (*model.Dispute, error) {
	dispute, err := s.repo.Dispute.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisputeNotFound
		}
		s.logger.Error("查询纠纷失败", zap.String("dispute_id", id), zap.Error(err))
		return nil, err
	}
	if dispute.Status == model.DisputeStatusResolved || dispute.Status == model.DisputeStatusClosed {
		return nil, ErrDisputeAlreadyFinal
	}

	now := time.Now()
	dispute.Status = model.DisputeStatusResolved
	dispute.Outcome = &req.Outcome
	dispute.Resolution = req.Resolution
	dispute.ResolvedBy = &adminID
	dispute.ResolvedAt = &now
	if err := s.repo.Dispute.Update(ctx, dispute); err != nil {
		s.logger.Error("更新纠纷失败", zap.String("dispute_id", id), zap.Error(err))
		return nil, err
	}

	// outcome 表示 favor 哪一方，对侧败诉
	var losers []string
	switch req.Outcome {
	case model.DisputeOutcomeComplainant:
		losers = []string{dispute.RespondentID}
	case model.DisputeOutcomeRespondent:
		losers = []string{dispute.ComplainantID}
	case model.DisputeOutcomeBoth:
		losers = []string{dispute.ComplainantID, dispute.RespondentID}
	}
	for _, loser := range losers {
		if err := s.repo.User.IncrementCounter(ctx, loser, "dispute_lost_count", 1); err != nil {
			s.logger.Warn("更新败诉计数失败", zap.String("user_id", loser), zap.Error(err))
		}
		if _, err := s.trust.Recalculate(ctx, loser); err != nil {
			s.logger.Warn("重算信誉分失败", zap.String("user_id", loser), zap.Error(err))
		}
	}

	relatedType := "dispute"
	for _, uid := range []string{dispute.ComplainantID, dispute.RespondentID} {
		s.notify.Notify(ctx, uid, model.NotificationTypeDispute,
			"纠纷已裁决", fmt.Sprintf("纠纷已结案：%s", req.Resolution), &relatedType, &dispute.DisputeID)
	}

	s.logger.Info("纠纷已裁决",
		zap.String("dispute_id", id),
		zap.String("outcome", req.Outcome),
		zap.String("resolved_by", adminID))
	return dispute, nil
}

// ────────────────────── ListAlerts ──────────────────────

func (s *disputeService) ListAlerts(ctx context.Context, req *dto.PaginationRequest) ([]model.FraudAlert, int64, error) {
	alerts, total, err := s.repo.Dispute.ListAlerts(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预警列表失败", zap.Error(err))
		return nil, 0, err
	}
	return alerts, total, nil
}
