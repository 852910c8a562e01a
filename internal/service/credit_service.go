package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/config"
	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// ── 积分模块业务错误 ──

var (
	ErrInsufficientCredits = errors.New("积分余额不足")
	ErrCreditUserNotFound  = errors.New("用户不存在")
	ErrCreditAmountInvalid = errors.New("积分数额无效")
)

// CreditService 积分业务接口
//
// 所有余额变动都经由流水表记账，余额与流水在仓储层同一事务内落库。
type CreditService interface {
	AwardForTransaction(ctx context.Context, userID, reason, relatedType, relatedID string) (int, error)
	Spend(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error)
	Refund(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error)
	ListEntries(ctx context.Context, userID string, req *dto.PaginationRequest) ([]model.CreditEntry, int64, error)
	AdminAdjust(ctx context.Context, userID string, req *dto.AdjustCreditRequest) (int, error)
}

type creditService struct {
	cfg    *config.Config
	repo   *repository.Repository
	notify NotificationService
	logger *zap.Logger
}

// NewCreditService 创建 CreditService 实例
func NewCreditService(cfg *config.Config, repo *repository.Repository, notify NotificationService, logger *zap.Logger) CreditService {
	return &creditService{cfg: cfg, repo: repo, notify: notify, logger: logger}
}

// rewardAmount 由奖励原因映射配置金额
func (s *creditService) rewardAmount(reason string) int {
	switch reason {
	case model.CreditReasonSwapCompleted:
		return s.cfg.Reward.SwapCompleted
	case model.CreditReasonSaleCompleted:
		return s.cfg.Reward.SaleCompleted
	case model.CreditReasonDonationCompleted:
		return s.cfg.Reward.DonationCompleted
	default:
		return 0
	}
}

// AwardForTransaction 交易完成后的积分奖励，金额由配置决定
func (s *creditService) AwardForTransaction(ctx context.Context, userID, reason, relatedType, relatedID string) (int, error) {
	amount := s.rewardAmount(reason)
	if amount <= 0 {
		return 0, ErrCreditAmountInvalid
	}

	balance, err := s.repo.Credit.Earn(ctx, userID, amount, reason, &relatedType, &relatedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCreditUserNotFound
		}
		s.logger.Error("积分奖励失败",
			zap.String("user_id", userID),
			zap.String("reason", reason),
			zap.Error(err))
		return 0, err
	}

	s.notify.Notify(ctx, userID, model.NotificationTypeCredit,
		"积分到账",
		fmt.Sprintf("交易完成，获得 %d 积分，当前余额 %d", amount, balance),
		&relatedType, &relatedID)

	return balance, nil
}

// Spend 扣减积分，余额不足返回 ErrInsufficientCredits
func (s *creditService) Spend(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrCreditAmountInvalid
	}

	balance, err := s.repo.Credit.Spend(ctx, userID, amount, reason, relatedType, relatedID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInsufficientBalance) {
			return 0, ErrInsufficientCredits
		}
		s.logger.Error("积分扣减失败",
			zap.String("user_id", userID),
			zap.Int("amount", amount),
			zap.Error(err))
		return 0, err
	}

	return balance, nil
}

// Refund 返还此前扣减的积分，用于扣费后后续步骤失败的回补
func (s *creditService) Refund(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrCreditAmountInvalid
	}

	balance, err := s.repo.Credit.Earn(ctx, userID, amount, reason, relatedType, relatedID)
	if err != nil {
		s.logger.Error("积分返还失败",
			zap.String("user_id", userID),
			zap.Int("amount", amount),
			zap.Error(err))
		return 0, err
	}

	return balance, nil
}

func (s *creditService) ListEntries(ctx context.Context, userID string, req *dto.PaginationRequest) ([]model.CreditEntry, int64, error) {
	entries, total, err := s.repo.Credit.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询积分流水失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return entries, total, nil
}

// AdminAdjust 管理员手工调整，正数加负数减
func (s *creditService) AdminAdjust(ctx context.Context, userID string, req *dto.AdjustCreditRequest) (int, error) {
	if req.Amount == 0 {
		return 0, ErrCreditAmountInvalid
	}

	var balance int
	var err error
	if req.Amount > 0 {
		balance, err = s.repo.Credit.Earn(ctx, userID, req.Amount, model.CreditReasonAdminAdjust, nil, nil)
	} else {
		balance, err = s.repo.Credit.Spend(ctx, userID, -req.Amount, model.CreditReasonAdminAdjust, nil, nil)
	}
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInsufficientBalance) {
			return 0, ErrInsufficientCredits
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCreditUserNotFound
		}
		s.logger.Error("管理员调整积分失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	s.notify.Notify(ctx, userID, model.NotificationTypeCredit,
		"积分调整",
		fmt.Sprintf("管理员调整积分 %+d（%s），当前余额 %d", req.Amount, req.Note, balance),
		nil, nil)

	return balance, nil
}
