package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
)

// ── 评价模块业务错误 ──

var (
	ErrReviewNotFound       = errors.New("评价不存在")
	ErrReviewTxNotFound     = errors.New("关联交易不存在")
	ErrReviewTxNotCompleted = errors.New("交易完成后才能评价")
	ErrReviewNotParty       = errors.New("只有交易当事人可以评价")
	ErrReviewDuplicate      = errors.New("该交易已评价过")
)

// ReviewService 评价业务接口
//
// 每个当事人对每笔交易只能评价一次，评价对象固定为交易对方。
// 评分 >= 4 记好评，写入后同步刷新对方的评价计数与信誉分。
type ReviewService interface {
	Create(ctx context.Context, reviewerID string, req *dto.CreateReviewRequest) (*model.Review, error)
	ListByUser(ctx context.Context, revieweeID string, req *dto.PaginationRequest) ([]model.Review, int64, error)
}

type reviewService struct {
	repo   *repository.Repository
	trust  TrustService
	notify NotificationService
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, trust TrustService, notify NotificationService, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, trust: trust, notify: notify, logger: logger}
}

// resolveReviewee 校验交易已成且调用方是当事人，返回被评方
func (s *reviewService) resolveReviewee(ctx context.Context, txType, txID, reviewerID string) (string, error) {
	switch txType {
	case model.TransactionTypeSwap:
		swap, err := s.repo.Swap.GetByID(ctx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrReviewTxNotFound
			}
			return "", err
		}
		if !swap.IsParty(reviewerID) {
			return "", ErrReviewNotParty
		}
		if swap.Status != model.SwapStatusCompleted {
			return "", ErrReviewTxNotCompleted
		}
		if reviewerID == swap.RequesterID {
			return swap.ResponderID, nil
		}
		return swap.RequesterID, nil

	case model.TransactionTypeSale:
		order, err := s.repo.Order.GetByID(ctx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrReviewTxNotFound
			}
			return "", err
		}
		if !order.IsParty(reviewerID) {
			return "", ErrReviewNotParty
		}
		if order.Status != model.OrderStatusCompleted {
			return "", ErrReviewTxNotCompleted
		}
		if reviewerID == order.BuyerID {
			return order.SellerID, nil
		}
		return order.BuyerID, nil

	case model.TransactionTypeDonation:
		donation, err := s.repo.Donation.GetByID(ctx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrReviewTxNotFound
			}
			return "", err
		}
		if !donation.IsParty(reviewerID) {
			return "", ErrReviewNotParty
		}
		if donation.Status != model.DonationStatusDistributed {
			return "", ErrReviewTxNotCompleted
		}
		if reviewerID == donation.DonorID {
			return donation.RecipientID, nil
		}
		return donation.DonorID, nil

	default:
		return "", ErrReviewTxNotFound
	}
}

// ────────────────────── Create ──────────────────────

func (s *reviewService) Create(ctx context.Context, reviewerID string, req *dto.CreateReviewRequest) (*model.Review, error) {
	revieweeID, err := s.resolveReviewee(ctx, req.TransactionType, req.TransactionID, reviewerID)
	if err != nil {
		if !errors.Is(err, ErrReviewTxNotFound) && !errors.Is(err, ErrReviewNotParty) && !errors.Is(err, ErrReviewTxNotCompleted) {
			s.logger.Error("校验评价交易失败", zap.Error(err))
		}
		return nil, err
	}

	// 重复评价检查
	if _, err := s.repo.Review.GetByTransactionAndReviewer(ctx, req.TransactionType, req.TransactionID, reviewerID); err == nil {
		return nil, ErrReviewDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询已有评价失败", zap.Error(err))
		return nil, err
	}

	review := &model.Review{
		ReviewerID:      reviewerID,
		RevieweeID:      revieweeID,
		TransactionType: req.TransactionType,
		TransactionID:   req.TransactionID,
		Rating:          req.Rating,
		Comment:         req.Comment,
	}
	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.logger.Error("创建评价失败", zap.Error(err))
		return nil, err
	}

	// 刷新被评方的计数与信誉分
	column := "negative_review_count"
	if review.IsPositive() {
		column = "positive_review_count"
	}
	if err := s.repo.User.IncrementCounter(ctx, revieweeID, column, 1); err != nil {
		s.logger.Warn("更新评价计数失败", zap.String("user_id", revieweeID), zap.Error(err))
	}
	if _, err := s.trust.Recalculate(ctx, revieweeID); err != nil {
		s.logger.Warn("重算信誉分失败", zap.String("user_id", revieweeID), zap.Error(err))
	}

	relatedType := "review"
	s.notify.Notify(ctx, revieweeID, model.NotificationTypeReview,
		"收到新评价",
		fmt.Sprintf("交易对方给了你 %d 星评价", req.Rating),
		&relatedType, &review.ReviewID)

	return review, nil
}

// ────────────────────── ListByUser ──────────────────────

func (s *reviewService) ListByUser(ctx context.Context, revieweeID string, req *dto.PaginationRequest) ([]model.Review, int64, error) {
	reviews, total, err := s.repo.Review.ListByReviewee(ctx, revieweeID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询评价列表失败", zap.String("user_id", revieweeID), zap.Error(err))
		return nil, 0, err
	}
	return reviews, total, nil
}
