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

// ── 信誉模块业务错误 ──

var ErrTrustUserNotFound = errors.New("用户不存在")

// 信誉分权重：评价 60%，交易量 20%，纠纷 20%
const (
	trustWeightReviews  = 0.6
	trustWeightVolume   = 0.2
	trustWeightDisputes = 0.2

	// 交易量在 20 笔时达到满分
	trustVolumeSaturation = 20
)

// TrustService 信誉分业务接口
type TrustService interface {
	Recalculate(ctx context.Context, userID string) (float64, error)
	GetProfile(ctx context.Context, userID string) (*dto.TrustProfileResponse, error)
	GetImpact(ctx context.Context, userID string) (*dto.ImpactResponse, error)
}

type trustService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTrustService 创建 TrustService 实例
func NewTrustService(repo *repository.Repository, logger *zap.Logger) TrustService {
	return &trustService{repo: repo, logger: logger}
}

// computeTrustScore 由用户计数器推导信誉分
//
//   - 评价分：好评占比，无评价时取中性值 50
//   - 交易量分：完成交易数在 20 笔封顶
//   - 纠纷分：败诉占比越高分越低，无纠纷记满分
func computeTrustScore(u *model.User) float64 {
	reviewScore := 50.0
	if total := u.PositiveReviewCount + u.NegativeReviewCount; total > 0 {
		reviewScore = float64(u.PositiveReviewCount) / float64(total) * 100
	}

	volume := u.CompletedSwapCount + u.CompletedSaleCount + u.CompletedDonationCount
	if volume > trustVolumeSaturation {
		volume = trustVolumeSaturation
	}
	volumeScore := float64(volume) / float64(trustVolumeSaturation) * 100

	disputeScore := 100.0
	if u.DisputeTotalCount > 0 {
		disputeScore = (1 - float64(u.DisputeLostCount)/float64(u.DisputeTotalCount)) * 100
	}

	score := trustWeightReviews*reviewScore + trustWeightVolume*volumeScore + trustWeightDisputes*disputeScore
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Recalculate 重算并持久化用户信誉分，返回新分值
func (s *trustService) Recalculate(ctx context.Context, userID string) (float64, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTrustUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	score := computeTrustScore(user)
	if err := s.repo.User.UpdateTrustScore(ctx, userID, score); err != nil {
		s.logger.Error("更新信誉分失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	return score, nil
}

func (s *trustService) GetProfile(ctx context.Context, userID string) (*dto.TrustProfileResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrustUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.TrustProfileResponse{
		UserID:                 user.UserID,
		Name:                   user.Name,
		TrustScore:             user.TrustScore,
		PositiveReviewCount:    user.PositiveReviewCount,
		NegativeReviewCount:    user.NegativeReviewCount,
		CompletedSwapCount:     user.CompletedSwapCount,
		CompletedSaleCount:     user.CompletedSaleCount,
		CompletedDonationCount: user.CompletedDonationCount,
		DisputeTotalCount:      user.DisputeTotalCount,
		DisputeLostCount:       user.DisputeLostCount,
	}, nil
}

// GetImpact 查询受捐机构的累计影响力
func (s *trustService) GetImpact(ctx context.Context, userID string) (*dto.ImpactResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrustUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.ImpactResponse{
		UserID:                 user.UserID,
		Name:                   user.Name,
		TotalReceivedCount:     user.TotalReceivedCount,
		TotalDonationsValue:    user.TotalDonationsValue,
		TotalFamiliesSupported: user.TotalFamiliesSupported,
	}, nil
}
