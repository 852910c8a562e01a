package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/config"
	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
)

// ── 物品模块业务错误 ──

var (
	ErrListingNotFound        = errors.New("物品不存在")
	ErrListingForbidden       = errors.New("无权操作该物品")
	ErrListingPriceRequired   = errors.New("出售类型物品必须填写价格")
	ErrListingPriceNotAllowed = errors.New("非出售类型物品不能填写价格")
	ErrListingNotEditable     = errors.New("物品当前状态不可编辑")
	ErrListingBusy            = errors.New("物品正处于交易中")
	ErrListingAlreadyPremium  = errors.New("物品已在推广期内")
)

// ListingService 物品业务接口
type ListingService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreateListingRequest) (*model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, req *dto.ListListingsRequest) ([]model.Listing, int64, error)
	Update(ctx context.Context, id, callerID string, req *dto.UpdateListingRequest) (*model.Listing, error)
	Delete(ctx context.Context, id, callerID string, isAdmin bool) error
	UpgradePremium(ctx context.Context, id, callerID string) (*model.Listing, error)
	DeactivateStale(ctx context.Context) (int64, error)
}

type listingService struct {
	cfg    *config.Config
	repo   *repository.Repository
	credit CreditService
	logger *zap.Logger
}

// NewListingService 创建 ListingService 实例
func NewListingService(cfg *config.Config, repo *repository.Repository, credit CreditService, logger *zap.Logger) ListingService {
	return &listingService{cfg: cfg, repo: repo, credit: credit, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *listingService) Create(ctx context.Context, ownerID string, req *dto.CreateListingRequest) (*model.Listing, error) {
	// 价格规则：sale 必填，swap/donation 不允许
	if req.ListingType == model.ListingTypeSale && req.Price == nil {
		return nil, ErrListingPriceRequired
	}
	if req.ListingType != model.ListingTypeSale && req.Price != nil {
		return nil, ErrListingPriceNotAllowed
	}

	listing := &model.Listing{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		ListingType: req.ListingType,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Status:      model.ListingStatusAvailable,
		IsActive:    true,
	}

	if err := s.repo.Listing.Create(ctx, listing); err != nil {
		s.logger.Error("创建物品失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	return listing, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *listingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.repo.Listing.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("查询物品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return listing, nil
}

// ────────────────────── List ──────────────────────

func (s *listingService) List(ctx context.Context, req *dto.ListListingsRequest) ([]model.Listing, int64, error) {
	filter := repository.ListingFilter{
		OwnerID:     req.OwnerID,
		ListingType: req.ListingType,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Status:      req.Status,
		MaxPrice:    req.MaxPrice,
		Keyword:     req.Keyword,
		OnlyActive:  true,
	}
	// 查自己的货架时包含已下架的
	if req.OwnerID != "" {
		filter.OnlyActive = false
	}

	listings, total, err := s.repo.Listing.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询物品列表失败", zap.Error(err))
		return nil, 0, err
	}
	return listings, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *listingService) Update(ctx context.Context, id, callerID string, req *dto.UpdateListingRequest) (*model.Listing, error) {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != callerID {
		return nil, ErrListingForbidden
	}
	// 进入交易流程或已终结的物品不可编辑
	if listing.Status != model.ListingStatusAvailable {
		return nil, ErrListingNotEditable
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.Size != nil {
		listing.Size = *req.Size
	}
	if req.Condition != nil {
		listing.Condition = *req.Condition
	}
	if req.Price != nil {
		if listing.ListingType != model.ListingTypeSale {
			return nil, ErrListingPriceNotAllowed
		}
		listing.Price = req.Price
	}
	if req.ImageURL != nil {
		listing.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := s.repo.Listing.Update(ctx, listing); err != nil {
		s.logger.Error("更新物品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return listing, nil
}

// ────────────────────── Delete ──────────────────────

func (s *listingService) Delete(ctx context.Context, id, callerID string, isAdmin bool) error {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != callerID && !isAdmin {
		return ErrListingForbidden
	}
	// 交易中的物品不可删除，终态物品允许归档删除
	if listing.Status != model.ListingStatusAvailable && !listing.IsTerminalStatus() {
		return ErrListingBusy
	}

	if err := s.repo.Listing.Delete(ctx, id); err != nil {
		s.logger.Error("删除物品失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── UpgradePremium ──────────────────────

// UpgradePremium 消耗积分将物品置顶推广一段时间
func (s *listingService) UpgradePremium(ctx context.Context, id, callerID string) (*model.Listing, error) {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != callerID {
		return nil, ErrListingForbidden
	}
	if listing.IsPremium && listing.PremiumExpiresAt != nil && listing.PremiumExpiresAt.After(time.Now()) {
		return nil, ErrListingAlreadyPremium
	}

	relatedType := "listing"
	if _, err := s.credit.Spend(ctx, callerID, s.cfg.Reward.PremiumCost,
		model.CreditReasonPremiumUpgrade, &relatedType, &id); err != nil {
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, 0, s.cfg.Listing.PremiumDurationDays)
	if err := s.repo.Listing.SetPremium(ctx, id, expiresAt); err != nil {
		s.logger.Error("设置置顶推广失败", zap.String("id", id), zap.Error(err))
		// 置顶未生效时回补已扣积分，避免白扣费
		if _, refundErr := s.credit.Refund(ctx, callerID, s.cfg.Reward.PremiumCost,
			model.CreditReasonPremiumRefund, &relatedType, &id); refundErr != nil {
			s.logger.Error("置顶失败后积分返还失败",
				zap.String("listing_id", id),
				zap.String("owner_id", callerID),
				zap.Error(refundErr))
		}
		return nil, err
	}

	s.logger.Info("物品置顶推广成功",
		zap.String("listing_id", id),
		zap.String("owner_id", callerID),
		zap.Time("expires_at", expiresAt))

	listing.IsPremium = true
	listing.PremiumExpiresAt = &expiresAt
	return listing, nil
}

// ────────────────────── DeactivateStale ──────────────────────

// DeactivateStale 批量下架长期未更新的在售物品，由定时任务或管理端触发
func (s *listingService) DeactivateStale(ctx context.Context) (int64, error) {
	before := time.Now().AddDate(0, 0, -s.cfg.Listing.StaleAfterDays)
	affected, err := s.repo.Listing.DeactivateStale(ctx, before)
	if err != nil {
		s.logger.Error("批量下架过期物品失败", zap.Error(err))
		return 0, err
	}
	if affected > 0 {
		s.logger.Info(fmt.Sprintf("已下架 %d 件超过 %d 天未更新的物品", affected, s.cfg.Listing.StaleAfterDays))
	}
	return affected, nil
}
