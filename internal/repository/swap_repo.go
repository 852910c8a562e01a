package repository

import (
	"context"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
)

// SwapRepository 换物请求数据访问接口
type SwapRepository interface {
	CreatePending(ctx context.Context, swap *model.SwapRequest, transitions []ListingTransition) error
	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	ListByUser(ctx context.Context, userID, direction, status string, offset, limit int) ([]model.SwapRequest, int64, error)
	CountPendingPair(ctx context.Context, requesterListingID, responderListingID string) (int64, error)
	Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error
}

// swapRepo SwapRepository 的 GORM 实现
type swapRepo struct {
	db *gorm.DB
}

// NewSwapRepo 创建 SwapRepository 实例
func NewSwapRepo(db *gorm.DB) SwapRepository {
	return &swapRepo{db: db}
}

// CreatePending 在一个事务内锁定双方物品并创建换物请求
func (r *swapRepo) CreatePending(ctx context.Context, swap *model.SwapRequest, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyListingTransitions(tx, transitions); err != nil {
			return err
		}
		return tx.Create(swap).Error
	})
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var swap model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Responder").
		Preload("RequesterListing").
		Preload("ResponderListing").
		Where("swap_request_id = ?", id).
		First(&swap).Error
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// ListByUser direction 取 incoming（我是被请求方）/ outgoing（我是发起方）/ 空（两者）
func (r *swapRepo) ListByUser(ctx context.Context, userID, direction, status string, offset, limit int) ([]model.SwapRequest, int64, error) {
	var swaps []model.SwapRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SwapRequest{})

	switch direction {
	case "incoming":
		db = db.Where("responder_id = ?", userID)
	case "outgoing":
		db = db.Where("requester_id = ?", userID)
	default:
		db = db.Where("requester_id = ? OR responder_id = ?", userID, userID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("RequesterListing").
		Preload("ResponderListing").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&swaps).Error; err != nil {
		return nil, 0, err
	}

	return swaps, total, nil
}

// CountPendingPair 统计同一对物品之间仍在途的换物请求数
func (r *swapRepo) CountPendingPair(ctx context.Context, requesterListingID, responderListingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SwapRequest{}).
		Where("requester_listing_id = ? AND responder_listing_id = ?", requesterListingID, responderListingID).
		Where("status IN ?", []string{model.SwapStatusPending, model.SwapStatusAccepted}).
		Count(&count).Error
	return count, err
}

// Transition 在一个事务内对换物请求与相关物品做条件状态迁移
func (r *swapRepo) Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionRow(tx, &model.SwapRequest{}, "swap_request_id", id, from, to, extra); err != nil {
			return err
		}
		return applyListingTransitions(tx, transitions)
	})
}
