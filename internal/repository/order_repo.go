package repository

import (
	"context"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	CreatePending(ctx context.Context, order *model.Order, transitions []ListingTransition) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID, role, status string, offset, limit int) ([]model.Order, int64, error)
	ListCompletedBetween(ctx context.Context, from, to string) ([]model.Order, error)
	Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error
}

// orderRepo OrderRepository 的 GORM 实现
type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepo 创建 OrderRepository 实例
func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

// CreatePending 在一个事务内锁定在售物品并创建待支付订单
func (r *orderRepo) CreatePending(ctx context.Context, order *model.Order, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyListingTransitions(tx, transitions); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Listing").
		Where("order_id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser role 取 buyer / seller / 空（两者）
func (r *orderRepo) ListByUser(ctx context.Context, userID, role, status string, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	switch role {
	case "buyer":
		db = db.Where("buyer_id = ?", userID)
	case "seller":
		db = db.Where("seller_id = ?", userID)
	default:
		db = db.Where("buyer_id = ? OR seller_id = ?", userID, userID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Listing").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListCompletedBetween 查询区间内完成的订单，供管理端导出报表
func (r *orderRepo) ListCompletedBetween(ctx context.Context, from, to string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Listing").
		Where("status = ? AND updated_at >= ? AND updated_at < ?", model.OrderStatusCompleted, from, to).
		Order("updated_at ASC").
		Find(&orders).Error
	return orders, err
}

// Transition 在一个事务内对订单与相关物品做条件状态迁移
func (r *orderRepo) Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionRow(tx, &model.Order{}, "order_id", id, from, to, extra); err != nil {
			return err
		}
		return applyListingTransitions(tx, transitions)
	})
}
