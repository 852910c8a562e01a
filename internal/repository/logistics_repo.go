package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// LogisticsRepository 物流数据访问接口
type LogisticsRepository interface {
	Create(ctx context.Context, logistics *model.Logistics) error
	GetByID(ctx context.Context, id string) (*model.Logistics, error)
	GetByTransaction(ctx context.Context, transactionType, transactionID string) (*model.Logistics, error)
	ListByUser(ctx context.Context, userID, status string, offset, limit int) ([]model.Logistics, int64, error)
	ListScheduledByUser(ctx context.Context, userID string) ([]model.Logistics, error)
	Transition(ctx context.Context, id, from, to string, extra map[string]interface{}) error
}

// logisticsRepo LogisticsRepository 的 GORM 实现
type logisticsRepo struct {
	db *gorm.DB
}

// NewLogisticsRepo 创建 LogisticsRepository 实例
func NewLogisticsRepo(db *gorm.DB) LogisticsRepository {
	return &logisticsRepo{db: db}
}

func (r *logisticsRepo) Create(ctx context.Context, logistics *model.Logistics) error {
	return r.db.WithContext(ctx).Create(logistics).Error
}

func (r *logisticsRepo) GetByID(ctx context.Context, id string) (*model.Logistics, error) {
	var logistics model.Logistics
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("logistics_id = ?", id).
		First(&logistics).Error
	if err != nil {
		return nil, err
	}
	return &logistics, nil
}

// GetByTransaction 按交易定位物流单，一笔交易至多一条物流记录
func (r *logisticsRepo) GetByTransaction(ctx context.Context, transactionType, transactionID string) (*model.Logistics, error) {
	var logistics model.Logistics
	err := r.db.WithContext(ctx).
		Where("transaction_type = ? AND transaction_id = ?", transactionType, transactionID).
		First(&logistics).Error
	if err != nil {
		return nil, err
	}
	return &logistics, nil
}

func (r *logisticsRepo) ListByUser(ctx context.Context, userID, status string, offset, limit int) ([]model.Logistics, int64, error) {
	var list []model.Logistics
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Logistics{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// ListScheduledByUser 查询用户所有已约定时间且未终结的物流单，供日历导出
func (r *logisticsRepo) ListScheduledByUser(ctx context.Context, userID string) ([]model.Logistics, error) {
	var list []model.Logistics
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Where("scheduled_at IS NOT NULL").
		Where("status NOT IN ?", []string{model.LogisticsStatusDelivered, model.LogisticsStatusCancelled}).
		Order("scheduled_at ASC").
		Find(&list).Error
	return list, err
}

// Transition 物流单状态的条件迁移，同时刷新 last_status_update
func (r *logisticsRepo) Transition(ctx context.Context, id, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":             to,
		"last_status_update": time.Now(),
		"updated_at":         time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&model.Logistics{}).
		Where("logistics_id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
