package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// DisputeRepository 纠纷与风控告警数据访问接口
type DisputeRepository interface {
	Create(ctx context.Context, dispute *model.Dispute) error
	GetByID(ctx context.Context, id string) (*model.Dispute, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Dispute, int64, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Dispute, int64, error)
	Update(ctx context.Context, dispute *model.Dispute) error
	CountRecentByUser(ctx context.Context, userID string, since time.Time) (int64, error)
	CreateAlert(ctx context.Context, alert *model.FraudAlert) error
	ListAlerts(ctx context.Context, offset, limit int) ([]model.FraudAlert, int64, error)
}

// disputeRepo DisputeRepository 的 GORM 实现
type disputeRepo struct {
	db *gorm.DB
}

// NewDisputeRepo 创建 DisputeRepository 实例
func NewDisputeRepo(db *gorm.DB) DisputeRepository {
	return &disputeRepo{db: db}
}

func (r *disputeRepo) Create(ctx context.Context, dispute *model.Dispute) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *disputeRepo) GetByID(ctx context.Context, id string) (*model.Dispute, error) {
	var dispute model.Dispute
	err := r.db.WithContext(ctx).
		Preload("Complainant").
		Preload("Respondent").
		Where("dispute_id = ?", id).
		First(&dispute).Error
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *disputeRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Dispute, int64, error) {
	var disputes []model.Dispute
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Dispute{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&disputes).Error; err != nil {
		return nil, 0, err
	}

	return disputes, total, nil
}

func (r *disputeRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Dispute, int64, error) {
	var disputes []model.Dispute
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Dispute{}).
		Where("complainant_id = ? OR respondent_id = ?", userID, userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&disputes).Error; err != nil {
		return nil, 0, err
	}

	return disputes, total, nil
}

// Update 带乐观锁的整行更新，防止两个管理员并发处理同一纠纷
func (r *disputeRepo) Update(ctx context.Context, dispute *model.Dispute) error {
	oldVersion := dispute.Version
	result := r.db.WithContext(ctx).
		Model(dispute).
		Where("dispute_id = ? AND version = ?", dispute.DisputeID, oldVersion).
		Updates(map[string]interface{}{
			"status":      dispute.Status,
			"outcome":     dispute.Outcome,
			"resolution":  dispute.Resolution,
			"resolved_by": dispute.ResolvedBy,
			"resolved_at": dispute.ResolvedAt,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	dispute.Version = oldVersion + 1
	return nil
}

// CountRecentByUser 统计用户在滚动窗口内卷入的纠纷数（发起或被诉），供风控告警
func (r *disputeRepo) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Dispute{}).
		Where("(complainant_id = ? OR respondent_id = ?) AND created_at >= ?", userID, userID, since).
		Count(&count).Error
	return count, err
}

func (r *disputeRepo) CreateAlert(ctx context.Context, alert *model.FraudAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *disputeRepo) ListAlerts(ctx context.Context, offset, limit int) ([]model.FraudAlert, int64, error) {
	var alerts []model.FraudAlert
	var total int64

	db := r.db.WithContext(ctx).Model(&model.FraudAlert{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}
