package repository

import (
	"context"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
)

// DonationRepository 捐赠数据访问接口
type DonationRepository interface {
	CreatePending(ctx context.Context, donation *model.Donation, transitions []ListingTransition) error
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	ListByUser(ctx context.Context, userID, role, status string, offset, limit int) ([]model.Donation, int64, error)
	ListDistributedBetween(ctx context.Context, from, to string) ([]model.Donation, error)
	Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error
}

// donationRepo DonationRepository 的 GORM 实现
type donationRepo struct {
	db *gorm.DB
}

// NewDonationRepo 创建 DonationRepository 实例
func NewDonationRepo(db *gorm.DB) DonationRepository {
	return &donationRepo{db: db}
}

// CreatePending 在一个事务内锁定捐赠物品并创建待交接的捐赠记录
func (r *donationRepo) CreatePending(ctx context.Context, donation *model.Donation, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyListingTransitions(tx, transitions); err != nil {
			return err
		}
		return tx.Create(donation).Error
	})
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Recipient").
		Preload("Listing").
		Where("donation_id = ?", id).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListByUser role 取 donor / recipient / 空（两者）
func (r *donationRepo) ListByUser(ctx context.Context, userID, role, status string, offset, limit int) ([]model.Donation, int64, error) {
	var donations []model.Donation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Donation{})

	switch role {
	case "donor":
		db = db.Where("donor_id = ?", userID)
	case "recipient":
		db = db.Where("recipient_id = ?", userID)
	default:
		db = db.Where("donor_id = ? OR recipient_id = ?", userID, userID)
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
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

// ListDistributedBetween 查询区间内完成分发的捐赠，供影响力报表导出
func (r *donationRepo) ListDistributedBetween(ctx context.Context, from, to string) ([]model.Donation, error) {
	var donations []model.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Recipient").
		Preload("Listing").
		Where("status = ? AND updated_at >= ? AND updated_at < ?", model.DonationStatusDistributed, from, to).
		Order("updated_at ASC").
		Find(&donations).Error
	return donations, err
}

// Transition 在一个事务内对捐赠记录与相关物品做条件状态迁移
func (r *donationRepo) Transition(ctx context.Context, id, from, to string, extra map[string]interface{}, transitions []ListingTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transitionRow(tx, &model.Donation{}, "donation_id", id, from, to, extra); err != nil {
			return err
		}
		return applyListingTransitions(tx, transitions)
	})
}
