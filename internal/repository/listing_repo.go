package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// ListingFilter 物品列表查询条件
type ListingFilter struct {
	OwnerID     string
	ListingType string
	Category    string
	Size        string
	Condition   string
	Status      string
	MaxPrice    *float64
	Keyword     string
	OnlyActive  bool
}

// ListingRepository 物品数据访问接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, filter ListingFilter, offset, limit int) ([]model.Listing, int64, error)
	Update(ctx context.Context, listing *model.Listing) error
	Transition(ctx context.Context, t ListingTransition) error
	SetPremium(ctx context.Context, id string, expiresAt time.Time) error
	DeactivateStale(ctx context.Context, before time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

// listingRepo ListingRepository 的 GORM 实现
type listingRepo struct {
	db *gorm.DB
}

// NewListingRepo 创建 ListingRepository 实例
func NewListingRepo(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("listing_id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) List(ctx context.Context, filter ListingFilter, offset, limit int) ([]model.Listing, int64, error) {
	var listings []model.Listing
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Listing{})

	if filter.OwnerID != "" {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.ListingType != "" {
		db = db.Where("listing_type = ?", filter.ListingType)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Size != "" {
		db = db.Where("size = ?", filter.Size)
	}
	if filter.Condition != "" {
		db = db.Where("condition = ?", filter.Condition)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.MaxPrice != nil {
		db = db.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", kw, kw)
	}
	if filter.OnlyActive {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 付费置顶的物品排在前面
	if err := db.Preload("Owner").
		Offset(offset).Limit(limit).
		Order("is_premium DESC, created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// Update 带乐观锁的整行更新，版本不匹配返回 ErrOptimisticLock
func (r *listingRepo) Update(ctx context.Context, listing *model.Listing) error {
	oldVersion := listing.Version
	result := r.db.WithContext(ctx).
		Model(listing).
		Where("listing_id = ? AND version = ?", listing.ListingID, oldVersion).
		Updates(map[string]interface{}{
			"title":        listing.Title,
			"description":  listing.Description,
			"listing_type": listing.ListingType,
			"category":     listing.Category,
			"size":         listing.Size,
			"condition":    listing.Condition,
			"price":        listing.Price,
			"image_url":    listing.ImageURL,
			"is_active":    listing.IsActive,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	listing.Version = oldVersion + 1
	return nil
}

// Transition 单条物品状态的条件迁移
func (r *listingRepo) Transition(ctx context.Context, t ListingTransition) error {
	return applyListingTransitions(r.db.WithContext(ctx), []ListingTransition{t})
}

func (r *listingRepo) SetPremium(ctx context.Context, id string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("listing_id = ?", id).
		Updates(map[string]interface{}{
			"is_premium":         true,
			"premium_expires_at": expiresAt,
		}).Error
}

// DeactivateStale 批量下架长期未更新且仍可用的物品，返回受影响行数
func (r *listingRepo) DeactivateStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("is_active = ? AND status = ? AND updated_at < ?", true, model.ListingStatusAvailable, before).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("listing_id = ?", id).
		Delete(&model.Listing{}).Error
}
