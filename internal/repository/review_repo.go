package repository

import (
	"context"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetByTransactionAndReviewer(ctx context.Context, transactionType, transactionID, reviewerID string) (*model.Review, error)
	ListByReviewee(ctx context.Context, revieweeID string, offset, limit int) ([]model.Review, int64, error)
}

// reviewRepo ReviewRepository 的 GORM 实现
type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("review_id = ?", id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTransactionAndReviewer 用于创建前的重复评价检查
func (r *reviewRepo) GetByTransactionAndReviewer(ctx context.Context, transactionType, transactionID, reviewerID string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("transaction_type = ? AND transaction_id = ? AND reviewer_id = ?",
			transactionType, transactionID, reviewerID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListByReviewee(ctx context.Context, revieweeID string, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("reviewee_id = ?", revieweeID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
