package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error)
	IncrementCounter(ctx context.Context, userID, column string, delta int) error
	UpdateTrustScore(ctx context.Context, userID string, score float64) error
	AddDonationImpact(ctx context.Context, userID string, count int, value float64, families int) error
}

// counterColumns 允许原子自增的计数列白名单
var counterColumns = map[string]bool{
	"positive_review_count":    true,
	"negative_review_count":    true,
	"completed_swap_count":     true,
	"completed_sale_count":     true,
	"completed_donation_count": true,
	"dispute_total_count":      true,
	"dispute_lost_count":       true,
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) List(ctx context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		db = db.Where("role = ?", role)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// IncrementCounter 原子自增指定计数列，列名必须在白名单内
func (r *userRepo) IncrementCounter(ctx context.Context, userID, column string, delta int) error {
	if !counterColumns[column] {
		return fmt.Errorf("不允许自增的列: %s", column)
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *userRepo) UpdateTrustScore(ctx context.Context, userID string, score float64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("trust_score", score).Error
}

// AddDonationImpact 累加受捐机构的影响力指标
func (r *userRepo) AddDonationImpact(ctx context.Context, userID string, count int, value float64, families int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"total_received_count":     gorm.Expr("total_received_count + ?", count),
			"total_donations_value":    gorm.Expr("total_donations_value + ?", value),
			"total_families_supported": gorm.Expr("total_families_supported + ?", families),
		}).Error
}
