package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// CreditRepository 积分余额与流水数据访问接口
// 余额变动与流水写入必须在同一事务内完成
type CreditRepository interface {
	Spend(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error)
	Earn(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.CreditEntry, int64, error)
}

// creditRepo CreditRepository 的 GORM 实现
type creditRepo struct {
	db *gorm.DB
}

// NewCreditRepo 创建 CreditRepository 实例
func NewCreditRepo(db *gorm.DB) CreditRepository {
	return &creditRepo{db: db}
}

// Spend 条件扣减余额并写入流水，余额不足返回 ErrInsufficientBalance
// 扣减条件（credit_balance >= amount）由数据库保证，天然防止并发超扣
func (r *creditRepo) Spend(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	var balanceAfter int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Raw(
			`UPDATE users
			 SET credit_balance = credit_balance - ?, updated_at = NOW()
			 WHERE user_id = ? AND credit_balance >= ? AND deleted_at IS NULL
			 RETURNING credit_balance`,
			amount, userID, amount).Row()
		if err := row.Scan(&balanceAfter); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return pkgerrors.ErrInsufficientBalance
			}
			return err
		}
		entry := &model.CreditEntry{
			UserID:       userID,
			Amount:       -amount,
			BalanceAfter: balanceAfter,
			Reason:       reason,
			RelatedType:  relatedType,
			RelatedID:    relatedID,
		}
		return tx.Create(entry).Error
	})
	return balanceAfter, err
}

// Earn 增加余额并写入流水
func (r *creditRepo) Earn(ctx context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	var balanceAfter int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Raw(
			`UPDATE users
			 SET credit_balance = credit_balance + ?, updated_at = NOW()
			 WHERE user_id = ? AND deleted_at IS NULL
			 RETURNING credit_balance`,
			amount, userID).Row()
		if err := row.Scan(&balanceAfter); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return gorm.ErrRecordNotFound
			}
			return err
		}
		entry := &model.CreditEntry{
			UserID:       userID,
			Amount:       amount,
			BalanceAfter: balanceAfter,
			Reason:       reason,
			RelatedType:  relatedType,
			RelatedID:    relatedID,
		}
		return tx.Create(entry).Error
	})
	return balanceAfter, err
}

func (r *creditRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.CreditEntry, int64, error) {
	var entries []model.CreditEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CreditEntry{}).
		Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
