package repository

import (
	"time"

	"gorm.io/gorm"

	"swapthefit/backend/internal/model"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// ListingTransition 描述一次物品状态的条件迁移
// From 不匹配当前状态时整个事务回滚，保证交易行与物品行的原子一致
type ListingTransition struct {
	ListingID  string
	From       string
	To         string
	Deactivate bool // 迁移到终态时同时下架
}

// applyListingTransitions 在事务内逐条执行条件更新
// 任何一条 RowsAffected=0 即视为并发冲突
func applyListingTransitions(tx *gorm.DB, transitions []ListingTransition) error {
	for _, t := range transitions {
		updates := map[string]interface{}{
			"status":     t.To,
			"updated_at": time.Now(),
		}
		if t.Deactivate {
			updates["is_active"] = false
		}
		result := tx.Model(&model.Listing{}).
			Where("listing_id = ? AND status = ?", t.ListingID, t.From).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
	}
	return nil
}

// transitionRow 对交易行本身做条件状态更新，extra 为附加字段
func transitionRow(tx *gorm.DB, mdl interface{}, idColumn, id, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(mdl).
		Where(idColumn+" = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
