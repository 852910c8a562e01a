package model

import "time"

// 积分变动原因
const (
	CreditReasonSwapCompleted     = "swap_completed"
	CreditReasonSaleCompleted     = "sale_completed"
	CreditReasonDonationCompleted = "donation_completed"
	CreditReasonPremiumUpgrade    = "premium_upgrade"
	CreditReasonPremiumRefund     = "premium_refund"
	CreditReasonAdminAdjust       = "admin_adjust"
)

// CreditEntry 积分流水表 — 对应 credit_entries
// 只追加，不更新不删除；balance_after 记录该笔流水后的余额快照
type CreditEntry struct {
	EntryID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Amount       int       `gorm:"not null"                                       json:"amount"` // 正数为获得，负数为消耗
	BalanceAfter int       `gorm:"not null"                                       json:"balance_after"`
	Reason       string    `gorm:"type:varchar(50);not null"                      json:"reason"`
	RelatedType  *string   `gorm:"type:varchar(20)"                               json:"related_type,omitempty"`
	RelatedID    *string   `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (CreditEntry) TableName() string { return "credit_entries" }
