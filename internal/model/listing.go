package model

import "time"

// 物品交易方式
const (
	ListingTypeSwap     = "swap"
	ListingTypeSale     = "sale"
	ListingTypeDonation = "donation"
)

// 物品状态
// available 为唯一可被新交易认领的状态；pending_* / paid 表示被某笔进行中
// 的交易锁定；sold / donated / swapped 为终态
const (
	ListingStatusAvailable      = "available"
	ListingStatusPendingSwap    = "pending_swap"
	ListingStatusPendingPayment = "pending_payment"
	ListingStatusPaid           = "paid"
	ListingStatusPendingPickup  = "pending_pickup"
	ListingStatusSold           = "sold"
	ListingStatusDonated        = "donated"
	ListingStatusSwapped        = "swapped"
)

// Listing 物品表 — 对应 listings
type Listing struct {
	ListingID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"listing_id"`
	OwnerID          string     `gorm:"type:uuid;not null"                             json:"owner_id"`
	Title            string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description      string     `gorm:"type:text"                                      json:"description,omitempty"`
	ListingType      string     `gorm:"type:varchar(20);not null"                      json:"listing_type"`
	Category         string     `gorm:"type:varchar(20);not null;default:'uniform'"    json:"category"` // uniform | shoes | books | sports | other
	Size             string     `gorm:"type:varchar(50)"                               json:"size,omitempty"`
	Condition        string     `gorm:"type:varchar(20);not null;default:'good'"       json:"condition"` // new | like_new | good | fair
	Price            *float64   `gorm:"type:numeric(12,2)"                             json:"price,omitempty"` // 仅 sale 类型
	ImageURL         string     `gorm:"type:varchar(500)"                              json:"image_url,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'available'"  json:"status"`
	IsActive         bool       `gorm:"not null;default:true"                          json:"is_active"`
	IsPremium        bool       `gorm:"not null;default:false"                         json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	VersionedModel

	// 关联
	Owner *User `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Listing) TableName() string { return "listings" }

// IsTerminalStatus 物品是否已进入终态（终态后不再允许任何交易变更）
func (l *Listing) IsTerminalStatus() bool {
	switch l.Status {
	case ListingStatusSold, ListingStatusDonated, ListingStatusSwapped:
		return true
	}
	return false
}
