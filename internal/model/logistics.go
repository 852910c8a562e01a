package model

import "time"

// 物流状态
const (
	LogisticsStatusPendingPickup      = "pending_pickup"
	LogisticsStatusInTransit          = "in_transit"
	LogisticsStatusReadyForCollection = "ready_for_collection"
	LogisticsStatusDelivered          = "delivered"
	LogisticsStatusCancelled          = "cancelled"
)

// 配送方式
const (
	ShippingMethodPUDO    = "pudo" // PUDO 智能柜网络
	ShippingMethodCourier = "courier"
	ShippingMethodMeetup  = "meetup"
)

// Logistics 物流表 — 对应 logistics
// 交易进入 accepted / paid 后创建，按 (transaction_type, transaction_id)
// 引用交易但不拥有交易；每笔交易最多一条物流记录（数据库唯一约束兜底）
type Logistics struct {
	LogisticsID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"logistics_id"`
	TransactionType  string     `gorm:"type:varchar(10);not null"                          json:"transaction_type"` // sale | swap
	TransactionID    string     `gorm:"type:uuid;not null"                                 json:"transaction_id"`
	SenderID         string     `gorm:"type:uuid;not null"                                 json:"sender_id"`
	ReceiverID       string     `gorm:"type:uuid;not null"                                 json:"receiver_id"`
	ShippingMethod   string     `gorm:"type:varchar(20);not null"                          json:"shipping_method"`
	Status           string     `gorm:"type:varchar(30);not null;default:'pending_pickup'" json:"status"`
	TrackingNumber   string     `gorm:"type:varchar(100)"                                  json:"tracking_number,omitempty"`
	PudoLocker       string     `gorm:"type:varchar(200)"                                  json:"pudo_locker,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	LastStatusUpdate time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                 json:"last_status_update"`
	VersionedModel

	// 关联
	Sender   *User `gorm:"foreignKey:SenderID;references:UserID"   json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;references:UserID" json:"receiver,omitempty"`
}

// TableName 指定表名
func (Logistics) TableName() string { return "logistics" }

// IsTerminal 是否已进入终态
// ready_for_collection 不是终态：取件后仍可流转到 delivered
func (l *Logistics) IsTerminal() bool {
	return l.Status == LogisticsStatusDelivered || l.Status == LogisticsStatusCancelled
}
