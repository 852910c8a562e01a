package model

// 订单状态
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusPendingPickup  = "pending_pickup"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Order 订单表 — 对应 orders
// 买家发起，卖家为物品所有者；price_at_purchase 固化下单时的价格
type Order struct {
	OrderID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"order_id"`
	BuyerID          string  `gorm:"type:uuid;not null"                                  json:"buyer_id"`
	SellerID         string  `gorm:"type:uuid;not null"                                  json:"seller_id"`
	ListingID        string  `gorm:"type:uuid;not null"                                  json:"listing_id"`
	PriceAtPurchase  float64 `gorm:"type:numeric(12,2);not null"                         json:"price_at_purchase"`
	Status           string  `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	PaymentReference string  `gorm:"type:varchar(100)"                                   json:"payment_reference,omitempty"`
	VersionedModel

	// 关联
	Buyer   *User    `gorm:"foreignKey:BuyerID;references:UserID"      json:"buyer,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID;references:UserID"     json:"seller,omitempty"`
	Listing *Listing `gorm:"foreignKey:ListingID;references:ListingID" json:"listing,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// IsTerminal 是否已进入终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// IsParty 用户是否为该订单的当事方
func (o *Order) IsParty(userID string) bool {
	return o.BuyerID == userID || o.SellerID == userID
}
