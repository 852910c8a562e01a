package model

// 换物申请状态
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCancelled = "cancelled"
	SwapStatusCompleted = "completed"
)

// SwapRequest 换物申请表 — 对应 swap_requests
// 对称地关联两个用户与两件物品；pending / accepted 期间两件物品均被锁定
type SwapRequest struct {
	SwapRequestID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	RequesterID        string `gorm:"type:uuid;not null"                             json:"requester_id"`
	RequesterListingID string `gorm:"type:uuid;not null"                             json:"requester_listing_id"`
	ResponderID        string `gorm:"type:uuid;not null"                             json:"responder_id"`
	ResponderListingID string `gorm:"type:uuid;not null"                             json:"responder_listing_id"`
	Status             string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Message            string `gorm:"type:varchar(500)"                              json:"message,omitempty"`
	VersionedModel

	// 关联
	Requester        *User    `gorm:"foreignKey:RequesterID;references:UserID"           json:"requester,omitempty"`
	Responder        *User    `gorm:"foreignKey:ResponderID;references:UserID"           json:"responder,omitempty"`
	RequesterListing *Listing `gorm:"foreignKey:RequesterListingID;references:ListingID" json:"requester_listing,omitempty"`
	ResponderListing *Listing `gorm:"foreignKey:ResponderListingID;references:ListingID" json:"responder_listing,omitempty"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// IsTerminal 是否已进入终态
func (s *SwapRequest) IsTerminal() bool {
	switch s.Status {
	case SwapStatusRejected, SwapStatusCancelled, SwapStatusCompleted:
		return true
	}
	return false
}

// IsParty 用户是否为该申请的当事方
func (s *SwapRequest) IsParty(userID string) bool {
	return s.RequesterID == userID || s.ResponderID == userID
}
