package model

// 捐赠状态
const (
	DonationStatusPendingPickup = "pending_pickup"
	DonationStatusReceived      = "received"
	DonationStatusDistributed   = "distributed"
	DonationStatusCancelled     = "cancelled"
)

// Donation 捐赠表 — 对应 donations
// 单向赠予：捐赠者发起，接收方须为 school / ngo 角色
// received_* 字段记录接收方确认的实际数量与价值（可能与申报值不同）
type Donation struct {
	DonationID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"donation_id"`
	DonorID           string   `gorm:"type:uuid;not null"                                 json:"donor_id"`
	RecipientID       string   `gorm:"type:uuid;not null"                                 json:"recipient_id"`
	ListingID         string   `gorm:"type:uuid;not null"                                 json:"listing_id"`
	Status            string   `gorm:"type:varchar(20);not null;default:'pending_pickup'" json:"status"`
	Quantity          int      `gorm:"not null;default:1"                                 json:"quantity"`
	EstimatedValue    float64  `gorm:"type:numeric(12,2);not null;default:0"              json:"estimated_value"`
	ReceivedQuantity  *int     `json:"received_quantity,omitempty"`
	ReceivedValue     *float64 `gorm:"type:numeric(12,2)"                                 json:"received_value,omitempty"`
	FamiliesSupported *int     `json:"families_supported,omitempty"`
	VersionedModel

	// 关联
	Donor     *User    `gorm:"foreignKey:DonorID;references:UserID"      json:"donor,omitempty"`
	Recipient *User    `gorm:"foreignKey:RecipientID;references:UserID"  json:"recipient,omitempty"`
	Listing   *Listing `gorm:"foreignKey:ListingID;references:ListingID" json:"listing,omitempty"`
}

// TableName 指定表名
func (Donation) TableName() string { return "donations" }

// IsTerminal 是否已进入终态
func (d *Donation) IsTerminal() bool {
	return d.Status == DonationStatusDistributed || d.Status == DonationStatusCancelled
}

// IsParty 用户是否为该捐赠的当事方
func (d *Donation) IsParty(userID string) bool {
	return d.DonorID == userID || d.RecipientID == userID
}
