package model

import "time"

// 纠纷状态
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusClosed      = "closed"
)

// 纠纷裁定结果（favor 哪一方）
const (
	DisputeOutcomeComplainant = "complainant"
	DisputeOutcomeRespondent  = "respondent"
	DisputeOutcomeBoth        = "both"
)

// Dispute 纠纷表 — 对应 disputes
// 引用用户对（可选引用物品 / 交易），仅管理员可推进状态；
// 裁定结果只影响信誉计数，不回写交易状态机
type Dispute struct {
	DisputeID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"dispute_id"`
	ComplainantID   string     `gorm:"type:uuid;not null"                             json:"complainant_id"`
	RespondentID    string     `gorm:"type:uuid;not null"                             json:"respondent_id"`
	ListingID       *string    `gorm:"type:uuid"                                      json:"listing_id,omitempty"`
	TransactionType *string    `gorm:"type:varchar(10)"                               json:"transaction_type,omitempty"`
	TransactionID   *string    `gorm:"type:uuid"                                      json:"transaction_id,omitempty"`
	Reason          string     `gorm:"type:text;not null"                             json:"reason"`
	Status          string     `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	Outcome         *string    `gorm:"type:varchar(20)"                               json:"outcome,omitempty"`
	Resolution      string     `gorm:"type:text"                                      json:"resolution,omitempty"`
	ResolvedBy      *string    `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	VersionedModel

	// 关联
	Complainant *User `gorm:"foreignKey:ComplainantID;references:UserID" json:"complainant,omitempty"`
	Respondent  *User `gorm:"foreignKey:RespondentID;references:UserID"  json:"respondent,omitempty"`
}

// TableName 指定表名
func (Dispute) TableName() string { return "disputes" }

// FraudAlert 反欺诈预警表 — 对应 fraud_alerts
// 滚动 30 天内纠纷数超阈值时写入；仅提示管理员，不阻断任何交易
type FraudAlert struct {
	AlertID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"alert_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	DisputeCount int       `gorm:"not null"                                       json:"dispute_count"`
	WindowStart  time.Time `gorm:"not null"                                       json:"window_start"`
	Note         string    `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (FraudAlert) TableName() string { return "fraud_alerts" }
