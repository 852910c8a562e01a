package model

// 关联交易类型（评价 / 物流 / 纠纷共用）
const (
	TransactionTypeSwap     = "swap"
	TransactionTypeSale     = "sale"
	TransactionTypeDonation = "donation"
)

// Review 评价表 — 对应 reviews
// 每个用户对每笔交易只能评价一次（数据库唯一约束兜底）
type Review struct {
	ReviewID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	ReviewerID      string `gorm:"type:uuid;not null"                             json:"reviewer_id"`
	RevieweeID      string `gorm:"type:uuid;not null"                             json:"reviewee_id"`
	TransactionType string `gorm:"type:varchar(10);not null"                      json:"transaction_type"`
	TransactionID   string `gorm:"type:uuid;not null"                             json:"transaction_id"`
	Rating          int    `gorm:"not null"                                       json:"rating"` // 1-5，>=4 记为正面评价
	Comment         string `gorm:"type:varchar(1000)"                             json:"comment,omitempty"`
	SoftDeleteModel

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
	Reviewee *User `gorm:"foreignKey:RevieweeID;references:UserID" json:"reviewee,omitempty"`
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }

// IsPositive 是否计入正面评价
func (r *Review) IsPositive() bool { return r.Rating >= 4 }
