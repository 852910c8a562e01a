package model

// 用户角色
const (
	RoleParent = "parent"
	RoleSchool = "school"
	RoleNGO    = "ngo"
	RoleAdmin  = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'parent'"     json:"role"`
	Phone        string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`

	// 信誉与积分
	TrustScore    float64 `gorm:"type:numeric(5,2);not null;default:50" json:"trust_score"`
	CreditBalance int     `gorm:"not null;default:0"                    json:"credit_balance"`

	// 评价 / 交易 / 纠纷计数（信誉分的输入）
	PositiveReviewCount    int `gorm:"not null;default:0" json:"positive_review_count"`
	NegativeReviewCount    int `gorm:"not null;default:0" json:"negative_review_count"`
	CompletedSwapCount     int `gorm:"not null;default:0" json:"completed_swap_count"`
	CompletedSaleCount     int `gorm:"not null;default:0" json:"completed_sale_count"`
	CompletedDonationCount int `gorm:"not null;default:0" json:"completed_donation_count"`
	DisputeTotalCount      int `gorm:"not null;default:0" json:"dispute_total_count"`
	DisputeLostCount       int `gorm:"not null;default:0" json:"dispute_lost_count"`

	// 受捐影响力指标（school / ngo 角色累计）
	TotalReceivedCount     int     `gorm:"not null;default:0"                    json:"total_received_count"`
	TotalDonationsValue    float64 `gorm:"type:numeric(12,2);not null;default:0" json:"total_donations_value"`
	TotalFamiliesSupported int     `gorm:"not null;default:0"                    json:"total_families_supported"`

	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// CanReceiveDonations 是否可作为捐赠接收方
func (u *User) CanReceiveDonations() bool {
	return u.Role == RoleSchool || u.Role == RoleNGO
}
