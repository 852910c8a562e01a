package model

// 举报状态
const (
	ReportStatusPending     = "pending"
	ReportStatusUnderReview = "under_review"
	ReportStatusResolved    = "resolved"
	ReportStatusDismissed   = "dismissed"
)

// Report 举报表 — 对应 reports
// 针对用户或物品的举报，仅管理员可推进状态
type Report struct {
	ReportID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	ReporterID     string  `gorm:"type:uuid;not null"                             json:"reporter_id"`
	ReportedUserID *string `gorm:"type:uuid"                                      json:"reported_user_id,omitempty"`
	ListingID      *string `gorm:"type:uuid"                                      json:"listing_id,omitempty"`
	Reason         string  `gorm:"type:varchar(50);not null"                      json:"reason"` // spam | scam | inappropriate | counterfeit | other
	Details        string  `gorm:"type:text"                                      json:"details,omitempty"`
	Status         string  `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AdminNotes     string  `gorm:"type:text"                                      json:"admin_notes,omitempty"`
	HandledBy      *string `gorm:"type:uuid"                                      json:"handled_by,omitempty"`
	VersionedModel

	// 关联
	Reporter *User `gorm:"foreignKey:ReporterID;references:UserID" json:"reporter,omitempty"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }
