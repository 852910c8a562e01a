package dto

// ── 纠纷与举报模块 DTO ──

// CreateDisputeRequest 发起纠纷请求
type CreateDisputeRequest struct {
	RespondentID    string  `json:"respondent_id"    binding:"required,uuid"`
	ListingID       *string `json:"listing_id"       binding:"omitempty,uuid"`
	TransactionType *string `json:"transaction_type" binding:"omitempty,oneof=swap sale donation"`
	TransactionID   *string `json:"transaction_id"   binding:"omitempty,uuid"`
	Reason          string  `json:"reason"           binding:"required,min=10,max=2000"`
}

// ResolveDisputeRequest 管理员裁决请求
type ResolveDisputeRequest struct {
	Outcome    string `json:"outcome"    binding:"required,oneof=complainant respondent both"`
	Resolution string `json:"resolution" binding:"required,min=5,max=2000"`
}

// CreateReportRequest 提交举报请求
type CreateReportRequest struct {
	ReportedUserID *string `json:"reported_user_id" binding:"omitempty,uuid"`
	ListingID      *string `json:"listing_id"       binding:"omitempty,uuid"`
	Reason         string  `json:"reason"           binding:"required,oneof=spam scam inappropriate counterfeit other"`
	Details        string  `json:"details"          binding:"omitempty,max=2000"`
}

// HandleReportRequest 管理员处理举报请求
type HandleReportRequest struct {
	Status     string `json:"status"      binding:"required,oneof=under_review resolved dismissed"`
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=2000"`
}
