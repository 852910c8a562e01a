package dto

// ── 评价模块 DTO ──

// CreateReviewRequest 提交评价请求
type CreateReviewRequest struct {
	TransactionType string `json:"transaction_type" binding:"required,oneof=swap sale donation"`
	TransactionID   string `json:"transaction_id"   binding:"required,uuid"`
	Rating          int    `json:"rating"           binding:"required,min=1,max=5"`
	Comment         string `json:"comment"          binding:"omitempty,max=1000"`
}
