package dto

// ── 捐赠模块 DTO ──

// CreateDonationRequest 发起捐赠请求
type CreateDonationRequest struct {
	ListingID      string  `json:"listing_id"      binding:"required,uuid"`
	RecipientID    string  `json:"recipient_id"    binding:"required,uuid"`
	Quantity       int     `json:"quantity"        binding:"omitempty,min=1"`
	EstimatedValue float64 `json:"estimated_value" binding:"omitempty,gte=0"`
}

// ReceiveDonationRequest 确认收到捐赠请求
// 机构可修正实际收到的数量与估值
type ReceiveDonationRequest struct {
	ReceivedQuantity *int     `json:"received_quantity" binding:"omitempty,min=0"`
	ReceivedValue    *float64 `json:"received_value"    binding:"omitempty,gte=0"`
}

// DistributeDonationRequest 确认分发请求
type DistributeDonationRequest struct {
	FamiliesSupported int `json:"families_supported" binding:"required,min=1"`
}

// ListDonationsRequest 捐赠列表查询参数
type ListDonationsRequest struct {
	PaginationRequest
	Role   string `form:"role"   binding:"omitempty,oneof=donor recipient"`
	Status string `form:"status" binding:"omitempty,oneof=pending_pickup received distributed cancelled"`
}
