package dto

// ── 换物模块 DTO ──

// CreateSwapRequest 发起换物请求
type CreateSwapRequest struct {
	RequesterListingID string `json:"requester_listing_id" binding:"required,uuid"`
	ResponderListingID string `json:"responder_listing_id" binding:"required,uuid"`
	Message            string `json:"message"              binding:"omitempty,max=500"`
}

// ListSwapsRequest 换物列表查询参数
type ListSwapsRequest struct {
	PaginationRequest
	Direction string `form:"direction" binding:"omitempty,oneof=incoming outgoing"`
	Status    string `form:"status"    binding:"omitempty,oneof=pending accepted rejected cancelled completed"`
}
