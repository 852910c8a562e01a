package dto

// ── 订单模块 DTO ──

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
}

// PayOrderRequest 支付确认请求
type PayOrderRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required,max=100"`
}

// ListOrdersRequest 订单列表查询参数
type ListOrdersRequest struct {
	PaginationRequest
	Role   string `form:"role"   binding:"omitempty,oneof=buyer seller"`
	Status string `form:"status" binding:"omitempty,oneof=pending_payment paid pending_pickup completed cancelled"`
}
