package dto

// ── 物流模块 DTO ──

// CreateLogisticsRequest 创建物流单请求
type CreateLogisticsRequest struct {
	TransactionType string `json:"transaction_type" binding:"required,oneof=sale swap"`
	TransactionID   string `json:"transaction_id"   binding:"required,uuid"`
	ShippingMethod  string `json:"shipping_method"  binding:"required,oneof=pudo courier meetup"`
	PudoLocker      string `json:"pudo_locker"      binding:"omitempty,max=200"` // pudo 方式必填
	ScheduledAt     string `json:"scheduled_at"     binding:"omitempty"`         // RFC3339
}

// UpdateLogisticsStatusRequest 推进物流状态请求
type UpdateLogisticsStatusRequest struct {
	Status         string `json:"status"          binding:"required,oneof=in_transit ready_for_collection delivered cancelled"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
}

// ListLogisticsRequest 物流列表查询参数
type ListLogisticsRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending_pickup in_transit ready_for_collection delivered cancelled"`
}
