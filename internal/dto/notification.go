package dto

// ── 通知模块 DTO ──

// ListNotificationsRequest 通知列表查询参数
type ListNotificationsRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}
