package dto

// ── 用户模块 DTO ──

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=50"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

// AdjustCreditRequest 管理员手工调整积分请求
type AdjustCreditRequest struct {
	Amount int    `json:"amount" binding:"required"` // 正数增加，负数扣减
	Note   string `json:"note"   binding:"required,max=200"`
}
