package dto

// ── 导出模块 DTO ──

// ExportRangeRequest 报表导出时间区间参数
type ExportRangeRequest struct {
	From string `form:"from" binding:"required"` // "2026-01-01"
	To   string `form:"to"   binding:"required"` // "2026-02-01"（不含）
}
