package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	pkgerrors "swapthefit/backend/pkg/errors"
	"swapthefit/backend/pkg/response"
)

// SwapHandler 换物模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// Create 发起换物请求
// POST /api/v1/swaps
func (h *SwapHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	swap, err := h.swapSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.Created(c, swap)
}

// Get 换物请求详情（仅当事人）
// GET /api/v1/swaps/:id
func (h *SwapHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	swap, err := h.swapSvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, swap)
}

// List 我的换物请求列表
// GET /api/v1/swaps?direction=incoming&status=pending
func (h *SwapHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListSwapsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	swaps, total, err := h.swapSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, swaps, total, req.GetPage(), req.GetPageSize())
}

// Accept 接受换物（仅响应方）
// POST /api/v1/swaps/:id/accept
func (h *SwapHandler) Accept(c *gin.Context) {
	h.transition(c, h.swapSvc.Accept)
}

// Reject 拒绝换物（仅响应方）
// POST /api/v1/swaps/:id/reject
func (h *SwapHandler) Reject(c *gin.Context) {
	h.transition(c, h.swapSvc.Reject)
}

// Cancel 取消换物（任一当事方或管理员）
// POST /api/v1/swaps/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id, callerID string) error {
		return h.swapSvc.Cancel(ctx, id, callerID, IsAdmin(c))
	})
}

// Complete 确认交换完成
// POST /api/v1/swaps/:id/complete
func (h *SwapHandler) Complete(c *gin.Context) {
	h.transition(c, h.swapSvc.Complete)
}

// transition 复用状态迁移类操作的公共流程
func (h *SwapHandler) transition(c *gin.Context, op func(ctx context.Context, id, callerID string) error) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 14001, "换物请求不存在")
	case errors.Is(err, service.ErrSwapForbidden):
		response.Forbidden(c, 10003, "无权操作该换物请求")
	case errors.Is(err, service.ErrSwapSelf):
		response.BadRequest(c, 14003, "不能与自己的物品交换")
	case errors.Is(err, service.ErrSwapOwnership):
		response.BadRequest(c, 14004, "发起方必须使用自己的物品")
	case errors.Is(err, service.ErrSwapListingType):
		response.BadRequest(c, 14005, "仅换物类型的物品可以发起交换")
	case errors.Is(err, service.ErrSwapDuplicate):
		response.Conflict(c, 14006, "这两件物品之间已有进行中的换物请求")
	case errors.Is(err, service.ErrSwapListingUnavailable):
		response.Conflict(c, 14007, "物品当前不可交换")
	case errors.Is(err, service.ErrSwapInvalidState):
		response.Conflict(c, 14008, "换物请求当前状态不允许该操作")
	case errors.Is(err, service.ErrListingNotFound):
		response.NotFound(c, 13001, "物品不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
