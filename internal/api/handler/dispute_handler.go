package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	pkgerrors "swapthefit/backend/pkg/errors"
	"swapthefit/backend/pkg/response"
)

// DisputeHandler 纠纷与反欺诈模块 HTTP 处理器
type DisputeHandler struct {
	disputeSvc service.DisputeService
}

// NewDisputeHandler 创建 DisputeHandler
func NewDisputeHandler(disputeSvc service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeSvc: disputeSvc}
}

// Create 发起纠纷
// POST /api/v1/disputes
func (h *DisputeHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dispute, err := h.disputeSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleDisputeError(c, err)
		return
	}

	response.Created(c, dispute)
}

// Get 纠纷详情（当事人或管理员）
// GET /api/v1/disputes/:id
func (h *DisputeHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dispute, err := h.disputeSvc.GetByID(c.Request.Context(), c.Param("id"), userID, IsAdmin(c))
	if err != nil {
		h.handleDisputeError(c, err)
		return
	}

	response.OK(c, dispute)
}

// ListMine 与我相关的纠纷
// GET /api/v1/disputes/my
func (h *DisputeHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	disputes, total, err := h.disputeSvc.ListByUser(c.Request.Context(), userID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, disputes, total, page.GetPage(), page.GetPageSize())
}

// List 全部纠纷（管理员）
// GET /api/v1/disputes?status=open
func (h *DisputeHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	disputes, total, err := h.disputeSvc.List(c.Request.Context(), c.Query("status"), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, disputes, total, page.GetPage(), page.GetPageSize())
}

// Resolve 管理员裁决
// POST /api/v1/disputes/:id/resolve
func (h *DisputeHandler) Resolve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dispute, err := h.disputeSvc.Resolve(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		h.handleDisputeError(c, err)
		return
	}

	response.OK(c, dispute)
}

// ListAlerts 反欺诈预警列表（管理员）
// GET /api/v1/disputes/alerts
func (h *DisputeHandler) ListAlerts(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	alerts, total, err := h.disputeSvc.ListAlerts(c.Request.Context(), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, alerts, total, page.GetPage(), page.GetPageSize())
}

func (h *DisputeHandler) handleDisputeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDisputeNotFound):
		response.NotFound(c, 19001, "纠纷不存在")
	case errors.Is(err, service.ErrDisputeForbidden):
		response.Forbidden(c, 10003, "无权访问该纠纷")
	case errors.Is(err, service.ErrDisputeSelf):
		response.BadRequest(c, 19003, "不能对自己发起纠纷")
	case errors.Is(err, service.ErrDisputeAlreadyFinal):
		response.Conflict(c, 19004, "纠纷已结案")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
