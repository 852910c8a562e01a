package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	pkgerrors "swapthefit/backend/pkg/errors"
	"swapthefit/backend/pkg/response"
)

// ListingHandler 物品模块 HTTP 处理器
type ListingHandler struct {
	listingSvc service.ListingService
}

// NewListingHandler 创建 ListingHandler
func NewListingHandler(listingSvc service.ListingService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc}
}

// Create 发布物品
// POST /api/v1/listings
func (h *ListingHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	listing, err := h.listingSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleListingError(c, err)
		return
	}

	response.Created(c, listing)
}

// Get 物品详情
// GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleListingError(c, err)
		return
	}

	response.OK(c, listing)
}

// List 物品列表（带筛选）
// GET /api/v1/listings?listing_type=swap&category=uniform
func (h *ListingHandler) List(c *gin.Context) {
	var req dto.ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	listings, total, err := h.listingSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, listings, total, req.GetPage(), req.GetPageSize())
}

// Update 更新物品
// PUT /api/v1/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	listing, err := h.listingSvc.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		h.handleListingError(c, err)
		return
	}

	response.OK(c, listing)
}

// Delete 删除物品
// DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.listingSvc.Delete(c.Request.Context(), c.Param("id"), userID, IsAdmin(c)); err != nil {
		h.handleListingError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpgradePremium 消耗积分置顶推广
// POST /api/v1/listings/:id/premium
func (h *ListingHandler) UpgradePremium(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	listing, err := h.listingSvc.UpgradePremium(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleListingError(c, err)
		return
	}

	response.OK(c, listing)
}

// DeactivateStale 批量下架长期未更新的物品（管理员）
// POST /api/v1/listings/deactivate-stale
func (h *ListingHandler) DeactivateStale(c *gin.Context) {
	affected, err := h.listingSvc.DeactivateStale(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"deactivated": affected})
}

func (h *ListingHandler) handleListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		response.NotFound(c, 13001, "物品不存在")
	case errors.Is(err, service.ErrListingForbidden):
		response.Forbidden(c, 10003, "无权操作该物品")
	case errors.Is(err, service.ErrListingPriceRequired):
		response.BadRequest(c, 13003, "出售类型物品必须填写价格")
	case errors.Is(err, service.ErrListingPriceNotAllowed):
		response.BadRequest(c, 13004, "非出售类型物品不能填写价格")
	case errors.Is(err, service.ErrListingNotEditable):
		response.Conflict(c, 13005, "物品当前状态不可编辑")
	case errors.Is(err, service.ErrListingBusy):
		response.Conflict(c, 13006, "物品正处于交易中")
	case errors.Is(err, service.ErrListingAlreadyPremium):
		response.Conflict(c, 13007, "物品已在推广期内")
	case errors.Is(err, service.ErrInsufficientCredits):
		response.BadRequest(c, 12102, "积分余额不足")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
