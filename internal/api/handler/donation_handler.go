package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	pkgerrors "swapthefit/backend/pkg/errors"
	"swapthefit/backend/pkg/response"
)

// DonationHandler 捐赠模块 HTTP 处理器
type DonationHandler struct {
	donationSvc service.DonationService
}

// NewDonationHandler 创建 DonationHandler
func NewDonationHandler(donationSvc service.DonationService) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc}
}

// Create 发起捐赠
// POST /api/v1/donations
func (h *DonationHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	donation, err := h.donationSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.Created(c, donation)
}

// Get 捐赠详情（仅当事人）
// GET /api/v1/donations/:id
func (h *DonationHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	donation, err := h.donationSvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, donation)
}

// List 我的捐赠列表
// GET /api/v1/donations?role=recipient&status=pending_pickup
func (h *DonationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListDonationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	donations, total, err := h.donationSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, donations, total, req.GetPage(), req.GetPageSize())
}

// Receive 机构确认收到物品，可修正实收数量与估值
// POST /api/v1/donations/:id/receive
func (h *DonationHandler) Receive(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReceiveDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.donationSvc.Receive(c.Request.Context(), c.Param("id"), userID, &req); err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, nil)
}

// Distribute 机构确认分发完成，记录惠及家庭数
// POST /api/v1/donations/:id/distribute
func (h *DonationHandler) Distribute(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DistributeDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.donationSvc.Distribute(c.Request.Context(), c.Param("id"), userID, &req); err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, nil)
}

// Cancel 取消捐赠（交接前，任一当事方或管理员）
// POST /api/v1/donations/:id/cancel
func (h *DonationHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.donationSvc.Cancel(c.Request.Context(), c.Param("id"), userID, IsAdmin(c)); err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *DonationHandler) handleDonationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDonationNotFound):
		response.NotFound(c, 16001, "捐赠记录不存在")
	case errors.Is(err, service.ErrDonationForbidden):
		response.Forbidden(c, 10003, "无权操作该捐赠记录")
	case errors.Is(err, service.ErrDonationSelf):
		response.BadRequest(c, 16003, "不能向自己捐赠")
	case errors.Is(err, service.ErrDonationRecipientInvalid):
		response.BadRequest(c, 16004, "接收方必须是学校或公益机构")
	case errors.Is(err, service.ErrDonationListingType):
		response.BadRequest(c, 16005, "仅捐赠类型的物品可以发起捐赠")
	case errors.Is(err, service.ErrDonationListingUnavailable):
		response.Conflict(c, 16006, "物品当前不可捐赠")
	case errors.Is(err, service.ErrDonationInvalidState):
		response.Conflict(c, 16007, "捐赠记录当前状态不允许该操作")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrListingNotFound):
		response.NotFound(c, 13001, "物品不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
