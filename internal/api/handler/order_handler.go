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

// OrderHandler 订单模块 HTTP 处理器
type OrderHandler struct {
	orderSvc service.OrderService
}

// NewOrderHandler 创建 OrderHandler
func NewOrderHandler(orderSvc service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Create 下单
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Created(c, order)
}

// Get 订单详情（仅当事人）
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	order, err := h.orderSvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, order)
}

// List 我的订单列表
// GET /api/v1/orders?role=buyer&status=paid
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	orders, total, err := h.orderSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, orders, total, req.GetPage(), req.GetPageSize())
}

// Pay 确认支付（仅买家）
// POST /api/v1/orders/:id/pay
func (h *OrderHandler) Pay(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.orderSvc.Pay(c.Request.Context(), c.Param("id"), userID, &req); err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, nil)
}

// Ship 确认发货（仅卖家）
// POST /api/v1/orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.orderSvc.Ship)
}

// Complete 确认收货（仅买家）
// POST /api/v1/orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderSvc.Complete)
}

// Cancel 取消订单（任一当事方或管理员）
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id, callerID string) error {
		return h.orderSvc.Cancel(ctx, id, callerID, IsAdmin(c))
	})
}

func (h *OrderHandler) transition(c *gin.Context, op func(ctx context.Context, id, callerID string) error) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, 15001, "订单不存在")
	case errors.Is(err, service.ErrOrderForbidden):
		response.Forbidden(c, 10003, "无权操作该订单")
	case errors.Is(err, service.ErrOrderSelfPurchase):
		response.BadRequest(c, 15003, "不能购买自己的物品")
	case errors.Is(err, service.ErrOrderListingNotForSale):
		response.BadRequest(c, 15004, "该物品不是出售类型")
	case errors.Is(err, service.ErrOrderListingUnavailable):
		response.Conflict(c, 15005, "物品当前不可购买")
	case errors.Is(err, service.ErrOrderInvalidState):
		response.Conflict(c, 15006, "订单当前状态不允许该操作")
	case errors.Is(err, service.ErrListingNotFound):
		response.NotFound(c, 13001, "物品不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
