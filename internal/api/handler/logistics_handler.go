package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	pkgerrors "swapthefit/backend/pkg/errors"
	"swapthefit/backend/pkg/response"
)

// LogisticsHandler 物流模块 HTTP 处理器
type LogisticsHandler struct {
	logisticsSvc service.LogisticsService
}

// NewLogisticsHandler 创建 LogisticsHandler
func NewLogisticsHandler(logisticsSvc service.LogisticsService) *LogisticsHandler {
	return &LogisticsHandler{logisticsSvc: logisticsSvc}
}

// Create 为交易创建物流单
// POST /api/v1/logistics
func (h *LogisticsHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLogisticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logistics, err := h.logisticsSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleLogisticsError(c, err)
		return
	}

	response.Created(c, logistics)
}

// Get 物流单详情（仅收发双方）
// GET /api/v1/logistics/:id
func (h *LogisticsHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	logistics, err := h.logisticsSvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleLogisticsError(c, err)
		return
	}

	response.OK(c, logistics)
}

// List 我的物流单列表
// GET /api/v1/logistics?status=in_transit
func (h *LogisticsHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListLogisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.logisticsSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus 推进物流状态（收发双方或管理员）
// PUT /api/v1/logistics/:id/status
func (h *LogisticsHandler) UpdateStatus(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateLogisticsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.logisticsSvc.UpdateStatus(c.Request.Context(), c.Param("id"), userID, IsAdmin(c), &req); err != nil {
		h.handleLogisticsError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExportCalendar 导出交接安排为 .ics 日历文件
// GET /api/v1/logistics/calendar
func (h *LogisticsHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.logisticsSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleLogisticsError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *LogisticsHandler) handleLogisticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLogisticsNotFound):
		response.NotFound(c, 17001, "物流单不存在")
	case errors.Is(err, service.ErrLogisticsForbidden):
		response.Forbidden(c, 10003, "无权操作该物流单")
	case errors.Is(err, service.ErrLogisticsExists):
		response.Conflict(c, 17003, "该交易已有物流单")
	case errors.Is(err, service.ErrLogisticsInvalidState):
		response.Conflict(c, 17004, "物流状态不允许该迁移")
	case errors.Is(err, service.ErrLogisticsTxNotReady):
		response.Conflict(c, 17005, "交易当前状态不能创建物流单")
	case errors.Is(err, service.ErrLogisticsPudoRequired):
		response.BadRequest(c, 17006, "PUDO 方式必须指定智能柜")
	case errors.Is(err, service.ErrLogisticsScheduleInvalid):
		response.BadRequest(c, 17007, "预约时间格式无效")
	case errors.Is(err, service.ErrLogisticsNoSchedules):
		response.NotFound(c, 17008, "暂无可导出的交接安排")
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 14001, "换物请求不存在")
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, 15001, "订单不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "操作冲突，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
