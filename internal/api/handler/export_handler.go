package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	"swapthefit/backend/pkg/response"
)

// ExportHandler 管理端报表导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportOrders 导出区间内成交订单报表
// GET /api/v1/export/orders?from=2026-01-01&to=2026-02-01
func (h *ExportHandler) ExportOrders(c *gin.Context) {
	h.export(c, h.exportSvc.ExportCompletedOrders)
}

// ExportDonations 导出区间内捐赠影响力报表
// GET /api/v1/export/donations?from=2026-01-01&to=2026-02-01
func (h *ExportHandler) ExportDonations(c *gin.Context) {
	h.export(c, h.exportSvc.ExportDonationImpact)
}

func (h *ExportHandler) export(c *gin.Context, op func(ctx context.Context, req *dto.ExportRangeRequest) (*bytes.Buffer, string, error)) {
	var req dto.ExportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := op(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportRangeInvalid):
		response.BadRequest(c, 19301, "导出时间区间无效")
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 19302, "该区间内没有可导出的数据")
	default:
		response.InternalError(c)
	}
}
