package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	"swapthefit/backend/pkg/response"
)

// ReviewHandler 评价模块 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Create 提交评价
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	review, err := h.reviewSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewTxNotFound):
			response.NotFound(c, 18001, "关联交易不存在")
		case errors.Is(err, service.ErrReviewNotParty):
			response.Forbidden(c, 10003, "只有交易当事人可以评价")
		case errors.Is(err, service.ErrReviewTxNotCompleted):
			response.Conflict(c, 18003, "交易完成后才能评价")
		case errors.Is(err, service.ErrReviewDuplicate):
			response.Conflict(c, 18004, "该交易已评价过")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, review)
}

// ListByUser 某用户收到的评价（公开）
// GET /api/v1/users/:id/reviews
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reviews, total, err := h.reviewSvc.ListByUser(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, reviews, total, page.GetPage(), page.GetPageSize())
}
