package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/service"
	"swapthefit/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc   service.UserService
	trustSvc  service.TrustService
	creditSvc service.CreditService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, trustSvc service.TrustService, creditSvc service.CreditService) *UserHandler {
	return &UserHandler{userSvc: userSvc, trustSvc: trustSvc, creditSvc: creditSvc}
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// UpdateProfile 更新个人资料
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表（管理员）
// GET /api/v1/users?role=school
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), c.Query("role"), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, page.GetPage(), page.GetPageSize())
}

// GetTrustProfile 信誉画像（公开）
// GET /api/v1/users/:id/trust
func (h *UserHandler) GetTrustProfile(c *gin.Context) {
	profile, err := h.trustSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTrustUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, profile)
}

// GetImpact 公益影响力画像（机构）
// GET /api/v1/users/:id/impact
func (h *UserHandler) GetImpact(c *gin.Context) {
	impact, err := h.trustSvc.GetImpact(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTrustUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, impact)
}

// ListCreditEntries 当前用户积分流水
// GET /api/v1/credits/entries
func (h *UserHandler) ListCreditEntries(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, total, err := h.creditSvc.ListEntries(c.Request.Context(), userID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, entries, total, page.GetPage(), page.GetPageSize())
}

// AdjustCredit 管理员手工调整用户积分
// POST /api/v1/users/:id/credits/adjust
func (h *UserHandler) AdjustCredit(c *gin.Context) {
	var req dto.AdjustCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	balance, err := h.creditSvc.AdminAdjust(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCreditUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		case errors.Is(err, service.ErrCreditAmountInvalid):
			response.BadRequest(c, 12101, "积分数额无效")
		case errors.Is(err, service.ErrInsufficientCredits):
			response.BadRequest(c, 12102, "积分余额不足")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, gin.H{"balance": balance})
}
