package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swapthefit/backend/config"
	"swapthefit/backend/internal/api/handler"
	"swapthefit/backend/internal/api/middleware"
	"swapthefit/backend/pkg/jwt"
	"swapthefit/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 公开浏览（无需登录）
		v1.GET("/listings", h.Listing.List)
		v1.GET("/listings/:id", h.Listing.Get)
		v1.GET("/users/:id/trust", h.User.GetTrustProfile)
		v1.GET("/users/:id/impact", h.User.GetImpact)
		v1.GET("/users/:id/reviews", h.Review.ListByUser)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me", h.User.UpdateProfile)
				users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
				users.POST("/:id/credits/adjust", middleware.RoleAuth("admin"), h.User.AdjustCredit)
			}

			// 积分流水
			authorized.GET("/credits/entries", h.User.ListCreditEntries)

			// 物品模块
			listings := authorized.Group("/listings")
			{
				listings.POST("", h.Listing.Create)
				listings.PUT("/:id", h.Listing.Update)
				listings.DELETE("/:id", h.Listing.Delete)
				listings.POST("/:id/premium", h.Listing.UpgradePremium)
				listings.POST("/deactivate-stale", middleware.RoleAuth("admin"), h.Listing.DeactivateStale)
			}

			// 换物模块
			swaps := authorized.Group("/swaps")
			{
				swaps.POST("", h.Swap.Create)
				swaps.GET("", h.Swap.List)
				swaps.GET("/:id", h.Swap.Get)
				swaps.POST("/:id/accept", h.Swap.Accept)
				swaps.POST("/:id/reject", h.Swap.Reject)
				swaps.POST("/:id/cancel", h.Swap.Cancel)
				swaps.POST("/:id/complete", h.Swap.Complete)
			}

			// 订单模块
			orders := authorized.Group("/orders")
			{
				orders.POST("", h.Order.Create)
				orders.GET("", h.Order.List)
				orders.GET("/:id", h.Order.Get)
				orders.POST("/:id/pay", h.Order.Pay)
				orders.POST("/:id/ship", h.Order.Ship)
				orders.POST("/:id/complete", h.Order.Complete)
				orders.POST("/:id/cancel", h.Order.Cancel)
			}

			// 捐赠模块
			donations := authorized.Group("/donations")
			{
				donations.POST("", h.Donation.Create)
				donations.GET("", h.Donation.List)
				donations.GET("/:id", h.Donation.Get)
				donations.POST("/:id/receive", h.Donation.Receive)
				donations.POST("/:id/distribute", h.Donation.Distribute)
				donations.POST("/:id/cancel", h.Donation.Cancel)
			}

			// 物流模块
			logistics := authorized.Group("/logistics")
			{
				logistics.POST("", h.Logistics.Create)
				logistics.GET("", h.Logistics.List)
				logistics.GET("/calendar", h.Logistics.ExportCalendar)
				logistics.GET("/:id", h.Logistics.Get)
				logistics.PUT("/:id/status", h.Logistics.UpdateStatus)
			}

			// 评价模块
			authorized.POST("/reviews", h.Review.Create)

			// 纠纷与反欺诈模块
			disputes := authorized.Group("/disputes")
			{
				disputes.POST("", h.Dispute.Create)
				disputes.GET("/my", h.Dispute.ListMine)
				disputes.GET("", middleware.RoleAuth("admin"), h.Dispute.List)
				disputes.GET("/alerts", middleware.RoleAuth("admin"), h.Dispute.ListAlerts)
				disputes.GET("/:id", h.Dispute.Get)
				disputes.POST("/:id/resolve", middleware.RoleAuth("admin"), h.Dispute.Resolve)
			}

			// 举报模块
			reports := authorized.Group("/reports")
			{
				reports.POST("", h.Report.Create)
				reports.GET("", middleware.RoleAuth("admin"), h.Report.List)
				reports.GET("/:id", middleware.RoleAuth("admin"), h.Report.Get)
				reports.PUT("/:id", middleware.RoleAuth("admin"), h.Report.Handle)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.CountUnread)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			// 管理端报表导出
			export := authorized.Group("/export")
			export.Use(middleware.RoleAuth("admin"))
			{
				export.GET("/orders", h.Export.ExportOrders)
				export.GET("/donations", h.Export.ExportDonations)
			}
		}
	}

	return r
}
