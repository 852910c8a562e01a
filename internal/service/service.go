package service

import (
	"go.uber.org/zap"

	"swapthefit/backend/config"
	"swapthefit/backend/internal/repository"
	"swapthefit/backend/pkg/jwt"
	"swapthefit/backend/pkg/redis"
)

// Service 业务层聚合入口，持有全部子服务
type Service struct {
	Auth         AuthService
	User         UserService
	Listing      ListingService
	Swap         SwapService
	Order        OrderService
	Donation     DonationService
	Logistics    LogisticsService
	Review       ReviewService
	Trust        TrustService
	Credit       CreditService
	Dispute      DisputeService
	Report       ReportService
	Notification NotificationService
	Export       ExportService
}

// NewService 按依赖顺序组装各子服务
// 通知与信誉是公共下游，先于各交易域服务创建
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *Service {
	notify := NewNotificationService(repo, logger)
	trust := NewTrustService(repo, logger)
	credit := NewCreditService(cfg, repo, notify, logger)

	return &Service{
		Auth:         NewAuthService(&cfg.Auth, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Listing:      NewListingService(cfg, repo, credit, logger),
		Swap:         NewSwapService(repo, credit, trust, notify, logger),
		Order:        NewOrderService(repo, credit, trust, notify, logger),
		Donation:     NewDonationService(repo, credit, trust, notify, logger),
		Logistics:    NewLogisticsService(repo, notify, logger),
		Review:       NewReviewService(repo, trust, notify, logger),
		Trust:        trust,
		Credit:       credit,
		Dispute:      NewDisputeService(repo, trust, notify, logger),
		Report:       NewReportService(repo, notify, logger),
		Notification: notify,
		Export:       NewExportService(repo, logger),
	}
}
