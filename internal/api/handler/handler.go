package handler

import "swapthefit/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Listing      *ListingHandler
	Swap         *SwapHandler
	Order        *OrderHandler
	Donation     *DonationHandler
	Logistics    *LogisticsHandler
	Review       *ReviewHandler
	Dispute      *DisputeHandler
	Report       *ReportHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User, svc.Trust, svc.Credit),
		Listing:      NewListingHandler(svc.Listing),
		Swap:         NewSwapHandler(svc.Swap),
		Order:        NewOrderHandler(svc.Order),
		Donation:     NewDonationHandler(svc.Donation),
		Logistics:    NewLogisticsHandler(svc.Logistics),
		Review:       NewReviewHandler(svc.Review),
		Dispute:      NewDisputeHandler(svc.Dispute),
		Report:       NewReportHandler(svc.Report),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
