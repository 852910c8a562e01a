package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Listing      ListingRepository
	Swap         SwapRepository
	Order        OrderRepository
	Donation     DonationRepository
	Logistics    LogisticsRepository
	Notification NotificationRepository
	Review       ReviewRepository
	Credit       CreditRepository
	Dispute      DisputeRepository
	Report       ReportRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Listing:      NewListingRepo(db),
		Swap:         NewSwapRepo(db),
		Order:        NewOrderRepo(db),
		Donation:     NewDonationRepo(db),
		Logistics:    NewLogisticsRepo(db),
		Notification: NewNotificationRepo(db),
		Review:       NewReviewRepo(db),
		Credit:       NewCreditRepo(db),
		Dispute:      NewDisputeRepo(db),
		Report:       NewReportRepo(db),
	}
}
