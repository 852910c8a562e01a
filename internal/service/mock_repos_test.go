package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/config"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// 内存版仓储实现，供各 Service 单测使用。
// 状态迁移按真实实现的语义模拟：先整体校验 From 再落盘，
// 任何一条不匹配即返回 ErrOptimisticLock 且不产生部分写入。

func newTestLogger() *zap.Logger { return zap.NewNop() }

// ── 用户 ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, user := range m.users {
		if role == "" || user.Role == role {
			out = append(out, *user)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockUserRepo) IncrementCounter(_ context.Context, userID, column string, delta int) error {
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch column {
	case "positive_review_count":
		user.PositiveReviewCount += delta
	case "negative_review_count":
		user.NegativeReviewCount += delta
	case "completed_swap_count":
		user.CompletedSwapCount += delta
	case "completed_sale_count":
		user.CompletedSaleCount += delta
	case "completed_donation_count":
		user.CompletedDonationCount += delta
	case "dispute_total_count":
		user.DisputeTotalCount += delta
	case "dispute_lost_count":
		user.DisputeLostCount += delta
	default:
		return gorm.ErrInvalidField
	}
	return nil
}

func (m *mockUserRepo) UpdateTrustScore(_ context.Context, userID string, score float64) error {
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.TrustScore = score
	return nil
}

func (m *mockUserRepo) AddDonationImpact(_ context.Context, userID string, count int, value float64, families int) error {
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.TotalReceivedCount += count
	user.TotalDonationsValue += value
	user.TotalFamiliesSupported += families
	return nil
}

// ── 物品 ──

type mockListingRepo struct {
	listings      map[string]*model.Listing
	setPremiumErr error // 置位后 SetPremium 直接失败
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{listings: make(map[string]*model.Listing)}
}

// applyTransitions 先全量校验再落盘，模拟单事务内的条件更新
func (m *mockListingRepo) applyTransitions(ts []repository.ListingTransition) error {
	for _, t := range ts {
		listing, ok := m.listings[t.ListingID]
		if !ok || listing.Status != t.From {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for _, t := range ts {
		listing := m.listings[t.ListingID]
		listing.Status = t.To
		if t.Deactivate {
			listing.IsActive = false
		}
		listing.UpdatedAt = time.Now()
	}
	return nil
}

func (m *mockListingRepo) Create(_ context.Context, listing *model.Listing) error {
	if listing.ListingID == "" {
		listing.ListingID = uuid.NewString()
	}
	if listing.Status == "" {
		listing.Status = model.ListingStatusAvailable
	}
	listing.IsActive = true
	if listing.Version == 0 {
		listing.Version = 1
	}
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()
	m.listings[listing.ListingID] = listing
	return nil
}

func (m *mockListingRepo) GetByID(_ context.Context, id string) (*model.Listing, error) {
	listing, ok := m.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *listing
	return &cp, nil
}

func (m *mockListingRepo) List(_ context.Context, filter repository.ListingFilter, offset, limit int) ([]model.Listing, int64, error) {
	var out []model.Listing
	for _, listing := range m.listings {
		if filter.OwnerID != "" && listing.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ListingType != "" && listing.ListingType != filter.ListingType {
			continue
		}
		if filter.Status != "" && listing.Status != filter.Status {
			continue
		}
		if filter.OnlyActive && !listing.IsActive {
			continue
		}
		out = append(out, *listing)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockListingRepo) Update(_ context.Context, listing *model.Listing) error {
	stored, ok := m.listings[listing.ListingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != listing.Version {
		return pkgerrors.ErrOptimisticLock
	}
	listing.Version++
	listing.UpdatedAt = time.Now()
	cp := *listing
	m.listings[listing.ListingID] = &cp
	return nil
}

func (m *mockListingRepo) Transition(_ context.Context, t repository.ListingTransition) error {
	return m.applyTransitions([]repository.ListingTransition{t})
}

func (m *mockListingRepo) SetPremium(_ context.Context, id string, expiresAt time.Time) error {
	if m.setPremiumErr != nil {
		return m.setPremiumErr
	}
	listing, ok := m.listings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	listing.IsPremium = true
	listing.PremiumExpiresAt = &expiresAt
	return nil
}

func (m *mockListingRepo) DeactivateStale(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for _, listing := range m.listings {
		if listing.IsActive && listing.Status == model.ListingStatusAvailable && listing.UpdatedAt.Before(before) {
			listing.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *mockListingRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.listings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.listings, id)
	return nil
}

// ── 换物申请 ──

type mockSwapRepo struct {
	swaps        map[string]*model.SwapRequest
	listings     *mockListingRepo
	conflictOnce bool // 置位后首次 CreatePending 模拟并发冲突
}

func (m *mockSwapRepo) CreatePending(_ context.Context, swap *model.SwapRequest, transitions []repository.ListingTransition) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	if swap.SwapRequestID == "" {
		swap.SwapRequestID = uuid.NewString()
	}
	swap.CreatedAt = time.Now()
	swap.UpdatedAt = time.Now()
	swap.Version = 1
	m.swaps[swap.SwapRequestID] = swap
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	swap, ok := m.swaps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *swap
	return &cp, nil
}

func (m *mockSwapRepo) ListByUser(_ context.Context, userID, direction, status string, offset, limit int) ([]model.SwapRequest, int64, error) {
	var out []model.SwapRequest
	for _, swap := range m.swaps {
		switch direction {
		case "incoming":
			if swap.ResponderID != userID {
				continue
			}
		case "outgoing":
			if swap.RequesterID != userID {
				continue
			}
		default:
			if !swap.IsParty(userID) {
				continue
			}
		}
		if status != "" && swap.Status != status {
			continue
		}
		out = append(out, *swap)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockSwapRepo) CountPendingPair(_ context.Context, requesterListingID, responderListingID string) (int64, error) {
	var n int64
	for _, swap := range m.swaps {
		if swap.RequesterListingID == requesterListingID &&
			swap.ResponderListingID == responderListingID &&
			(swap.Status == model.SwapStatusPending || swap.Status == model.SwapStatusAccepted) {
			n++
		}
	}
	return n, nil
}

func (m *mockSwapRepo) Transition(_ context.Context, id, from, to string, _ map[string]interface{}, transitions []repository.ListingTransition) error {
	swap, ok := m.swaps[id]
	if !ok || swap.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	swap.Status = to
	swap.Version++
	swap.UpdatedAt = time.Now()
	return nil
}

// ── 订单 ──

type mockOrderRepo struct {
	orders       map[string]*model.Order
	listings     *mockListingRepo
	conflictOnce bool // 置位后首次 CreatePending 模拟并发冲突
}

func (m *mockOrderRepo) CreatePending(_ context.Context, order *model.Order, transitions []repository.ListingTransition) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	if order.OrderID == "" {
		order.OrderID = uuid.NewString()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	order.Version = 1
	m.orders[order.OrderID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID, role, status string, offset, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, order := range m.orders {
		switch role {
		case "buyer":
			if order.BuyerID != userID {
				continue
			}
		case "seller":
			if order.SellerID != userID {
				continue
			}
		default:
			if !order.IsParty(userID) {
				continue
			}
		}
		if status != "" && order.Status != status {
			continue
		}
		out = append(out, *order)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockOrderRepo) ListCompletedBetween(_ context.Context, _, _ string) ([]model.Order, error) {
	var out []model.Order
	for _, order := range m.orders {
		if order.Status == model.OrderStatusCompleted {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) Transition(_ context.Context, id, from, to string, extra map[string]interface{}, transitions []repository.ListingTransition) error {
	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	order.Status = to
	if ref, ok := extra["payment_reference"].(string); ok {
		order.PaymentReference = ref
	}
	order.Version++
	order.UpdatedAt = time.Now()
	return nil
}

// ── 捐赠 ──

type mockDonationRepo struct {
	donations    map[string]*model.Donation
	listings     *mockListingRepo
	conflictOnce bool // 置位后首次 CreatePending 模拟并发冲突
}

func (m *mockDonationRepo) CreatePending(_ context.Context, donation *model.Donation, transitions []repository.ListingTransition) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	if donation.DonationID == "" {
		donation.DonationID = uuid.NewString()
	}
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = time.Now()
	donation.Version = 1
	m.donations[donation.DonationID] = donation
	return nil
}

func (m *mockDonationRepo) GetByID(_ context.Context, id string) (*model.Donation, error) {
	donation, ok := m.donations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *donation
	return &cp, nil
}

func (m *mockDonationRepo) ListByUser(_ context.Context, userID, role, status string, offset, limit int) ([]model.Donation, int64, error) {
	var out []model.Donation
	for _, donation := range m.donations {
		switch role {
		case "donor":
			if donation.DonorID != userID {
				continue
			}
		case "recipient":
			if donation.RecipientID != userID {
				continue
			}
		default:
			if !donation.IsParty(userID) {
				continue
			}
		}
		if status != "" && donation.Status != status {
			continue
		}
		out = append(out, *donation)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockDonationRepo) ListDistributedBetween(_ context.Context, _, _ string) ([]model.Donation, error) {
	var out []model.Donation
	for _, donation := range m.donations {
		if donation.Status == model.DonationStatusDistributed {
			out = append(out, *donation)
		}
	}
	return out, nil
}

func (m *mockDonationRepo) Transition(_ context.Context, id, from, to string, extra map[string]interface{}, transitions []repository.ListingTransition) error {
	donation, ok := m.donations[id]
	if !ok || donation.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	if err := m.listings.applyTransitions(transitions); err != nil {
		return err
	}
	donation.Status = to
	if v, ok := extra["received_quantity"].(int); ok {
		donation.ReceivedQuantity = &v
	}
	if v, ok := extra["received_value"].(float64); ok {
		donation.ReceivedValue = &v
	}
	if v, ok := extra["families_supported"].(int); ok {
		donation.FamiliesSupported = &v
	}
	donation.Version++
	donation.UpdatedAt = time.Now()
	return nil
}

// ── 物流 ──

type mockLogisticsRepo struct {
	records map[string]*model.Logistics
}

func newMockLogisticsRepo() *mockLogisticsRepo {
	return &mockLogisticsRepo{records: make(map[string]*model.Logistics)}
}

func (m *mockLogisticsRepo) Create(_ context.Context, logistics *model.Logistics) error {
	if logistics.LogisticsID == "" {
		logistics.LogisticsID = uuid.NewString()
	}
	logistics.LastStatusUpdate = time.Now()
	logistics.CreatedAt = time.Now()
	logistics.UpdatedAt = time.Now()
	logistics.Version = 1
	m.records[logistics.LogisticsID] = logistics
	return nil
}

func (m *mockLogisticsRepo) GetByID(_ context.Context, id string) (*model.Logistics, error) {
	logistics, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *logistics
	return &cp, nil
}

func (m *mockLogisticsRepo) GetByTransaction(_ context.Context, transactionType, transactionID string) (*model.Logistics, error) {
	for _, logistics := range m.records {
		if logistics.TransactionType == transactionType && logistics.TransactionID == transactionID {
			cp := *logistics
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLogisticsRepo) ListByUser(_ context.Context, userID, status string, offset, limit int) ([]model.Logistics, int64, error) {
	var out []model.Logistics
	for _, logistics := range m.records {
		if logistics.SenderID != userID && logistics.ReceiverID != userID {
			continue
		}
		if status != "" && logistics.Status != status {
			continue
		}
		out = append(out, *logistics)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockLogisticsRepo) ListScheduledByUser(_ context.Context, userID string) ([]model.Logistics, error) {
	var out []model.Logistics
	for _, logistics := range m.records {
		if logistics.SenderID != userID && logistics.ReceiverID != userID {
			continue
		}
		if logistics.ScheduledAt == nil || logistics.IsTerminal() {
			continue
		}
		out = append(out, *logistics)
	}
	return out, nil
}

func (m *mockLogisticsRepo) Transition(_ context.Context, id, from, to string, extra map[string]interface{}) error {
	logistics, ok := m.records[id]
	if !ok || logistics.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	logistics.Status = to
	if v, ok := extra["tracking_number"].(string); ok {
		logistics.TrackingNumber = v
	}
	logistics.LastStatusUpdate = time.Now()
	logistics.Version++
	logistics.UpdatedAt = time.Now()
	return nil
}

// ── 通知 ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = uuid.NewString()
	}
	notification.CreatedAt = time.Now()
	m.notifications[notification.NotificationID] = notification
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *notification
	return &cp, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var out []model.Notification
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		out = append(out, *notification)
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, notification := range m.notifications {
		if notification.UserID == userID && !notification.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	notification, ok := m.notifications[id]
	if !ok || notification.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	notification.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			notification.IsRead = true
		}
	}
	return nil
}

// countByUser 测试辅助：统计某用户收到的通知数
func (m *mockNotificationRepo) countByUser(userID string) int {
	n := 0
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			n++
		}
	}
	return n
}

// ── 评价 ──

type mockReviewRepo struct {
	reviews map[string]*model.Review
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]*model.Review)}
}

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	if review.ReviewID == "" {
		review.ReviewID = uuid.NewString()
	}
	review.CreatedAt = time.Now()
	m.reviews[review.ReviewID] = review
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id string) (*model.Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *review
	return &cp, nil
}

func (m *mockReviewRepo) GetByTransactionAndReviewer(_ context.Context, transactionType, transactionID, reviewerID string) (*model.Review, error) {
	for _, review := range m.reviews {
		if review.TransactionType == transactionType &&
			review.TransactionID == transactionID &&
			review.ReviewerID == reviewerID {
			cp := *review
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) ListByReviewee(_ context.Context, revieweeID string, offset, limit int) ([]model.Review, int64, error) {
	var out []model.Review
	for _, review := range m.reviews {
		if review.RevieweeID == revieweeID {
			out = append(out, *review)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

// ── 积分 ──

type mockCreditRepo struct {
	users   *mockUserRepo
	entries []model.CreditEntry
}

func (m *mockCreditRepo) Spend(_ context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	user, ok := m.users.users[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if user.CreditBalance < amount {
		return 0, pkgerrors.ErrInsufficientBalance
	}
	user.CreditBalance -= amount
	m.entries = append(m.entries, model.CreditEntry{
		EntryID:      uuid.NewString(),
		UserID:       userID,
		Amount:       -amount,
		BalanceAfter: user.CreditBalance,
		Reason:       reason,
		RelatedType:  relatedType,
		RelatedID:    relatedID,
		CreatedAt:    time.Now(),
	})
	return user.CreditBalance, nil
}

func (m *mockCreditRepo) Earn(_ context.Context, userID string, amount int, reason string, relatedType, relatedID *string) (int, error) {
	user, ok := m.users.users[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	user.CreditBalance += amount
	m.entries = append(m.entries, model.CreditEntry{
		EntryID:      uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: user.CreditBalance,
		Reason:       reason,
		RelatedType:  relatedType,
		RelatedID:    relatedID,
		CreatedAt:    time.Now(),
	})
	return user.CreditBalance, nil
}

func (m *mockCreditRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.CreditEntry, int64, error) {
	var out []model.CreditEntry
	for _, entry := range m.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

// ── 纠纷 ──

type mockDisputeRepo struct {
	disputes map[string]*model.Dispute
	alerts   []model.FraudAlert
}

func newMockDisputeRepo() *mockDisputeRepo {
	return &mockDisputeRepo{disputes: make(map[string]*model.Dispute)}
}

func (m *mockDisputeRepo) Create(_ context.Context, dispute *model.Dispute) error {
	if dispute.DisputeID == "" {
		dispute.DisputeID = uuid.NewString()
	}
	dispute.CreatedAt = time.Now()
	dispute.UpdatedAt = time.Now()
	dispute.Version = 1
	m.disputes[dispute.DisputeID] = dispute
	return nil
}

func (m *mockDisputeRepo) GetByID(_ context.Context, id string) (*model.Dispute, error) {
	dispute, ok := m.disputes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *dispute
	return &cp, nil
}

func (m *mockDisputeRepo) List(_ context.Context, status string, offset, limit int) ([]model.Dispute, int64, error) {
	var out []model.Dispute
	for _, dispute := range m.disputes {
		if status == "" || dispute.Status == status {
			out = append(out, *dispute)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockDisputeRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Dispute, int64, error) {
	var out []model.Dispute
	for _, dispute := range m.disputes {
		if dispute.ComplainantID == userID || dispute.RespondentID == userID {
			out = append(out, *dispute)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockDisputeRepo) Update(_ context.Context, dispute *model.Dispute) error {
	stored, ok := m.disputes[dispute.DisputeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != dispute.Version {
		return pkgerrors.ErrOptimisticLock
	}
	dispute.Version++
	dispute.UpdatedAt = time.Now()
	cp := *dispute
	m.disputes[dispute.DisputeID] = &cp
	return nil
}

func (m *mockDisputeRepo) CountRecentByUser(_ context.Context, userID string, since time.Time) (int64, error) {
	var n int64
	for _, dispute := range m.disputes {
		if (dispute.RespondentID == userID || dispute.ComplainantID == userID) && dispute.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockDisputeRepo) CreateAlert(_ context.Context, alert *model.FraudAlert) error {
	if alert.AlertID == "" {
		alert.AlertID = uuid.NewString()
	}
	alert.CreatedAt = time.Now()
	m.alerts = append(m.alerts, *alert)
	return nil
}

func (m *mockDisputeRepo) ListAlerts(_ context.Context, offset, limit int) ([]model.FraudAlert, int64, error) {
	return paginate(m.alerts, offset, limit), int64(len(m.alerts)), nil
}

// ── 举报 ──

type mockReportRepo struct {
	reports map[string]*model.Report
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]*model.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	if report.ReportID == "" {
		report.ReportID = uuid.NewString()
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()
	report.Version = 1
	m.reports[report.ReportID] = report
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *report
	return &cp, nil
}

func (m *mockReportRepo) List(_ context.Context, status string, offset, limit int) ([]model.Report, int64, error) {
	var out []model.Report
	for _, report := range m.reports {
		if status == "" || report.Status == status {
			out = append(out, *report)
		}
	}
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockReportRepo) Update(_ context.Context, report *model.Report) error {
	stored, ok := m.reports[report.ReportID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != report.Version {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version++
	report.UpdatedAt = time.Now()
	cp := *report
	m.reports[report.ReportID] = &cp
	return nil
}

// ── 组装 ──

// mockStore 暴露底层 mock，便于测试断言内部状态
type mockStore struct {
	users         *mockUserRepo
	listings      *mockListingRepo
	swaps         *mockSwapRepo
	orders        *mockOrderRepo
	donations     *mockDonationRepo
	logistics     *mockLogisticsRepo
	notifications *mockNotificationRepo
	reviews       *mockReviewRepo
	credits       *mockCreditRepo
	disputes      *mockDisputeRepo
	reports       *mockReportRepo
}

func newMockRepository() (*repository.Repository, *mockStore) {
	users := newMockUserRepo()
	listings := newMockListingRepo()
	store := &mockStore{
		users:         users,
		listings:      listings,
		swaps:         &mockSwapRepo{swaps: make(map[string]*model.SwapRequest), listings: listings},
		orders:        &mockOrderRepo{orders: make(map[string]*model.Order), listings: listings},
		donations:     &mockDonationRepo{donations: make(map[string]*model.Donation), listings: listings},
		logistics:     newMockLogisticsRepo(),
		notifications: newMockNotificationRepo(),
		reviews:       newMockReviewRepo(),
		credits:       &mockCreditRepo{users: users},
		disputes:      newMockDisputeRepo(),
		reports:       newMockReportRepo(),
	}
	repo := &repository.Repository{
		User:         store.users,
		Listing:      store.listings,
		Swap:         store.swaps,
		Order:        store.orders,
		Donation:     store.donations,
		Logistics:    store.logistics,
		Notification: store.notifications,
		Review:       store.reviews,
		Credit:       store.credits,
		Dispute:      store.disputes,
		Report:       store.reports,
	}
	return repo, store
}

// ── 测试数据辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Reward: config.RewardConfig{
			SwapCompleted:     10,
			SaleCompleted:     5,
			DonationCompleted: 20,
			PremiumCost:       50,
		},
		Listing: config.ListingConfig{
			StaleAfterDays:      90,
			PremiumDurationDays: 14,
		},
	}
}

func seedUser(store *mockStore, name, role string) *model.User {
	user := &model.User{
		Name:       name,
		Email:      name + "@example.com",
		Role:       role,
		TrustScore: 50,
	}
	_ = store.users.Create(context.Background(), user)
	return user
}

func seedListing(store *mockStore, ownerID, listingType string, price *float64) *model.Listing {
	listing := &model.Listing{
		OwnerID:     ownerID,
		Title:       "测试校服",
		ListingType: listingType,
		Category:    "uniform",
		Condition:   "good",
		Price:       price,
	}
	_ = store.listings.Create(context.Background(), listing)
	return listing
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
