package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
	pkgerrors "swapthefit/backend/pkg/errors"
)

// ── 订单模块业务错误 ──

var (
	ErrOrderNotFound           = errors.New("订单不存在")
	ErrOrderForbidden          = errors.New("无权操作该订单")
	ErrOrderInvalidState       = errors.New("订单当前状态不允许该操作")
	ErrOrderSelfPurchase       = errors.New("不能购买自己的物品")
	ErrOrderListingNotForSale  = errors.New("该物品不是出售类型")
	ErrOrderListingUnavailable = errors.New("物品当前不可购买")
)

// OrderService 订单业务接口
//
// 状态机：pending_payment → paid → pending_pickup → completed
//
//	pending_payment/paid → cancelled
//
// 物品状态与订单同步迁移：下单即锁定物品，取消即释放，
// 完成后物品进入 sold 终态并下架。
type OrderService interface {
	Create(ctx context.Context, buyerID string, req *dto.CreateOrderRequest) (*model.Order, error)
	GetByID(ctx context.Context, id, callerID string) (*model.Order, error)
	List(ctx context.Context, userID string, req *dto.ListOrdersRequest) ([]model.Order, int64, error)
	Pay(ctx context.Context, id, callerID string, req *dto.PayOrderRequest) error
	Ship(ctx context.Context, id, callerID string) error
	Complete(ctx context.Context, id, callerID string) error
	Cancel(ctx context.Context, id, callerID string, isAdmin bool) error
}

type orderService struct {
	repo   *repository.Repository
	credit CreditService
	trust  TrustService
	notify NotificationService
	logger *zap.Logger
}

// NewOrderService 创建 OrderService 实例
func NewOrderService(
	repo *repository.Repository,
	credit CreditService,
	trust TrustService,
	notify NotificationService,
	logger *zap.Logger,
) OrderService {
	return &orderService{repo: repo, credit: credit, trust: trust, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *orderService) Create(ctx context.Context, buyerID string, req *dto.CreateOrderRequest) (*model.Order, error) {
	order, err := s.createOnce(ctx, buyerID, req)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		// 物品状态在读取与锁定之间被改动时自动重读重试一次
		s.logger.Info("创建订单遇到并发冲突，重试一次",
			zap.String("buyer_id", buyerID))
		order, err = s.createOnce(ctx, buyerID, req)
	}
	return order, err
}

func (s *orderService) createOnce(ctx context.Context, buyerID string, req *dto.CreateOrderRequest) (*model.Order, error) {
	listing, err := s.repo.Listing.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("查询物品失败", zap.String("listing_id", req.ListingID), zap.Error(err))
		return nil, err
	}

	if listing.OwnerID == buyerID {
		return nil, ErrOrderSelfPurchase
	}
	if listing.ListingType != model.ListingTypeSale || listing.Price == nil {
		return nil, ErrOrderListingNotForSale
	}
	if listing.Status != model.ListingStatusAvailable || !listing.IsActive {
		return nil, ErrOrderListingUnavailable
	}

	order := &model.Order{
		BuyerID:         buyerID,
		SellerID:        listing.OwnerID,
		ListingID:       listing.ListingID,
		PriceAtPurchase: *listing.Price, // 成交价快照，后续改价不影响已下单订单
		Status:          model.OrderStatusPendingPayment,
	}
	transitions := []repository.ListingTransition{
		{ListingID: listing.ListingID, From: model.ListingStatusAvailable, To: model.ListingStatusPendingPayment},
	}

	if err := s.repo.Order.CreatePending(ctx, order, transitions); err != nil {
		s.logger.Warn("创建订单失败", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}

	relatedType := "order"
	s.notify.Notify(ctx, order.SellerID, model.NotificationTypeOrder,
		"物品已被下单",
		fmt.Sprintf("「%s」已被下单，等待买家付款", listing.Title),
		&relatedType, &order.OrderID)

	return order, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *orderService) GetByID(ctx context.Context, id, callerID string) (*model.Order, error) {
	order, err := s.repo.Order.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("查询订单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !order.IsParty(callerID) {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// ────────────────────── List ──────────────────────

func (s *orderService) List(ctx context.Context, userID string, req *dto.ListOrdersRequest) ([]model.Order, int64, error) {
	orders, total, err := s.repo.Order.ListByUser(ctx, userID, req.Role, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询订单列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return orders, total, nil
}

// ────────────────────── Pay ──────────────────────

func (s *orderService) Pay(ctx context.Context, id, callerID string, req *dto.PayOrderRequest) error {
	order, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if order.BuyerID != callerID {
		return ErrOrderForbidden
	}
	if order.Status != model.OrderStatusPendingPayment {
		return ErrOrderInvalidState
	}

	extra := map[string]interface{}{"payment_reference": req.PaymentReference}
	transitions := []repository.ListingTransition{
		{ListingID: order.ListingID, From: model.ListingStatusPendingPayment, To: model.ListingStatusPaid},
	}
	if err := s.repo.Order.Transition(ctx, id, model.OrderStatusPendingPayment, model.OrderStatusPaid, extra, transitions); err != nil {
		s.logger.Warn("订单支付确认失败", zap.String("id", id), zap.Error(err))
		return err
	}

	relatedType := "order"
	s.notify.Notify(ctx, order.SellerID, model.NotificationTypeOrder,
		"买家已付款",
		"订单已付款，请安排发货或交接",
		&relatedType, &id)

	return nil
}

// ────────────────────── Ship ──────────────────────

// Ship 卖家确认发货，订单进入待取货阶段
func (s *orderService) Ship(ctx context.Context, id, callerID string) error {
	order, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if order.SellerID != callerID {
		return ErrOrderForbidden
	}
	if order.Status != model.OrderStatusPaid {
		return ErrOrderInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: order.ListingID, From: model.ListingStatusPaid, To: model.ListingStatusPendingPickup},
	}
	if err := s.repo.Order.Transition(ctx, id, model.OrderStatusPaid, model.OrderStatusPendingPickup, nil, transitions); err != nil {
		s.logger.Warn("订单发货失败", zap.String("id", id), zap.Error(err))
		return err
	}

	relatedType := "order"
	s.notify.Notify(ctx, order.BuyerID, model.NotificationTypeOrder,
		"卖家已发货",
		"物品已在途，收到后请确认完成订单",
		&relatedType, &id)

	return nil
}

// ────────────────────── Complete ──────────────────────

// Complete 买家确认收货，订单完成，物品进入 sold 终态
func (s *orderService) Complete(ctx context.Context, id, callerID string) error {
	order, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if order.BuyerID != callerID {
		return ErrOrderForbidden
	}
	if order.Status != model.OrderStatusPendingPickup {
		return ErrOrderInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: order.ListingID, From: model.ListingStatusPendingPickup, To: model.ListingStatusSold, Deactivate: true},
	}
	if err := s.repo.Order.Transition(ctx, id, model.OrderStatusPendingPickup, model.OrderStatusCompleted, nil, transitions); err != nil {
		s.logger.Warn("完成订单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 交易后置动作：计数双方、奖励卖家、重算信誉分
	for _, uid := range []string{order.BuyerID, order.SellerID} {
		if err := s.repo.User.IncrementCounter(ctx, uid, "completed_sale_count", 1); err != nil {
			s.logger.Warn("更新出售计数失败", zap.String("user_id", uid), zap.Error(err))
		}
		if _, err := s.trust.Recalculate(ctx, uid); err != nil {
			s.logger.Warn("重算信誉分失败", zap.String("user_id", uid), zap.Error(err))
		}
	}
	if _, err := s.credit.AwardForTransaction(ctx, order.SellerID, model.CreditReasonSaleCompleted, "order", id); err != nil {
		s.logger.Warn("发放出售积分失败", zap.String("user_id", order.SellerID), zap.Error(err))
	}

	relatedType := "order"
	s.notify.Notify(ctx, order.SellerID, model.NotificationTypeOrder,
		"订单已完成",
		"买家已确认收货，交易完成",
		&relatedType, &id)

	return nil
}

// ────────────────────── Cancel ──────────────────────

// Cancel 买卖任一方或管理员在发货前取消订单，物品回到可售状态
func (s *orderService) Cancel(ctx context.Context, id, callerID string, isAdmin bool) error {
	order, err := s.repo.Order.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		s.logger.Error("查询订单失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if !isAdmin && !order.IsParty(callerID) {
		return ErrOrderForbidden
	}

	// 发货后不可单方取消，需走纠纷流程
	var listingFrom string
	switch order.Status {
	case model.OrderStatusPendingPayment:
		listingFrom = model.ListingStatusPendingPayment
	case model.OrderStatusPaid:
		listingFrom = model.ListingStatusPaid
	default:
		return ErrOrderInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: order.ListingID, From: listingFrom, To: model.ListingStatusAvailable},
	}
	if err := s.repo.Order.Transition(ctx, id, order.Status, model.OrderStatusCancelled, nil, transitions); err != nil {
		s.logger.Warn("取消订单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	recipients := []string{order.BuyerID, order.SellerID}
	if callerID == order.BuyerID {
		recipients = []string{order.SellerID}
	} else if callerID == order.SellerID {
		recipients = []string{order.BuyerID}
	}
	relatedType := "order"
	for _, uid := range recipients {
		s.notify.Notify(ctx, uid, model.NotificationTypeOrder,
			"订单已取消",
			"订单已被取消，物品已重新上架",
			&relatedType, &id)
	}

	return nil
}
