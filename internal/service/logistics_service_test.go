package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
)

func newLogisticsTestEnv(t *testing.T) (LogisticsService, *mockStore, *model.User, *model.User) {
	t.Helper()
	repo, store := newMockRepository()
	logger := newTestLogger()
	notify := NewNotificationService(repo, logger)
	svc := NewLogisticsService(repo, notify, logger)
	alice := seedUser(store, "alice", model.RoleParent)
	bob := seedUser(store, "bob", model.RoleParent)
	return svc, store, alice, bob
}

// seedAcceptedSwap 直接落库一条已接受的换物申请
func seedAcceptedSwap(store *mockStore, requesterID, responderID, status string) *model.SwapRequest {
	swap := &model.SwapRequest{
		SwapRequestID: uuid.NewString(),
		RequesterID:   requesterID,
		ResponderID:   responderID,
		Status:        status,
	}
	swap.Version = 1
	store.swaps.swaps[swap.SwapRequestID] = swap
	return swap
}

// seedPaidOrder 直接落库一条指定状态的订单
func seedPaidOrder(store *mockStore, sellerID, buyerID, status string) *model.Order {
	order := &model.Order{
		OrderID:  uuid.NewString(),
		SellerID: sellerID,
		BuyerID:  buyerID,
		Status:   status,
	}
	order.Version = 1
	store.orders.orders[order.OrderID] = order
	return order
}

func TestLogisticsCreate_ForAcceptedSwap(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	logistics, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodMeetup,
	})
	if err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}
	if logistics.Status != model.LogisticsStatusPendingPickup {
		t.Errorf("期望初始状态 pending_pickup，实际=%s", logistics.Status)
	}
	if logistics.SenderID != alice.UserID || logistics.ReceiverID != bob.UserID {
		t.Errorf("期望发起方为寄件人，实际 sender=%s receiver=%s", logistics.SenderID, logistics.ReceiverID)
	}
	if got := store.notifications.countByUser(bob.UserID); got != 1 {
		t.Errorf("期望收件人收到 1 条通知，实际=%d", got)
	}

	// 一笔交易至多一条物流单
	if _, err := svc.Create(ctx, bob.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodCourier,
	}); !errors.Is(err, ErrLogisticsExists) {
		t.Errorf("期望 ErrLogisticsExists，实际=%v", err)
	}
}

func TestLogisticsCreate_PudoRequiresLocker(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodPUDO,
	}); !errors.Is(err, ErrLogisticsPudoRequired) {
		t.Errorf("期望 ErrLogisticsPudoRequired，实际=%v", err)
	}

	logistics, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodPUDO,
		PudoLocker:      "望京 SOHO 2 号柜",
	})
	if err != nil {
		t.Fatalf("创建 PUDO 物流单失败: %v", err)
	}
	if logistics.PudoLocker == "" {
		t.Error("期望记录智能柜信息")
	}
}

func TestLogisticsCreate_TransactionGuards(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	outsider := seedUser(store, "carol", model.RoleParent)

	// 换物未接受不能发货
	pending := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusPending)
	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap", TransactionID: pending.SwapRequestID, ShippingMethod: model.ShippingMethodMeetup,
	}); !errors.Is(err, ErrLogisticsTxNotReady) {
		t.Errorf("期望 ErrLogisticsTxNotReady，实际=%v", err)
	}

	// 订单未支付不能发货
	unpaid := seedPaidOrder(store, alice.UserID, bob.UserID, model.OrderStatusPendingPayment)
	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "sale", TransactionID: unpaid.OrderID, ShippingMethod: model.ShippingMethodMeetup,
	}); !errors.Is(err, ErrLogisticsTxNotReady) {
		t.Errorf("期望 ErrLogisticsTxNotReady，实际=%v", err)
	}

	// 局外人不能为别人的交易建物流单
	paid := seedPaidOrder(store, alice.UserID, bob.UserID, model.OrderStatusPaid)
	if _, err := svc.Create(ctx, outsider.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "sale", TransactionID: paid.OrderID, ShippingMethod: model.ShippingMethodMeetup,
	}); !errors.Is(err, ErrLogisticsForbidden) {
		t.Errorf("期望 ErrLogisticsForbidden，实际=%v", err)
	}

	// 已支付订单可以发货，卖家为寄件人
	logistics, err := svc.Create(ctx, bob.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "sale", TransactionID: paid.OrderID, ShippingMethod: model.ShippingMethodMeetup,
	})
	if err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}
	if logistics.SenderID != alice.UserID || logistics.ReceiverID != bob.UserID {
		t.Errorf("期望卖家寄、买家收，实际 sender=%s receiver=%s", logistics.SenderID, logistics.ReceiverID)
	}
}

func TestLogisticsCreate_InvalidSchedule(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	if _, err := svc.Create(context.Background(), alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodMeetup,
		ScheduledAt:     "明天下午",
	}); !errors.Is(err, ErrLogisticsScheduleInvalid) {
		t.Errorf("期望 ErrLogisticsScheduleInvalid，实际=%v", err)
	}
}

func TestLogisticsUpdateStatus_StateMachine(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	logistics, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodCourier,
	})
	if err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}

	// pending_pickup 不能直达 delivered
	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, alice.UserID, false, &dto.UpdateLogisticsStatusRequest{
		Status: model.LogisticsStatusDelivered,
	}); !errors.Is(err, ErrLogisticsInvalidState) {
		t.Errorf("期望 ErrLogisticsInvalidState，实际=%v", err)
	}

	// 揽收时附带运单号
	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, alice.UserID, false, &dto.UpdateLogisticsStatusRequest{
		Status:         model.LogisticsStatusInTransit,
		TrackingNumber: "SF1234567890",
	}); err != nil {
		t.Fatalf("状态迁移失败: %v", err)
	}
	stored := store.logistics.records[logistics.LogisticsID]
	if stored.Status != model.LogisticsStatusInTransit || stored.TrackingNumber != "SF1234567890" {
		t.Errorf("期望 in_transit 且记录运单号，实际 status=%s tracking=%s", stored.Status, stored.TrackingNumber)
	}

	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, bob.UserID, false, &dto.UpdateLogisticsStatusRequest{
		Status: model.LogisticsStatusDelivered,
	}); err != nil {
		t.Fatalf("送达迁移失败: %v", err)
	}

	// 终态后不可再迁移
	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, bob.UserID, false, &dto.UpdateLogisticsStatusRequest{
		Status: model.LogisticsStatusCancelled,
	}); !errors.Is(err, ErrLogisticsInvalidState) {
		t.Errorf("期望终态不可迁移，实际=%v", err)
	}
}

func TestLogisticsUpdateStatus_PartiesAndAdmin(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	logistics, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodCourier,
	})
	if err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}

	// 旁观者无权推进
	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, "user-outsider", false, &dto.UpdateLogisticsStatusRequest{
		Status: model.LogisticsStatusInTransit,
	}); !errors.Is(err, ErrLogisticsForbidden) {
		t.Errorf("期望 ErrLogisticsForbidden，实际=%v", err)
	}

	// 管理员可代为推进
	if err := svc.UpdateStatus(ctx, logistics.LogisticsID, "user-admin", true, &dto.UpdateLogisticsStatusRequest{
		Status: model.LogisticsStatusInTransit,
	}); err != nil {
		t.Fatalf("管理员推进失败: %v", err)
	}
	if got := store.logistics.records[logistics.LogisticsID].Status; got != model.LogisticsStatusInTransit {
		t.Errorf("期望状态 in_transit，实际=%s", got)
	}
}

func TestLogisticsGetByID_PartyOnly(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()
	outsider := seedUser(store, "carol", model.RoleParent)
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)

	logistics, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodMeetup,
	})
	if err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}

	if _, err := svc.GetByID(ctx, logistics.LogisticsID, outsider.UserID); !errors.Is(err, ErrLogisticsForbidden) {
		t.Errorf("期望 ErrLogisticsForbidden，实际=%v", err)
	}
	if _, err := svc.GetByID(ctx, logistics.LogisticsID, bob.UserID); err != nil {
		t.Errorf("当事人查询期望成功，实际=%v", err)
	}
}

func TestLogisticsExportCalendar(t *testing.T) {
	svc, store, alice, bob := newLogisticsTestEnv(t)
	ctx := context.Background()

	// 没有已预约的交接时直接报错
	if _, _, err := svc.ExportCalendar(ctx, alice.UserID); !errors.Is(err, ErrLogisticsNoSchedules) {
		t.Errorf("期望 ErrLogisticsNoSchedules，实际=%v", err)
	}

	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusAccepted)
	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateLogisticsRequest{
		TransactionType: "swap",
		TransactionID:   swap.SwapRequestID,
		ShippingMethod:  model.ShippingMethodPUDO,
		PudoLocker:      "中关村 3 号柜",
		ScheduledAt:     scheduledAt,
	}); err != nil {
		t.Fatalf("创建物流单失败: %v", err)
	}

	buf, filename, err := svc.ExportCalendar(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("导出日历失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("期望 .ics 文件名，实际=%s", filename)
	}
	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") || !strings.Contains(content, "BEGIN:VEVENT") {
		t.Error("期望输出合法 iCalendar 内容")
	}
	if !strings.Contains(content, "LOCATION") {
		t.Error("期望事件带交接地点")
	}
}
