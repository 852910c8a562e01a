package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
)

func newReviewTestEnv(t *testing.T) (ReviewService, *mockStore, *model.User, *model.User) {
	t.Helper()
	repo, store := newMockRepository()
	logger := newTestLogger()
	notify := NewNotificationService(repo, logger)
	trust := NewTrustService(repo, logger)
	svc := NewReviewService(repo, trust, notify, logger)
	alice := seedUser(store, "alice", model.RoleParent)
	bob := seedUser(store, "bob", model.RoleParent)
	return svc, store, alice, bob
}

// seedCompletedOrder 直接落库一条已完成的订单
func seedCompletedOrder(store *mockStore, sellerID, buyerID string) *model.Order {
	order := &model.Order{
		OrderID:  uuid.NewString(),
		SellerID: sellerID,
		BuyerID:  buyerID,
		Status:   model.OrderStatusCompleted,
	}
	order.Version = 1
	store.orders.orders[order.OrderID] = order
	return order
}

func TestReviewCreate_CountsAndTrust(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	ctx := context.Background()
	order := seedCompletedOrder(store, alice.UserID, bob.UserID)

	review, err := svc.Create(ctx, bob.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   order.OrderID,
		Rating:          5,
		Comment:         "校服很干净，交接也很准时",
	})
	if err != nil {
		t.Fatalf("提交评价失败: %v", err)
	}
	// 买家评价的对象是卖家
	if review.RevieweeID != alice.UserID {
		t.Errorf("期望被评价人为卖家，实际=%s", review.RevieweeID)
	}

	seller := store.users.users[alice.UserID]
	if seller.PositiveReviewCount != 1 || seller.NegativeReviewCount != 0 {
		t.Errorf("期望好评 1 差评 0，实际 好评=%d 差评=%d", seller.PositiveReviewCount, seller.NegativeReviewCount)
	}
	// 全好评且无纠纷：0.6*100 + 0.2*0 + 0.2*100 = 80
	if seller.TrustScore != 80 {
		t.Errorf("期望信誉分 80，实际=%v", seller.TrustScore)
	}
	if got := store.notifications.countByUser(alice.UserID); got != 1 {
		t.Errorf("期望被评价人收到 1 条通知，实际=%d", got)
	}
}

func TestReviewCreate_NegativeRating(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	order := seedCompletedOrder(store, alice.UserID, bob.UserID)

	if _, err := svc.Create(context.Background(), bob.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   order.OrderID,
		Rating:          2,
	}); err != nil {
		t.Fatalf("提交评价失败: %v", err)
	}

	seller := store.users.users[alice.UserID]
	if seller.PositiveReviewCount != 0 || seller.NegativeReviewCount != 1 {
		t.Errorf("期望 2 星计入差评，实际 好评=%d 差评=%d", seller.PositiveReviewCount, seller.NegativeReviewCount)
	}
}

func TestReviewCreate_Duplicate(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	ctx := context.Background()
	order := seedCompletedOrder(store, alice.UserID, bob.UserID)

	req := &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   order.OrderID,
		Rating:          4,
	}
	if _, err := svc.Create(ctx, bob.UserID, req); err != nil {
		t.Fatalf("首次评价失败: %v", err)
	}
	if _, err := svc.Create(ctx, bob.UserID, req); !errors.Is(err, ErrReviewDuplicate) {
		t.Errorf("期望 ErrReviewDuplicate，实际=%v", err)
	}

	// 同一笔交易双方各评一次互不冲突
	if _, err := svc.Create(ctx, alice.UserID, req); err != nil {
		t.Errorf("对方评价期望成功，实际=%v", err)
	}
}

func TestReviewCreate_Guards(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	ctx := context.Background()
	outsider := seedUser(store, "carol", model.RoleParent)

	// 交易不存在
	if _, err := svc.Create(ctx, bob.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   uuid.NewString(),
		Rating:          5,
	}); !errors.Is(err, ErrReviewTxNotFound) {
		t.Errorf("期望 ErrReviewTxNotFound，实际=%v", err)
	}

	// 未完成的交易不能评价
	unfinished := seedPaidOrder(store, alice.UserID, bob.UserID, model.OrderStatusPaid)
	if _, err := svc.Create(ctx, bob.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   unfinished.OrderID,
		Rating:          5,
	}); !errors.Is(err, ErrReviewTxNotCompleted) {
		t.Errorf("期望 ErrReviewTxNotCompleted，实际=%v", err)
	}

	// 局外人不能评价
	done := seedCompletedOrder(store, alice.UserID, bob.UserID)
	if _, err := svc.Create(ctx, outsider.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSale,
		TransactionID:   done.OrderID,
		Rating:          5,
	}); !errors.Is(err, ErrReviewNotParty) {
		t.Errorf("期望 ErrReviewNotParty，实际=%v", err)
	}
}

func TestReviewCreate_ForSwapAndDonation(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	ctx := context.Background()
	school := seedUser(store, "sunshine-school", model.RoleSchool)

	// 换物双方互评
	swap := seedAcceptedSwap(store, alice.UserID, bob.UserID, model.SwapStatusCompleted)
	review, err := svc.Create(ctx, alice.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeSwap,
		TransactionID:   swap.SwapRequestID,
		Rating:          5,
	})
	if err != nil {
		t.Fatalf("换物评价失败: %v", err)
	}
	if review.RevieweeID != bob.UserID {
		t.Errorf("期望被评价人为对方，实际=%s", review.RevieweeID)
	}

	// 捐赠需发放完成后才能评价
	donation := &model.Donation{
		DonationID:  uuid.NewString(),
		DonorID:     alice.UserID,
		RecipientID: school.UserID,
		Status:      model.DonationStatusReceived,
	}
	donation.Version = 1
	store.donations.donations[donation.DonationID] = donation

	if _, err := svc.Create(ctx, school.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeDonation,
		TransactionID:   donation.DonationID,
		Rating:          5,
	}); !errors.Is(err, ErrReviewTxNotCompleted) {
		t.Errorf("期望 ErrReviewTxNotCompleted，实际=%v", err)
	}

	store.donations.donations[donation.DonationID].Status = model.DonationStatusDistributed
	review, err = svc.Create(ctx, school.UserID, &dto.CreateReviewRequest{
		TransactionType: model.TransactionTypeDonation,
		TransactionID:   donation.DonationID,
		Rating:          5,
	})
	if err != nil {
		t.Fatalf("捐赠评价失败: %v", err)
	}
	if review.RevieweeID != alice.UserID {
		t.Errorf("期望受赠方评价捐赠人，实际=%s", review.RevieweeID)
	}
}

func TestReviewListByUser(t *testing.T) {
	svc, store, alice, bob := newReviewTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		order := seedCompletedOrder(store, alice.UserID, bob.UserID)
		if _, err := svc.Create(ctx, bob.UserID, &dto.CreateReviewRequest{
			TransactionType: model.TransactionTypeSale,
			TransactionID:   order.OrderID,
			Rating:          5,
		}); err != nil {
			t.Fatalf("提交评价失败: %v", err)
		}
	}

	_, total, err := svc.ListByUser(ctx, alice.UserID, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("查询评价列表失败: %v", err)
	}
	if total != 3 {
		t.Errorf("期望 3 条评价，实际=%d", total)
	}
}
