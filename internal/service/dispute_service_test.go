package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
)

func newDisputeTestEnv(t *testing.T) (DisputeService, *mockStore, *model.User, *model.User, *model.User) {
	t.Helper()
	repo, store := newMockRepository()
	logger := newTestLogger()
	notify := NewNotificationService(repo, logger)
	trust := NewTrustService(repo, logger)
	svc := NewDisputeService(repo, trust, notify, logger)
	alice := seedUser(store, "alice", model.RoleParent)
	bob := seedUser(store, "bob", model.RoleParent)
	admin := seedUser(store, "admin", model.RoleAdmin)
	return svc, store, alice, bob, admin
}

func newDisputeReason(i int) string {
	return fmt.Sprintf("收到的校服与描述严重不符，第 %d 次协商无果", i)
}

func TestDisputeCreate_CountsRespondent(t *testing.T) {
	svc, store, alice, bob, _ := newDisputeTestEnv(t)
	ctx := context.Background()

	dispute, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID,
		Reason:       newDisputeReason(1),
	})
	if err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}
	if dispute.Status != model.DisputeStatusOpen {
		t.Errorf("期望初始状态 open，实际=%s", dispute.Status)
	}
	if got := store.users.users[bob.UserID].DisputeTotalCount; got != 1 {
		t.Errorf("期望被诉计数 1，实际=%d", got)
	}
	if got := store.notifications.countByUser(bob.UserID); got != 1 {
		t.Errorf("期望被诉人收到 1 条通知，实际=%d", got)
	}
}

func TestDisputeCreate_Guards(t *testing.T) {
	svc, _, alice, _, _ := newDisputeTestEnv(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: alice.UserID,
		Reason:       newDisputeReason(1),
	}); !errors.Is(err, ErrDisputeSelf) {
		t.Errorf("期望 ErrDisputeSelf，实际=%v", err)
	}

	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: uuid.NewString(),
		Reason:       newDisputeReason(1),
	}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

func TestDisputeFraudAlert_FiresAboveThreshold(t *testing.T) {
	svc, store, _, bob, _ := newDisputeTestEnv(t)
	ctx := context.Background()

	// 前 5 次被诉不触发预警
	for i := 1; i <= fraudAlertThreshold; i++ {
		complainant := seedUser(store, fmt.Sprintf("buyer-%d", i), model.RoleParent)
		if _, err := svc.Create(ctx, complainant.UserID, &dto.CreateDisputeRequest{
			RespondentID: bob.UserID,
			Reason:       newDisputeReason(i),
		}); err != nil {
			t.Fatalf("第 %d 次创建纠纷失败: %v", i, err)
		}
	}
	if len(store.disputes.alerts) != 0 {
		t.Fatalf("阈值内不应触发预警，实际=%d 条", len(store.disputes.alerts))
	}

	// 第 6 次超过阈值，写入预警
	complainant := seedUser(store, "buyer-6", model.RoleParent)
	if _, err := svc.Create(ctx, complainant.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID,
		Reason:       newDisputeReason(6),
	}); err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}
	if len(store.disputes.alerts) != 1 {
		t.Fatalf("期望触发 1 条预警，实际=%d 条", len(store.disputes.alerts))
	}
	alert := store.disputes.alerts[0]
	if alert.UserID != bob.UserID || alert.DisputeCount != 6 {
		t.Errorf("期望预警指向被诉人且计数 6，实际 user=%s count=%d", alert.UserID, alert.DisputeCount)
	}
}

func TestDisputeFraudAlert_CountsComplainantSide(t *testing.T) {
	svc, store, alice, _, _ := newDisputeTestEnv(t)
	ctx := context.Background()

	// 同一用户连续对不同人发起纠纷，发起方同样触发预警
	for i := 1; i <= fraudAlertThreshold+1; i++ {
		respondent := seedUser(store, fmt.Sprintf("seller-%d", i), model.RoleParent)
		if _, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
			RespondentID: respondent.UserID,
			Reason:       newDisputeReason(i),
		}); err != nil {
			t.Fatalf("第 %d 次创建纠纷失败: %v", i, err)
		}
	}
	if len(store.disputes.alerts) != 1 {
		t.Fatalf("期望触发 1 条预警，实际=%d 条", len(store.disputes.alerts))
	}
	alert := store.disputes.alerts[0]
	if alert.UserID != alice.UserID || alert.DisputeCount != 6 {
		t.Errorf("期望预警指向发起人且计数 6，实际 user=%s count=%d", alert.UserID, alert.DisputeCount)
	}
}

func TestDisputeGetByID_PartyOrAdmin(t *testing.T) {
	svc, store, alice, bob, admin := newDisputeTestEnv(t)
	ctx := context.Background()
	outsider := seedUser(store, "carol", model.RoleParent)

	dispute, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID,
		Reason:       newDisputeReason(1),
	})
	if err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}

	if _, err := svc.GetByID(ctx, dispute.DisputeID, outsider.UserID, false); !errors.Is(err, ErrDisputeForbidden) {
		t.Errorf("期望 ErrDisputeForbidden，实际=%v", err)
	}
	if _, err := svc.GetByID(ctx, dispute.DisputeID, bob.UserID, false); err != nil {
		t.Errorf("当事人查询期望成功，实际=%v", err)
	}
	if _, err := svc.GetByID(ctx, dispute.DisputeID, admin.UserID, true); err != nil {
		t.Errorf("管理员查询期望成功，实际=%v", err)
	}
}

func TestDisputeResolve_LoserPenalty(t *testing.T) {
	svc, store, alice, bob, admin := newDisputeTestEnv(t)
	ctx := context.Background()

	dispute, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID,
		Reason:       newDisputeReason(1),
	})
	if err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}

	resolved, err := svc.Resolve(ctx, dispute.DisputeID, admin.UserID, &dto.ResolveDisputeRequest{
		Outcome:    model.DisputeOutcomeComplainant,
		Resolution: "被诉人退还差价",
	})
	if err != nil {
		t.Fatalf("裁决失败: %v", err)
	}
	if resolved.Status != model.DisputeStatusResolved || resolved.Outcome == nil || *resolved.Outcome != model.DisputeOutcomeComplainant {
		t.Errorf("期望已裁决且支持申诉人，实际 status=%s", resolved.Status)
	}

	// 支持申诉人 → 被诉人败诉
	if got := store.users.users[bob.UserID].DisputeLostCount; got != 1 {
		t.Errorf("期望被诉人败诉计数 1，实际=%d", got)
	}
	if got := store.users.users[alice.UserID].DisputeLostCount; got != 0 {
		t.Errorf("期望申诉人败诉计数 0，实际=%d", got)
	}
	// 败诉影响信誉分：0.6*50 + 0.2*0 + 0.2*0 = 30
	if got := store.users.users[bob.UserID].TrustScore; got != 30 {
		t.Errorf("期望被诉人信誉分 30，实际=%v", got)
	}

	// 已结案不可重复裁决
	if _, err := svc.Resolve(ctx, dispute.DisputeID, admin.UserID, &dto.ResolveDisputeRequest{
		Outcome:    model.DisputeOutcomeRespondent,
		Resolution: "改判",
	}); !errors.Is(err, ErrDisputeAlreadyFinal) {
		t.Errorf("期望 ErrDisputeAlreadyFinal，实际=%v", err)
	}
}

func TestDisputeResolve_BothAtFault(t *testing.T) {
	svc, store, alice, bob, admin := newDisputeTestEnv(t)
	ctx := context.Background()

	dispute, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID,
		Reason:       newDisputeReason(1),
	})
	if err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}

	if _, err := svc.Resolve(ctx, dispute.DisputeID, admin.UserID, &dto.ResolveDisputeRequest{
		Outcome:    model.DisputeOutcomeBoth,
		Resolution: "双方各担一半责任",
	}); err != nil {
		t.Fatalf("裁决失败: %v", err)
	}

	if got := store.users.users[alice.UserID].DisputeLostCount; got != 1 {
		t.Errorf("期望申诉人败诉计数 1，实际=%d", got)
	}
	if got := store.users.users[bob.UserID].DisputeLostCount; got != 1 {
		t.Errorf("期望被诉人败诉计数 1，实际=%d", got)
	}
	// 双方都收到结案通知（各自此前已有 1 条被诉通知的只有 bob）
	if got := store.notifications.countByUser(alice.UserID); got != 1 {
		t.Errorf("期望申诉人收到 1 条通知，实际=%d", got)
	}
	if got := store.notifications.countByUser(bob.UserID); got != 2 {
		t.Errorf("期望被诉人收到 2 条通知，实际=%d", got)
	}
}

func TestDisputeListByUser(t *testing.T) {
	svc, store, alice, bob, _ := newDisputeTestEnv(t)
	ctx := context.Background()
	carol := seedUser(store, "carol", model.RoleParent)

	if _, err := svc.Create(ctx, alice.UserID, &dto.CreateDisputeRequest{
		RespondentID: bob.UserID, Reason: newDisputeReason(1),
	}); err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}
	if _, err := svc.Create(ctx, carol.UserID, &dto.CreateDisputeRequest{
		RespondentID: alice.UserID, Reason: newDisputeReason(2),
	}); err != nil {
		t.Fatalf("创建纠纷失败: %v", err)
	}

	// alice 的视角能同时看到发起的和被诉的
	_, total, err := svc.ListByUser(ctx, alice.UserID, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("查询纠纷列表失败: %v", err)
	}
	if total != 2 {
		t.Errorf("期望 2 条纠纷，实际=%d", total)
	}

	_, total, err = svc.List(ctx, model.DisputeStatusOpen, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("查询全部纠纷失败: %v", err)
	}
	if total != 2 {
		t.Errorf("期望 2 条待处理纠纷，实际=%d", total)
	}
}
