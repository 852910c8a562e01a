package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"swapthefit/backend/internal/model"
)

func TestComputeTrustScore(t *testing.T) {
	tests := []struct {
		name string
		user model.User
		want float64
	}{
		{
			// 无任何历史：评价取中性 50，交易量 0，无纠纷满分
			name: "新用户",
			user: model.User{},
			want: 0.6*50 + 0.2*0 + 0.2*100,
		},
		{
			// 全好评 + 交易量饱和 + 无纠纷
			name: "满分用户",
			user: model.User{
				PositiveReviewCount: 10,
				CompletedSwapCount:  10,
				CompletedSaleCount:  10,
			},
			want: 100,
		},
		{
			name: "好评占八成",
			user: model.User{
				PositiveReviewCount: 8,
				NegativeReviewCount: 2,
			},
			want: 0.6*80 + 0.2*0 + 0.2*100,
		},
		{
			// 交易量超过饱和点后不再加分
			name: "交易量封顶",
			user: model.User{
				CompletedSwapCount: 50,
			},
			want: 0.6*50 + 0.2*100 + 0.2*100,
		},
		{
			name: "纠纷败诉过半",
			user: model.User{
				DisputeTotalCount: 4,
				DisputeLostCount:  3,
			},
			want: 0.6*50 + 0.2*0 + 0.2*25,
		},
		{
			name: "全部败诉",
			user: model.User{
				NegativeReviewCount: 5,
				DisputeTotalCount:   2,
				DisputeLostCount:    2,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTrustScore(&tt.user)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("期望信誉分 %.2f，实际=%.2f", tt.want, got)
			}
		})
	}
}

func TestTrustRecalculate_Persists(t *testing.T) {
	repo, store := newMockRepository()
	svc := NewTrustService(repo, newTestLogger())

	user := seedUser(store, "alice", model.RoleParent)
	stored := store.users.users[user.UserID]
	stored.PositiveReviewCount = 9
	stored.NegativeReviewCount = 1
	stored.CompletedSwapCount = 20

	score, err := svc.Recalculate(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("重算信誉分失败: %v", err)
	}
	want := 0.6*90 + 0.2*100 + 0.2*100
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("期望信誉分 %.2f，实际=%.2f", want, score)
	}
	if math.Abs(stored.TrustScore-want) > 1e-9 {
		t.Errorf("期望信誉分已持久化 %.2f，实际=%.2f", want, stored.TrustScore)
	}
}

func TestTrustRecalculate_UserNotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewTrustService(repo, newTestLogger())

	if _, err := svc.Recalculate(context.Background(), "missing"); !errors.Is(err, ErrTrustUserNotFound) {
		t.Errorf("期望 ErrTrustUserNotFound，实际=%v", err)
	}
}

func TestTrustGetProfileAndImpact(t *testing.T) {
	repo, store := newMockRepository()
	svc := NewTrustService(repo, newTestLogger())

	school := seedUser(store, "school", model.RoleSchool)
	stored := store.users.users[school.UserID]
	stored.PositiveReviewCount = 3
	stored.TotalReceivedCount = 12
	stored.TotalDonationsValue = 480
	stored.TotalFamiliesSupported = 7

	profile, err := svc.GetProfile(context.Background(), school.UserID)
	if err != nil {
		t.Fatalf("查询信誉画像失败: %v", err)
	}
	if profile.PositiveReviewCount != 3 {
		t.Errorf("期望好评数 3，实际=%d", profile.PositiveReviewCount)
	}

	impact, err := svc.GetImpact(context.Background(), school.UserID)
	if err != nil {
		t.Fatalf("查询影响力失败: %v", err)
	}
	if impact.TotalReceivedCount != 12 || impact.TotalDonationsValue != 480 || impact.TotalFamiliesSupported != 7 {
		t.Errorf("影响力数据不符: %+v", impact)
	}
}
