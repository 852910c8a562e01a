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

// ── 换物模块业务错误 ──

var (
	ErrSwapNotFound           = errors.New("换物请求不存在")
	ErrSwapForbidden          = errors.New("无权操作该换物请求")
	ErrSwapInvalidState       = errors.New("换物请求当前状态不允许该操作")
	ErrSwapSelf               = errors.New("不能与自己的物品交换")
	ErrSwapDuplicate          = errors.New("这两件物品之间已有进行中的换物请求")
	ErrSwapListingUnavailable = errors.New("物品当前不可交换")
	ErrSwapListingType        = errors.New("仅换物类型的物品可以发起交换")
	ErrSwapOwnership          = errors.New("发起方必须使用自己的物品")
)

// SwapService 换物业务接口
//
// 状态机：pending → accepted → completed
//
//	pending → rejected（响应方拒绝）
//	pending/accepted → cancelled（发起方撤回）
//
// 创建时锁定双方物品为 pending_swap，任何终态都在同一事务里
// 解锁或终结物品，保证物品状态与请求状态始终一致。
type SwapService interface {
	Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*model.SwapRequest, error)
	GetByID(ctx context.Context, id, callerID string) (*model.SwapRequest, error)
	List(ctx context.Context, userID string, req *dto.ListSwapsRequest) ([]model.SwapRequest, int64, error)
	Accept(ctx context.Context, id, callerID string) error
	Reject(ctx context.Context, id, callerID string) error
	Cancel(ctx context.Context, id, callerID string, isAdmin bool) error
	Complete(ctx context.Context, id, callerID string) error
}

type swapService struct {
	repo   *repository.Repository
	credit CreditService
	trust  TrustService
	notify NotificationService
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(
	repo *repository.Repository,
	credit CreditService,
	trust TrustService,
	notify NotificationService,
	logger *zap.Logger,
) SwapService {
	return &swapService{repo: repo, credit: credit, trust: trust, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *swapService) Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*model.SwapRequest, error) {
	swap, err := s.createOnce(ctx, requesterID, req)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		// 物品状态在读取与锁定之间被改动时自动重读重试一次
		s.logger.Info("创建换物请求遇到并发冲突，重试一次",
			zap.String("requester_id", requesterID))
		swap, err = s.createOnce(ctx, requesterID, req)
	}
	return swap, err
}

func (s *swapService) createOnce(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*model.SwapRequest, error) {
	reqListing, err := s.repo.Listing.GetByID(ctx, req.RequesterListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("查询发起方物品失败", zap.Error(err))
		return nil, err
	}
	respListing, err := s.repo.Listing.GetByID(ctx, req.ResponderListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("查询响应方物品失败", zap.Error(err))
		return nil, err
	}

	if reqListing.OwnerID != requesterID {
		return nil, ErrSwapOwnership
	}
	if respListing.OwnerID == requesterID {
		return nil, ErrSwapSelf
	}
	if reqListing.ListingType != model.ListingTypeSwap || respListing.ListingType != model.ListingTypeSwap {
		return nil, ErrSwapListingType
	}
	// 同一对物品不允许重复发起；先查重，否则已锁定的物品会先触发不可用错误
	count, err := s.repo.Swap.CountPendingPair(ctx, req.RequesterListingID, req.ResponderListingID)
	if err != nil {
		s.logger.Error("查询重复换物请求失败", zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return nil, ErrSwapDuplicate
	}

	if reqListing.Status != model.ListingStatusAvailable || !reqListing.IsActive ||
		respListing.Status != model.ListingStatusAvailable || !respListing.IsActive {
		return nil, ErrSwapListingUnavailable
	}

	swap := &model.SwapRequest{
		RequesterID:        requesterID,
		RequesterListingID: req.RequesterListingID,
		ResponderID:        respListing.OwnerID,
		ResponderListingID: req.ResponderListingID,
		Status:             model.SwapStatusPending,
		Message:            req.Message,
	}
	transitions := []repository.ListingTransition{
		{ListingID: req.RequesterListingID, From: model.ListingStatusAvailable, To: model.ListingStatusPendingSwap},
		{ListingID: req.ResponderListingID, From: model.ListingStatusAvailable, To: model.ListingStatusPendingSwap},
	}

	if err := s.repo.Swap.CreatePending(ctx, swap, transitions); err != nil {
		s.logger.Warn("创建换物请求失败",
			zap.String("requester_id", requesterID),
			zap.Error(err))
		return nil, err
	}

	relatedType := "swap_request"
	s.notify.Notify(ctx, swap.ResponderID, model.NotificationTypeSwap,
		"收到换物请求",
		fmt.Sprintf("有人想用「%s」交换你的「%s」", reqListing.Title, respListing.Title),
		&relatedType, &swap.SwapRequestID)

	return swap, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *swapService) GetByID(ctx context.Context, id, callerID string) (*model.SwapRequest, error) {
	swap, err := s.repo.Swap.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		s.logger.Error("查询换物请求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !swap.IsParty(callerID) {
		return nil, ErrSwapForbidden
	}
	return swap, nil
}

// ────────────────────── List ──────────────────────

func (s *swapService) List(ctx context.Context, userID string, req *dto.ListSwapsRequest) ([]model.SwapRequest, int64, error) {
	swaps, total, err := s.repo.Swap.ListByUser(ctx, userID, req.Direction, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询换物列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return swaps, total, nil
}

// ────────────────────── Accept ──────────────────────

func (s *swapService) Accept(ctx context.Context, id, callerID string) error {
	swap, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if swap.ResponderID != callerID {
		return ErrSwapForbidden
	}
	if swap.Status != model.SwapStatusPending {
		return ErrSwapInvalidState
	}

	// 物品保持 pending_swap 锁定，仅请求行迁移
	if err := s.repo.Swap.Transition(ctx, id, model.SwapStatusPending, model.SwapStatusAccepted, nil, nil); err != nil {
		s.logger.Warn("接受换物请求失败", zap.String("id", id), zap.Error(err))
		return err
	}

	relatedType := "swap_request"
	s.notify.Notify(ctx, swap.RequesterID, model.NotificationTypeSwap,
		"换物请求已接受",
		"对方接受了你的换物请求，请约定交接方式",
		&relatedType, &id)

	return nil
}

// ────────────────────── Reject ──────────────────────

func (s *swapService) Reject(ctx context.Context, id, callerID string) error {
	swap, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if swap.ResponderID != callerID {
		return ErrSwapForbidden
	}
	if swap.Status != model.SwapStatusPending {
		return ErrSwapInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: swap.RequesterListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusAvailable},
		{ListingID: swap.ResponderListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusAvailable},
	}
	if err := s.repo.Swap.Transition(ctx, id, model.SwapStatusPending, model.SwapStatusRejected, nil, transitions); err != nil {
		s.logger.Warn("拒绝换物请求失败", zap.String("id", id), zap.Error(err))
		return err
	}

	relatedType := "swap_request"
	s.notify.Notify(ctx, swap.RequesterID, model.NotificationTypeSwap,
		"换物请求被拒绝",
		"对方拒绝了你的换物请求，物品已重新上架",
		&relatedType, &id)

	return nil
}

// ────────────────────── Cancel ──────────────────────

func (s *swapService) Cancel(ctx context.Context, id, callerID string, isAdmin bool) error {
	swap, err := s.repo.Swap.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSwapNotFound
		}
		s.logger.Error("查询换物请求失败", zap.String("id", id), zap.Error(err))
		return err
	}
	// 任一当事方或管理员都可以在终态前退出交易
	if !isAdmin && !swap.IsParty(callerID) {
		return ErrSwapForbidden
	}
	if swap.Status != model.SwapStatusPending && swap.Status != model.SwapStatusAccepted {
		return ErrSwapInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: swap.RequesterListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusAvailable},
		{ListingID: swap.ResponderListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusAvailable},
	}
	if err := s.repo.Swap.Transition(ctx, id, swap.Status, model.SwapStatusCancelled, nil, transitions); err != nil {
		s.logger.Warn("撤回换物请求失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 管理员撤销时双方都要知会
	recipients := []string{swap.RequesterID, swap.ResponderID}
	if callerID == swap.RequesterID {
		recipients = []string{swap.ResponderID}
	} else if callerID == swap.ResponderID {
		recipients = []string{swap.RequesterID}
	}
	relatedType := "swap_request"
	for _, uid := range recipients {
		s.notify.Notify(ctx, uid, model.NotificationTypeSwap,
			"换物请求已撤回",
			"换物请求已被撤回，物品已重新上架",
			&relatedType, &id)
	}

	return nil
}

// ────────────────────── Complete ──────────────────────

func (s *swapService) Complete(ctx context.Context, id, callerID string) error {
	swap, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if swap.Status != model.SwapStatusAccepted {
		return ErrSwapInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: swap.RequesterListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusSwapped, Deactivate: true},
		{ListingID: swap.ResponderListingID, From: model.ListingStatusPendingSwap, To: model.ListingStatusSwapped, Deactivate: true},
	}
	if err := s.repo.Swap.Transition(ctx, id, model.SwapStatusAccepted, model.SwapStatusCompleted, nil, transitions); err != nil {
		s.logger.Warn("完成换物失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 交易后置动作：计数、积分、信誉分。失败只记日志，换物本身已完成。
	for _, uid := range []string{swap.RequesterID, swap.ResponderID} {
		if err := s.repo.User.IncrementCounter(ctx, uid, "completed_swap_count", 1); err != nil {
			s.logger.Warn("更新换物计数失败", zap.String("user_id", uid), zap.Error(err))
		}
		if _, err := s.credit.AwardForTransaction(ctx, uid, model.CreditReasonSwapCompleted, "swap_request", id); err != nil {
			s.logger.Warn("发放换物积分失败", zap.String("user_id", uid), zap.Error(err))
		}
		if _, err := s.trust.Recalculate(ctx, uid); err != nil {
			s.logger.Warn("重算信誉分失败", zap.String("user_id", uid), zap.Error(err))
		}
	}

	relatedType := "swap_request"
	other := swap.ResponderID
	if callerID == swap.ResponderID {
		other = swap.RequesterID
	}
	s.notify.Notify(ctx, other, model.NotificationTypeSwap,
		"换物已完成",
		"双方物品已交换完成，记得给对方一个评价",
		&relatedType, &id)

	return nil
}
