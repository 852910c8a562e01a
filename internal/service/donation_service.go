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

// ── 捐赠模块业务错误 ──

var (
	ErrDonationNotFound           = errors.New("捐赠记录不存在")
	ErrDonationForbidden          = errors.New("无权操作该捐赠记录")
	ErrDonationInvalidState       = errors.New("捐赠记录当前状态不允许该操作")
	ErrDonationSelf               = errors.New("不能向自己捐赠")
	ErrDonationRecipientInvalid   = errors.New("接收方必须是学校或公益机构")
	ErrDonationListingType        = errors.New("仅捐赠类型的物品可以发起捐赠")
	ErrDonationListingUnavailable = errors.New("物品当前不可捐赠")
)

// DonationService 捐赠业务接口
//
// 状态机：pending_pickup → received → distributed
//
//	pending_pickup → cancelled
//
// received 阶段机构可修正实际收到的数量与估值，
// distributed 终态时累计机构影响力并奖励捐赠者。
type DonationService interface {
	Create(ctx context.Context, donorID string, req *dto.CreateDonationRequest) (*model.Donation, error)
	GetByID(ctx context.Context, id, callerID string) (*model.Donation, error)
	List(ctx context.Context, userID string, req *dto.ListDonationsRequest) ([]model.Donation, int64, error)
	Receive(ctx context.Context, id, callerID string, req *dto.ReceiveDonationRequest) error
	Distribute(ctx context.Context, id, callerID string, req *dto.DistributeDonationRequest) error
	Cancel(ctx context.Context, id, callerID string, isAdmin bool) error
}

type donationService struct {
	repo   *repository.Repository
	credit CreditService
	trust  TrustService
	notify NotificationService
	logger *zap.Logger
}

// NewDonationService 创建 DonationService 实例
func NewDonationService(
	repo *repository.Repository,
	credit CreditService,
	trust TrustService,
	notify NotificationService,
	logger *zap.Logger,
) DonationService {
	return &donationService{repo: repo, credit: credit, trust: trust, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *donationService) Create(ctx context.Context, donorID string, req *dto.CreateDonationRequest) (*model.Donation, error) {
	donation, err := s.createOnce(ctx, donorID, req)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		// 物品状态在读取与锁定之间被改动时自动重读重试一次
		s.logger.Info("创建捐赠遇到并发冲突，重试一次",
			zap.String("donor_id", donorID))
		donation, err = s.createOnce(ctx, donorID, req)
	}
	return donation, err
}

func (s *donationService) createOnce(ctx context.Context, donorID string, req *dto.CreateDonationRequest) (*model.Donation, error) {
	listing, err := s.repo.Listing.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("查询物品失败", zap.String("listing_id", req.ListingID), zap.Error(err))
		return nil, err
	}
	if listing.OwnerID != donorID {
		return nil, ErrDonationForbidden
	}
	if listing.ListingType != model.ListingTypeDonation {
		return nil, ErrDonationListingType
	}
	if listing.Status != model.ListingStatusAvailable || !listing.IsActive {
		return nil, ErrDonationListingUnavailable
	}

	recipient, err := s.repo.User.GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationRecipientInvalid
		}
		s.logger.Error("查询接收方失败", zap.String("recipient_id", req.RecipientID), zap.Error(err))
		return nil, err
	}
	if recipient.UserID == donorID {
		return nil, ErrDonationSelf
	}
	if !recipient.CanReceiveDonations() {
		return nil, ErrDonationRecipientInvalid
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	donation := &model.Donation{
		DonorID:        donorID,
		RecipientID:    req.RecipientID,
		ListingID:      req.ListingID,
		Status:         model.DonationStatusPendingPickup,
		Quantity:       quantity,
		EstimatedValue: req.EstimatedValue,
	}
	transitions := []repository.ListingTransition{
		{ListingID: req.ListingID, From: model.ListingStatusAvailable, To: model.ListingStatusPendingPickup},
	}

	if err := s.repo.Donation.CreatePending(ctx, donation, transitions); err != nil {
		s.logger.Warn("创建捐赠失败", zap.String("donor_id", donorID), zap.Error(err))
		return nil, err
	}

	relatedType := "donation"
	s.notify.Notify(ctx, req.RecipientID, model.NotificationTypeDonation,
		"收到捐赠",
		fmt.Sprintf("有人向你们捐赠「%s」，请安排交接", listing.Title),
		&relatedType, &donation.DonationID)

	return donation, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *donationService) GetByID(ctx context.Context, id, callerID string) (*model.Donation, error) {
	donation, err := s.repo.Donation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		s.logger.Error("查询捐赠失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !donation.IsParty(callerID) {
		return nil, ErrDonationForbidden
	}
	return donation, nil
}

// ────────────────────── List ──────────────────────

func (s *donationService) List(ctx context.Context, userID string, req *dto.ListDonationsRequest) ([]model.Donation, int64, error) {
	donations, total, err := s.repo.Donation.ListByUser(ctx, userID, req.Role, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询捐赠列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return donations, total, nil
}

// ────────────────────── Receive ──────────────────────

// Receive 机构确认收到捐赠，可修正实际数量与估值
func (s *donationService) Receive(ctx context.Context, id, callerID string, req *dto.ReceiveDonationRequest) error {
	donation, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if donation.RecipientID != callerID {
		return ErrDonationForbidden
	}
	if donation.Status != model.DonationStatusPendingPickup {
		return ErrDonationInvalidState
	}

	receivedQuantity := donation.Quantity
	if req.ReceivedQuantity != nil {
		receivedQuantity = *req.ReceivedQuantity
	}
	receivedValue := donation.EstimatedValue
	if req.ReceivedValue != nil {
		receivedValue = *req.ReceivedValue
	}

	extra := map[string]interface{}{
		"received_quantity": receivedQuantity,
		"received_value":    receivedValue,
	}
	// 物品保持 pending_pickup 锁定，直到分发终结
	if err := s.repo.Donation.Transition(ctx, id, model.DonationStatusPendingPickup, model.DonationStatusReceived, extra, nil); err != nil {
		s.logger.Warn("确认收捐失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 影响力以机构确认的实收值累计，而非捐赠者申报值
	if err := s.repo.User.AddDonationImpact(ctx, donation.RecipientID, receivedQuantity, receivedValue, 0); err != nil {
		s.logger.Warn("累计机构影响力失败", zap.String("user_id", donation.RecipientID), zap.Error(err))
	}

	relatedType := "donation"
	s.notify.Notify(ctx, donation.DonorID, model.NotificationTypeDonation,
		"捐赠已签收",
		"机构已确认收到你的捐赠",
		&relatedType, &id)

	return nil
}

// ────────────────────── Distribute ──────────────────────

// Distribute 机构确认已将物资分发到家庭，捐赠终结
func (s *donationService) Distribute(ctx context.Context, id, callerID string, req *dto.DistributeDonationRequest) error {
	donation, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if donation.RecipientID != callerID {
		return ErrDonationForbidden
	}
	if donation.Status != model.DonationStatusReceived {
		return ErrDonationInvalidState
	}

	extra := map[string]interface{}{"families_supported": req.FamiliesSupported}
	transitions := []repository.ListingTransition{
		{ListingID: donation.ListingID, From: model.ListingStatusPendingPickup, To: model.ListingStatusDonated, Deactivate: true},
	}
	if err := s.repo.Donation.Transition(ctx, id, model.DonationStatusReceived, model.DonationStatusDistributed, extra, transitions); err != nil {
		s.logger.Warn("确认分发失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 后置动作：惠及家庭数累计、捐赠者计数与奖励
	// 实收数量与价值已在签收时累计过
	if err := s.repo.User.AddDonationImpact(ctx, donation.RecipientID, 0, 0, req.FamiliesSupported); err != nil {
		s.logger.Warn("累计机构影响力失败", zap.String("user_id", donation.RecipientID), zap.Error(err))
	}
	if err := s.repo.User.IncrementCounter(ctx, donation.DonorID, "completed_donation_count", 1); err != nil {
		s.logger.Warn("更新捐赠计数失败", zap.String("user_id", donation.DonorID), zap.Error(err))
	}
	if _, err := s.credit.AwardForTransaction(ctx, donation.DonorID, model.CreditReasonDonationCompleted, "donation", id); err != nil {
		s.logger.Warn("发放捐赠积分失败", zap.String("user_id", donation.DonorID), zap.Error(err))
	}
	if _, err := s.trust.Recalculate(ctx, donation.DonorID); err != nil {
		s.logger.Warn("重算信誉分失败", zap.String("user_id", donation.DonorID), zap.Error(err))
	}

	relatedType := "donation"
	s.notify.Notify(ctx, donation.DonorID, model.NotificationTypeDonation,
		"捐赠已分发",
		fmt.Sprintf("你的捐赠已分发，共帮助 %d 个家庭，感谢你的爱心", req.FamiliesSupported),
		&relatedType, &id)

	return nil
}

// ────────────────────── Cancel ──────────────────────

// Cancel 交接前双方或管理员均可取消，物品回到可捐状态
func (s *donationService) Cancel(ctx context.Context, id, callerID string, isAdmin bool) error {
	donation, err := s.repo.Donation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDonationNotFound
		}
		s.logger.Error("查询捐赠记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if !isAdmin && !donation.IsParty(callerID) {
		return ErrDonationForbidden
	}
	if donation.Status != model.DonationStatusPendingPickup {
		return ErrDonationInvalidState
	}

	transitions := []repository.ListingTransition{
		{ListingID: donation.ListingID, From: model.ListingStatusPendingPickup, To: model.ListingStatusAvailable},
	}
	if err := s.repo.Donation.Transition(ctx, id, model.DonationStatusPendingPickup, model.DonationStatusCancelled, nil, transitions); err != nil {
		s.logger.Warn("取消捐赠失败", zap.String("id", id), zap.Error(err))
		return err
	}

	recipients := []string{donation.DonorID, donation.RecipientID}
	if callerID == donation.DonorID {
		recipients = []string{donation.RecipientID}
	} else if callerID == donation.RecipientID {
		recipients = []string{donation.DonorID}
	}
	relatedType := "donation"
	for _, uid := range recipients {
		s.notify.Notify(ctx, uid, model.NotificationTypeDonation,
			"捐赠已取消",
			"本次捐赠已被取消",
			&relatedType, &id)
	}

	return nil
}
