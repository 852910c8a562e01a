package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/model"
	"swapthefit/backend/internal/repository"
)

// ── 物流模块业务错误 ──

var (
	ErrLogisticsNotFound        = errors.New("物流单不存在")
	ErrLogisticsForbidden       = errors.New("无权操作该物流单")
	ErrLogisticsExists          = errors.New("该交易已有物流单")
	ErrLogisticsInvalidState    = errors.New("物流状态不允许该迁移")
	ErrLogisticsTxNotReady      = errors.New("交易当前状态不能创建物流单")
	ErrLogisticsPudoRequired    = errors.New("PUDO 方式必须指定智能柜")
	ErrLogisticsScheduleInvalid = errors.New("预约时间格式无效")
	ErrLogisticsNoSchedules     = errors.New("暂无可导出的交接安排")
)

// logisticsNextStates 物流状态机允许的迁移
var logisticsNextStates = map[string][]string{
	model.LogisticsStatusPendingPickup:      {model.LogisticsStatusInTransit, model.LogisticsStatusCancelled},
	model.LogisticsStatusInTransit:          {model.LogisticsStatusReadyForCollection, model.LogisticsStatusDelivered, model.LogisticsStatusCancelled},
	model.LogisticsStatusReadyForCollection: {model.LogisticsStatusDelivered, model.LogisticsStatusCancelled},
}

// LogisticsService 物流业务接口
//
// 每笔交易至多一条物流单。delivered 与 cancelled 为终态，
// ready_for_collection 仅在 PUDO 柜到柜流程中出现。
type LogisticsService interface {
	Create(ctx context.Context, callerID string, req *dto.CreateLogisticsRequest) (*model.Logistics, error)
	GetByID(ctx context.Context, id, callerID string) (*model.Logistics, error)
	List(ctx context.Context, userID string, req *dto.ListLogisticsRequest) ([]model.Logistics, int64, error)
	UpdateStatus(ctx context.Context, id, callerID string, isAdmin bool, req *dto.UpdateLogisticsStatusRequest) error
	ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type logisticsService struct {
	repo   *repository.Repository
	notify NotificationService
	logger *zap.Logger
}

// NewLogisticsService 创建 LogisticsService 实例
func NewLogisticsService(repo *repository.Repository, notify NotificationService, logger *zap.Logger) LogisticsService {
	return &logisticsService{repo: repo, notify: notify, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *logisticsService) Create(ctx context.Context, callerID string, req *dto.CreateLogisticsRequest) (*model.Logistics, error) {
	if req.ShippingMethod == model.ShippingMethodPUDO && req.PudoLocker == "" {
		return nil, ErrLogisticsPudoRequired
	}

	var scheduledAt *time.Time
	if req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return nil, ErrLogisticsScheduleInvalid
		}
		scheduledAt = &t
	}

	// 交易必须存在、调用方是当事人、且处于可发货阶段
	senderID, receiverID, err := s.resolveTransaction(ctx, req.TransactionType, req.TransactionID, callerID)
	if err != nil {
		return nil, err
	}

	// 一笔交易至多一条物流单
	if _, err := s.repo.Logistics.GetByTransaction(ctx, req.TransactionType, req.TransactionID); err == nil {
		return nil, ErrLogisticsExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询物流单失败", zap.Error(err))
		return nil, err
	}

	logistics := &model.Logistics{
		TransactionType:  req.TransactionType,
		TransactionID:    req.TransactionID,
		SenderID:         senderID,
		ReceiverID:       receiverID,
		ShippingMethod:   req.ShippingMethod,
		Status:           model.LogisticsStatusPendingPickup,
		PudoLocker:       req.PudoLocker,
		ScheduledAt:      scheduledAt,
		LastStatusUpdate: time.Now(),
	}
	if err := s.repo.Logistics.Create(ctx, logistics); err != nil {
		s.logger.Error("创建物流单失败", zap.Error(err))
		return nil, err
	}

	relatedType := "logistics"
	s.notify.Notify(ctx, receiverID, model.NotificationTypeLogistics,
		"交接已安排",
		fmt.Sprintf("交接方式：%s，请留意物流进度", req.ShippingMethod),
		&relatedType, &logistics.LogisticsID)

	return logistics, nil
}

// resolveTransaction 校验交易并推导收发双方
func (s *logisticsService) resolveTransaction(ctx context.Context, txType, txID, callerID string) (senderID, receiverID string, err error) {
	switch txType {
	case "sale":
		order, err := s.repo.Order.GetByID(ctx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", ErrOrderNotFound
			}
			return "", "", err
		}
		if !order.IsParty(callerID) {
			return "", "", ErrLogisticsForbidden
		}
		if order.Status != model.OrderStatusPaid && order.Status != model.OrderStatusPendingPickup {
			return "", "", ErrLogisticsTxNotReady
		}
		return order.SellerID, order.BuyerID, nil
	case "swap":
		swap, err := s.repo.Swap.GetByID(ctx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", ErrSwapNotFound
			}
			return "", "", err
		}
		if !swap.IsParty(callerID) {
			return "", "", ErrLogisticsForbidden
		}
		if swap.Status != model.SwapStatusAccepted {
			return "", "", ErrLogisticsTxNotReady
		}
		return swap.RequesterID, swap.ResponderID, nil
	default:
		return "", "", ErrLogisticsTxNotReady
	}
}

// ────────────────────── GetByID ──────────────────────

func (s *logisticsService) GetByID(ctx context.Context, id, callerID string) (*model.Logistics, error) {
	logistics, err := s.repo.Logistics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogisticsNotFound
		}
		s.logger.Error("查询物流单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if logistics.SenderID != callerID && logistics.ReceiverID != callerID {
		return nil, ErrLogisticsForbidden
	}
	return logistics, nil
}

// ────────────────────── List ──────────────────────

func (s *logisticsService) List(ctx context.Context, userID string, req *dto.ListLogisticsRequest) ([]model.Logistics, int64, error) {
	list, total, err := s.repo.Logistics.ListByUser(ctx, userID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询物流列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 推进物流状态，收发双方或管理员可操作
func (s *logisticsService) UpdateStatus(ctx context.Context, id, callerID string, isAdmin bool, req *dto.UpdateLogisticsStatusRequest) error {
	logistics, err := s.repo.Logistics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLogisticsNotFound
		}
		s.logger.Error("查询物流单失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if !isAdmin && logistics.SenderID != callerID && logistics.ReceiverID != callerID {
		return ErrLogisticsForbidden
	}

	allowed := false
	for _, next := range logisticsNextStates[logistics.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrLogisticsInvalidState
	}

	var extra map[string]interface{}
	if req.TrackingNumber != "" {
		extra = map[string]interface{}{"tracking_number": req.TrackingNumber}
	}
	if err := s.repo.Logistics.Transition(ctx, id, logistics.Status, req.Status, extra); err != nil {
		s.logger.Warn("物流状态迁移失败",
			zap.String("id", id),
			zap.String("from", logistics.Status),
			zap.String("to", req.Status),
			zap.Error(err))
		return err
	}

	// 通知对方当事人
	other := logistics.ReceiverID
	if callerID == logistics.ReceiverID {
		other = logistics.SenderID
	}
	relatedType := "logistics"
	s.notify.Notify(ctx, other, model.NotificationTypeLogistics,
		"物流状态更新",
		fmt.Sprintf("物流状态已更新为 %s", req.Status),
		&relatedType, &id)

	return nil
}

// ────────────────────── ExportCalendar ──────────────────────

// ExportCalendar 将用户所有已预约且未终结的交接导出为 iCalendar (.ics)
// 文件，可导入手机日历。默认每次交接预留一小时。
func (s *logisticsService) ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	list, err := s.repo.Logistics.ListScheduledByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询交接安排失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrLogisticsNoSchedules
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SwapTheFit//Logistics//ZH")

	for i := range list {
		l := &list[i]
		if l.ScheduledAt == nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("logistics-%s@swapthefit", l.LogisticsID))
		event.SetCreatedTime(l.CreatedAt)
		event.SetDtStampTime(time.Now())
		event.SetStartAt(*l.ScheduledAt)
		event.SetEndAt(l.ScheduledAt.Add(time.Hour))

		var title string
		otherName := ""
		if l.SenderID == userID {
			title = "物品交付"
			if l.Receiver != nil {
				otherName = l.Receiver.Name
			}
		} else {
			title = "物品领取"
			if l.Sender != nil {
				otherName = l.Sender.Name
			}
		}
		if otherName != "" {
			title += " — " + otherName
		}
		event.SetSummary(title)

		if l.PudoLocker != "" {
			event.SetLocation(l.PudoLocker)
		}
		event.SetDescription(fmt.Sprintf("交接方式：%s，当前状态：%s", l.ShippingMethod, l.Status))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("交接安排_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}
