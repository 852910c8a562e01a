package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"swapthefit/backend/internal/dto"
	"swapthefit/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRangeInvalid = errors.New("导出时间区间无效")
	ErrExportNoData       = errors.New("该区间内没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 管理端报表导出接口，产物为 xlsx
type ExportService interface {
	ExportCompletedOrders(ctx context.Context, req *dto.ExportRangeRequest) (*bytes.Buffer, string, error)
	ExportDonationImpact(ctx context.Context, req *dto.ExportRangeRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// parseRange 校验区间参数，to 为开区间端点
func parseRange(req *dto.ExportRangeRequest) (string, string, error) {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return "", "", ErrExportRangeInvalid
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return "", "", ErrExportRangeInvalid
	}
	if !to.After(from) {
		return "", "", ErrExportRangeInvalid
	}
	return req.From, req.To, nil
}

// colName 列序号转 Excel 列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// cell 拼接单元格坐标（0 基列号，1 基行号）
func cell(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}

// newSheet 建表并写表头，返回就绪的文件句柄
func (s *exportService) newSheet(sheetName string, headers []string, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		if err := f.SetCellValue(sheetName, cell(i, 1), h); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, colName(i), colName(i), widths[i]); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, cell(0, 1), cell(len(headers)-1, 1), headerStyle); err != nil {
		return nil, err
	}
	return f, nil
}

// ────────────────────── ExportCompletedOrders ──────────────────────

// ExportCompletedOrders 导出区间内已完成订单的交易报表
func (s *exportService) ExportCompletedOrders(ctx context.Context, req *dto.ExportRangeRequest) (*bytes.Buffer, string, error) {
	from, to, err := parseRange(req)
	if err != nil {
		return nil, "", err
	}

	orders, err := s.repo.Order.ListCompletedBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("查询已完成订单失败", zap.Error(err))
		return nil, "", err
	}
	if len(orders) == 0 {
		return nil, "", ErrExportNoData
	}

	const sheetName = "成交订单"
	headers := []string{"订单号", "物品", "买家", "卖家", "成交价", "支付流水号", "完成时间"}
	widths := []float64{38, 30, 16, 16, 12, 24, 20}

	f, err := s.newSheet(sheetName, headers, widths)
	if err != nil {
		s.logger.Error("初始化工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	defer f.Close()

	var totalAmount float64
	for i, o := range orders {
		row := i + 2
		title := ""
		if o.Listing != nil {
			title = o.Listing.Title
		}
		buyerName, sellerName := "", ""
		if o.Buyer != nil {
			buyerName = o.Buyer.Name
		}
		if o.Seller != nil {
			sellerName = o.Seller.Name
		}
		values := []interface{}{
			o.OrderID, title, buyerName, sellerName,
			o.PriceAtPurchase, o.PaymentReference,
			o.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			if err := f.SetCellValue(sheetName, cell(col, row), v); err != nil {
				s.logger.Error("写入单元格失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		}
		totalAmount += o.PriceAtPurchase
	}

	// 汇总行
	sumRow := len(orders) + 2
	_ = f.SetCellValue(sheetName, cell(0, sumRow), fmt.Sprintf("合计 %d 单", len(orders)))
	_ = f.SetCellValue(sheetName, cell(4, sumRow), totalAmount)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("成交订单_%s_%s.xlsx", req.From, req.To)
	s.logger.Info("订单报表导出完成",
		zap.Int("count", len(orders)),
		zap.Float64("total_amount", totalAmount))
	return buf, filename, nil
}

// ────────────────────── ExportDonationImpact ──────────────────────

// ExportDonationImpact 导出区间内已分发捐赠的公益影响力报表
func (s *exportService) ExportDonationImpact(ctx context.Context, req *dto.ExportRangeRequest) (*bytes.Buffer, string, error) {
	from, to, err := parseRange(req)
	if err != nil {
		return nil, "", err
	}

	donations, err := s.repo.Donation.ListDistributedBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("查询已分发捐赠失败", zap.Error(err))
		return nil, "", err
	}
	if len(donations) == 0 {
		return nil, "", ErrExportNoData
	}

	const sheetName = "捐赠影响力"
	headers := []string{"捐赠编号", "物品", "捐赠者", "接收机构", "实收数量", "实收价值", "惠及家庭", "分发时间"}
	widths := []float64{38, 30, 16, 20, 10, 12, 10, 20}

	f, err := s.newSheet(sheetName, headers, widths)
	if err != nil {
		s.logger.Error("初始化工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	defer f.Close()

	var totalQty, totalFamilies int
	var totalValue float64
	for i, d := range donations {
		row := i + 2
		title := ""
		if d.Listing != nil {
			title = d.Listing.Title
		}
		donorName, recipientName := "", ""
		if d.Donor != nil {
			donorName = d.Donor.Name
		}
		if d.Recipient != nil {
			recipientName = d.Recipient.Name
		}
		qty := d.Quantity
		if d.ReceivedQuantity != nil {
			qty = *d.ReceivedQuantity
		}
		value := d.EstimatedValue
		if d.ReceivedValue != nil {
			value = *d.ReceivedValue
		}
		families := 0
		if d.FamiliesSupported != nil {
			families = *d.FamiliesSupported
		}
		values := []interface{}{
			d.DonationID, title, donorName, recipientName,
			qty, value, families,
			d.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			if err := f.SetCellValue(sheetName, cell(col, row), v); err != nil {
				s.logger.Error("写入单元格失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		}
		totalQty += qty
		totalValue += value
		totalFamilies += families
	}

	sumRow := len(donations) + 2
	_ = f.SetCellValue(sheetName, cell(0, sumRow), fmt.Sprintf("合计 %d 笔", len(donations)))
	_ = f.SetCellValue(sheetName, cell(4, sumRow), totalQty)
	_ = f.SetCellValue(sheetName, cell(5, sumRow), totalValue)
	_ = f.SetCellValue(sheetName, cell(6, sumRow), totalFamilies)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("捐赠影响力_%s_%s.xlsx", req.From, req.To)
	s.logger.Info("捐赠报表导出完成",
		zap.Int("count", len(donations)),
		zap.Float64("total_value", totalValue))
	return buf, filename, nil
}
