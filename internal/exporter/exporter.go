package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

const (
	dateLayout   = "2006-01-02"
	failureSheet = "오류"
)

// 출력 컬럼 순서
var orderHeaders = []string{
	"주문번호", "일자", "판매품목", "옵션명", "판매수량", "판매금액",
	"판매수수료", "택배비", "순이익", "배송상태", "정산현황", "기타",
}

// 합계 라벨은 판매금액 컬럼에, 값은 그 오른쪽에 쓴다
const (
	summaryLabelCol = 6
	summaryValueCol = 7
)

// Options 시트 이름 (비어 있으면 기본값)
type Options struct {
	ValidSheet   string
	InvalidSheet string
}

// Exporter 정산 결과 엑셀 출력기
type Exporter struct {
	validSheet   string
	invalidSheet string
}

// NewExporter 출력기 생성
func NewExporter(opts Options) *Exporter {
	e := &Exporter{
		validSheet:   strings.TrimSpace(opts.ValidSheet),
		invalidSheet: strings.TrimSpace(opts.InvalidSheet),
	}
	if e.validSheet == "" {
		e.validSheet = settlement.ValidSectionName
	}
	if e.invalidSheet == "" || e.invalidSheet == e.validSheet {
		e.invalidSheet = settlement.InvalidSectionName
	}
	return e
}

// Export 정상/문제 시트와 합계 블록, 실패 파일이 있으면 오류 시트까지 작성
func (e *Exporter) Export(report *model.Report, progress func(ProgressEvent)) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}

	f := excelize.NewFile()
	reportProgress(progress, 5, "워크북 생성")

	if err := f.SetSheetName("Sheet1", e.validSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("시트 이름 변경 실패: %w", err)
	}
	if _, err := f.NewSheet(e.invalidSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("시트 생성 실패: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("스타일 생성 실패: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("스타일 생성 실패: %w", err)
	}

	if err := e.writeSection(f, e.validSheet, report.Valid, headerStyle, summaryStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	reportProgress(progress, 45, "정상 시트 작성")

	if err := e.writeSection(f, e.invalidSheet, report.Invalid, headerStyle, summaryStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	reportProgress(progress, 85, "문제 시트 작성")

	if len(report.Failures) > 0 {
		if err := e.writeFailures(f, report.Failures, headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "완료")
	return f, nil
}

// WriteTo 워크북을 w 에 바로 기록
func (e *Exporter) WriteTo(w io.Writer, report *model.Report) error {
	f, err := e.Export(report, nil)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("엑셀 저장 실패: %w", err)
	}
	return nil
}

func (e *Exporter) writeSection(f *excelize.File, sheet string, section model.Section, headerStyle, summaryStyle int) error {
	header := make([]interface{}, len(orderHeaders))
	for i, h := range orderHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("헤더 작성 실패(%s): %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("헤더 스타일 실패(%s): %w", sheet, err)
	}

	row := 2
	for _, o := range section.Orders {
		values := orderRow(o)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("행 작성 실패(%s!%s): %w", sheet, cell, err)
		}
		row++
	}

	// 빈 줄 하나 두고 합계
	row++
	summaryStart := row
	for _, item := range summaryRows(section.Summary) {
		if err := setSummaryRow(f, sheet, row, item.label, item.value); err != nil {
			return err
		}
		row++
	}
	if row > summaryStart {
		if err := f.SetRowStyle(sheet, summaryStart, row-1, summaryStyle); err != nil {
			return fmt.Errorf("합계 스타일 실패(%s): %w", sheet, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "D", 28)
	_ = f.SetColWidth(sheet, "E", "I", 12)
	_ = f.SetColWidth(sheet, "J", "L", 14)
	return nil
}

func orderRow(o *model.AggregatedOrder) []interface{} {
	date := ""
	if o.SettlementDate != nil {
		date = o.SettlementDate.Format(dateLayout)
	}
	return []interface{}{
		o.OrderID,
		date,
		o.ProductName,
		o.Option,
		o.Quantity,
		o.SaleAmount,
		o.Commission,
		o.ShippingCost,
		o.NetProfit,
		o.DeliveryStatus,
		o.SettlementStatus,
		o.Misc,
	}
}

type summaryItem struct {
	label string
	value int64
}

func summaryRows(s model.Summary) []summaryItem {
	items := []summaryItem{
		{"총판매량", s.TotalQuantity},
		{"총금액", s.TotalSaleAmount},
		{"총수수료", s.TotalCommission},
		{"총택배비", s.TotalShippingCost},
		{"총지출", s.TotalOutlay},
		{"총이익", s.TotalProfit},
	}
	for _, sq := range s.StatusQuantities {
		items = append(items, summaryItem{sq.Label, sq.Quantity})
	}
	return items
}

func setSummaryRow(f *excelize.File, sheet string, row int, label string, value int64) error {
	labelCell, _ := excelize.CoordinatesToCellName(summaryLabelCol, row)
	valueCell, _ := excelize.CoordinatesToCellName(summaryValueCol, row)
	if err := f.SetCellValue(sheet, labelCell, label); err != nil {
		return fmt.Errorf("합계 작성 실패(%s!%s): %w", sheet, labelCell, err)
	}
	if err := f.SetCellValue(sheet, valueCell, value); err != nil {
		return fmt.Errorf("합계 작성 실패(%s!%s): %w", sheet, valueCell, err)
	}
	return nil
}

func (e *Exporter) writeFailures(f *excelize.File, failures []model.FileFailure, headerStyle int) error {
	if _, err := f.NewSheet(failureSheet); err != nil {
		return fmt.Errorf("시트 생성 실패: %w", err)
	}
	header := []interface{}{"파일", "구분", "사유"}
	if err := f.SetSheetRow(failureSheet, "A1", &header); err != nil {
		return fmt.Errorf("헤더 작성 실패(%s): %w", failureSheet, err)
	}
	_ = f.SetRowStyle(failureSheet, 1, 1, headerStyle)

	for i, ff := range failures {
		values := []interface{}{ff.Name, ff.Kind, ff.Reason}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(failureSheet, cell, &values); err != nil {
			return fmt.Errorf("행 작성 실패(%s!%s): %w", failureSheet, cell, err)
		}
	}
	_ = f.SetColWidth(failureSheet, "A", "A", 30)
	_ = f.SetColWidth(failureSheet, "C", "C", 60)
	return nil
}
