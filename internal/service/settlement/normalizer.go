package settlement

import (
	"strings"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/parser"
)

// Normalizer 파일별 컬럼을 표준 주문 행으로 변환
type Normalizer struct {
	mapper *parser.FieldMapper
}

// NewNormalizer 정규화기 생성
func NewNormalizer() *Normalizer {
	return &Normalizer{mapper: parser.NewFieldMapper()}
}

// Normalize 표 하나를 표준 행 목록으로 변환.
// 주문번호 컬럼이 없으면 SchemaError.
func (n *Normalizer) Normalize(table *model.Table) ([]model.RawOrderLine, error) {
	cols := n.mapper.MapOrderExport(table.Header)
	if !cols.Has(parser.FieldOrderID) {
		return nil, &SchemaError{
			File:   table.Name,
			Sheet:  table.Sheet,
			Reason: "order id column (주문번호) not found",
		}
	}

	lines := make([]model.RawOrderLine, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlankRow(row, cols) {
			continue
		}

		get := func(f parser.Field) string {
			return strings.TrimSpace(table.Cell(row, cols.Index(f)))
		}

		line := model.RawOrderLine{
			Source:           table.Name,
			Row:              table.HeaderRow + 1 + i,
			OrderID:          get(parser.FieldOrderID),
			ProductCode:      get(parser.FieldProductCode),
			ProductName:      get(parser.FieldProductName),
			OptionText:       get(parser.FieldOption),
			Quantity:         parser.ParseInt(get(parser.FieldQuantity)),
			SaleAmount:       parser.ParseInt(get(parser.FieldSaleAmount)),
			Commission:       ConsolidateFees(row, cols.Fees),
			DeliveryStatus:   get(parser.FieldDeliveryStatus),
			SettlementStatus: get(parser.FieldSettlementStatus),
			MiscClaimStatus:  get(parser.FieldMisc),
		}

		// 정산완료일 우선, 없으면 주문일시 (행 단위)
		line.SettlementDate = parser.ParseDate(get(parser.FieldSettlementDate))
		if line.SettlementDate == nil {
			line.SettlementDate = parser.ParseDate(get(parser.FieldOrderedAt))
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// isBlankRow 매핑된 컬럼과 수수료 컬럼이 모두 비어 있으면 빈 행
func isBlankRow(row []string, cols parser.ColumnSet) bool {
	for _, idx := range cols.Fields {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	for _, fc := range cols.Fees {
		if fc.ColumnIndex < len(row) && strings.TrimSpace(row[fc.ColumnIndex]) != "" {
			return false
		}
	}
	return true
}
