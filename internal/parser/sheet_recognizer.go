package parser

import (
	"strings"
)

// 헤더를 찾기 위해 검사하는 최대 행 수 (내보내기 파일 상단의 제목 행 대비)
const headerScanRows = 10

// SheetRecognizer 시트 종류/헤더 위치 인식기
type SheetRecognizer struct {
	mapper *FieldMapper
}

// NewSheetRecognizer 인식기 생성
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{mapper: NewFieldMapper()}
}

// Recognize 시트 상단 행들로부터 종류와 헤더 행을 판정
func (r *SheetRecognizer) Recognize(sheetName string, rows [][]string) SheetRecognitionResult {
	best := SheetRecognitionResult{
		SheetName: sheetName,
		Kind:      SheetKindUnknown,
	}

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		if result := r.recognizeOrders(rows[i]); result > best.Confidence {
			best.Kind = SheetKindOrders
			best.HeaderRow = i
			best.Confidence = result
		}
		if result := r.recognizePrices(rows[i]); result > best.Confidence {
			best.Kind = SheetKindPrices
			best.HeaderRow = i
			best.Confidence = result
		}
	}

	// 시트명 보조 판정
	if best.Kind == SheetKindUnknown && strings.Contains(sheetName, "상품목록") {
		best.Kind = SheetKindPrices
	}
	return best
}

// recognizeOrders 주문번호 컬럼이 있어야 주문 내역으로 본다
func (r *SheetRecognizer) recognizeOrders(header []string) float64 {
	set := r.mapper.MapOrderExport(header)
	if !set.Has(FieldOrderID) {
		return 0
	}

	keyFields := []Field{
		FieldOrderID,
		FieldProductName,
		FieldOption,
		FieldQuantity,
		FieldSaleAmount,
		FieldSettlementDate,
		FieldDeliveryStatus,
		FieldSettlementStatus,
	}
	matchCount := 0
	for _, f := range keyFields {
		if set.Has(f) {
			matchCount++
		}
	}
	return float64(matchCount) / float64(len(keyFields))
}

// recognizePrices 배송비 컬럼과 상품 식별 컬럼이 있어야 상품목록으로 본다
func (r *SheetRecognizer) recognizePrices(header []string) float64 {
	orders := r.mapper.MapOrderExport(header)
	if orders.Has(FieldOrderID) {
		return 0
	}
	set := r.mapper.MapPriceSheet(header)
	if !set.Has(FieldShippingFee) {
		return 0
	}
	if !set.Has(FieldProductCode) && !set.Has(FieldProductName) {
		return 0
	}

	keyFields := []Field{FieldProductCode, FieldProductName, FieldOption, FieldShippingFee, FieldUnitPrice}
	matchCount := 0
	for _, f := range keyFields {
		if set.Has(f) {
			matchCount++
		}
	}
	return float64(matchCount) / float64(len(keyFields))
}
