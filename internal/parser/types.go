package parser

// SheetKind 시트 종류
type SheetKind string

const (
	SheetKindOrders  SheetKind = "orders"  // 주문/정산 내역
	SheetKindPrices  SheetKind = "prices"  // 상품목록 (배송비/단가)
	SheetKindUnknown SheetKind = "unknown"
)

// Field 표준 컬럼
type Field string

const (
	FieldOrderID          Field = "order_id"
	FieldProductCode      Field = "product_code"
	FieldProductName      Field = "product_name"
	FieldOption           Field = "option"
	FieldQuantity         Field = "quantity"
	FieldSaleAmount       Field = "sale_amount"
	FieldSettlementDate   Field = "settlement_date"
	FieldOrderedAt        Field = "ordered_at"
	FieldDeliveryStatus   Field = "delivery_status"
	FieldSettlementStatus Field = "settlement_status"
	FieldMisc             Field = "misc"

	// 상품목록 전용
	FieldShippingFee Field = "shipping_fee"
	FieldUnitPrice   Field = "unit_price"
)

// FeeKind 수수료 세부 항목
type FeeKind string

const (
	FeeRevenueLinked   FeeKind = "revenue_linked"   // 매출연동수수료
	FeeOrderManagement FeeKind = "order_management" // 네이버페이 주문관리수수료
	FeeInstallment     FeeKind = "installment"      // 무이자할부수수료
)

// FieldMapping 컬럼 매핑 결과
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // 엑셀 컬럼 인덱스
	ColumnName  string `json:"columnName"`  // 엑셀 컬럼명
	Field       Field  `json:"field"`
}

// FeeColumn 수수료 컬럼
type FeeColumn struct {
	ColumnIndex int     `json:"columnIndex"`
	ColumnName  string  `json:"columnName"`
	Kind        FeeKind `json:"kind"`
}

// ColumnSet 한 시트의 매핑 결과 (중복 컬럼은 첫 번째가 우선)
type ColumnSet struct {
	Fields   map[Field]int  `json:"fields"`
	Fees     []FeeColumn    `json:"fees"`
	Mappings []FieldMapping `json:"mappings"`
}

// Index 표준 컬럼의 인덱스 (없으면 -1)
func (s ColumnSet) Index(f Field) int {
	if idx, ok := s.Fields[f]; ok {
		return idx
	}
	return -1
}

// Has 표준 컬럼 존재 여부
func (s ColumnSet) Has(f Field) bool {
	_, ok := s.Fields[f]
	return ok
}

// SheetRecognitionResult 시트 인식 결과
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	Kind       SheetKind `json:"kind"`
	HeaderRow  int       `json:"headerRow"`  // 0부터 시작하는 헤더 행 위치
	Confidence float64   `json:"confidence"` // 0-1
}
