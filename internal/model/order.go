package model

import "time"

// Table 디코딩된 시트 (헤더 + 데이터 행, 셀은 표시 문자열)
type Table struct {
	FileID    string     `json:"fileId"`
	Name      string     `json:"name"`  // 원본 파일명
	Sheet     string     `json:"sheet"` // 시트명
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	HeaderRow int        `json:"headerRow"` // 헤더가 위치한 시트 행 번호 (1부터)
}

// Cell 행의 idx 번째 셀을 반환 (범위 밖이면 빈 문자열)
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// RawOrderLine 컬럼 매핑 후의 주문 행
type RawOrderLine struct {
	Source string `json:"source"`
	Row    int    `json:"row"`

	OrderID          string     `json:"orderId"`
	ProductCode      string     `json:"productCode"`
	ProductName      string     `json:"productName"`
	OptionText       string     `json:"optionText"`
	Quantity         int64      `json:"quantity"`
	SaleAmount       int64      `json:"saleAmount"`
	Commission       int64      `json:"commission"`
	SettlementDate   *time.Time `json:"settlementDate"`
	DeliveryStatus   string     `json:"deliveryStatus"`
	SettlementStatus string     `json:"settlementStatus"`
	MiscClaimStatus  string     `json:"miscClaimStatus"`
}

// ShippingTier 택배비가 결정된 조회 단계
type ShippingTier string

const (
	TierCodeOption ShippingTier = "code_option"
	TierNameOption ShippingTier = "name_option"
	TierCode       ShippingTier = "code"
	TierName       ShippingTier = "name"
	TierManual     ShippingTier = "manual"
	TierNone       ShippingTier = "none"
)

// ShippingPriceEntry 보조 시트(상품목록)의 한 행
type ShippingPriceEntry struct {
	ProductCode  string `json:"productCode"`
	ProductName  string `json:"productName"`
	Option       string `json:"option"` // 정규화된 옵션
	ShippingFee  int64  `json:"shippingFee"`
	UnitPrice    int64  `json:"unitPrice"`
	HasUnitPrice bool   `json:"hasUnitPrice"`
}

// EnrichedOrderLine 택배비/판매금액 보정이 끝난 행
type EnrichedOrderLine struct {
	RawOrderLine

	NormalizedOption   string       `json:"normalizedOption"`
	ShippingCost       int64        `json:"shippingCost"` // 음수 (판매자 부담)
	ResolvedSaleAmount int64        `json:"resolvedSaleAmount"`
	ShippingTier       ShippingTier `json:"shippingTier"`
	PriceBackfilled    bool         `json:"priceBackfilled"`
}

// AggregatedOrder 주문번호별 집계 결과
type AggregatedOrder struct {
	OrderID          string     `json:"orderId"`
	SettlementDate   *time.Time `json:"settlementDate"`
	ProductName      string     `json:"productName"`
	Option           string     `json:"option"`
	Quantity         int64      `json:"quantity"`
	SaleAmount       int64      `json:"saleAmount"`
	Commission       int64      `json:"commission"`
	ShippingCost     int64      `json:"shippingCost"`
	NetProfit        int64      `json:"netProfit"`
	DeliveryStatus   string     `json:"deliveryStatus"`
	SettlementStatus string     `json:"settlementStatus"`
	Misc             string     `json:"misc"`
	LineCount        int        `json:"lineCount"`
}
