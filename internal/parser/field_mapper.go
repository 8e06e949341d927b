package parser

import (
	"regexp"
	"strings"
)

type fieldRule struct {
	field   Field
	pattern *regexp.Regexp
}

// 주문 내역 컬럼 규칙. 스마트스토어 내보내기 버전별 컬럼명을 모두 포함한다.
var orderRules = []fieldRule{
	{FieldOrderID, regexp.MustCompile(`^주문번호$`)},
	{FieldProductCode, regexp.MustCompile(`^(상품번호|상품코드|판매자상품코드)$`)},
	{FieldProductName, regexp.MustCompile(`^(상품명|판매품목)$`)},
	{FieldOption, regexp.MustCompile(`^(옵션정보|옵션명|옵션)$`)},
	{FieldQuantity, regexp.MustCompile(`^(수량|판매수량)$`)},
	{FieldSaleAmount, regexp.MustCompile(`^(정산기준금액(\(A\))?|정산예정금액|판매금액)$`)},
	{FieldSettlementDate, regexp.MustCompile(`^(정산완료일|정산완료일자|정산일)$`)},
	{FieldOrderedAt, regexp.MustCompile(`^(주문일시|주문일|결제일|결제일시)$`)},
	{FieldDeliveryStatus, regexp.MustCompile(`^(주문상태|배송상태)$`)},
	{FieldSettlementStatus, regexp.MustCompile(`^(정산상태|정산현황)$`)},
	{FieldMisc, regexp.MustCompile(`^(클레임상태|기타)$`)},
}

// 상품목록 컬럼 규칙
var priceRules = []fieldRule{
	{FieldProductCode, regexp.MustCompile(`^(상품번호|상품코드|판매자상품코드)$`)},
	{FieldProductName, regexp.MustCompile(`^(상품명|판매품목)$`)},
	{FieldOption, regexp.MustCompile(`^(옵션명|옵션정보|옵션)$`)},
	{FieldShippingFee, regexp.MustCompile(`^(배송비|택배비)(\(원\))?$`)},
	{FieldUnitPrice, regexp.MustCompile(`^(단가|판매가|판매단가)(\(원\))?$`)},
}

var feeKeywords = []struct {
	kind     FeeKind
	keywords []string
}{
	{FeeRevenueLinked, []string{"매출연동수수료"}},
	{FeeOrderManagement, []string{"주문관리수수료"}},
	{FeeInstallment, []string{"무이자할부수수료"}},
}

// FieldMapper 컬럼 매퍼
type FieldMapper struct{}

// NewFieldMapper 컬럼 매퍼 생성
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

// MapOrderExport 주문 내역 헤더를 표준 컬럼으로 매핑
func (m *FieldMapper) MapOrderExport(columnNames []string) ColumnSet {
	set := m.mapColumns(columnNames, orderRules)

	seen := make(map[FeeKind]bool)
	for idx, col := range columnNames {
		col = NormalizeColumnName(col)
		if kind, ok := matchFee(col); ok {
			// 같은 수수료가 두 번 나오면 첫 번째만 사용
			if seen[kind] {
				continue
			}
			seen[kind] = true
			set.Fees = append(set.Fees, FeeColumn{
				ColumnIndex: idx,
				ColumnName:  col,
				Kind:        kind,
			})
		}
	}
	return set
}

// MapPriceSheet 상품목록 헤더를 표준 컬럼으로 매핑
func (m *FieldMapper) MapPriceSheet(columnNames []string) ColumnSet {
	return m.mapColumns(columnNames, priceRules)
}

func (m *FieldMapper) mapColumns(columnNames []string, rules []fieldRule) ColumnSet {
	set := ColumnSet{
		Fields:   make(map[Field]int),
		Mappings: []FieldMapping{},
	}

	for idx, col := range columnNames {
		col = NormalizeColumnName(col)
		if col == "" {
			continue
		}
		field, ok := matchRule(col, rules)
		if !ok {
			continue
		}
		// 중복 컬럼은 첫 번째만 사용
		if _, dup := set.Fields[field]; dup {
			continue
		}
		set.Fields[field] = idx
		set.Mappings = append(set.Mappings, FieldMapping{
			ColumnIndex: idx,
			ColumnName:  col,
			Field:       field,
		})
	}
	return set
}

func matchRule(col string, rules []fieldRule) (Field, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(col) {
			return r.field, true
		}
	}
	return "", false
}

func matchFee(col string) (FeeKind, bool) {
	// 수수료율 컬럼은 금액이 아니다
	if strings.Contains(col, "율") {
		return "", false
	}
	for _, f := range feeKeywords {
		if ContainsAny(col, f.keywords) {
			return f.kind, true
		}
	}
	return "", false
}
