package settlement

import (
	"strings"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/parser"
)

type productKey struct {
	product string
	option  string
}

// LookupTables 상품목록에서 만든 조회 테이블. 생성 후에는 읽기 전용.
type LookupTables struct {
	byCodeOption map[productKey]int64
	byNameOption map[productKey]int64
	priceByName  map[productKey]int64
	byCode       map[string]int64
	byName       map[string]int64
	entries      int
}

// EmptyLookupTables 상품목록이 없을 때의 빈 테이블
func EmptyLookupTables() *LookupTables {
	return &LookupTables{
		byCodeOption: map[productKey]int64{},
		byNameOption: map[productKey]int64{},
		priceByName:  map[productKey]int64{},
		byCode:       map[string]int64{},
		byName:       map[string]int64{},
	}
}

// Len 등록된 상품목록 행 수
func (lt *LookupTables) Len() int {
	if lt == nil {
		return 0
	}
	return lt.entries
}

// NewLookupTables 상품목록 행으로 조회 테이블 생성.
// 코드/이름 단독 항목은 옵션이 빈 행이 우선, 없으면 처음 나온 행.
func NewLookupTables(entries []model.ShippingPriceEntry) *LookupTables {
	lt := EmptyLookupTables()
	codeFromBlankOption := map[string]bool{}
	nameFromBlankOption := map[string]bool{}

	for _, e := range entries {
		lt.entries++

		if e.ProductCode != "" {
			k := productKey{e.ProductCode, e.Option}
			if _, ok := lt.byCodeOption[k]; !ok {
				lt.byCodeOption[k] = e.ShippingFee
			}
			if _, ok := lt.byCode[e.ProductCode]; !ok || (e.Option == "" && !codeFromBlankOption[e.ProductCode]) {
				lt.byCode[e.ProductCode] = e.ShippingFee
				codeFromBlankOption[e.ProductCode] = e.Option == ""
			}
		}

		if e.ProductName != "" {
			k := productKey{e.ProductName, e.Option}
			if _, ok := lt.byNameOption[k]; !ok {
				lt.byNameOption[k] = e.ShippingFee
			}
			if e.HasUnitPrice {
				if _, ok := lt.priceByName[k]; !ok {
					lt.priceByName[k] = e.UnitPrice
				}
			}
			if _, ok := lt.byName[e.ProductName]; !ok || (e.Option == "" && !nameFromBlankOption[e.ProductName]) {
				lt.byName[e.ProductName] = e.ShippingFee
				nameFromBlankOption[e.ProductName] = e.Option == ""
			}
		}
	}
	return lt
}

// ParsePriceSheet 상품목록 표를 항목으로 변환.
// 배송비 컬럼이 없거나 상품번호/상품명이 모두 없으면 SchemaError.
func ParsePriceSheet(table *model.Table) ([]model.ShippingPriceEntry, error) {
	cols := parser.NewFieldMapper().MapPriceSheet(table.Header)
	if !cols.Has(parser.FieldShippingFee) {
		return nil, &SchemaError{File: table.Name, Sheet: table.Sheet, Reason: "shipping fee column (배송비) not found"}
	}
	if !cols.Has(parser.FieldProductCode) && !cols.Has(parser.FieldProductName) {
		return nil, &SchemaError{File: table.Name, Sheet: table.Sheet, Reason: "product code or name column not found"}
	}

	entries := make([]model.ShippingPriceEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		get := func(f parser.Field) string {
			return strings.TrimSpace(table.Cell(row, cols.Index(f)))
		}
		e := model.ShippingPriceEntry{
			ProductCode: get(parser.FieldProductCode),
			ProductName: get(parser.FieldProductName),
			Option:      parser.NormalizeOption(get(parser.FieldOption)),
			ShippingFee: parser.ParseInt(get(parser.FieldShippingFee)),
		}
		if e.ProductCode == "" && e.ProductName == "" {
			continue
		}
		if price := get(parser.FieldUnitPrice); price != "" {
			e.UnitPrice = parser.ParseInt(price)
			e.HasUnitPrice = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Resolver 행별 택배비/판매금액 결정
type Resolver struct {
	tables     *LookupTables
	defaultFee int64
}

// NewResolver 조회 테이블과 수동 기본 택배비(개당)로 생성. tables 가 nil 이면 빈 테이블.
func NewResolver(tables *LookupTables, defaultFee int64) *Resolver {
	if tables == nil {
		tables = EmptyLookupTables()
	}
	if defaultFee < 0 {
		defaultFee = 0
	}
	return &Resolver{tables: tables, defaultFee: defaultFee}
}

// UnitShippingFee 개당 택배비와 결정된 조회 단계
func (r *Resolver) UnitShippingFee(code, name, option string) (int64, model.ShippingTier) {
	t := r.tables
	if code != "" {
		if fee, ok := t.byCodeOption[productKey{code, option}]; ok {
			return fee, model.TierCodeOption
		}
	}
	if name != "" {
		if fee, ok := t.byNameOption[productKey{name, option}]; ok {
			return fee, model.TierNameOption
		}
	}
	if code != "" {
		if fee, ok := t.byCode[code]; ok {
			return fee, model.TierCode
		}
	}
	if name != "" {
		if fee, ok := t.byName[name]; ok {
			return fee, model.TierName
		}
	}
	if r.defaultFee > 0 {
		return r.defaultFee, model.TierManual
	}
	return 0, model.TierNone
}

// Resolve 행 하나를 보정
func (r *Resolver) Resolve(line model.RawOrderLine) model.EnrichedOrderLine {
	opt := parser.NormalizeOption(line.OptionText)
	fee, tier := r.UnitShippingFee(line.ProductCode, line.ProductName, opt)

	out := model.EnrichedOrderLine{
		RawOrderLine:       line,
		NormalizedOption:   opt,
		ShippingCost:       -(fee * line.Quantity),
		ResolvedSaleAmount: line.SaleAmount,
		ShippingTier:       tier,
	}

	// 미정산 행 (판매금액 0) 은 단가 × 수량으로 채운다
	if line.SaleAmount == 0 {
		if price, ok := r.tables.priceByName[productKey{line.ProductName, opt}]; ok {
			qty := line.Quantity
			if qty < 1 {
				qty = 1
			}
			out.ResolvedSaleAmount = price * qty
			out.PriceBackfilled = true
		}
	}
	return out
}

// ResolveAll 모든 행을 보정
func (r *Resolver) ResolveAll(lines []model.RawOrderLine) []model.EnrichedOrderLine {
	out := make([]model.EnrichedOrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, r.Resolve(l))
	}
	return out
}
