package settlement

import (
	"strings"

	"github.com/smc020412/naverSmartStore/internal/model"
)

const miscSeparator = ", "

// Aggregate 주문번호별로 한 행으로 합친다 (첫 등장 순서 유지).
//   - 수량/판매금액/수수료/택배비: 합계
//   - 상품명/옵션/배송상태/정산현황: 처음 나온 비어 있지 않은 값
//   - 기타(클레임상태): 중복 없는 비어 있지 않은 값들을 ", " 로 연결
//   - 일자: 처음 나온 날짜
func Aggregate(lines []model.EnrichedOrderLine) []*model.AggregatedOrder {
	index := make(map[string]*model.AggregatedOrder)
	miscSeen := make(map[string]map[string]struct{})
	orders := make([]*model.AggregatedOrder, 0)

	for i := range lines {
		l := &lines[i]

		agg, ok := index[l.OrderID]
		if !ok {
			agg = &model.AggregatedOrder{OrderID: l.OrderID}
			index[l.OrderID] = agg
			miscSeen[l.OrderID] = make(map[string]struct{})
			orders = append(orders, agg)
		}

		agg.LineCount++
		agg.Quantity += l.Quantity
		agg.SaleAmount += l.ResolvedSaleAmount
		agg.Commission += l.Commission
		agg.ShippingCost += l.ShippingCost

		if agg.SettlementDate == nil && l.SettlementDate != nil {
			d := *l.SettlementDate
			agg.SettlementDate = &d
		}
		firstNonEmpty(&agg.ProductName, l.ProductName)
		firstNonEmpty(&agg.Option, l.NormalizedOption)
		firstNonEmpty(&agg.DeliveryStatus, l.DeliveryStatus)
		firstNonEmpty(&agg.SettlementStatus, l.SettlementStatus)

		if misc := strings.TrimSpace(l.MiscClaimStatus); misc != "" {
			seen := miscSeen[l.OrderID]
			if _, dup := seen[misc]; !dup {
				seen[misc] = struct{}{}
				if agg.Misc == "" {
					agg.Misc = misc
				} else {
					agg.Misc += miscSeparator + misc
				}
			}
		}
	}

	for _, o := range orders {
		o.NetProfit = NetProfit(o.SaleAmount, o.Commission, o.ShippingCost)
	}
	return orders
}

// NetProfit 순이익 = 판매금액 + 수수료 + 택배비 (수수료/택배비는 부호 있는 지출)
func NetProfit(sale, commission, shipping int64) int64 {
	return sale + commission + shipping
}

func firstNonEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
