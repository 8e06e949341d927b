package settlement

import (
	"github.com/smc020412/naverSmartStore/internal/model"
)

// DefaultStatusLabels 요약에 수량을 따로 집계하는 상태 라벨
var DefaultStatusLabels = []string{"배송중", "배송완료", "구매확정", "빠른정산"}

// IsValid 수량 > 0, 판매금액 > 0, 일자 있음
func IsValid(o *model.AggregatedOrder) bool {
	return o.Quantity > 0 && o.SaleAmount > 0 && o.SettlementDate != nil
}

// Classify 정상/문제 주문으로 나눈다 (입력 순서 유지)
func Classify(orders []*model.AggregatedOrder) (valid, invalid []*model.AggregatedOrder) {
	valid = make([]*model.AggregatedOrder, 0, len(orders))
	invalid = make([]*model.AggregatedOrder, 0)
	for _, o := range orders {
		if IsValid(o) {
			valid = append(valid, o)
		} else {
			invalid = append(invalid, o)
		}
	}
	return valid, invalid
}

// Summarize 섹션 합계 계산
func Summarize(orders []*model.AggregatedOrder, labels []string) model.Summary {
	s := model.Summary{
		StatusQuantities: make([]model.StatusQuantity, len(labels)),
	}
	for i, label := range labels {
		s.StatusQuantities[i].Label = label
	}

	for _, o := range orders {
		s.TotalQuantity += o.Quantity
		s.TotalSaleAmount += o.SaleAmount
		s.TotalCommission += o.Commission
		s.TotalShippingCost += o.ShippingCost

		for i, label := range labels {
			if o.DeliveryStatus == label || o.SettlementStatus == label {
				s.StatusQuantities[i].Quantity += o.Quantity
			}
		}
	}

	s.TotalOutlay = s.TotalCommission + s.TotalShippingCost
	s.TotalProfit = s.TotalSaleAmount + s.TotalOutlay
	return s
}

// BuildSection 주문 목록으로 섹션 생성
func BuildSection(name string, orders []*model.AggregatedOrder, labels []string) model.Section {
	return model.Section{
		Name:    name,
		Orders:  orders,
		Summary: Summarize(orders, labels),
	}
}
