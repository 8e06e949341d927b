package settlement

import (
	"testing"

	"github.com/smc020412/naverSmartStore/internal/model"
)

func TestClassify_Predicate(t *testing.T) {
	t.Parallel()

	d := day(2024, 5, 1)
	cases := []struct {
		name  string
		order model.AggregatedOrder
		valid bool
	}{
		{"all good", model.AggregatedOrder{Quantity: 1, SaleAmount: 100, SettlementDate: d}, true},
		{"zero quantity", model.AggregatedOrder{Quantity: 0, SaleAmount: 99999, SettlementDate: d}, false},
		{"zero sale", model.AggregatedOrder{Quantity: 3, SaleAmount: 0, SettlementDate: d}, false},
		{"negative sale", model.AggregatedOrder{Quantity: 3, SaleAmount: -10, SettlementDate: d}, false},
		{"no date", model.AggregatedOrder{Quantity: 3, SaleAmount: 100}, false},
	}
	for _, tc := range cases {
		o := tc.order
		if got := IsValid(&o); got != tc.valid {
			t.Fatalf("%s: want valid=%v got %v", tc.name, tc.valid, got)
		}
	}
}

func TestClassify_Partition(t *testing.T) {
	t.Parallel()

	d := day(2024, 5, 1)
	orders := []*model.AggregatedOrder{
		{OrderID: "A", Quantity: 1, SaleAmount: 100, SettlementDate: d},
		{OrderID: "B", Quantity: 0, SaleAmount: 100, SettlementDate: d},
		{OrderID: "C", Quantity: 2, SaleAmount: 50, SettlementDate: d},
		{OrderID: "D", Quantity: 2, SaleAmount: 50},
	}
	valid, invalid := Classify(orders)

	if len(valid)+len(invalid) != len(orders) {
		t.Fatalf("partition lost orders: %d + %d != %d", len(valid), len(invalid), len(orders))
	}
	seen := map[string]int{}
	for _, o := range valid {
		seen[o.OrderID]++
	}
	for _, o := range invalid {
		seen[o.OrderID]++
	}
	for _, o := range orders {
		if seen[o.OrderID] != 1 {
			t.Fatalf("order %s appears %d times", o.OrderID, seen[o.OrderID])
		}
	}
	if valid[0].OrderID != "A" || valid[1].OrderID != "C" {
		t.Fatalf("valid order not preserved: %v", valid)
	}
}

func TestSummarize_Totals(t *testing.T) {
	t.Parallel()

	orders := []*model.AggregatedOrder{
		{Quantity: 2, SaleAmount: 20000, Commission: -1000, ShippingCost: -3000, DeliveryStatus: "배송중"},
		{Quantity: 1, SaleAmount: 5000, Commission: -250, ShippingCost: 0, DeliveryStatus: "구매확정", SettlementStatus: "빠른정산"},
		{Quantity: 4, SaleAmount: 8000, Commission: 0, ShippingCost: -2000, DeliveryStatus: "배송완료"},
	}
	s := Summarize(orders, DefaultStatusLabels)

	if s.TotalQuantity != 7 || s.TotalSaleAmount != 33000 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.TotalCommission != -1250 || s.TotalShippingCost != -5000 {
		t.Fatalf("unexpected outflows: %+v", s)
	}
	if s.TotalOutlay != -6250 {
		t.Fatalf("outlay=%d", s.TotalOutlay)
	}
	if s.TotalProfit != s.TotalSaleAmount+s.TotalCommission+s.TotalShippingCost {
		t.Fatalf("profit %d != sale+commission+shipping", s.TotalProfit)
	}

	want := map[string]int64{"배송중": 2, "배송완료": 4, "구매확정": 1, "빠른정산": 1}
	if len(s.StatusQuantities) != len(DefaultStatusLabels) {
		t.Fatalf("status rows=%d", len(s.StatusQuantities))
	}
	for i, sq := range s.StatusQuantities {
		if sq.Label != DefaultStatusLabels[i] {
			t.Fatalf("label order changed: %v", s.StatusQuantities)
		}
		if sq.Quantity != want[sq.Label] {
			t.Fatalf("%s want=%d got=%d", sq.Label, want[sq.Label], sq.Quantity)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, []string{"배송중"})
	if s.TotalProfit != 0 || s.TotalQuantity != 0 {
		t.Fatalf("empty summary should be zero: %+v", s)
	}
	if len(s.StatusQuantities) != 1 || s.StatusQuantities[0].Quantity != 0 {
		t.Fatalf("unexpected status rows: %+v", s.StatusQuantities)
	}
}
