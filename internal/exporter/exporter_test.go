package exporter_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smc020412/naverSmartStore/internal/exporter"
	"github.com/smc020412/naverSmartStore/internal/model"
)

func sampleReport() *model.Report {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &model.Report{
		RunID: "run-1",
		Valid: model.Section{
			Name: "정상",
			Orders: []*model.AggregatedOrder{{
				OrderID: "A100", SettlementDate: &d, ProductName: "Widget", Option: "Red",
				Quantity: 5, SaleAmount: 2500, Commission: -50, ShippingCost: -2500, NetProfit: -50,
				DeliveryStatus: "배송완료", SettlementStatus: "정산완료",
			}},
			Summary: model.Summary{
				TotalQuantity: 5, TotalSaleAmount: 2500, TotalCommission: -50,
				TotalShippingCost: -2500, TotalOutlay: -2550, TotalProfit: -50,
				StatusQuantities: []model.StatusQuantity{{Label: "배송중", Quantity: 0}, {Label: "배송완료", Quantity: 5}},
			},
		},
		Invalid: model.Section{
			Name: "문제",
			Orders: []*model.AggregatedOrder{{
				OrderID: "Z900", ProductName: "Gadget", Quantity: 1, SaleAmount: 7000, ShippingCost: -300,
				NetProfit: 6700, Misc: "반품요청",
			}},
		},
		Failures: []model.FileFailure{{Name: "c.xlsx", Kind: "schema", Reason: "주문번호 컬럼 없음"}},
	}
}

func TestExporter_Layout(t *testing.T) {
	t.Parallel()

	var progress []int
	f, err := exporter.NewExporter(exporter.Options{}).Export(sampleReport(), func(e exporter.ProgressEvent) {
		progress = append(progress, e.Percent)
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "정상" || sheets[1] != "문제" || sheets[2] != "오류" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
	if progress[len(progress)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", progress)
	}

	rows, err := f.GetRows("정상")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if rows[0][0] != "주문번호" || rows[0][5] != "판매금액" || rows[0][11] != "기타" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "A100" || rows[1][1] != "2024-05-01" || rows[1][4] != "5" || rows[1][7] != "-2500" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
	if len(rows[2]) != 0 {
		t.Fatalf("want blank row before summary got %v", rows[2])
	}

	wantSummary := [][2]string{
		{"총판매량", "5"}, {"총금액", "2500"}, {"총수수료", "-50"}, {"총택배비", "-2500"},
		{"총지출", "-2550"}, {"총이익", "-50"}, {"배송중", "0"}, {"배송완료", "5"},
	}
	if len(rows) != 3+len(wantSummary) {
		t.Fatalf("want %d rows got %d", 3+len(wantSummary), len(rows))
	}
	for i, w := range wantSummary {
		r := rows[3+i]
		if len(r) != 7 || r[5] != w[0] || r[6] != w[1] {
			t.Fatalf("summary row %d want %v got %v", i, w, r)
		}
	}

	invalid, _ := f.GetRows("문제")
	if invalid[1][0] != "Z900" || invalid[1][1] != "" || invalid[1][11] != "반품요청" {
		t.Fatalf("unexpected invalid row: %v", invalid[1])
	}

	failures, _ := f.GetRows("오류")
	if len(failures) != 2 || failures[1][0] != "c.xlsx" || failures[1][1] != "schema" {
		t.Fatalf("unexpected failure sheet: %v", failures)
	}
}

func TestExporter_WriteToRoundTrip(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Failures = nil

	var buf bytes.Buffer
	e := exporter.NewExporter(exporter.Options{ValidSheet: "OK", InvalidSheet: "OK"})
	if err := e.WriteTo(&buf, report); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "OK" || sheets[1] != "문제" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
}

func TestExporter_NilReport(t *testing.T) {
	t.Parallel()

	if _, err := exporter.NewExporter(exporter.Options{}).Export(nil, nil); err == nil {
		t.Fatalf("want error for nil report")
	}
}
