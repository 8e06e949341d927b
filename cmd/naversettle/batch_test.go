package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.xlsx")
	writeWorkbook(t, orders, [][]interface{}{
		{"주문번호", "상품번호", "상품명", "수량", "판매금액", "정산완료일"},
		{"A1", "P1", "Widget", "2", "20000", "2024-05-01"},
		{"A2", "P9", "Other", "1", "5000", "2024-05-02"},
	})
	out := filepath.Join(dir, "report.xlsx")

	var stdout bytes.Buffer
	path, err := runBatch(context.Background(), zaptest.NewLogger(t), config.DefaultConfig(), batchOptions{
		Files:    []string{orders, filepath.Join(dir, "missing.xlsx")},
		Products: "P1",
		Fee:      1500,
		Out:      out,
	}, &stdout)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if path != out {
		t.Fatalf("path=%s", path)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("정상")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if rows[1][0] != "A1" || rows[1][7] != "-3000" || rows[1][8] != "17000" {
		t.Fatalf("unexpected row: %v", rows[1])
	}

	text := stdout.String()
	if !strings.Contains(text, "20,000원") || !strings.Contains(text, "missing.xlsx") {
		t.Fatalf("unexpected summary:\n%s", text)
	}
}

func TestRunBatch_AllUnreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.xlsx")
	if err := os.WriteFile(bad, []byte("garbage"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := runBatch(context.Background(), zaptest.NewLogger(t), config.DefaultConfig(), batchOptions{
		Files: []string{bad},
		Fee:   -1,
		Out:   filepath.Join(dir, "out.xlsx"),
	}, &bytes.Buffer{})

	var eb *settlement.EmptyBatchError
	if !errors.As(err, &eb) {
		t.Fatalf("want EmptyBatchError got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code=%d", exitCode(err))
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.xlsx")); !os.IsNotExist(statErr) {
		t.Fatalf("no report should be written")
	}
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Report.DefaultShippingFee = 2500

	req, err := buildRequest(batchOptions{From: "2024-05-01", To: "2024-05-31", Products: " P1, ,P2 ", Fee: -1}, cfg)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Options.DefaultShippingFee != 2500 {
		t.Fatalf("config fee not used: %d", req.Options.DefaultShippingFee)
	}
	if got := req.Options.Filter.Products; len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Fatalf("products=%v", got)
	}
	if req.Options.Filter.From == nil || req.Options.Filter.To.Day() != 31 {
		t.Fatalf("dates not parsed: %+v", req.Options.Filter)
	}

	if _, err := buildRequest(batchOptions{From: "05/01/2024"}, cfg); err == nil {
		t.Fatalf("want error for bad date")
	}
	if exitCode(errors.New("x")) != 1 || exitCode(nil) != 0 {
		t.Fatalf("unexpected exit codes")
	}
}
