package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/exporter"
	"github.com/smc020412/naverSmartStore/internal/importer"
	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
	"github.com/smc020412/naverSmartStore/internal/util"
)

// batchOptions 명령행 배치 실행 옵션
type batchOptions struct {
	Files    []string
	Prices   string
	Password string
	From     string
	To       string
	Products string
	Fee      int64 // 음수면 설정값 사용
	Out      string
}

func buildRequest(opts batchOptions, cfg *config.AppConfig) (importer.Request, error) {
	req := importer.Request{Password: opts.Password}

	for _, path := range opts.Files {
		src, err := readSource(path)
		if err != nil {
			return req, err
		}
		req.Orders = append(req.Orders, src)
	}
	if opts.Prices != "" {
		src, err := readSource(opts.Prices)
		if err != nil {
			return req, err
		}
		req.Prices = &src
	}

	req.Options.DefaultShippingFee = cfg.Report.DefaultShippingFee
	if opts.Fee >= 0 {
		req.Options.DefaultShippingFee = opts.Fee
	}
	if len(cfg.Report.StatusLabels) > 0 {
		req.Options.StatusLabels = cfg.Report.StatusLabels
	}

	var err error
	if req.Options.Filter.From, err = parseDate(opts.From); err != nil {
		return req, fmt.Errorf("-from: %w", err)
	}
	if req.Options.Filter.To, err = parseDate(opts.To); err != nil {
		return req, fmt.Errorf("-to: %w", err)
	}
	for _, p := range strings.Split(opts.Products, ",") {
		if p = strings.TrimSpace(p); p != "" {
			req.Options.Filter.Products = append(req.Options.Filter.Products, p)
		}
	}
	return req, nil
}

// 파일을 읽지 못해도 배치는 계속한다. 빈 데이터는 디코더가 실패로 기록한다.
func readSource(path string) (importer.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) && !os.IsPermission(err) {
		return importer.Source{}, err
	}
	return importer.Source{Name: filepath.Base(path), Data: data}, nil
}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("날짜 형식은 YYYY-MM-DD 입니다: %q", v)
	}
	return &t, nil
}

// runBatch 한 번 정산하고 결과 엑셀 경로를 반환
func runBatch(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig, opts batchOptions, stdout io.Writer) (string, error) {
	req, err := buildRequest(opts, cfg)
	if err != nil {
		return "", err
	}

	report, err := importer.NewCoordinator(logger).Run(ctx, req)
	if err != nil {
		return "", err
	}

	out := opts.Out
	if out == "" {
		out = fmt.Sprintf("settlement_%s.xlsx", report.GeneratedAt.Format("20060102_150405"))
	}
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("출력 파일 생성 실패: %w", err)
	}
	exp := exporter.NewExporter(exporter.Options{
		ValidSheet:   cfg.Report.ValidSheet,
		InvalidSheet: cfg.Report.InvalidSheet,
	})
	if err := exp.WriteTo(f, report); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	printSummary(stdout, report, out)
	return out, nil
}

func printSummary(w io.Writer, report *model.Report, out string) {
	fmt.Fprintf(w, "정산 완료: %s\n", out)
	for _, s := range []model.Section{report.Valid, report.Invalid} {
		fmt.Fprintf(w, "  [%s] 주문 %d건, 수량 %d, 금액 %s, 이익 %s\n",
			s.Name, len(s.Orders), s.Summary.TotalQuantity,
			util.FormatWon(s.Summary.TotalSaleAmount), util.FormatWon(s.Summary.TotalProfit))
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  건너뜀: %s (%s) %s\n", f.Name, f.Kind, f.Reason)
	}
}

// exitCode 오류 종류별 종료 코드
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eb *settlement.EmptyBatchError
	if errors.As(err, &eb) {
		return 2
	}
	return 1
}
