package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/trace"
)

const (
	ValidSectionName   = "정상"
	InvalidSectionName = "문제"
)

// Options 실행 옵션
type Options struct {
	Filter             Filter
	DefaultShippingFee int64    // 상품목록에 없을 때 개당 택배비
	StatusLabels       []string // nil 이면 DefaultStatusLabels
}

// Input 디코딩이 끝난 배치 입력
type Input struct {
	Orders   []*model.Table
	Prices   *model.Table // 없으면 nil
	Files    []model.FileResult
	Failures []model.FileFailure // 디코딩 단계에서 이미 건너뛴 파일
}

// Pipeline 정규화 → 보정 → 집계 → 분류
type Pipeline struct {
	normalizer *Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline 파이프라인 생성
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		normalizer: NewNormalizer(),
		logger:     logger,
		now:        time.Now,
	}
}

// Run 배치 1회 실행. 사용할 수 있는 행이 하나도 없으면 EmptyBatchError.
func (p *Pipeline) Run(ctx context.Context, in Input, opts Options) (*model.Report, error) {
	ctx, span := trace.StartSpan(ctx, "settlement.run",
		attribute.Int("files", len(in.Orders)),
	)
	defer span.End()

	labels := opts.StatusLabels
	if labels == nil {
		labels = DefaultStatusLabels
	}

	report := &model.Report{
		RunID:       uuid.New().String(),
		GeneratedAt: p.now(),
		Files:       append([]model.FileResult{}, in.Files...),
		Failures:    append([]model.FileFailure{}, in.Failures...),
	}

	tables := p.buildLookupTables(ctx, in.Prices, report)

	lines, usable := p.normalizeAll(ctx, in.Orders, report)
	if usable == 0 {
		return nil, &EmptyBatchError{Failures: report.Failures}
	}

	_, fspan := trace.StartSpan(ctx, "settlement.filter")
	filtered := opts.Filter.Apply(lines)
	fspan.SetAttributes(attribute.Int("rows.in", len(lines)), attribute.Int("rows.out", len(filtered)))
	fspan.End()

	_, rspan := trace.StartSpan(ctx, "settlement.resolve")
	enriched := NewResolver(tables, opts.DefaultShippingFee).ResolveAll(filtered)
	rspan.End()

	_, aspan := trace.StartSpan(ctx, "settlement.aggregate")
	orders := Aggregate(enriched)
	aspan.SetAttributes(attribute.Int("orders", len(orders)))
	aspan.End()

	valid, invalid := Classify(orders)
	report.Valid = BuildSection(ValidSectionName, valid, labels)
	report.Invalid = BuildSection(InvalidSectionName, invalid, labels)

	p.logger.Info("settlement run finished",
		zap.String("run_id", report.RunID),
		zap.Int("rows", len(lines)),
		zap.Int("rows_after_filter", len(filtered)),
		zap.Int("valid_orders", len(valid)),
		zap.Int("invalid_orders", len(invalid)),
		zap.Int("failed_files", len(report.Failures)),
	)
	return report, nil
}

// buildLookupTables 상품목록 시트가 잘못되었으면 실패로 기록하고 빈 테이블로 진행
func (p *Pipeline) buildLookupTables(ctx context.Context, prices *model.Table, report *model.Report) *LookupTables {
	if prices == nil {
		return EmptyLookupTables()
	}
	_, span := trace.StartSpan(ctx, "settlement.lookup_tables")
	defer span.End()

	entries, err := ParsePriceSheet(prices)
	if err != nil {
		p.recordFailure(report, prices, "prices", err)
		return EmptyLookupTables()
	}
	span.SetAttributes(attribute.Int("entries", len(entries)))
	return NewLookupTables(entries)
}

// normalizeAll 파일 단위로 정규화. 스키마 오류 파일은 건너뛴다.
func (p *Pipeline) normalizeAll(ctx context.Context, tables []*model.Table, report *model.Report) ([]model.RawOrderLine, int) {
	_, span := trace.StartSpan(ctx, "settlement.normalize")
	defer span.End()

	all := make([]model.RawOrderLine, 0)
	usable := 0
	for _, t := range tables {
		lines, err := p.normalizer.Normalize(t)
		if err != nil {
			p.recordFailure(report, t, "orders", err)
			continue
		}
		if len(lines) > 0 {
			usable++
		}
		p.markRows(report, t.FileID, len(lines))
		all = append(all, lines...)
	}
	span.SetAttributes(attribute.Int("rows", len(all)))
	return all, usable
}

func (p *Pipeline) recordFailure(report *model.Report, t *model.Table, kind string, err error) {
	failureKind := "schema"
	var se *SchemaError
	if !errors.As(err, &se) {
		failureKind = "file_access"
	}
	p.logger.Warn("skipping file",
		zap.String("file", t.Name),
		zap.String("kind", kind),
		zap.Error(err),
	)
	report.Failures = append(report.Failures, model.FileFailure{
		Name:   t.Name,
		Kind:   failureKind,
		Reason: err.Error(),
	})
	if f := findFile(report, t.FileID); f != nil {
		f.Status = model.FileSkipped
		f.Error = err.Error()
	}
}

func (p *Pipeline) markRows(report *model.Report, fileID string, rows int) {
	if f := findFile(report, fileID); f != nil {
		f.Rows = rows
	}
}

func findFile(report *model.Report, fileID string) *model.FileResult {
	if fileID == "" {
		return nil
	}
	for i := range report.Files {
		if report.Files[i].FileID == fileID {
			return &report.Files[i]
		}
	}
	return nil
}
