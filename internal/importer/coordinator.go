package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/parser"
	"github.com/smc020412/naverSmartStore/internal/service/excel"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

const (
	kindOrders = "orders"
	kindPrices = "prices"
)

// Source 업로드된 파일 원본
type Source struct {
	Name string
	Data []byte
}

// Request 배치 1회 요청
type Request struct {
	Orders   []Source
	Prices   *Source // 상품목록 (선택)
	Password string  // 암호화된 파일용 (선택)
	Options  settlement.Options
}

// ProgressEvent 진행 이벤트
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/file_start/file_done/file_error/done/error
	Message   string      `json:"message"` // 이벤트 메시지
	Data      interface{} `json:"data"`    // 부가 데이터
	Timestamp time.Time   `json:"timestamp"`
}

// Coordinator 파일 디코딩 + 정산 파이프라인 실행
type Coordinator struct {
	decoder  *excel.Decoder
	pipeline *settlement.Pipeline
	logger   *zap.Logger
}

// NewCoordinator 코디네이터 생성
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		decoder:  excel.NewDecoder(),
		pipeline: settlement.NewPipeline(logger),
		logger:   logger,
	}
}

// Run 동기 실행
func (c *Coordinator) Run(ctx context.Context, req Request) (*model.Report, error) {
	return c.run(ctx, req, nil)
}

// Import 비동기 실행, 진행 이벤트 채널 반환. 마지막 이벤트는 done 또는 error.
func (c *Coordinator) Import(ctx context.Context, req Request) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		report, err := c.run(ctx, req, func(e ProgressEvent) {
			c.sendProgress(progressChan, e)
		})
		if err != nil {
			// 최종 이벤트는 버리지 않는다
			progressChan <- ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Data:      err,
				Timestamp: time.Now(),
			}
			return
		}
		progressChan <- ProgressEvent{
			Type:      "done",
			Message:   "정산 완료",
			Data:      report,
			Timestamp: time.Now(),
		}
	}()

	return progressChan
}

func (c *Coordinator) run(ctx context.Context, req Request, progress func(ProgressEvent)) (*model.Report, error) {
	emit := func(typ, msg string, data interface{}) {
		if progress == nil {
			return
		}
		progress(ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
	}

	emit("start", "정산 시작", map[string]interface{}{
		"order_files": len(req.Orders),
		"price_sheet": req.Prices != nil,
	})

	in := settlement.Input{
		Orders:   make([]*model.Table, 0, len(req.Orders)),
		Files:    make([]model.FileResult, 0, len(req.Orders)+1),
		Failures: []model.FileFailure{},
	}

	if req.Prices != nil {
		if t := c.decodeFile(&in, *req.Prices, kindPrices, parser.SheetKindPrices, req.Password, emit); t != nil {
			in.Prices = t
		}
	}
	for _, src := range req.Orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t := c.decodeFile(&in, src, kindOrders, parser.SheetKindOrders, req.Password, emit); t != nil {
			in.Orders = append(in.Orders, t)
		}
	}

	return c.pipeline.Run(ctx, in, req.Options)
}

// decodeFile 파일 하나를 디코딩. 실패하면 실패 기록을 정확히 1건 남기고 nil.
func (c *Coordinator) decodeFile(in *settlement.Input, src Source, kind string, sheetKind parser.SheetKind, password string, emit func(string, string, interface{})) *model.Table {
	start := time.Now()
	fileID := excel.NewFileID()

	emit("file_start", fmt.Sprintf("파일 읽는 중: %s", src.Name), map[string]string{
		"file": src.Name,
		"kind": kind,
	})

	table, err := c.decoder.Decode(src.Name, src.Data, password, sheetKind)
	if err != nil {
		c.logger.Warn("skipping unreadable file",
			zap.String("file", src.Name),
			zap.String("kind", kind),
			zap.Error(err),
		)
		in.Files = append(in.Files, model.FileResult{
			FileID: fileID,
			Name:   src.Name,
			Kind:   kind,
			Status: model.FileSkipped,
			Error:  err.Error(),
			Took:   time.Since(start),
		})
		in.Failures = append(in.Failures, model.FileFailure{
			Name:   src.Name,
			Kind:   "file_access",
			Reason: err.Error(),
		})
		emit("file_error", fmt.Sprintf("파일을 열 수 없습니다: %s", src.Name), map[string]string{
			"file":  src.Name,
			"error": err.Error(),
		})
		return nil
	}

	table.FileID = fileID
	in.Files = append(in.Files, model.FileResult{
		FileID: fileID,
		Name:   src.Name,
		Kind:   kind,
		Status: model.FileImported,
		Sheet:  table.Sheet,
		Rows:   len(table.Rows),
		Took:   time.Since(start),
	})
	emit("file_done", fmt.Sprintf("파일 읽기 완료: %s (%s, %d행)", src.Name, table.Sheet, len(table.Rows)), map[string]interface{}{
		"file":  src.Name,
		"sheet": table.Sheet,
		"rows":  len(table.Rows),
	})
	return table
}

// sendProgress 진행 이벤트 전송 (채널이 가득 차면 버림)
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
