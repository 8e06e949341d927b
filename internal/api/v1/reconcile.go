package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/exporter"
	"github.com/smc020412/naverSmartStore/internal/importer"
	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

const (
	formDateLayout = "2006-01-02"
	maxUploadBytes = 64 << 20
)

// badRequestError 폼 입력 오류 (400)
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// ReconcileResponse 정산 결과 응답
type ReconcileResponse struct {
	Report      *model.Report `json:"report"`
	DownloadURL string        `json:"downloadUrl"`
}

// Reconcile 정산 실행 (JSON 응답)
// POST /api/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	start := time.Now()
	report, err := importer.NewCoordinator(h.logger).Run(c.Request.Context(), req)
	h.observe(report, err, time.Since(start))
	if err != nil {
		h.writeError(c, err)
		return
	}

	url, err := h.export(c, report, nil)
	if err != nil {
		h.logger.Error("export failed", zap.String("run_id", report.RunID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "엑셀 출력 실패: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, ReconcileResponse{Report: report, DownloadURL: url})
}

// ReconcileStream 정산 실행 (SSE 진행 이벤트 + 완료 시 다운로드 주소)
// POST /api/reconcile/stream
func (h *Handler) ReconcileStream(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "스트리밍 응답을 지원하지 않습니다"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	start := time.Now()
	for event := range importer.NewCoordinator(h.logger).Import(c.Request.Context(), req) {
		switch event.Type {
		case "done":
			report, _ := event.Data.(*model.Report)
			h.observe(report, nil, time.Since(start))
			url, err := h.export(c, report, func(p exporter.ProgressEvent) {
				send(importer.ProgressEvent{
					Type:      "export_progress",
					Message:   p.Stage,
					Data:      p,
					Timestamp: time.Now(),
				})
			})
			if err != nil {
				send(importer.ProgressEvent{
					Type:      "error",
					Message:   "엑셀 출력 실패: " + err.Error(),
					Data:      gin.H{},
					Timestamp: time.Now(),
				})
				continue
			}
			event.Data = ReconcileResponse{Report: report, DownloadURL: url}
			send(event)
		case "error":
			err, _ := event.Data.(error)
			h.observe(nil, err, time.Since(start))
			event.Data = errorPayload(err)
			send(event)
		default:
			send(event)
		}
	}
}

func (h *Handler) parseRequest(c *gin.Context) (importer.Request, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		return importer.Request{}, badRequest("잘못된 폼 데이터입니다")
	}

	files := form.File["files"]
	if len(files) == 0 {
		return importer.Request{}, badRequest("업로드된 주문 파일이 없습니다")
	}

	req := importer.Request{
		Orders:   make([]importer.Source, 0, len(files)),
		Password: c.PostForm("password"),
	}
	for _, fh := range files {
		src, err := readUpload(fh)
		if err != nil {
			return importer.Request{}, err
		}
		req.Orders = append(req.Orders, src)
	}
	if prices := form.File["prices"]; len(prices) > 0 {
		src, err := readUpload(prices[0])
		if err != nil {
			return importer.Request{}, err
		}
		req.Prices = &src
	}

	opts, err := h.parseOptions(c)
	if err != nil {
		return importer.Request{}, err
	}
	req.Options = opts
	return req, nil
}

func (h *Handler) parseOptions(c *gin.Context) (settlement.Options, error) {
	opts := settlement.Options{
		DefaultShippingFee: h.cfg.Report.DefaultShippingFee,
	}
	if len(h.cfg.Report.StatusLabels) > 0 {
		opts.StatusLabels = h.cfg.Report.StatusLabels
	}

	from, err := parseFormDate(c.PostForm("from"))
	if err != nil {
		return opts, badRequest("from 날짜 형식이 올바르지 않습니다 (YYYY-MM-DD): %s", c.PostForm("from"))
	}
	to, err := parseFormDate(c.PostForm("to"))
	if err != nil {
		return opts, badRequest("to 날짜 형식이 올바르지 않습니다 (YYYY-MM-DD): %s", c.PostForm("to"))
	}
	if from != nil && to != nil && to.Before(*from) {
		return opts, badRequest("to 날짜가 from 보다 앞설 수 없습니다")
	}
	opts.Filter.From = from
	opts.Filter.To = to
	opts.Filter.Products = splitList(c.PostForm("products"))

	if v := strings.TrimSpace(c.PostForm("defaultShippingFee")); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			return opts, badRequest("defaultShippingFee 값이 올바르지 않습니다: %s", v)
		}
		opts.DefaultShippingFee = fee
	}
	return opts, nil
}

func readUpload(fh *multipart.FileHeader) (importer.Source, error) {
	f, err := fh.Open()
	if err != nil {
		return importer.Source{}, badRequest("파일을 읽을 수 없습니다: %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return importer.Source{}, badRequest("파일을 읽을 수 없습니다: %s", fh.Filename)
	}
	return importer.Source{Name: fh.Filename, Data: data}, nil
}

func parseFormDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(formDateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func errorPayload(err error) gin.H {
	var eb *settlement.EmptyBatchError
	if errors.As(err, &eb) {
		return gin.H{"failures": eb.Failures}
	}
	return gin.H{}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var br *badRequestError
	var eb *settlement.EmptyBatchError
	switch {
	case errors.As(err, &br):
		c.JSON(http.StatusBadRequest, gin.H{"error": br.msg})
	case errors.As(err, &eb):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": eb.Error(), "failures": eb.Failures})
	default:
		h.logger.Error("reconcile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) observe(report *model.Report, err error, took time.Duration) {
	h.metrics.Observe(report, err, took)
	if report == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
	h.lastRun = &runInfo{
		RunID:         report.RunID,
		FinishedAt:    time.Now(),
		ValidOrders:   len(report.Valid.Orders),
		InvalidOrders: len(report.Invalid.Orders),
		FailedFiles:   len(report.Failures),
	}
}
