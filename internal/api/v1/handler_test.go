package v1

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/metrics"
	"github.com/smc020412/naverSmartStore/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type upload struct {
	field string
	name  string
	data  []byte
}

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()

	h := NewHandler(Deps{
		Config:    config.DefaultConfig(),
		Logger:    zaptest.NewLogger(t),
		Metrics:   metrics.NewRegistry(),
		ExportDir: t.TempDir(),
		Version:   "test",
	})
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, h
}

func orderWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"주문번호", "상품번호", "상품명", "수량", "판매금액", "정산완료일", "주문상태"},
		{"A100", "P1", "Widget", "2", "10000", "2024-05-01", "배송완료"},
		{"B200", "P2", "Gadget", "1", "3000", "2024-06-10", "배송중"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, uploads ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, u := range uploads {
		fw, err := w.CreateFormFile(u.field, u.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(u.data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestReconcile_AndDownloadOnce(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	req := multipartRequest(t, "/api/reconcile", map[string]string{"from": "2024-05-01", "to": "2024-05-31"},
		upload{"files", "orders.xlsx", orderWorkbook(t)},
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp ReconcileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Report.Valid.Orders) != 1 || resp.Report.Valid.Orders[0].OrderID != "A100" {
		t.Fatalf("date filter not applied: %+v", resp.Report.Valid.Orders)
	}
	if !strings.HasPrefix(resp.DownloadURL, "/api/export/download/") {
		t.Fatalf("downloadUrl=%q", resp.DownloadURL)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content-type=%q", ct)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("downloaded file is not a workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != "정상" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second download should be gone, status=%d", w.Code)
	}
}

func TestReconcile_BadInput(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	cases := []struct {
		name    string
		fields  map[string]string
		uploads []upload
	}{
		{"no files", nil, nil},
		{"bad from", map[string]string{"from": "2024/05/01"}, []upload{{"files", "a.xlsx", []byte("x")}}},
		{"to before from", map[string]string{"from": "2024-05-02", "to": "2024-05-01"}, []upload{{"files", "a.xlsx", []byte("x")}}},
		{"bad fee", map[string]string{"defaultShippingFee": "-1"}, []upload{{"files", "a.xlsx", []byte("x")}}},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "/api/reconcile", tc.fields, tc.uploads...))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400 got %d body=%s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestReconcile_EmptyBatch(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/reconcile", nil,
		upload{"files", "a.xlsx", []byte("not a workbook")},
		upload{"files", "b.xlsx", []byte("also not")},
	))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422 got %d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Error    string              `json:"error"`
		Failures []model.FileFailure `json:"failures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Failures) != 2 || body.Failures[0].Name != "a.xlsx" {
		t.Fatalf("unexpected failures: %+v", body.Failures)
	}
}

func TestReconcileStream(t *testing.T) {
	t.Parallel()

	r, h := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/reconcile/stream", map[string]string{"products": "P2"},
		upload{"files", "orders.xlsx", orderWorkbook(t)},
	))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}

	var events []map[string]json.RawMessage
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var e map[string]json.RawMessage
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
		events = append(events, e)
	}
	if len(events) < 3 {
		t.Fatalf("too few events: %d", len(events))
	}

	// 완료 직전에 엑셀 출력 진행률이 차례로 전송된다
	var percents []int
	for _, e := range events {
		if string(e["type"]) != `"export_progress"` {
			continue
		}
		var p struct {
			Percent int `json:"percent"`
		}
		if err := json.Unmarshal(e["data"], &p); err != nil {
			t.Fatalf("decode export progress: %v", err)
		}
		percents = append(percents, p.Percent)
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("export progress=%v", percents)
	}
	if prev := events[len(events)-2]; string(prev["type"]) != `"export_progress"` {
		t.Fatalf("event before done=%s", prev["type"])
	}

	last := events[len(events)-1]
	if string(last["type"]) != `"done"` {
		t.Fatalf("last event type=%s", last["type"])
	}
	var done ReconcileResponse
	if err := json.Unmarshal(last["data"], &done); err != nil {
		t.Fatalf("decode done: %v", err)
	}
	if done.DownloadURL == "" || len(done.Report.Valid.Orders) != 1 || done.Report.Valid.Orders[0].OrderID != "B200" {
		t.Fatalf("unexpected done payload: %+v", done)
	}
	if h.downloads.size() != 1 {
		t.Fatalf("pending downloads=%d", h.downloads.size())
	}
}

func TestReconcileStream_Error(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/reconcile/stream", nil,
		upload{"files", "a.xlsx", []byte("nope")},
	))
	body := w.Body.String()
	if !strings.Contains(body, `"type":"file_error"`) || !strings.Contains(body, `"type":"error"`) {
		t.Fatalf("missing error events:\n%s", body)
	}
	if !strings.Contains(body, `"failures"`) {
		t.Fatalf("error event should carry failures:\n%s", body)
	}
}

func TestStatusAndConfig(t *testing.T) {
	t.Parallel()

	r, h := newTestRouter(t)
	h.observe(&model.Report{RunID: "run-1"}, nil, time.Millisecond)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Version != "test" || status.Runs != 1 || status.LastRun == nil || status.LastRun.RunID != "run-1" {
		t.Fatalf("unexpected status: %+v", status)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	var cfg ConfigResponse
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if len(cfg.StatusLabels) != 4 || cfg.ValidSheet != "정상" || cfg.DownloadTTLSeconds != 600 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestExportDownloadStore_Expiry(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/x.xlsx"
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newExportDownloadStore()
	s.now = func() time.Time { return now }

	token := s.put(path, "run", now, time.Minute)
	now = now.Add(2 * time.Minute)
	if _, ok := s.take(token); ok {
		t.Fatalf("expired token should not be served")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expired file should be removed, stat err=%v", err)
	}

	token = s.put(path, "run", now, time.Minute)
	if _, ok := s.take(token); !ok {
		t.Fatalf("fresh token should be served")
	}
	if _, ok := s.take(token); ok {
		t.Fatalf("token must be one-shot")
	}

	s.put(path, "a", now, time.Minute)
	s.put(path, "b", now, time.Hour)
	now = now.Add(10 * time.Minute)
	if n := s.purgeExpired(); n != 1 || s.size() != 1 {
		t.Fatalf("purged=%d remaining=%d", n, s.size())
	}
}

func TestBuildExportContentDisposition(t *testing.T) {
	t.Parallel()

	got := buildExportContentDisposition(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	want := "attachment; filename=\"settlement-20240501-093000.xlsx\"; filename*=UTF-8''%EC%A0%95%EC%82%B0_2024-05-01.xlsx"
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}
