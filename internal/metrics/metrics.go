package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

// Registry 정산 실행 지표
type Registry struct {
	reg *prometheus.Registry

	Runs        *prometheus.CounterVec // result=ok/empty/error
	FilesSkip   *prometheus.CounterVec // kind=file_access/schema
	Orders      *prometheus.CounterVec // section=valid/invalid
	RunDuration prometheus.Histogram
}

// NewRegistry 전용 레지스트리에 정산 지표 등록
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "naversettle_runs_total"}, []string{"result"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "naversettle_files_skipped_total"}, []string{"kind"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "naversettle_orders_total"}, []string{"section"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "naversettle_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(runs, skipped, orders, duration)
	return &Registry{
		reg:         r,
		Runs:        runs,
		FilesSkip:   skipped,
		Orders:      orders,
		RunDuration: duration,
	}
}

// Observe 실행 1회 기록
func (r *Registry) Observe(report *model.Report, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.RunDuration.Observe(took.Seconds())

	var failures []model.FileFailure
	var eb *settlement.EmptyBatchError
	switch {
	case report != nil:
		failures = report.Failures
		r.Runs.WithLabelValues("ok").Inc()
		r.Orders.WithLabelValues("valid").Add(float64(len(report.Valid.Orders)))
		r.Orders.WithLabelValues("invalid").Add(float64(len(report.Invalid.Orders)))
	case errors.As(err, &eb):
		failures = eb.Failures
		r.Runs.WithLabelValues("empty").Inc()
	default:
		r.Runs.WithLabelValues("error").Inc()
	}
	for _, f := range failures {
		r.FilesSkip.WithLabelValues(f.Kind).Inc()
	}
}

// Gatherer 테스트용
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler /metrics 응답 핸들러
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
