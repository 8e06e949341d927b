package v1

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/metrics"
)

const downloadTTL = 10 * time.Minute

// Handler V1 API 핸들러
type Handler struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	metrics   *metrics.Registry
	downloads *exportDownloadStore
	exportDir string
	version   string
	startedAt time.Time

	mu      sync.Mutex
	runs    int
	lastRun *runInfo
}

type runInfo struct {
	RunID         string    `json:"runId"`
	FinishedAt    time.Time `json:"finishedAt"`
	ValidOrders   int       `json:"validOrders"`
	InvalidOrders int       `json:"invalidOrders"`
	FailedFiles   int       `json:"failedFiles"`
}

// Deps 핸들러 의존성
type Deps struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Metrics   *metrics.Registry
	ExportDir string // 비어 있으면 임시 디렉터리
	Version   string
}

// NewHandler V1 API 핸들러 생성
func NewHandler(deps Deps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		metrics:   deps.Metrics,
		downloads: newExportDownloadStore(),
		exportDir: deps.ExportDir,
		version:   deps.Version,
		startedAt: time.Now(),
	}
}

// RegisterRoutes V1 API 라우트 등록
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 시스템 상태
	router.GET("/status", h.GetStatus)
	// 설정 조회
	router.GET("/config", h.GetConfig)

	// 정산 실행
	router.POST("/reconcile", h.Reconcile)
	router.POST("/reconcile/stream", h.ReconcileStream)

	// 결과 다운로드 (1회용)
	router.GET("/export/download/:token", h.DownloadExport)
}
