package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusResponse 시스템 상태 응답
type StatusResponse struct {
	Version          string   `json:"version"`
	UptimeSeconds    int64    `json:"uptimeSeconds"`
	Runs             int      `json:"runs"`              // 성공한 정산 횟수
	PendingDownloads int      `json:"pendingDownloads"`  // 아직 받지 않은 결과 파일
	LastRun          *runInfo `json:"lastRun,omitempty"` // 마지막 정산
}

// GetStatus 시스템 상태 조회
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	h.mu.Lock()
	resp := StatusResponse{
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Runs:          h.runs,
	}
	if h.lastRun != nil {
		last := *h.lastRun
		resp.LastRun = &last
	}
	h.mu.Unlock()

	resp.PendingDownloads = h.downloads.size()
	c.JSON(http.StatusOK, resp)
}

// StartJanitor 만료된 다운로드 파일을 주기적으로 정리. ctx 가 끝나면 멈춘다.
func (h *Handler) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := h.downloads.purgeExpired(); n > 0 {
					h.logger.Debug("purged expired exports", zap.Int("count", n))
				}
			}
		}
	}()
}
