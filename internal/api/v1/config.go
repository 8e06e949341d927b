package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smc020412/naverSmartStore/internal/service/settlement"
)

// ConfigResponse 정산 기본값 응답
type ConfigResponse struct {
	StatusLabels       []string `json:"statusLabels"`
	DefaultShippingFee int64    `json:"defaultShippingFee"`
	ValidSheet         string   `json:"validSheet"`
	InvalidSheet       string   `json:"invalidSheet"`
	DateLayout         string   `json:"dateLayout"` // from/to 입력 형식
	DownloadTTLSeconds int      `json:"downloadTtlSeconds"`
}

// GetConfig 설정 조회
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	labels := h.cfg.Report.StatusLabels
	if len(labels) == 0 {
		labels = settlement.DefaultStatusLabels
	}
	c.JSON(http.StatusOK, ConfigResponse{
		StatusLabels:       labels,
		DefaultShippingFee: h.cfg.Report.DefaultShippingFee,
		ValidSheet:         h.cfg.Report.ValidSheet,
		InvalidSheet:       h.cfg.Report.InvalidSheet,
		DateLayout:         "YYYY-MM-DD",
		DownloadTTLSeconds: int(downloadTTL.Seconds()),
	})
}
