package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smc020412/naverSmartStore/internal/exporter"
	"github.com/smc020412/naverSmartStore/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// export 리포트를 파일로 저장하고 1회용 다운로드 주소 반환
func (h *Handler) export(c *gin.Context, report *model.Report, progress func(exporter.ProgressEvent)) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}

	exp := exporter.NewExporter(exporter.Options{
		ValidSheet:   h.cfg.Report.ValidSheet,
		InvalidSheet: h.cfg.Report.InvalidSheet,
	})
	file, err := exp.Export(report, progress)
	if err != nil {
		return "", err
	}
	defer file.Close()

	dir := h.exportDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("naversettle_%s.xlsx", report.RunID))
	if err := file.SaveAs(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("파일 저장 실패: %w", err)
	}

	token := h.downloads.put(path, report.RunID, report.GeneratedAt, downloadTTL)
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/download/%s", prefix, token), nil
}

// DownloadExport 정산 결과 엑셀 다운로드 (1회용)
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "토큰이 없습니다"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "다운로드 링크가 만료되었습니다"})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "출력 파일이 없습니다"})
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(item.generatedAt))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)

	if err := os.Remove(item.filePath); err != nil {
		h.logger.Warn("remove export file", zap.String("path", item.filePath), zap.Error(err))
	}
}

// ASCII 파일명과 UTF-8 파일명을 함께 준다
func buildExportContentDisposition(generatedAt time.Time) string {
	ascii := fmt.Sprintf("settlement-%s.xlsx", generatedAt.Format("20060102-150405"))
	utf8Name := fmt.Sprintf("정산_%s.xlsx", generatedAt.Format("2006-01-02"))
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", ascii, url.PathEscape(utf8Name))
}
