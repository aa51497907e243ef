package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/exporter"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// 导出文件下载有效期
const downloadTTL = 10 * time.Minute

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ExportSummary 导出汇总报表 CSV
// POST /api/export/summary
func (h *Handler) ExportSummary(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	sess, _ := auth.SessionFrom(c)
	data := h.Holder.Current().Records
	f := h.resolveFilter(req.Filter, data, sess)

	var buf bytes.Buffer
	if err := exporter.WriteSummaryCSV(&buf, h.Calculator.Summary(data, f, sess)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	now := h.now()
	c.Header("Content-Disposition", contentDisposition(
		fmt.Sprintf("sales-summary-%s.csv", now.Format("20060102")),
		exporter.SummaryFileName(now),
	))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportRecords 导出筛选后的明细 Excel
// POST /api/export/records
func (h *Handler) ExportRecords(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	sess, _ := auth.SessionFrom(c)
	data := h.Holder.Current().Records
	f := h.resolveFilter(req.Filter, data, sess)

	var buf bytes.Buffer
	if err := exporter.WriteDetailWorkbook(&buf, h.Calculator.Filtered(data, f, sess), nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	now := h.now()
	c.Header("Content-Disposition", contentDisposition(
		fmt.Sprintf("sales-detail-%s.xlsx", now.Format("20060102")),
		exporter.DetailFileName(now),
	))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportRecordsStream 导出明细 Excel（SSE 进度 + 完成后提供下载地址）
// POST /api/export/records/stream
func (h *Handler) ExportRecordsStream(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	sess, _ := auth.SessionFrom(c)
	data := h.Holder.Current().Records
	f := h.resolveFilter(req.Filter, data, sess)
	records := h.Calculator.Filtered(data, f, sess)

	sse, ok := newSSEWriter(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	sse.send(exportProgressEvent{
		Type:      "start",
		Message:   "开始导出",
		Data:      map[string]any{"records": len(records)},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		sse.send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	exportDir := h.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	filePath := filepath.Join(exportDir, uuid.NewString()+".xlsx")

	if err := writeDetailFile(filePath, records, progressFn); err != nil {
		_ = os.Remove(filePath)
		logger.WithComponent("export").WithError(err).Warn("导出明细失败")
		sse.send(exportProgressEvent{
			Type:      "error",
			Message:   "导出失败: " + err.Error(),
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
		return
	}

	token := h.downloads.put(filePath, exporter.DetailFileName(h.now()), downloadTTL)
	prefix := strings.TrimSuffix(c.FullPath(), "/export/records/stream")

	sse.send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": fmt.Sprintf("%s/export/download/%s", prefix, token),
		},
		Timestamp: time.Now(),
	})
}

func writeDetailFile(path string, records []model.EnrichedRecord, progress func(exporter.ProgressEvent)) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteDetailWorkbook(file, records, progress); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	defer os.Remove(item.filePath)

	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	c.Header("Content-Disposition", contentDisposition("sales-detail.xlsx", item.fileName))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}

// contentDisposition ASCII 文件名兜底 + RFC 5987 UTF-8 文件名
func contentDisposition(asciiName, utf8Name string) string {
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", asciiName, url.PathEscape(utf8Name))
}
