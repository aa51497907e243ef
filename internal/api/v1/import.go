package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/importer"
)

// Import 导入 JSON / Excel 明细 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	if h.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.MaxUploadMB)<<20)
	}

	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	if _, err := importer.DetectFormat(uploadedFile.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 .json / .xlsx 文件"})
		return
	}

	uploadDir := h.UploadDir
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	ext := strings.ToLower(filepath.Ext(uploadedFile.Filename))
	savedPath := filepath.Join(uploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(uploadedFile, savedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	sse, ok := newSSEWriter(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	sess, _ := auth.SessionFrom(c)
	progressChan := h.Importer.Import(importer.ImportOptions{
		FilePath: savedPath,
		FileName: filepath.Base(uploadedFile.Filename),
		Operator: sess.Username,
	})

	for event := range progressChan {
		sse.send(event)
	}
}

// ListImports 最近导入记录
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit := h.LogKeep
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 无效"})
			return
		}
		limit = n
	}

	logs, err := h.Store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询导入记录失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// ResetData 重新生成模拟数据并替换当前数据集
// POST /api/data/reset
func (h *Handler) ResetData(c *gin.Context) {
	snap, err := h.Mock.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重置数据失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":    snap,
		"recordCount": snap.Count(),
	})
}
