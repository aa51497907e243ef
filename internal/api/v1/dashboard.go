package v1

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized bool             `json:"initialized"` // 是否有数据
	SnapshotID  string           `json:"snapshotId"`
	Source      dataset.Source   `json:"source"`
	FileName    string           `json:"fileName,omitempty"`
	LoadedAt    time.Time        `json:"loadedAt"`
	RecordCount int              `json:"recordCount"`
	LastImport  *store.ImportLog `json:"lastImport,omitempty"`
	Session     model.Session    `json:"session"`
}

// QueryRequest 看板与明细查询请求；Filter 为空时覆盖全部数据
type QueryRequest struct {
	Filter   *model.FilterState `json:"filter"`
	Page     int                `json:"page" binding:"omitempty,min=1"`
	PageSize int                `json:"pageSize" binding:"omitempty,min=1,max=2000"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	sess, _ := auth.SessionFrom(c)
	snap := h.Holder.Current()

	resp := StatusResponse{
		Initialized: snap.Count() > 0,
		SnapshotID:  snap.ID,
		Source:      snap.Source,
		FileName:    snap.FileName,
		LoadedAt:    snap.LoadedAt,
		RecordCount: snap.Count(),
		Session:     sess,
	}
	if h.Store != nil {
		if last, err := h.Store.LastSuccessfulImport(); err == nil {
			resp.LastImport = last
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetOptions 筛选下拉选项（部门用户仅看到本部门数据中的取值）
// GET /api/options
func (h *Handler) GetOptions(c *gin.Context) {
	sess, _ := auth.SessionFrom(c)
	data := scopeRecords(h.Holder.Current().Records, sess)

	c.JSON(http.StatusOK, gin.H{
		"options":       pipeline.Options(data),
		"defaultFilter": h.defaultFilter(data, sess),
	})
}

// GetDashboard 看板数据
// POST /api/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	sess, _ := auth.SessionFrom(c)
	data := h.Holder.Current().Records

	f := h.resolveFilter(req.Filter, data, sess)
	c.JSON(http.StatusOK, h.Calculator.Dashboard(data, f, sess))
}

// ListRecords 明细分页
// POST /api/records
func (h *Handler) ListRecords(c *gin.Context) {
	req, ok := bindQuery(c)
	if !ok {
		return
	}
	sess, _ := auth.SessionFrom(c)
	data := h.Holder.Current().Records

	f := h.resolveFilter(req.Filter, data, sess)
	c.JSON(http.StatusOK, h.Calculator.Records(data, f, sess, req.Page, req.PageSize))
}

// bindQuery 解析查询请求，空请求体视为默认条件
func bindQuery(c *gin.Context) (QueryRequest, bool) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询条件: " + err.Error()})
		return req, false
	}
	return req, true
}

// resolveFilter 补全筛选条件：缺省的起止年月取数据范围，缺省月份取 1 月与 12 月
func (h *Handler) resolveFilter(f *model.FilterState, data []model.EnrichedRecord, sess model.Session) model.FilterState {
	def := h.defaultFilter(scopeRecords(data, sess), sess)
	if f == nil {
		return def
	}

	out := *f
	if out.StartYear == 0 {
		out.StartYear, out.StartMonth = def.StartYear, def.StartMonth
	}
	if out.EndYear == 0 {
		out.EndYear, out.EndMonth = def.EndYear, def.EndMonth
	}
	if out.StartMonth == 0 {
		out.StartMonth = 1
	}
	if out.EndMonth == 0 {
		out.EndMonth = 12
	}
	return out
}

func (h *Handler) defaultFilter(data []model.EnrichedRecord, sess model.Session) model.FilterState {
	f := pipeline.DefaultFilterState(data, h.now())
	if dept := sess.DeptConstraint(); dept != "" {
		f.Department = dept
	}
	return f
}

// scopeRecords 部门用户只保留本部门记录
func scopeRecords(data []model.EnrichedRecord, sess model.Session) []model.EnrichedRecord {
	dept := sess.DeptConstraint()
	if dept == "" {
		return data
	}
	out := make([]model.EnrichedRecord, 0, len(data))
	for _, r := range data {
		if r.Department == dept {
			out = append(out, r)
		}
	}
	return out
}
