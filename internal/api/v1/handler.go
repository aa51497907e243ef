package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/calculator"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/importer"
	"github.com/ouyangqi017/Chubang/internal/mock"
	"github.com/ouyangqi017/Chubang/internal/store"
)

// Deps 处理器依赖
type Deps struct {
	Store       *store.Store
	Holder      *dataset.Holder
	Auth        *auth.Service
	Importer    *importer.Coordinator
	Mock        *mock.Loader
	Calculator  *calculator.Calculator
	UploadDir   string
	ExportDir   string
	MaxUploadMB int
	LogKeep     int // 导入记录条数
}

// Handler V1 API 处理器
type Handler struct {
	Deps
	downloads *exportDownloadStore
	now       func() time.Time
}

// NewHandler 创建 V1 API 处理器
func NewHandler(deps Deps) *Handler {
	if deps.Calculator == nil {
		deps.Calculator = calculator.NewCalculator(0)
	}
	if deps.LogKeep <= 0 {
		deps.LogKeep = 20
	}
	registerValidations()
	return &Handler{
		Deps:      deps,
		downloads: newExportDownloadStore(),
		now:       time.Now,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", h.Login)

	authed := router.Group("")
	authed.Use(h.Auth.Middleware())
	{
		authed.GET("/auth/me", h.Me)
		authed.POST("/auth/password", h.ChangePassword)

		// 看板
		authed.GET("/status", h.GetStatus)
		authed.GET("/options", h.GetOptions)
		authed.POST("/dashboard", h.GetDashboard)
		authed.POST("/records", h.ListRecords)
	}

	admin := authed.Group("")
	admin.Use(auth.RequireAdmin())
	{
		// 数据导入与重置
		admin.POST("/import", h.Import)
		admin.GET("/imports", h.ListImports)
		admin.POST("/data/reset", h.ResetData)

		// 数据导出
		admin.POST("/export/summary", h.ExportSummary)
		admin.POST("/export/records", h.ExportRecords)
		admin.POST("/export/records/stream", h.ExportRecordsStream)
		admin.GET("/export/download/:token", h.DownloadExport)
	}
}
