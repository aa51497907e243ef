package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/store"
)

var ErrNoValidRecords = errors.New("no valid records")

// 进度事件类型
const (
	EventStart    = "start"
	EventInfo     = "info"
	EventProgress = "progress"
	EventWarning  = "warning"
	EventDone     = "done"
	EventError    = "error"
)

// 行错误最多保留条数
const maxRowErrors = 50

// 每处理多少行发送一次进度
const progressEvery = 500

// Coordinator 导入协调器
// 解析与归一化全部成功后才整体替换数据集，失败时数据集保持不变
type Coordinator struct {
	store      *store.Store
	holder     *dataset.Holder
	mapper     *FieldMapper
	normalizer *pipeline.Normalizer
	running    sync.Mutex
}

// NewCoordinator 创建导入协调器；store 为 nil 时不记录导入日志
func NewCoordinator(st *store.Store, holder *dataset.Holder, mapper *FieldMapper, normalizer *pipeline.Normalizer) *Coordinator {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	if normalizer == nil {
		normalizer = pipeline.NewNormalizer(nil)
	}
	return &Coordinator{
		store:      st,
		holder:     holder,
		mapper:     mapper,
		normalizer: normalizer,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string // 已落盘的上传文件
	FileName string // 原始文件名，用于识别格式与展示
	Operator string
	Restore  bool // 启动时重新载入已记录的导入文件，不新增导入日志
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RowError 行级错误，Row 为数据行序号（从 1 开始）
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport 导入结果
type ImportReport struct {
	ImportID     string        `json:"importId"`
	FileName     string        `json:"fileName"`
	Format       Format        `json:"format"`
	TotalRows    int           `json:"totalRows"`
	ImportedRows int           `json:"importedRows"`
	ErrorRows    int           `json:"errorRows"`
	RowErrors    []RowError    `json:"rowErrors,omitempty"`
	SnapshotID   string        `json:"snapshotId,omitempty"`
	Duration     time.Duration `json:"duration"`
}

type importContext struct {
	opts         ImportOptions
	report       *ImportReport
	logID        int64
	progressChan chan ProgressEvent
	startTime    time.Time
}

// Import 执行导入，返回进度通道；调用方必须读到通道关闭为止
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		if !c.running.TryLock() {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      EventError,
				Message:   "已有导入任务正在进行，请稍后再试",
				Timestamp: time.Now(),
			})
			return
		}
		defer c.running.Unlock()
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// ImportSync 同步导入，返回最终报告
func (c *Coordinator) ImportSync(opts ImportOptions) (*ImportReport, error) {
	var (
		report  *ImportReport
		lastErr string
	)
	for evt := range c.Import(opts) {
		switch evt.Type {
		case EventDone:
			report, _ = evt.Data.(*ImportReport)
		case EventError:
			lastErr = evt.Message
		}
	}
	if report == nil {
		if lastErr == "" {
			lastErr = "导入未完成"
		}
		return nil, errors.New(lastErr)
	}
	return report, nil
}

func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	if opts.FileName == "" {
		opts.FileName = filepath.Base(opts.FilePath)
	}
	ctx := &importContext{
		opts:         opts,
		progressChan: progressChan,
		startTime:    time.Now(),
		report: &ImportReport{
			ImportID: uuid.NewString(),
			FileName: opts.FileName,
		},
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "开始导入数据文件",
		Data: map[string]string{
			"filename": opts.FileName,
			"importId": ctx.report.ImportID,
		},
		Timestamp: time.Now(),
	})

	format, err := DetectFormat(opts.FileName)
	if err != nil {
		c.fail(ctx, fmt.Errorf("无法识别文件格式: %w", err))
		return
	}
	ctx.report.Format = format

	c.createLog(ctx)

	file, err := os.Open(opts.FilePath)
	if err != nil {
		c.fail(ctx, fmt.Errorf("打开文件失败: %w", err))
		return
	}
	defer file.Close()

	rows, err := ReadRows(format, file)
	if err != nil {
		c.fail(ctx, fmt.Errorf("解析文件失败: %w", err))
		return
	}
	ctx.report.TotalRows = len(rows)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("读取到 %d 行数据", len(rows)),
		Data: map[string]interface{}{
			"total_rows": len(rows),
			"format":     format,
		},
		Timestamp: time.Now(),
	})

	raws := c.mapRows(ctx, rows)
	if len(raws) == 0 {
		c.fail(ctx, ErrNoValidRecords)
		return
	}

	enriched := c.normalizer.Normalize(raws)
	snap := c.holder.Replace(dataset.SourceImport, opts.FileName, enriched)
	ctx.report.SnapshotID = snap.ID
	ctx.report.ImportedRows = len(enriched)
	ctx.report.Duration = time.Since(ctx.startTime)

	if ctx.report.ErrorRows > 0 {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventWarning,
			Message:   fmt.Sprintf("%d 行数据无效，已跳过", ctx.report.ErrorRows),
			Timestamp: time.Now(),
		})
	}

	c.finishLog(ctx, store.ImportStatusSuccess, "")
	c.recordDatasetMeta(ctx)

	logger.WithComponent("importer").WithFields(logrus.Fields{
		"import_id": ctx.report.ImportID,
		"file":      opts.FileName,
		"imported":  ctx.report.ImportedRows,
		"errors":    ctx.report.ErrorRows,
		"duration":  ctx.report.Duration.String(),
	}).Info("导入完成")

	c.sendProgress(progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   "导入完成",
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

// mapRows 映射并校验每一行，无效行计入错误
func (c *Coordinator) mapRows(ctx *importContext, rows []Row) []model.RawRecord {
	raws := make([]model.RawRecord, 0, len(rows))
	for i, row := range rows {
		if row == nil {
			c.recordRowError(ctx, i+1, "不是对象")
		} else if rec, err := c.mapper.Map(row); err != nil {
			c.recordRowError(ctx, i+1, err.Error())
		} else {
			raws = append(raws, rec)
		}

		if (i+1)%progressEvery == 0 {
			c.sendProgress(ctx.progressChan, ProgressEvent{
				Type:    EventProgress,
				Message: fmt.Sprintf("已处理 %d/%d 行", i+1, len(rows)),
				Data: map[string]int{
					"processed": i + 1,
					"total":     len(rows),
				},
				Timestamp: time.Now(),
			})
		}
	}
	return raws
}

func (c *Coordinator) recordRowError(ctx *importContext, row int, msg string) {
	ctx.report.ErrorRows++
	if len(ctx.report.RowErrors) < maxRowErrors {
		ctx.report.RowErrors = append(ctx.report.RowErrors, RowError{Row: row, Message: msg})
	}
}

// fail 导入失败：发送错误事件并记录日志，数据集不变
func (c *Coordinator) fail(ctx *importContext, err error) {
	msg := err.Error()
	if errors.Is(err, ErrNoValidRecords) {
		if ctx.report.TotalRows == 0 {
			msg = "文件中没有数据行"
		} else {
			msg = fmt.Sprintf("没有有效数据（%d 行全部无效）", ctx.report.TotalRows)
		}
	}
	ctx.report.Duration = time.Since(ctx.startTime)
	c.finishLog(ctx, store.ImportStatusFailed, msg)

	logger.WithComponent("importer").WithField("file", ctx.opts.FileName).WithError(err).Warn("导入失败")

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:      EventError,
		Message:   msg,
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) createLog(ctx *importContext) {
	if c.store == nil || ctx.opts.Restore {
		return
	}
	size, hash := fileDigest(ctx.opts.FilePath)
	id, err := c.store.CreateImportLog(store.ImportLog{
		ImportID: ctx.report.ImportID,
		Filename: ctx.opts.FileName,
		FilePath: ctx.opts.FilePath,
		FileSize: size,
		FileHash: hash,
		Format:   string(ctx.report.Format),
		Operator: ctx.opts.Operator,
	})
	if err != nil {
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      EventWarning,
			Message:   fmt.Sprintf("记录导入日志失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}
	ctx.logID = id
}

func (c *Coordinator) finishLog(ctx *importContext, status, msg string) {
	if c.store == nil || ctx.logID == 0 {
		return
	}
	r := ctx.report
	if err := c.store.UpdateImportLog(ctx.logID, r.TotalRows, r.ImportedRows, r.ErrorRows, status, msg); err != nil {
		logger.WithComponent("importer").WithError(err).Warn("更新导入日志失败")
	}
}

func (c *Coordinator) recordDatasetMeta(ctx *importContext) {
	if c.store == nil || ctx.opts.Restore {
		return
	}
	if err := c.store.SetConfig(store.KeyDatasetSource, string(dataset.SourceImport)); err != nil {
		logger.WithComponent("importer").WithError(err).Warn("保存数据来源失败")
	}
	if err := c.store.SetConfig(store.KeyLastImportID, ctx.report.ImportID); err != nil {
		logger.WithComponent("importer").WithError(err).Warn("保存导入编号失败")
	}
}

// fileDigest 文件大小与 sha256
func fileDigest(path string) (int64, string) {
	f, err := os.Open(path)
	if err != nil {
		return 0, ""
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, ""
	}
	return n, hex.EncodeToString(h.Sum(nil))
}

// sendProgress 发送进度事件：start/done/error 阻塞发送，保证调用方一定收到结果；
// 其余事件在通道已满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	switch event.Type {
	case EventStart, EventDone, EventError:
		ch <- event
		return
	}
	select {
	case ch <- event:
	default:
	}
}
