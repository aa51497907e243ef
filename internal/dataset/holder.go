package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Source 数据来源
type Source string

const (
	SourceEmpty  Source = "empty"
	SourceMock   Source = "mock"
	SourceImport Source = "import"
)

// Snapshot 一次加载得到的不可变数据集
// Records 只读，调用方不得修改
type Snapshot struct {
	ID       string                 `json:"id"`
	Source   Source                 `json:"source"`
	FileName string                 `json:"fileName,omitempty"`
	LoadedAt time.Time              `json:"loadedAt"`
	Records  []model.EnrichedRecord `json:"-"`
}

// Count 记录数
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Holder 当前数据集持有者
// 读取方拿到的快照在替换后依然有效，替换是整体切换
type Holder struct {
	mu      sync.RWMutex
	current *Snapshot
	now     func() time.Time
}

// NewHolder 创建空数据集
func NewHolder() *Holder {
	h := &Holder{now: time.Now}
	h.current = h.newSnapshot(SourceEmpty, "", nil)
	return h
}

func (h *Holder) newSnapshot(src Source, fileName string, records []model.EnrichedRecord) *Snapshot {
	if records == nil {
		records = []model.EnrichedRecord{}
	}
	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   src,
		FileName: fileName,
		LoadedAt: h.now(),
		Records:  records,
	}
}

// Current 当前快照
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Replace 整体替换数据集，返回新快照
func (h *Holder) Replace(src Source, fileName string, records []model.EnrichedRecord) *Snapshot {
	snap := h.newSnapshot(src, fileName, records)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = snap
	return snap
}

// Clear 清空数据集
func (h *Holder) Clear() *Snapshot {
	return h.Replace(SourceEmpty, "", nil)
}

// Count 当前记录数
func (h *Holder) Count() int {
	return h.Current().Count()
}
