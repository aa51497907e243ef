package mock

import (
	"fmt"
	"time"

	"github.com/ouyangqi017/Chubang/internal/config"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/store"
)

// Loader 生成模拟数据并整体替换当前数据集
//
// 每次重置递增 store 中的 mock_generation，种子为 Seed+generation，
// 因此重启后加载的是最近一次重置的数据。
type Loader struct {
	store      *store.Store
	holder     *dataset.Holder
	normalizer *pipeline.Normalizer
	cfg        config.MockConfig
	now        func() time.Time
}

// NewLoader 创建加载器；store 为 nil 时世代固定为 0
func NewLoader(st *store.Store, holder *dataset.Holder, normalizer *pipeline.Normalizer, cfg config.MockConfig) *Loader {
	if normalizer == nil {
		normalizer = pipeline.NewNormalizer(nil)
	}
	return &Loader{
		store:      st,
		holder:     holder,
		normalizer: normalizer,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Load 按当前世代加载
func (l *Loader) Load() (*dataset.Snapshot, error) {
	gen := 0
	if l.store != nil {
		var err error
		gen, err = l.store.GetConfigIntOr(store.KeyMockGeneration, 0)
		if err != nil {
			return nil, fmt.Errorf("read mock generation: %w", err)
		}
	}
	return l.load(gen)
}

// Reset 递增世代后重新生成
func (l *Loader) Reset() (*dataset.Snapshot, error) {
	gen := 0
	if l.store != nil {
		var err error
		gen, err = l.store.IncrConfigInt(store.KeyMockGeneration)
		if err != nil {
			return nil, fmt.Errorf("bump mock generation: %w", err)
		}
	}
	return l.load(gen)
}

func (l *Loader) load(gen int) (*dataset.Snapshot, error) {
	raws := NewGenerator(l.cfg.Seed + int64(gen)).Generate(Options{
		Count: l.cfg.Count,
		Years: l.cfg.Years,
		Now:   l.now(),
	})
	snap := l.holder.Replace(dataset.SourceMock, "", l.normalizer.Normalize(raws))

	if l.store != nil {
		if err := l.store.SetConfig(store.KeyDatasetSource, string(dataset.SourceMock)); err != nil {
			return snap, fmt.Errorf("save dataset source: %w", err)
		}
	}

	logger.WithComponent("mock").
		WithField("generation", gen).
		WithField("records", snap.Count()).
		Info("已加载模拟数据")
	return snap, nil
}
