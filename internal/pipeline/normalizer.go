package pipeline

import (
	"time"

	"github.com/ouyangqi017/Chubang/internal/classifier"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/model"
)

// DateLayout 明细日期格式
const DateLayout = "2006-01-02"

// Normalizer 原始明细 → 带品类与年月的明细
type Normalizer struct {
	classifier *classifier.Classifier
	now        func() time.Time
}

// NewNormalizer 创建归一化器
func NewNormalizer(c *classifier.Classifier) *Normalizer {
	if c == nil {
		c = classifier.NewDefault()
	}
	return &Normalizer{
		classifier: c,
		now:        time.Now,
	}
}

// WithClock 替换日期兜底使用的时钟（测试用）
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	return &Normalizer{
		classifier: n.classifier,
		now:        now,
	}
}

// Normalize 逐条归一化，输出与输入一一对应且顺序一致
func (n *Normalizer) Normalize(raw []model.RawRecord) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, len(raw))
	fallbacks := 0
	for i, r := range raw {
		var ok bool
		out[i], ok = n.normalizeOne(r)
		if !ok {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		logger.WithComponent("normalizer").
			WithField("count", fallbacks).
			Warn("日期格式无法识别，已按当天日期处理")
	}
	return out
}

// normalizeOne 归一化单条记录；日期无法解析时以当天为准并回写 Date，
// 保证 Year/Month 与 Date 始终一致
func (n *Normalizer) normalizeOne(r model.RawRecord) (model.EnrichedRecord, bool) {
	category, subCategory := n.classifier.Classify(r.ProductName)

	ok := true
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		ok = false
		d = n.now()
		r.Date = d.Format(DateLayout)
	}

	return model.EnrichedRecord{
		RawRecord:   r,
		Category:    category,
		SubCategory: subCategory,
		Year:        d.Year(),
		Month:       int(d.Month()),
	}, ok
}
