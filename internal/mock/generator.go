package mock

import (
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Options 生成参数
type Options struct {
	Count int       // 记录条数
	Years int       // 覆盖最近几年（含当年）
	Now   time.Time // 截止日期，零值时使用当前时间
}

// Generator 模拟发货明细生成器
// 相同的种子与参数产生完全相同的数据
type Generator struct {
	rng *rand.Rand
}

// NewGenerator 创建生成器
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate 生成模拟明细，日期落在 [Now.Year-Years+1 年 1 月 1 日, Now]
func (g *Generator) Generate(opts Options) []model.RawRecord {
	if opts.Count <= 0 {
		return []model.RawRecord{}
	}
	if opts.Years <= 0 {
		opts.Years = 1
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	end := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(end.Year()-opts.Years+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1

	out := make([]model.RawRecord, opts.Count)
	for i := range out {
		out[i] = g.record(start.AddDate(0, 0, g.rng.Intn(days)))
	}
	return out
}

func (g *Generator) record(date time.Time) model.RawRecord {
	team := teams[g.rng.Intn(len(teams))]
	cust := customers[g.rng.Intn(len(customers))]
	prod := products[g.pickProduct()]

	qty := float64(1 + g.rng.Intn(60))
	if g.rng.Float64() < 0.02 {
		qty = 0 // 赠品
	}

	// 季节性波动：使用正弦函数模拟，春节前后偏高
	seasonal := 1.0 + 0.15*math.Cos(float64(date.Month()-1)*math.Pi/6.0)
	// 价格浮动 ±8%
	noise := 1.0 + (g.rng.Float64()-0.5)*0.16
	amount := decimal.NewFromFloat(prod.price * qty * seasonal * noise).Round(2)

	// 少量退货冲红
	if g.rng.Float64() < 0.01 {
		amount = amount.Neg()
		qty = 0
	}

	return model.RawRecord{
		BusinessUnit:  team.businessUnit,
		Department:    team.department,
		Salesperson:   team.salespersons[g.rng.Intn(len(team.salespersons))],
		Date:          date.Format("2006-01-02"),
		CustomerName:  cust.name,
		ParentCompany: cust.parent,
		SKU:           prod.sku,
		ProductName:   prod.name,
		Quantity:      qty,
		Amount:        amount.InexactFloat64(),
	}
}

// pickProduct 酱油类出现频率更高
func (g *Generator) pickProduct() int {
	if g.rng.Float64() < 0.35 {
		return g.rng.Intn(4)
	}
	return g.rng.Intn(len(products))
}
