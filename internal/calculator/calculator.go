package calculator

import (
	"github.com/ouyangqi017/Chubang/internal/exporter"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
)

// RankingGroup 一个维度的排名
type RankingGroup struct {
	Field  pipeline.Field          `json:"field"`
	Name   string                  `json:"name"`
	Total  int                     `json:"total"` // 截断前的分组数
	Points []model.AggregatedPoint `json:"points"`
}

// Dashboard 看板数据
type Dashboard struct {
	Layout   model.Role         `json:"layout"`
	Filter   model.FilterState  `json:"filter"`
	Totals   model.Totals       `json:"totals"`
	Rankings []RankingGroup     `json:"rankings"`
	Trend    []model.TrendPoint `json:"trend"`
	Years    []string           `json:"years"`
}

type dimension struct {
	field pipeline.Field
	name  string
}

// 管理员看板六个维度，顺序与汇总报表一致
var adminDimensions = []dimension{
	{pipeline.FieldDepartment, "部门销售占比"},
	{pipeline.FieldSalesperson, "业务员排名"},
	{pipeline.FieldCategory, "品类占比"},
	{pipeline.FieldSubCategory, "子品类排名"},
	{pipeline.FieldCustomerName, "客户排名"},
	{pipeline.FieldProductName, "产品排名"},
}

// 部门看板精简维度
var departmentDimensions = []dimension{
	{pipeline.FieldSalesperson, "业务员排名"},
	{pipeline.FieldCategory, "品类占比"},
	{pipeline.FieldProductName, "产品排名"},
}

// Calculator 看板计算器
// 每次请求都基于当前快照完整重算
type Calculator struct {
	topN int
}

// NewCalculator 创建计算器，topN<=0 时不截断排名
func NewCalculator(topN int) *Calculator {
	return &Calculator{topN: topN}
}

// Dashboard 过滤后计算合计、排名与趋势
func (c *Calculator) Dashboard(data []model.EnrichedRecord, f model.FilterState, sess model.Session) *Dashboard {
	filtered := pipeline.Filter(data, f, sess.DeptConstraint())
	trend, years := pipeline.GetTrendData(filtered)

	dims := adminDimensions
	layout := model.RoleAdmin
	if !sess.IsAdmin() {
		dims = departmentDimensions
		layout = model.RoleDepartment
	}

	rankings := make([]RankingGroup, 0, len(dims))
	for _, d := range dims {
		points := pipeline.AggregateByField(filtered, d.field)
		rankings = append(rankings, RankingGroup{
			Field:  d.field,
			Name:   d.name,
			Total:  len(points),
			Points: pipeline.Top(points, c.topN),
		})
	}

	return &Dashboard{
		Layout:   layout,
		Filter:   f,
		Totals:   pipeline.Summarize(filtered),
		Rankings: rankings,
		Trend:    trend,
		Years:    years,
	}
}

// Summary 汇总报表数据，六个维度均不截断
func (c *Calculator) Summary(data []model.EnrichedRecord, f model.FilterState, sess model.Session) exporter.SummaryReport {
	filtered := pipeline.Filter(data, f, sess.DeptConstraint())
	return exporter.SummaryReport{
		Departments:   pipeline.AggregateByField(filtered, pipeline.FieldDepartment),
		Salespersons:  pipeline.AggregateByField(filtered, pipeline.FieldSalesperson),
		Categories:    pipeline.AggregateByField(filtered, pipeline.FieldCategory),
		SubCategories: pipeline.AggregateByField(filtered, pipeline.FieldSubCategory),
		Customers:     pipeline.AggregateByField(filtered, pipeline.FieldCustomerName),
		Products:      pipeline.AggregateByField(filtered, pipeline.FieldProductName),
	}
}

// Page 分页结果
type Page struct {
	Items    []model.EnrichedRecord `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
	Amount   float64                `json:"amount"` // 过滤结果合计金额
}

// 分页参数上限
const (
	DefaultPageSize = 50
	MaxPageSize     = 2000
)

// Records 过滤后分页
func (c *Calculator) Records(data []model.EnrichedRecord, f model.FilterState, sess model.Session, page, pageSize int) *Page {
	filtered := pipeline.Filter(data, f, sess.DeptConstraint())

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return &Page{
		Items:    filtered[start:end],
		Total:    len(filtered),
		Page:     page,
		PageSize: pageSize,
		Amount:   pipeline.Summarize(filtered).Amount,
	}
}

// Filtered 过滤后的全部明细（导出用）
func (c *Calculator) Filtered(data []model.EnrichedRecord, f model.FilterState, sess model.Session) []model.EnrichedRecord {
	return pipeline.Filter(data, f, sess.DeptConstraint())
}
