package model

// DefaultCategory 未命中任何分类规则时的默认品类
const (
	DefaultCategory    = "未分类"
	DefaultSubCategory = "其他"
)

// UnknownCustomer 缺少客户名称时的占位
const UnknownCustomer = "未知客户"

// RawRecord 原始发货明细（导入或模拟生成）
type RawRecord struct {
	BusinessUnit  string  `json:"businessUnit"`  // 事业部
	Department    string  `json:"department"`    // 部门
	Salesperson   string  `json:"salesperson"`   // 业务员
	Date          string  `json:"date"`          // 发货日期 YYYY-MM-DD
	CustomerName  string  `json:"customerName"`  // 客户名称
	ParentCompany string  `json:"parentCompany"` // 母公司名称
	SKU           string  `json:"sku"`           // 存货编码
	ProductName   string  `json:"productName"`   // 产品名称
	Quantity      float64 `json:"quantity"`      // 数量
	Amount        float64 `json:"amount"`        // 价税合计（元）
}

// EnrichedRecord 归一化后的明细：附加品类与年月
//
// Year/Month 在归一化时由 Date 计算一次，之后不再变化。
type EnrichedRecord struct {
	RawRecord
	Category    string `json:"category"`    // 品类
	SubCategory string `json:"subCategory"` // 子品类
	Year        int    `json:"year"`
	Month       int    `json:"month"` // 1-12
}

// YearMonthKey 线性化年月 year*100+month
func (r EnrichedRecord) YearMonthKey() int {
	return r.Year*100 + r.Month
}

// CategoryRule 品类关键词规则（按顺序匹配，先命中先得）
type CategoryRule struct {
	Keyword     string `json:"keyword" toml:"keyword"`
	Category    string `json:"category" toml:"category"`
	SubCategory string `json:"subCategory" toml:"sub_category"`
}
