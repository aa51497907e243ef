package model

// FilterAll 分面筛选的"全部"哨兵值
const FilterAll = "all"

// FilterState 当前筛选条件
//
// 起止年月构成闭区间，按 year*100+month 比较；起点晚于终点时结果为空。
type FilterState struct {
	StartYear  int `json:"startYear"`
	StartMonth int `json:"startMonth" binding:"omitempty,min=1,max=12"`
	EndYear    int `json:"endYear"`
	EndMonth   int `json:"endMonth" binding:"omitempty,min=1,max=12"`

	// 分面筛选：FilterAll 或空串表示不限
	BusinessUnit string `json:"businessUnit"`
	Department   string `json:"department"`
	Salesperson  string `json:"salesperson"`
	Category     string `json:"category"`
	SubCategory  string `json:"subCategory"`

	// 文本筛选：区分大小写的子串匹配
	CustomerName string `json:"customerName"`
	ProductName  string `json:"productName"`
}

// StartKey 区间起点
func (f FilterState) StartKey() int {
	return f.StartYear*100 + f.StartMonth
}

// EndKey 区间终点
func (f FilterState) EndKey() int {
	return f.EndYear*100 + f.EndMonth
}

// IsAll 分面值是否表示不限
func IsAll(v string) bool {
	return v == "" || v == FilterAll
}

// FilterOptions 筛选下拉选项与数据年月范围
type FilterOptions struct {
	BusinessUnits []string `json:"businessUnits"`
	Departments   []string `json:"departments"`
	Salespersons  []string `json:"salespersons"`
	Categories    []string `json:"categories"`
	SubCategories []string `json:"subCategories"`

	MinYear  int `json:"minYear"`
	MinMonth int `json:"minMonth"`
	MaxYear  int `json:"maxYear"`
	MaxMonth int `json:"maxMonth"`
}
