package pipeline

import (
	"strings"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Filter 按筛选条件与部门约束选出明细，保持原有顺序，不修改输入
//
// deptConstraint 非空时（部门用户）与分面"部门"独立取交集：
// 部门用户若在筛选里选了其他部门，结果为空。
func Filter(data []model.EnrichedRecord, f model.FilterState, deptConstraint string) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, 0, len(data))
	start, end := f.StartKey(), f.EndKey()
	for _, r := range data {
		if matches(r, f, start, end, deptConstraint) {
			out = append(out, r)
		}
	}
	return out
}

// Match 单条记录是否满足筛选条件
func Match(r model.EnrichedRecord, f model.FilterState, deptConstraint string) bool {
	return matches(r, f, f.StartKey(), f.EndKey(), deptConstraint)
}

func matches(r model.EnrichedRecord, f model.FilterState, start, end int, deptConstraint string) bool {
	// 起点晚于终点时不可能满足，不单独处理
	ym := r.YearMonthKey()
	if ym < start || ym > end {
		return false
	}

	if deptConstraint != "" && r.Department != deptConstraint {
		return false
	}

	if !facetMatch(f.BusinessUnit, r.BusinessUnit) ||
		!facetMatch(f.Department, r.Department) ||
		!facetMatch(f.Salesperson, r.Salesperson) ||
		!facetMatch(f.Category, r.Category) ||
		!facetMatch(f.SubCategory, r.SubCategory) {
		return false
	}

	if f.CustomerName != "" && !strings.Contains(r.CustomerName, f.CustomerName) {
		return false
	}
	if f.ProductName != "" && !strings.Contains(r.ProductName, f.ProductName) {
		return false
	}

	return true
}

func facetMatch(want, got string) bool {
	return model.IsAll(want) || want == got
}
