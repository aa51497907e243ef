package pipeline

import (
	"sort"
	"time"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Options 收集各分面的可选值（去重升序）及数据的起止年月
func Options(data []model.EnrichedRecord) model.FilterOptions {
	bu := make(map[string]struct{})
	dept := make(map[string]struct{})
	sp := make(map[string]struct{})
	cat := make(map[string]struct{})
	sub := make(map[string]struct{})

	opts := model.FilterOptions{}
	minKey, maxKey := 0, 0
	for i, r := range data {
		addNonEmpty(bu, r.BusinessUnit)
		addNonEmpty(dept, r.Department)
		addNonEmpty(sp, r.Salesperson)
		addNonEmpty(cat, r.Category)
		addNonEmpty(sub, r.SubCategory)

		k := r.YearMonthKey()
		if i == 0 || k < minKey {
			minKey = k
		}
		if i == 0 || k > maxKey {
			maxKey = k
		}
	}

	opts.BusinessUnits = sortedKeys(bu)
	opts.Departments = sortedKeys(dept)
	opts.Salespersons = sortedKeys(sp)
	opts.Categories = sortedKeys(cat)
	opts.SubCategories = sortedKeys(sub)
	opts.MinYear, opts.MinMonth = minKey/100, minKey%100
	opts.MaxYear, opts.MaxMonth = maxKey/100, maxKey%100
	return opts
}

// DefaultFilterState 覆盖全部数据年月、分面不限的筛选条件；无数据时取 now 所在年全年
func DefaultFilterState(data []model.EnrichedRecord, now time.Time) model.FilterState {
	f := model.FilterState{
		BusinessUnit: model.FilterAll,
		Department:   model.FilterAll,
		Salesperson:  model.FilterAll,
		Category:     model.FilterAll,
		SubCategory:  model.FilterAll,
	}
	if len(data) == 0 {
		f.StartYear, f.StartMonth = now.Year(), 1
		f.EndYear, f.EndMonth = now.Year(), 12
		return f
	}
	opts := Options(data)
	f.StartYear, f.StartMonth = opts.MinYear, opts.MinMonth
	f.EndYear, f.EndMonth = opts.MaxYear, opts.MaxMonth
	return f
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
