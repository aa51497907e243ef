package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// GetTrendData 月份 × 年份透视，用于同比趋势
//
// 固定返回 12 个月；年份为数据中出现过的全部年份（升序），
// 每个月都包含每个年份，无数据时为 0。
func GetTrendData(data []model.EnrichedRecord) ([]model.TrendPoint, []string) {
	// cells[month-1][year]
	var cells [12]map[int]decimal.Decimal
	yearSet := make(map[int]struct{})

	for _, r := range data {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		idx := r.Month - 1
		if cells[idx] == nil {
			cells[idx] = make(map[int]decimal.Decimal)
		}
		cells[idx][r.Year] = cells[idx][r.Year].Add(decimal.NewFromFloat(r.Amount))
		yearSet[r.Year] = struct{}{}
	}

	yearNums := make([]int, 0, len(yearSet))
	for y := range yearSet {
		yearNums = append(yearNums, y)
	}
	sort.Ints(yearNums)

	years := make([]string, len(yearNums))
	for i, y := range yearNums {
		years[i] = strconv.Itoa(y)
	}

	points := make([]model.TrendPoint, 12)
	for m := 0; m < 12; m++ {
		values := make([]model.YearValue, len(yearNums))
		for i, y := range yearNums {
			values[i] = model.YearValue{
				Year:  years[i],
				Value: cells[m][y].InexactFloat64(),
			}
		}
		points[m] = model.TrendPoint{
			Month:  fmt.Sprintf("%02d", m+1),
			Values: values,
		}
	}

	return points, years
}
