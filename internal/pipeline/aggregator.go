package pipeline

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Field 可分组的明细字段
type Field string

const (
	FieldBusinessUnit  Field = "businessUnit"
	FieldDepartment    Field = "department"
	FieldSalesperson   Field = "salesperson"
	FieldCustomerName  Field = "customerName"
	FieldParentCompany Field = "parentCompany"
	FieldSKU           Field = "sku"
	FieldProductName   Field = "productName"
	FieldCategory      Field = "category"
	FieldSubCategory   Field = "subCategory"
	FieldYear          Field = "year"
	FieldMonth         Field = "month"
)

var hundred = decimal.NewFromInt(100)

// ParseField 解析字段名
func ParseField(s string) (Field, bool) {
	f := Field(s)
	switch f {
	case FieldBusinessUnit, FieldDepartment, FieldSalesperson, FieldCustomerName,
		FieldParentCompany, FieldSKU, FieldProductName, FieldCategory,
		FieldSubCategory, FieldYear, FieldMonth:
		return f, true
	}
	return "", false
}

// FieldValue 取明细某字段的字符串值（数值字段转为字符串）
func FieldValue(r model.EnrichedRecord, f Field) string {
	switch f {
	case FieldBusinessUnit:
		return r.BusinessUnit
	case FieldDepartment:
		return r.Department
	case FieldSalesperson:
		return r.Salesperson
	case FieldCustomerName:
		return r.CustomerName
	case FieldParentCompany:
		return r.ParentCompany
	case FieldSKU:
		return r.SKU
	case FieldProductName:
		return r.ProductName
	case FieldCategory:
		return r.Category
	case FieldSubCategory:
		return r.SubCategory
	case FieldYear:
		return strconv.Itoa(r.Year)
	case FieldMonth:
		return strconv.Itoa(r.Month)
	}
	return ""
}

// AggregateByField 按字段分组汇总金额并计算占比，金额降序，同额按名称升序
func AggregateByField(data []model.EnrichedRecord, field Field) []model.AggregatedPoint {
	if len(data) == 0 {
		return []model.AggregatedPoint{}
	}

	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	total := decimal.Zero
	for _, r := range data {
		key := FieldValue(r, field)
		amount := decimal.NewFromFloat(r.Amount)
		if cur, ok := sums[key]; ok {
			sums[key] = cur.Add(amount)
		} else {
			sums[key] = amount
			order = append(order, key)
		}
		total = total.Add(amount)
	}

	points := make([]model.AggregatedPoint, 0, len(order))
	for _, key := range order {
		sum := sums[key]
		pct := 0.0
		if !total.IsZero() {
			pct = sum.Mul(hundred).Div(total).InexactFloat64()
		}
		points = append(points, model.AggregatedPoint{
			Name:       key,
			Value:      sum.InexactFloat64(),
			Percentage: pct,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Name < points[j].Name
	})
	return points
}

// Top 取排名前 n 项，n<=0 时返回全部
func Top(points []model.AggregatedPoint, n int) []model.AggregatedPoint {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[:n]
}

// Summarize 汇总金额、数量、条数及去重客户/产品数
func Summarize(data []model.EnrichedRecord) model.Totals {
	amount := decimal.Zero
	quantity := decimal.Zero
	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, r := range data {
		amount = amount.Add(decimal.NewFromFloat(r.Amount))
		quantity = quantity.Add(decimal.NewFromFloat(r.Quantity))
		customers[r.CustomerName] = struct{}{}
		products[r.ProductName] = struct{}{}
	}
	return model.Totals{
		Amount:    amount.InexactFloat64(),
		Quantity:  quantity.InexactFloat64(),
		Records:   len(data),
		Customers: len(customers),
		Products:  len(products),
	}
}
