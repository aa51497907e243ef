package importer

import (
	"regexp"
	"strings"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// Row 一行原始数据，键为源文件中的列名
type Row map[string]any

// Target 映射目标字段
type Target string

const (
	TargetBusinessUnit  Target = "businessUnit"
	TargetDepartment    Target = "department"
	TargetSalesperson   Target = "salesperson"
	TargetDate          Target = "date"
	TargetCustomerName  Target = "customerName"
	TargetParentCompany Target = "parentCompany"
	TargetSKU           Target = "sku"
	TargetProductName   Target = "productName"
	TargetQuantity      Target = "quantity"
	TargetAmount        Target = "amount"
)

// MappingRule 候选列名 → 目标字段，按顺序取第一个存在且非空的列
type MappingRule struct {
	Target     Target
	Candidates []string
	Default    string
}

// DefaultMappingRules 内置列名别名
func DefaultMappingRules() []MappingRule {
	return []MappingRule{
		{Target: TargetBusinessUnit, Candidates: []string{"事业部", "业务单元", "businessUnit", "business_unit"}},
		{Target: TargetDepartment, Candidates: []string{"部门", "销售部门", "department", "dept"}},
		{Target: TargetSalesperson, Candidates: []string{"业务员", "销售员", "salesperson", "salesman"}},
		{Target: TargetDate, Candidates: []string{"发货日期", "出库日期", "日期", "date", "shipDate"}},
		{Target: TargetCustomerName, Candidates: []string{"客户名称", "客户", "customerName", "customer"}, Default: model.UnknownCustomer},
		{Target: TargetParentCompany, Candidates: []string{"母公司名称", "母公司", "parentCompany"}},
		{Target: TargetSKU, Candidates: []string{"存货编码", "物料编码", "SKU", "sku"}},
		{Target: TargetProductName, Candidates: []string{"产品名称", "存货名称", "品名", "productName", "product"}},
		{Target: TargetQuantity, Candidates: []string{"数量", "发货数量", "quantity", "qty"}, Default: "0"},
		{Target: TargetAmount, Candidates: []string{"价税合计", "含税金额", "金额", "amount", "taxIncludedAmount"}},
	}
}

// FieldMapper 字段映射器
type FieldMapper struct {
	rules []MappingRule
}

// NewFieldMapper 创建字段映射器，rules 为空时使用内置规则
func NewFieldMapper(rules []MappingRule) *FieldMapper {
	if len(rules) == 0 {
		rules = DefaultMappingRules()
	}
	normalized := make([]MappingRule, len(rules))
	for i, r := range rules {
		cands := make([]string, 0, len(r.Candidates))
		for _, c := range r.Candidates {
			if c = NormalizeColumnName(c); c != "" {
				cands = append(cands, c)
			}
		}
		normalized[i] = MappingRule{Target: r.Target, Candidates: cands, Default: r.Default}
	}
	return &FieldMapper{rules: normalized}
}

// Rules 生效的映射规则
func (m *FieldMapper) Rules() []MappingRule {
	out := make([]MappingRule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Resolve 按规则取值，返回目标字段 → 值；未命中时不出现在结果中（有默认值的除外）
func (m *FieldMapper) Resolve(row Row) map[Target]any {
	lookup := make(map[string]any, len(row))
	for k, v := range row {
		key := NormalizeColumnName(k)
		if key == "" {
			continue
		}
		if _, exists := lookup[key]; exists && isBlank(v) {
			continue
		}
		lookup[key] = v
	}

	out := make(map[Target]any, len(m.rules))
	for _, rule := range m.rules {
		found := false
		for _, cand := range rule.Candidates {
			v, ok := lookup[cand]
			if !ok || isBlank(v) {
				continue
			}
			out[rule.Target] = v
			found = true
			break
		}
		if !found && rule.Default != "" {
			out[rule.Target] = rule.Default
		}
	}
	return out
}

// Map 映射并转换为 RawRecord，缺少必填字段或值无法解析时返回错误
func (m *FieldMapper) Map(row Row) (model.RawRecord, error) {
	values := m.Resolve(row)

	rec := model.RawRecord{
		BusinessUnit:  toText(values[TargetBusinessUnit]),
		Department:    toText(values[TargetDepartment]),
		Salesperson:   toText(values[TargetSalesperson]),
		CustomerName:  toText(values[TargetCustomerName]),
		ParentCompany: toText(values[TargetParentCompany]),
		SKU:           toText(values[TargetSKU]),
		ProductName:   toText(values[TargetProductName]),
	}

	check := rowCheck{ProductName: rec.ProductName}

	if v, ok := values[TargetDate]; ok {
		date, err := toDate(v)
		if err != nil {
			return rec, err
		}
		rec.Date = date
		check.Date = date
	}
	if v, ok := values[TargetAmount]; ok {
		amount, err := toNumber(v)
		if err != nil {
			return rec, err
		}
		rec.Amount = amount
		check.Amount = &amount
	}
	if v, ok := values[TargetQuantity]; ok {
		qty, err := toNumber(v)
		if err != nil {
			return rec, err
		}
		rec.Quantity = qty
		check.Quantity = qty
	}

	if err := validateRow(check); err != nil {
		return rec, err
	}
	return rec, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名，去除空白字符
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	return whitespaceRe.ReplaceAllString(name, "")
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
