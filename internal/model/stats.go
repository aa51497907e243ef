package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// AggregatedPoint 分组汇总结果
type AggregatedPoint struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"` // 占总额百分比
}

// YearValue 某年在某月的金额
type YearValue struct {
	Year  string
	Value float64
}

// TrendPoint 同比趋势：一个自然月，各年份金额（年份升序，缺失补 0）
type TrendPoint struct {
	Month  string      `json:"month"` // "01".."12"
	Values []YearValue `json:"values"`
}

// Value 取某年的金额，不存在时为 0
func (p TrendPoint) Value(year string) float64 {
	for _, v := range p.Values {
		if v.Year == year {
			return v.Value
		}
	}
	return 0
}

// MarshalJSON 按年份顺序输出为对象 {"month":"01","values":{"2023":1,"2024":2}}
func (p TrendPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	month, err := json.Marshal(p.Month)
	if err != nil {
		return nil, err
	}
	buf.Write(month)
	buf.WriteString(`,"values":{`)
	for i, v := range p.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Year)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(v.Value, 'f', -1, 64))
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// Totals 看板汇总指标
type Totals struct {
	Amount    float64 `json:"amount"`
	Quantity  float64 `json:"quantity"`
	Records   int     `json:"records"`
	Customers int     `json:"customers"`
	Products  int     `json:"products"`
}
