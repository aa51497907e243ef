package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ouyangqi017/Chubang/internal/pipeline"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidNumber = errors.New("invalid number")
)

// 可识别的日期字符串格式
var dateLayouts = []string{
	pipeline.DateLayout,
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/1/2",
	"2006-1-2",
}

// Excel 序列号上限（9999-12-31）
const maxExcelSerial = 2958465

var numberReplacer = strings.NewReplacer(",", "", "，", "", "¥", "", "￥", "", " ", "")

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(pipeline.DateLayout)
	case primitive.DateTime:
		return t.Time().UTC().Format(pipeline.DateLayout)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// toDate 统一为 YYYY-MM-DD
func toDate(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(pipeline.DateLayout), nil
	case primitive.DateTime:
		return t.Time().UTC().Format(pipeline.DateLayout), nil
	case float64:
		return serialToDate(t)
	case int32:
		return serialToDate(float64(t))
	case int64:
		return serialToDate(float64(t))
	case int:
		return serialToDate(float64(t))
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(pipeline.DateLayout), nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialToDate(f)
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, v)
	}
}

func serialToDate(serial float64) (string, error) {
	if serial <= 0 || serial > maxExcelSerial || math.IsNaN(serial) {
		return "", fmt.Errorf("%w: serial %v", ErrInvalidDate, serial)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t.Format(pipeline.DateLayout), nil
}

// toNumber 支持原生数值与带千分位、货币符号的字符串；NaN 与 ±Inf 视为无效
func toNumber(v any) (float64, error) {
	f, err := rawNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidNumber, f)
	}
	return f, nil
}

func rawNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case primitive.Decimal128:
		return parseDecimal(t.String())
	case string:
		return parseDecimal(t)
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidNumber, v)
	}
}

func parseDecimal(s string) (float64, error) {
	cleaned := numberReplacer.Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	f, _ := d.Float64()
	return f, nil
}
