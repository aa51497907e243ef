package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotArray          = errors.New("json root is not an array")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptySheet        = errors.New("sheet has no header row")
)

// Format 源文件格式
type Format string

const (
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// DetectFormat 按扩展名识别格式
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xlsm", ".xls":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ReadRows 按格式读取全部数据行
func ReadRows(format Format, r io.Reader) ([]Row, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatExcel:
		return ReadExcel(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

type jsonEnvelope struct {
	Rows bson.RawValue `bson:"rows"`
}

// ReadJSON 读取对象数组，按 Extended JSON（relaxed）解析，支持 {"$date": ...}
// 数组中的非对象元素按 nil 行返回，由调用方计为错误行
func ReadJSON(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, ErrNotArray
	}

	wrapped := make([]byte, 0, len(data)+10)
	wrapped = append(wrapped, `{"rows":`...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, '}')

	var env jsonEnvelope
	if err := bson.UnmarshalExtJSON(wrapped, false, &env); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if env.Rows.Type != bson.TypeArray {
		return nil, ErrNotArray
	}

	values, err := env.Rows.Array().Values()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	rows := make([]Row, 0, len(values))
	for _, v := range values {
		if v.Type != bson.TypeEmbeddedDocument {
			rows = append(rows, nil)
			continue
		}
		elems, err := v.Document().Elements()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		row := make(Row, len(elems))
		for _, e := range elems {
			row[e.Key()] = nativeValue(e.Value())
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func nativeValue(v bson.RawValue) any {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeInt32:
		return v.Int32()
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDecimal128:
		return v.Decimal128()
	case bson.TypeDateTime:
		return primitive.DateTime(v.DateTime())
	case bson.TypeBoolean:
		return v.Boolean()
	case bson.TypeNull, bson.TypeUndefined:
		return nil
	default:
		return v.String()
	}
}

// ReadExcel 读取第一个工作表，首个非空行为表头，单元格取原始值
func ReadExcel(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, line := range cells {
		if !blankLine(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptySheet
	}
	headers := cells[headerIdx]

	rows := make([]Row, 0, len(cells)-headerIdx-1)
	for _, line := range cells[headerIdx+1:] {
		if blankLine(line) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(line) {
				continue
			}
			row[h] = line[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankLine(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
