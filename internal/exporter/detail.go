package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ouyangqi017/Chubang/internal/model"
)

// DetailSheet 明细工作表名
const DetailSheet = "销售明细"

var detailHeaders = []interface{}{
	"发货日期", "事业部", "部门", "业务员", "客户名称", "母公司名称",
	"存货编码", "产品名称", "品类", "子品类", "数量", "价税合计",
}

var detailColWidths = []float64{12, 12, 12, 10, 22, 22, 12, 26, 10, 12, 8, 14}

// WriteDetailWorkbook 将明细写为单工作表的 xlsx
func WriteDetailWorkbook(w io.Writer, records []model.EnrichedRecord, progress func(ProgressEvent)) error {
	f := excelize.NewFile()
	defer f.Close()

	reportProgress(progress, 0, "准备工作簿")

	if err := f.SetSheetName(f.GetSheetName(0), DetailSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(DetailSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	for i, width := range detailColWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	header := make([]interface{}, len(detailHeaders))
	for i, h := range detailHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{Height: 20}); err != nil {
		return err
	}

	total := len(records)
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Date, r.BusinessUnit, r.Department, r.Salesperson, r.CustomerName, r.ParentCompany,
			r.SKU, r.ProductName, r.Category, r.SubCategory, r.Quantity,
			excelize.Cell{StyleID: amountStyle, Value: r.Amount},
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		if total >= 1000 && (i+1)%1000 == 0 {
			reportProgress(progress, 5+(i+1)*85/total, "写入明细")
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	reportProgress(progress, 95, "生成文件")
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	reportProgress(progress, 100, "完成")
	return nil
}

// DetailFileName 明细文件名
func DetailFileName(now time.Time) string {
	return fmt.Sprintf("销售明细-%s.xlsx", now.Format("20060102"))
}
