package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/util"
)

// utf8BOM 让表格软件按 UTF-8 打开
const utf8BOM = "\uFEFF"

// 汇总表列头
const summaryHeader = "排名,名称,金额,占比"

// SummaryReport 汇总报表的六个维度，均为已排序的聚合结果
type SummaryReport struct {
	Departments   []model.AggregatedPoint
	Salespersons  []model.AggregatedPoint
	Categories    []model.AggregatedPoint
	SubCategories []model.AggregatedPoint
	Customers     []model.AggregatedPoint
	Products      []model.AggregatedPoint
}

// Block 报表中的一个分块
type Block struct {
	Title  string
	Points []model.AggregatedPoint
}

// Blocks 按输出顺序排列的分块
func (r SummaryReport) Blocks() []Block {
	return []Block{
		{Title: "部门销售占比", Points: r.Departments},
		{Title: "业务员排名", Points: r.Salespersons},
		{Title: "品类占比", Points: r.Categories},
		{Title: "子品类排名", Points: r.SubCategories},
		{Title: "客户排名", Points: r.Customers},
		{Title: "产品排名", Points: r.Products},
	}
}

// WriteSummaryCSV 写出汇总报表：BOM + 六个分块，分块之间空一行
// 每行格式 rank,"name",value,"pct%"，只做格式化，不做任何聚合
func WriteSummaryCSV(w io.Writer, r SummaryReport) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(utf8BOM); err != nil {
		return err
	}

	for i, b := range r.Blocks() {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(b.Title + "\n")
		bw.WriteString(summaryHeader + "\n")
		for rank, p := range b.Points {
			fmt.Fprintf(bw, "%d,%s,%s,%s\n",
				rank+1,
				quote(p.Name),
				strconv.FormatFloat(p.Value, 'f', -1, 64),
				quote(util.FormatPercent(p.Percentage)),
			)
		}
	}
	return bw.Flush()
}

// SummaryFileName 汇总报表文件名
func SummaryFileName(now time.Time) string {
	return fmt.Sprintf("销售汇总报表-%s.csv", now.Format("20060102"))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
