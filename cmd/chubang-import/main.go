package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ouyangqi017/Chubang/internal/calculator"
	"github.com/ouyangqi017/Chubang/internal/classifier"
	"github.com/ouyangqi017/Chubang/internal/config"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/exporter"
	"github.com/ouyangqi017/Chubang/internal/importer"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/util"
)

// 离线导入：校验数据文件，可选输出汇总报表与明细
var (
	summaryOut = flag.String("summary", "", "汇总报表 CSV 输出路径")
	detailOut  = flag.String("detail", "", "明细 xlsx 输出路径")
	configPath = flag.String("config", "config.toml", "配置文件（读取品类规则）")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: %s [-summary out.csv] [-detail out.xlsx] <数据文件.json|.xlsx>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "导入失败:", err)
		os.Exit(1)
	}
}

func run(filePath string) error {
	cfg, _, err := config.LoadConfigFromFile(*configPath)
	if err != nil {
		return err
	}

	holder := dataset.NewHolder()
	normalizer := pipeline.NewNormalizer(classifier.New(cfg.CategoryRules()))
	coord := importer.NewCoordinator(nil, holder, nil, normalizer)

	report, err := coord.ImportSync(importer.ImportOptions{
		FilePath: filePath,
		Operator: "cli",
	})
	if err != nil {
		return err
	}

	fmt.Printf("文件: %s (%s)\n", report.FileName, report.Format)
	fmt.Printf("行数: %d  导入: %d  无效: %d  耗时: %s\n",
		report.TotalRows, report.ImportedRows, report.ErrorRows, report.Duration.Round(time.Millisecond))
	for _, re := range report.RowErrors {
		fmt.Printf("  第 %d 行: %s\n", re.Row, re.Message)
	}

	data := holder.Current().Records
	admin := model.Session{Username: "cli", Role: model.RoleAdmin}
	f := pipeline.DefaultFilterState(data, time.Now())
	totals := pipeline.Summarize(data)
	fmt.Printf("区间: %d-%02d ~ %d-%02d  金额合计: %s\n",
		f.StartYear, f.StartMonth, f.EndYear, f.EndMonth, util.FormatCurrency(totals.Amount))

	calc := calculator.NewCalculator(0)
	if *summaryOut != "" {
		if err := writeFile(*summaryOut, func(file *os.File) error {
			return exporter.WriteSummaryCSV(file, calc.Summary(data, f, admin))
		}); err != nil {
			return fmt.Errorf("写入汇总报表: %w", err)
		}
		fmt.Println("汇总报表:", *summaryOut)
	}
	if *detailOut != "" {
		if err := writeFile(*detailOut, func(file *os.File) error {
			return exporter.WriteDetailWorkbook(file, calc.Filtered(data, f, admin), nil)
		}); err != nil {
			return fmt.Errorf("写入明细: %w", err)
		}
		fmt.Println("明细:", *detailOut)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
