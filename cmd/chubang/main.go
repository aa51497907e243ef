package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	v1 "github.com/ouyangqi017/Chubang/internal/api/v1"
	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/calculator"
	"github.com/ouyangqi017/Chubang/internal/classifier"
	"github.com/ouyangqi017/Chubang/internal/config"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/importer"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/mock"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/server"
	"github.com/ouyangqi017/Chubang/internal/store"
	"github.com/ouyangqi017/Chubang/internal/util"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	topN    = flag.Int("top", 10, "看板排名显示条数，0 为不截断")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Chubang - 销售数据看板")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
		info.PortSpecified = true
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	// 确保数据目录存在
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Fatalf("创建数据目录失败: %v", err)
	}
	fmt.Printf("数据目录: %s\n", dir)

	if cfg.Log.Dir == "" {
		cfg.Log.Dir = filepath.Join(dir, "logs")
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	lg := logger.WithComponent("main")

	st, err := store.New(filepath.Join(dir, "chubang.db"))
	if err != nil {
		lg.WithError(err).Fatal("初始化数据库失败")
	}
	defer st.Close()

	secret := cfg.Auth.JWTSecret
	if cfg.Auth.UsesDefaultSecret() {
		secret, err = auth.EnsureSecret(st)
		if err != nil {
			lg.WithError(err).Fatal("初始化签名密钥失败")
		}
		lg.Warn("未配置 auth.jwt_secret，已使用数据库中自动生成的密钥")
	}
	authSvc := auth.NewService(st, secret, cfg.Auth.TokenTTL())
	if n, err := authSvc.SeedUsers(cfg.Auth.Users); err != nil {
		lg.WithError(err).Fatal("初始化账号失败")
	} else if n > 0 {
		lg.WithField("count", n).Info("已写入初始账号")
	}

	holder := dataset.NewHolder()
	normalizer := pipeline.NewNormalizer(classifier.New(cfg.CategoryRules()))
	coordinator := importer.NewCoordinator(st, holder, importer.NewFieldMapper(nil), normalizer)
	loader := mock.NewLoader(st, holder, normalizer, cfg.Mock)

	loadInitialDataset(st, coordinator, loader, cfg.Mock.Enabled)

	handler := v1.NewHandler(v1.Deps{
		Store:       st,
		Holder:      holder,
		Auth:        authSvc,
		Importer:    coordinator,
		Mock:        loader,
		Calculator:  calculator.NewCalculator(*topN),
		UploadDir:   filepath.Join(dir, "uploads"),
		ExportDir:   filepath.Join(dir, "exports"),
		MaxUploadMB: cfg.Data.MaxUploadMB,
		LogKeep:     cfg.Data.ImportLogKeep,
	})
	srv := server.NewServer(cfg.Server.DevMode, handler)

	// 未显式指定端口时，默认端口被占用则顺延
	if !info.PortSpecified {
		cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port)
	}

	// 构建地址
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			lg.WithError(err).Fatal("服务启动失败")
		}
	}()

	// 打开浏览器
	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.WithError(err).Warn("关闭服务失败")
	}
}

// loadInitialDataset 上次数据来自导入且文件仍在时重新导入，否则按配置加载模拟数据
func loadInitialDataset(st *store.Store, coordinator *importer.Coordinator, loader *mock.Loader, mockEnabled bool) {
	lg := logger.WithComponent("main")

	source, err := st.GetConfig(store.KeyDatasetSource)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		lg.WithError(err).Warn("读取数据来源失败")
	}

	if source == string(dataset.SourceImport) {
		last, err := st.LastSuccessfulImport()
		if err == nil {
			if _, statErr := os.Stat(last.FilePath); statErr == nil {
				report, err := coordinator.ImportSync(importer.ImportOptions{
					FilePath: last.FilePath,
					FileName: last.Filename,
					Operator: "system",
					Restore:  true,
				})
				if err == nil {
					lg.WithField("file", last.Filename).WithField("records", report.ImportedRows).Info("已恢复上次导入的数据")
					return
				}
				lg.WithError(err).Warn("恢复上次导入的数据失败")
			}
		}
	}

	if !mockEnabled {
		lg.Info("未加载数据，请导入数据文件")
		return
	}
	if _, err := loader.Load(); err != nil {
		lg.WithError(err).Warn("加载模拟数据失败")
	}
}
