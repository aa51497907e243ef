package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 日志配置
type Config struct {
	Level      string `toml:"level" env:"LOG_LEVEL"`   // trace/debug/info/warn/error
	Format     string `toml:"format" env:"LOG_FORMAT"` // text/json
	Output     string `toml:"output" env:"LOG_OUTPUT"` // stdout/file/both
	Dir        string `toml:"dir" env:"LOG_DIR"`       // 日志目录，为空时写入 数据目录/logs
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"`    // MB
	MaxBackups int    `toml:"max_backups"` // 保留旧文件数
	MaxAge     int    `toml:"max_age"`     // 天
	Compress   bool   `toml:"compress"`
}

// DefaultConfig 默认日志配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		File:       "chubang.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

var (
	mu  sync.RWMutex
	std = newLogger(DefaultConfig(), io.Writer(os.Stdout))
)

// Init 按配置初始化全局日志
func Init(cfg Config) error {
	var writers []io.Writer

	if cfg.Output == "" || cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if cfg.Dir == "" {
			return fmt.Errorf("log dir is empty")
		}
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
		name := cfg.File
		if name == "" {
			name = DefaultConfig().File
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if len(writers) == 0 {
		return fmt.Errorf("unknown log output: %s", cfg.Output)
	}

	l := newLogger(cfg, io.MultiWriter(writers...))

	mu.Lock()
	std = l
	mu.Unlock()
	return nil
}

func newLogger(cfg Config, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}
	return l
}

// L 返回全局日志实例
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// SetOutput 替换输出（测试用）
func SetOutput(w io.Writer) {
	L().SetOutput(w)
}

// WithComponent 带 component 字段的日志条目
func WithComponent(name string) *logrus.Entry {
	return L().WithField("component", name)
}

// GinMiddleware 请求日志
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := WithComponent("http").WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if user, ok := c.Get("username"); ok {
			entry = entry.WithField("user", user)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request")
		}
	}
}
