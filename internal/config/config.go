package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ouyangqi017/Chubang/internal/classifier"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/model"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Auth       AuthConfig       `toml:"auth"`
	Mock       MockConfig       `toml:"mock"`
	Classifier ClassifierConfig `toml:"classifier"`
	Log        logger.Config    `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir       string `toml:"data_dir"`
	MaxUploadMB   int    `toml:"max_upload_mb"`
	ImportLogKeep int    `toml:"import_log_keep"` // 状态页展示的导入记录条数
}

// AuthConfig 登录配置
type AuthConfig struct {
	JWTSecret     string     `toml:"jwt_secret"`
	TokenTTLHours int        `toml:"token_ttl_hours"`
	Users         []UserSeed `toml:"users"`
}

// TokenTTL 登录令牌有效期
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// UserSeed 启动时写入的账号（已存在则跳过）
type UserSeed struct {
	Username   string     `toml:"username"`
	Password   string     `toml:"password"`
	Role       model.Role `toml:"role"`
	Department string     `toml:"department"`
}

// MockConfig 模拟数据配置
type MockConfig struct {
	Enabled bool  `toml:"enabled"` // 启动时加载模拟数据
	Count   int   `toml:"count"`
	Seed    int64 `toml:"seed"`
	Years   int   `toml:"years"` // 覆盖最近几年
}

// ClassifierConfig 品类规则；为空时使用内置规则
type ClassifierConfig struct {
	Rules []model.CategoryRule `toml:"rules"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// envOverrides 环境变量覆盖项（支持 .env）
type envOverrides struct {
	Port      int    `env:"CHUBANG_PORT"`
	DevMode   bool   `env:"CHUBANG_DEV"`
	DataDir   string `env:"CHUBANG_DATA_DIR"`
	JWTSecret string `env:"CHUBANG_JWT_SECRET"`
	MockCount int    `env:"CHUBANG_MOCK_COUNT"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
	LogOutput string `env:"LOG_OUTPUT"`
}

// DefaultJWTSecret 内置的开发用密钥，生产环境不应使用
const DefaultJWTSecret = "chubang-dev-secret"

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:       "data",
			MaxUploadMB:   50,
			ImportLogKeep: 20,
		},
		Auth: AuthConfig{
			JWTSecret:     DefaultJWTSecret,
			TokenTTLHours: 12,
			Users: []UserSeed{
				{Username: "admin", Password: "admin123", Role: model.RoleAdmin},
				{Username: "huadong", Password: "123456", Role: model.RoleDepartment, Department: "华东销售部"},
				{Username: "huanan", Password: "123456", Role: model.RoleDepartment, Department: "华南销售部"},
			},
		},
		Mock: MockConfig{
			Enabled: true,
			Count:   3000,
			Seed:    20240101,
			Years:   3,
		},
		Log: logger.DefaultConfig(),
	}
}

// CategoryRules 生效的品类规则
func (c *AppConfig) CategoryRules() []model.CategoryRule {
	if len(c.Classifier.Rules) == 0 {
		return classifier.DefaultRules()
	}
	return c.Classifier.Rules
}

// UsesDefaultSecret 是否仍在使用内置密钥
func (a AuthConfig) UsesDefaultSecret() bool {
	return a.JWTSecret == DefaultJWTSecret
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is empty")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("invalid auth.token_ttl_hours: %d", c.Auth.TokenTTLHours)
	}
	for _, u := range c.Auth.Users {
		if !u.Role.Valid() {
			return fmt.Errorf("user %s: invalid role %q", u.Username, u.Role)
		}
		if u.Role == model.RoleDepartment && u.Department == "" {
			return fmt.Errorf("user %s: department is required for department role", u.Username)
		}
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 与 .env 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	// .env 不存在时忽略；已存在的环境变量不会被覆盖
	_ = godotenv.Load(filepath.Join(exeDir, ".env"))

	return LoadConfigFromFile(filepath.Join(exeDir, "config.toml"))
}

// LoadConfigFromFile 从指定 toml 文件加载配置，文件不存在时使用默认配置，最后应用环境变量覆盖
func LoadConfigFromFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if ov.Port > 0 {
		config.Server.Port = ov.Port
		info.PortSpecified = true
	}
	if ov.DevMode {
		config.Server.DevMode = true
	}
	if ov.DataDir != "" {
		config.Data.DataDir = ov.DataDir
	}
	if ov.JWTSecret != "" {
		config.Auth.JWTSecret = ov.JWTSecret
	}
	if ov.MockCount > 0 {
		config.Mock.Count = ov.MockCount
	}
	if ov.LogLevel != "" {
		config.Log.Level = ov.LogLevel
	}
	if ov.LogFormat != "" {
		config.Log.Format = ov.LogFormat
	}
	if ov.LogOutput != "" {
		config.Log.Output = ov.LogOutput
	}
	return nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// ResolveDataDir 数据目录绝对路径（相对路径以可执行文件目录为基准）
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "exports", "logs"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
