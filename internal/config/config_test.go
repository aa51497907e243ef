package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ouyangqi017/Chubang/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigFromFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port should not be marked as specified")
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.CategoryRules()) == 0 {
		t.Fatalf("default rules expected")
	}
}

func TestLoadConfigFromFile_TomlAndRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[server]
port = 18080

[mock]
enabled = false
count = 10

[[classifier.rules]]
keyword = "酱"
category = "Sauce"
sub_category = "Soy"

[[classifier.rules]]
keyword = "油"
category = "Oil"
sub_category = "Cooking"

[[auth.users]]
username = "boss"
password = "pw"
role = "admin"
`)

	cfg, info, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 18080 {
		t.Fatalf("port not applied: %+v %d", info, cfg.Server.Port)
	}
	if cfg.Mock.Enabled || cfg.Mock.Count != 10 {
		t.Fatalf("mock section not applied: %+v", cfg.Mock)
	}
	rules := cfg.CategoryRules()
	if len(rules) != 2 || rules[0].Keyword != "酱" || rules[1].SubCategory != "Cooking" {
		t.Fatalf("rules not applied in order: %+v", rules)
	}
	if len(cfg.Auth.Users) != 1 || cfg.Auth.Users[0].Role != model.RoleAdmin {
		t.Fatalf("users not applied: %+v", cfg.Auth.Users)
	}
}

func TestAuthConfig_UsesDefaultSecret(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Auth.UsesDefaultSecret() {
		t.Fatalf("default config should report the built-in secret")
	}
	cfg.Auth.JWTSecret = "from-env"
	if cfg.Auth.UsesDefaultSecret() {
		t.Fatalf("custom secret reported as default")
	}
}

func TestLoadConfigFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CHUBANG_PORT", "19999")
	t.Setenv("CHUBANG_DATA_DIR", "/tmp/chubang-data")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, info, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 19999 || !info.PortSpecified {
		t.Fatalf("env port not applied: %d", cfg.Server.Port)
	}
	if cfg.Data.DataDir != "/tmp/chubang-data" {
		t.Fatalf("env data dir not applied: %s", cfg.Data.DataDir)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("env log level not applied: %s", cfg.Log.Level)
	}
}

func TestLoadConfigFromFile_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[server\nport = ")
	if _, _, err := LoadConfigFromFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate_DepartmentUserNeedsDepartment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Users = append(cfg.Auth.Users, UserSeed{Username: "x", Password: "y", Role: model.RoleDepartment})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}

	cfg = DefaultConfig()
	cfg.Auth.Users = []UserSeed{{Username: "x", Role: "guest"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, sub := range []string{"uploads", "exports", "logs"} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("missing subdir %s: %v", sub, err)
		}
	}
	if got := GetDataPath(cfg, "exports", "a.csv"); got != filepath.Join(dir, "exports", "a.csv") {
		t.Fatalf("unexpected data path: %s", got)
	}
}
