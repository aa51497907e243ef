package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// 运行期配置键
const (
	KeyMockGeneration = "mock_generation" // 模拟数据重置次数，参与随机种子
	KeyDatasetSource  = "dataset_source"
	KeyLastImportID   = "last_import_id"
	KeyJWTSecret      = "jwt_secret" // 未配置密钥时自动生成并保存
)

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt 获取整数配置项
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetConfigIntOr 获取整数配置项，不存在时返回默认值
func (s *Store) GetConfigIntOr(key string, def int) (int, error) {
	v, err := s.GetConfigInt(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SetConfigInt 设置整数配置项
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// IncrConfigInt 整数配置项加一并返回新值
func (s *Store) IncrConfigInt(key string) (int, error) {
	v, err := s.GetConfigIntOr(key, 0)
	if err != nil {
		return 0, err
	}
	v++
	if err := s.SetConfigInt(key, v); err != nil {
		return 0, err
	}
	return v, nil
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}
