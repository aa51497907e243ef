package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// 导入状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusSuccess    = "success"
	ImportStatusFailed     = "failed"
)

// ImportLog 导入记录
type ImportLog struct {
	ID           int64      `json:"id"`
	ImportID     string     `json:"importId"`
	Filename     string     `json:"filename"`
	FilePath     string     `json:"-"`
	FileSize     int64      `json:"fileSize"`
	FileHash     string     `json:"fileHash"`
	Format       string     `json:"format"`
	Operator     string     `json:"operator"`
	Status       string     `json:"status"`
	TotalRows    int        `json:"totalRows"`
	ImportedRows int        `json:"importedRows"`
	ErrorRows    int        `json:"errorRows"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回自增 id
func (s *Store) CreateImportLog(l ImportLog) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (import_id, filename, file_path, file_size, file_hash, format, operator, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ImportID, l.Filename, l.FilePath, l.FileSize, l.FileHash, l.Format, l.Operator, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_rows = ?,
			imported_rows = ?,
			error_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

const importLogColumns = `id, import_id, filename, file_path, file_size, file_hash, format, operator, status,
	total_rows, imported_rows, error_rows, error_message, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImportLog(row rowScanner) (ImportLog, error) {
	var (
		l         ImportLog
		completed sql.NullTime
	)
	err := row.Scan(&l.ID, &l.ImportID, &l.Filename, &l.FilePath, &l.FileSize, &l.FileHash, &l.Format, &l.Operator,
		&l.Status, &l.TotalRows, &l.ImportedRows, &l.ErrorRows, &l.ErrorMessage, &l.CreatedAt, &completed)
	if err != nil {
		return l, err
	}
	if completed.Valid {
		t := completed.Time
		l.CompletedAt = &t
	}
	return l, nil
}

// ListImportLogs 最近的导入日志，按时间倒序
func (s *Store) ListImportLogs(limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+importLogColumns+` FROM import_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := make([]ImportLog, 0, limit)
	for rows.Next() {
		l, err := scanImportLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetImportLog 按自增 id 查询
func (s *Store) GetImportLog(id int64) (*ImportLog, error) {
	l, err := scanImportLog(s.db.QueryRow(`SELECT `+importLogColumns+` FROM import_logs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// LastSuccessfulImport 最近一次成功导入，没有时返回 ErrNotFound
func (s *Store) LastSuccessfulImport() (*ImportLog, error) {
	l, err := scanImportLog(s.db.QueryRow(
		`SELECT `+importLogColumns+` FROM import_logs WHERE status = ? ORDER BY id DESC LIMIT 1`,
		ImportStatusSuccess))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
