package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "chubang.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestUsers_CreateGetDuplicate(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	u := &User{Username: "admin", PasswordHash: "h1", Role: "admin"}
	if err := st.CreateUser(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected id to be set")
	}

	got, err := st.GetUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PasswordHash != "h1" || got.Role != "admin" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected user: %+v", got)
	}

	if err := st.CreateUser(&User{Username: "admin", PasswordHash: "x", Role: "admin"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := st.GetUser("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := st.UpdatePassword("admin", "h2"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _ = st.GetUser("admin")
	if got.PasswordHash != "h2" {
		t.Fatalf("password not updated")
	}
	if err := st.UpdatePassword("nobody", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	users, err := st.ListUsers()
	if err != nil || len(users) != 1 {
		t.Fatalf("list users: %v %d", err, len(users))
	}
}

func TestImportLogs_Lifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if _, err := st.LastSuccessfulImport(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	id1, err := st.CreateImportLog(ImportLog{ImportID: "a", Filename: "a.json", Format: "json", Operator: "admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.UpdateImportLog(id1, 3, 2, 1, ImportStatusSuccess, ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	id2, _ := st.CreateImportLog(ImportLog{ImportID: "b", Filename: "b.xlsx"})
	if err := st.UpdateImportLog(id2, 0, 0, 0, ImportStatusFailed, "boom"); err != nil {
		t.Fatalf("update: %v", err)
	}

	logs, err := st.ListImportLogs(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 || logs[0].ImportID != "b" || logs[1].ImportID != "a" {
		t.Fatalf("unexpected order: %+v", logs)
	}
	if logs[0].Status != ImportStatusFailed || logs[0].ErrorMessage != "boom" || logs[0].CompletedAt == nil {
		t.Fatalf("unexpected failed log: %+v", logs[0])
	}

	last, err := st.LastSuccessfulImport()
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if last.ID != id1 || last.ImportedRows != 2 || last.ErrorRows != 1 {
		t.Fatalf("unexpected last import: %+v", last)
	}

	got, err := st.GetImportLog(id2)
	if err != nil || got.Filename != "b.xlsx" {
		t.Fatalf("get import log: %v %+v", err, got)
	}
}

func TestConfig_KV(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if _, err := st.GetConfig("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	v, err := st.GetConfigIntOr(KeyMockGeneration, 7)
	if err != nil || v != 7 {
		t.Fatalf("default not returned: %v %d", err, v)
	}

	for want := 1; want <= 3; want++ {
		got, err := st.IncrConfigInt(KeyMockGeneration)
		if err != nil || got != want {
			t.Fatalf("incr: %v got=%d want=%d", err, got, want)
		}
	}

	if err := st.SetConfig(KeyDatasetSource, "import"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetConfig(KeyDatasetSource, "mock"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	all, err := st.GetAllConfig()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if all[KeyDatasetSource] != "mock" || all[KeyMockGeneration] != "3" {
		t.Fatalf("unexpected config: %v", all)
	}
}
