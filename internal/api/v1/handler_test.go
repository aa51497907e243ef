package v1

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouyangqi017/Chubang/internal/auth"
	"github.com/ouyangqi017/Chubang/internal/calculator"
	"github.com/ouyangqi017/Chubang/internal/config"
	"github.com/ouyangqi017/Chubang/internal/dataset"
	"github.com/ouyangqi017/Chubang/internal/importer"
	"github.com/ouyangqi017/Chubang/internal/mock"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/pipeline"
	"github.com/ouyangqi017/Chubang/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// dashboardResponse 趋势点只序列化不反序列化，测试只取其余字段
type dashboardResponse struct {
	Layout   model.Role                `json:"layout"`
	Totals   model.Totals              `json:"totals"`
	Rankings []calculator.RankingGroup `json:"rankings"`
	Years    []string                  `json:"years"`
}

type testEnv struct {
	router *gin.Engine
	holder *dataset.Holder
	store  *store.Store
	admin  string
	dept   string
}

func seedRecords() []model.EnrichedRecord {
	raw := []model.RawRecord{
		{Date: "2023-02-10", Department: "华东销售部", Salesperson: "张伟", CustomerName: "永辉超市", ProductName: "海天生抽 500ml", Quantity: 10, Amount: 100},
		{Date: "2023-08-10", Department: "华东销售部", Salesperson: "王芳", CustomerName: "华润万家", ProductName: "鲁花花生油 5L", Quantity: 2, Amount: 300},
		{Date: "2024-02-10", Department: "华南销售部", Salesperson: "刘洋", CustomerName: "永辉超市", ProductName: "海天生抽 500ml", Quantity: 20, Amount: 200},
		{Date: "2024-05-10", Department: "华南销售部", Salesperson: "刘洋", CustomerName: "物美", ProductName: "镇江陈醋", Quantity: 5, Amount: 400},
	}
	return pipeline.NewNormalizer(nil).Normalize(raw)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authSvc := auth.NewService(st, "test-secret", time.Hour)
	_, err = authSvc.SeedUsers([]config.UserSeed{
		{Username: "admin", Password: "admin123", Role: model.RoleAdmin},
		{Username: "huadong", Password: "123456", Role: model.RoleDepartment, Department: "华东销售部"},
	})
	require.NoError(t, err)

	holder := dataset.NewHolder()
	holder.Replace(dataset.SourceMock, "", seedRecords())

	h := NewHandler(Deps{
		Store:      st,
		Holder:     holder,
		Auth:       authSvc,
		Importer:   importer.NewCoordinator(st, holder, nil, nil),
		Mock:       mock.NewLoader(st, holder, nil, config.MockConfig{Count: 30, Seed: 1, Years: 2}),
		Calculator: calculator.NewCalculator(10),
		UploadDir:  dir,
		ExportDir:  dir,
	})

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))

	env := &testEnv{router: r, holder: holder, store: st}
	env.admin = env.login(t, "admin", "admin123")
	env.dept = env.login(t, "huadong", "123456")
	return env
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, token)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.postJSON("/api/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res auth.LoginResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

// sseEvents 解析 data: 行
func sseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt))
		events = append(events, evt)
	}
	return events
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/auth/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.postJSON("/api/auth/login", "", LoginRequest{Username: "   ", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), env.dept)
	require.Equal(t, http.StatusOK, w.Code)
	var sess model.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, model.RoleDepartment, sess.Role)
	assert.Equal(t, "华东销售部", sess.Department)
}

func TestProtectedRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/status", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/status", nil), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, path := range []string{"/api/data/reset", "/api/export/summary", "/api/export/records"} {
		w = env.postJSON(path, env.dept, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/imports", nil), env.dept)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatusAndOptions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/status", nil), env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Initialized)
	assert.Equal(t, 4, status.RecordCount)
	assert.Equal(t, dataset.SourceMock, status.Source)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/options", nil), env.dept)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Options       model.FilterOptions `json:"options"`
		DefaultFilter model.FilterState   `json:"defaultFilter"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"华东销售部"}, resp.Options.Departments)
	assert.Equal(t, 2023, resp.Options.MinYear)
	assert.Equal(t, 8, resp.Options.MaxMonth)
	assert.Equal(t, "华东销售部", resp.DefaultFilter.Department)
}

func TestDashboard_Layouts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/dashboard", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admin dashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &admin))
	assert.Equal(t, model.RoleAdmin, admin.Layout)
	assert.Len(t, admin.Rankings, 6)
	assert.Equal(t, 1000.0, admin.Totals.Amount)
	assert.Equal(t, []string{"2023", "2024"}, admin.Years)

	// 部门用户选择其他部门时结果为空
	w = env.postJSON("/api/dashboard", env.dept, QueryRequest{Filter: &model.FilterState{Department: "华南销售部"}})
	require.Equal(t, http.StatusOK, w.Code)
	var dept dashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dept))
	assert.Equal(t, model.RoleDepartment, dept.Layout)
	assert.Len(t, dept.Rankings, 3)
	assert.Zero(t, dept.Totals.Records)

	w = env.postJSON("/api/dashboard", env.dept, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dept))
	assert.Equal(t, 2, dept.Totals.Records)
	assert.Equal(t, 400.0, dept.Totals.Amount)
}

func TestDashboard_FilterRange(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	f := &model.FilterState{StartYear: 2024, StartMonth: 2, EndYear: 2024, EndMonth: 2}
	w := env.postJSON("/api/dashboard", env.admin, QueryRequest{Filter: f})
	require.Equal(t, http.StatusOK, w.Code)
	var d dashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, 1, d.Totals.Records)
	assert.Equal(t, 200.0, d.Totals.Amount)

	f = &model.FilterState{StartYear: 2024, StartMonth: 13, EndYear: 2024, EndMonth: 12}
	w = env.postJSON("/api/dashboard", env.admin, QueryRequest{Filter: f})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecords_Paging(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/records", env.admin, QueryRequest{Page: 2, PageSize: 3})
	require.Equal(t, http.StatusOK, w.Code)
	var page calculator.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 1)

	w = env.postJSON("/api/records", env.admin, QueryRequest{PageSize: 5000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport_StreamsProgressAndReplacesDataset(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	before := env.holder.Current()

	content := `[
		{"发货日期": "2024-03-01", "部门": "华北销售部", "产品名称": "海天蚝油", "价税合计": "1,200.50", "数量": 3},
		{"发货日期": "2024-03-02", "产品名称": "", "价税合计": 10}
	]`
	w := env.do(uploadRequest(t, "ship.json", content), env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := sseEvents(t, w.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, importer.EventStart, events[0]["type"])
	last := events[len(events)-1]
	require.Equal(t, importer.EventDone, last["type"], w.Body.String())

	after := env.holder.Current()
	assert.NotEqual(t, before.ID, after.ID)
	require.Equal(t, 1, after.Count())
	assert.Equal(t, 1200.5, after.Records[0].Amount)
	assert.Equal(t, "ship.json", after.FileName)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/imports", nil), env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var logs struct {
		Items []store.ImportLog `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs.Items, 1)
	assert.Equal(t, store.ImportStatusSuccess, logs.Items[0].Status)
	assert.Equal(t, "admin", logs.Items[0].Operator)
	assert.Equal(t, 1, logs.Items[0].ErrorRows)
}

func TestImport_FailureKeepsDataset(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	before := env.holder.Current()

	w := env.do(uploadRequest(t, "ship.json", `{"not": "array"}`), env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	events := sseEvents(t, w.Body.String())
	assert.Equal(t, importer.EventError, events[len(events)-1]["type"])
	assert.Same(t, before, env.holder.Current())

	w = env.do(uploadRequest(t, "ship.csv", "a,b"), env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Same(t, before, env.holder.Current())
}

func TestResetData(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	before := env.holder.Current()

	w := env.postJSON("/api/data/reset", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after := env.holder.Current()
	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, 30, after.Count())
	assert.Equal(t, dataset.SourceMock, after.Source)
}

func TestExportSummary(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/export/summary", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=UTF-8''")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "\uFEFF部门销售占比\n"), body)
	assert.Contains(t, body, `1,"华南销售部",600,"60.00%"`)
	assert.Contains(t, body, "产品排名")
}

func TestExportRecords(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/export/records", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	// xlsx 为 zip 包
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExportRecordsStream_DownloadOnce(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/export/records/stream", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := sseEvents(t, w.Body.String())
	last := events[len(events)-1]
	require.Equal(t, "done", last["type"], w.Body.String())

	data := last["data"].(map[string]any)
	url := data["downloadUrl"].(string)
	require.True(t, strings.HasPrefix(url, "/api/export/download/"), url)

	w = env.do(httptest.NewRequest(http.MethodGet, url, nil), env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = env.do(httptest.NewRequest(http.MethodGet, url, nil), env.admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.postJSON("/api/auth/password", env.dept, ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postJSON("/api/auth/password", env.dept, ChangePasswordRequest{OldPassword: "123456", NewPassword: "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postJSON("/api/auth/password", env.dept, ChangePasswordRequest{OldPassword: "123456", NewPassword: "newpass1"})
	require.Equal(t, http.StatusOK, w.Code)
	env.login(t, "huadong", "newpass1")
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	got := contentDisposition("sales-summary-20241016.csv", "销售汇总报表-20241016.csv")
	want := "attachment; filename=\"sales-summary-20241016.csv\"; filename*=UTF-8''%E9%94%80%E5%94%AE%E6%B1%87%E6%80%BB%E6%8A%A5%E8%A1%A8-20241016.csv"
	assert.Equal(t, want, got)
}
