package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/database"
	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

type testApp struct {
	e   *echo.Echo
	db  *sql.DB
	mem *cache.Memory
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	mem := cache.NewMemory(nil)
	e := New(Deps{
		DB:       db,
		Cache:    mem,
		Tokens:   utils.NewTokenService("e2e-secret", 30*time.Minute, nil),
		Hasher:   utils.NewPasswordHasher(4),
		CacheTTL: time.Minute,
		LogLevel: "off",
		Quiet:    true,
	})
	return &testApp{e: e, db: db, mem: mem}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(string(b)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, name, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", name, rec.Code, rec.Body.String())
	}
	return a.login(t, name, password)
}

func (a *testApp) login(t *testing.T, name, password string) string {
	t.Helper()
	rec := a.form(t, name, password)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", name, rec.Code, rec.Body.String())
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	decode(t, rec, &tok)
	if tok.TokenType != "bearer" || tok.AccessToken == "" || tok.ExpiresIn != 1800 {
		t.Fatalf("unexpected token response %s", rec.Body.String())
	}
	return tok.AccessToken
}

func (a *testApp) form(t *testing.T, name, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {name}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status %d, want %d: %s", rec.Code, code, rec.Body.String())
	}
}

func TestAliceScenario(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")

	rec := app.do(t, http.MethodPost, "/projects", tok, map[string]any{"name": "P1"})
	expect(t, rec, http.StatusOK)
	var p model.Project
	decode(t, rec, &p)
	if p.Name != "P1" || p.Status != "Not Started" || p.ID == 0 {
		t.Fatalf("unexpected project %+v", p)
	}

	rec = app.do(t, http.MethodGet, "/projects", tok, nil)
	expect(t, rec, http.StatusOK)
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first list should miss, got %q", rec.Header().Get("X-Cache"))
	}
	var list []model.Project
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("unexpected list %+v", list)
	}
	first := rec.Body.String()

	rec = app.do(t, http.MethodGet, "/projects/", tok, nil)
	expect(t, rec, http.StatusOK)
	if rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != first {
		t.Fatalf("second list should be the cached body, got %q %s", rec.Header().Get("X-Cache"), rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, "/tasks/", tok, map[string]any{"title": "T1", "project_id": p.ID, "due_date": "2024-07-01"})
	expect(t, rec, http.StatusOK)
	var task model.Task
	decode(t, rec, &task)
	if task.ProjectID == nil || *task.ProjectID != p.ID || task.Priority != "Medium" || task.DueDate.String() != "2024-07-01" {
		t.Fatalf("unexpected task %+v", task)
	}

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/projects/%d", p.ID), tok, map[string]any{"name": "P1 renamed"})
	expect(t, rec, http.StatusOK)
	rec = app.do(t, http.MethodGet, "/projects", tok, nil)
	decode(t, rec, &list)
	if rec.Header().Get("X-Cache") != "MISS" || list[0].Name != "P1 renamed" {
		t.Fatalf("stale listing after update: %q %+v", rec.Header().Get("X-Cache"), list)
	}

	rec = app.do(t, http.MethodGet, "/tasks", tok, nil)
	expect(t, rec, http.StatusOK)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d", p.ID), tok, nil)
	expect(t, rec, http.StatusNoContent)
	rec = app.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", p.ID), tok, nil)
	expect(t, rec, http.StatusNotFound)
	var body map[string]string
	decode(t, rec, &body)
	if body["detail"] != "Project not found" {
		t.Fatalf("unexpected error body %v", body)
	}

	rec = app.do(t, http.MethodGet, "/tasks", tok, nil)
	var tasks []model.Task
	decode(t, rec, &tasks)
	if rec.Header().Get("X-Cache") != "MISS" || len(tasks) != 1 || tasks[0].ProjectID != nil {
		t.Fatalf("task listing not refreshed after project delete: %q %+v", rec.Header().Get("X-Cache"), tasks)
	}

	rec = app.do(t, http.MethodGet, "/auth/me", tok, nil)
	expect(t, rec, http.StatusOK)
	var me map[string]any
	decode(t, rec, &me)
	if me["username"] != "alice" {
		t.Fatalf("unexpected me %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatal("password hash leaked")
	}
}

func TestOwnershipIsNotFound(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "alice", "wonderland")
	bob := app.register(t, "bob", "builder123")

	rec := app.do(t, http.MethodPost, "/projects", alice, map[string]any{"name": "Private"})
	var p model.Project
	decode(t, rec, &p)
	path := fmt.Sprintf("/projects/%d", p.ID)

	expect(t, app.do(t, http.MethodGet, path, bob, nil), http.StatusNotFound)
	expect(t, app.do(t, http.MethodPut, path, bob, map[string]any{"name": "mine"}), http.StatusNotFound)
	expect(t, app.do(t, http.MethodDelete, path, bob, nil), http.StatusNotFound)
	expect(t, app.do(t, http.MethodPost, "/tasks", bob, map[string]any{"title": "x", "project_id": p.ID}), http.StatusBadRequest)

	rec = app.do(t, http.MethodGet, "/projects", bob, nil)
	var list []model.Project
	decode(t, rec, &list)
	if len(list) != 0 {
		t.Fatalf("bob sees alice's projects: %+v", list)
	}
	expect(t, app.do(t, http.MethodGet, path, alice, nil), http.StatusOK)
}

func TestMalformedAndOversizedIDsAreNotFound(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")

	for _, kind := range []string{"projects", "tasks"} {
		for _, id := range []string{"18446744073709551615", "9223372036854775808", "0", "abc", "-1"} {
			path := "/" + kind + "/" + id
			expect(t, app.do(t, http.MethodGet, path, tok, nil), http.StatusNotFound)
			expect(t, app.do(t, http.MethodPut, path, tok, map[string]any{"name": "x", "title": "x"}), http.StatusNotFound)
			expect(t, app.do(t, http.MethodDelete, path, tok, nil), http.StatusNotFound)
		}
		expect(t, app.do(t, http.MethodGet, "/"+kind+"/9223372036854775807", tok, nil), http.StatusNotFound)
	}
}

func TestUnauthenticated(t *testing.T) {
	app := newTestApp(t)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		rec := app.do(t, http.MethodGet, "/projects", tok, nil)
		expect(t, rec, http.StatusUnauthorized)
		if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
			t.Fatalf("missing WWW-Authenticate for token %q", tok)
		}
	}
	other := utils.NewTokenService("another-secret", time.Minute, nil)
	forged, _ := other.Issue("alice")
	app.register(t, "alice", "wonderland")
	expect(t, app.do(t, http.MethodGet, "/auth/me", forged.Token, nil), http.StatusUnauthorized)
}

func TestAuthErrors(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "wonderland")

	rec := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "x",
	})
	expect(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["detail"] != "Username already registered" {
		t.Fatalf("unexpected conflict body %v", body)
	}
	rec = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "zed"})
	expect(t, rec, http.StatusBadRequest)

	expect(t, app.form(t, "alice", "wrong"), http.StatusUnauthorized)
	expect(t, app.form(t, "nobody", "wonderland"), http.StatusUnauthorized)
}

func TestPartialUpdateNullClears(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")

	rec := app.do(t, http.MethodPost, "/tasks", tok, map[string]any{"title": "T", "description": "d", "priority": "High"})
	var task model.Task
	decode(t, rec, &task)

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/tasks/%d", task.ID), tok, map[string]any{"description": nil, "completed": true})
	expect(t, rec, http.StatusOK)
	decode(t, rec, &task)
	if task.Description != nil || !task.Completed || task.Priority != "High" || task.Title != "T" {
		t.Fatalf("unexpected task after patch %+v", task)
	}

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/tasks/%d", task.ID), tok, map[string]any{"title": nil})
	expect(t, rec, http.StatusBadRequest)
}

func TestPagination(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")
	for i := 0; i < 5; i++ {
		expect(t, app.do(t, http.MethodPost, "/projects", tok, map[string]any{"name": fmt.Sprintf("P%d", i)}), http.StatusOK)
	}

	rec := app.do(t, http.MethodGet, "/projects?skip=1&limit=2", tok, nil)
	var list []model.Project
	decode(t, rec, &list)
	if len(list) != 2 || list[0].Name != "P1" || list[1].Name != "P2" {
		t.Fatalf("unexpected page %+v", list)
	}
	rec = app.do(t, http.MethodGet, "/projects?skip=-3&limit=0", tok, nil)
	decode(t, rec, &list)
	if len(list) != 5 {
		t.Fatalf("clamped page returned %d items", len(list))
	}
	expect(t, app.do(t, http.MethodGet, "/projects?limit=abc", tok, nil), http.StatusBadRequest)
}

func TestConcurrentCreatesThenList(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")

	const n = 15
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := app.do(t, http.MethodPost, "/tasks", tok, map[string]any{"title": fmt.Sprintf("task %d", i)})
			codes <- rec.Code
		}(i)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("create returned %d", code)
		}
	}

	rec := app.do(t, http.MethodGet, "/tasks", tok, nil)
	var tasks []model.Task
	decode(t, rec, &tasks)
	if len(tasks) != n {
		t.Fatalf("got %d tasks, want %d", len(tasks), n)
	}
}

func TestCacheDownStillServes(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")
	app.mem.SetUnavailable(true)

	expect(t, app.do(t, http.MethodPost, "/projects", tok, map[string]any{"name": "P"}), http.StatusOK)
	for i := 0; i < 2; i++ {
		rec := app.do(t, http.MethodGet, "/projects", tok, nil)
		expect(t, rec, http.StatusOK)
		var list []model.Project
		decode(t, rec, &list)
		if len(list) != 1 || rec.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("unexpected listing with cache down: %q %+v", rec.Header().Get("X-Cache"), list)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", "", nil)
	expect(t, rec, http.StatusOK)
	var root map[string]string
	decode(t, rec, &root)
	if root["message"] != "TaskFlow API is running" {
		t.Fatalf("unexpected root %v", root)
	}

	rec = app.do(t, http.MethodGet, "/health", "", nil)
	expect(t, rec, http.StatusOK)
	var basic map[string]string
	decode(t, rec, &basic)
	if basic["status"] != "healthy" || basic["service"] != "TaskFlow API" {
		t.Fatalf("unexpected health %v", basic)
	}

	type report struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	var r report
	rec = app.do(t, http.MethodGet, "/health/detailed", "", nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &r)
	if r.Status != "healthy" {
		t.Fatalf("unexpected report %+v", r)
	}

	app.mem.SetUnavailable(true)
	rec = app.do(t, http.MethodGet, "/health/detailed", "", nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &r)
	if r.Status != "degraded" || r.Checks["cache"] != "unhealthy" || r.Checks["database"] != "healthy" {
		t.Fatalf("unexpected report with cache down %+v", r)
	}

	app.mem.SetUnavailable(false)
	_ = app.db.Close()
	rec = app.do(t, http.MethodGet, "/health/detailed", "", nil)
	expect(t, rec, http.StatusServiceUnavailable)
	decode(t, rec, &r)
	if r.Status != "unhealthy" || r.Checks["database"] != "unhealthy" {
		t.Fatalf("unexpected report with db down %+v", r)
	}
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	app := newTestApp(t)
	tok := app.register(t, "alice", "wonderland")
	_ = app.db.Close()

	rec := app.do(t, http.MethodGet, "/projects", tok, nil)
	expect(t, rec, http.StatusInternalServerError)
	var body map[string]string
	decode(t, rec, &body)
	if body["detail"] != "Internal server error" {
		t.Fatalf("internal detail leaked: %v", body)
	}
}
