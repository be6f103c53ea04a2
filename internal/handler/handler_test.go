package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/service"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(method, target, nil), rec), rec
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   int
		detail string
	}{
		{&service.InputError{Msg: "name is required"}, http.StatusBadRequest, "name is required"},
		{fmt.Errorf("x: %w", service.ErrConflict), http.StatusBadRequest, "Username or email already registered"},
		{&service.ConflictError{Msg: "Email already registered"}, http.StatusBadRequest, "Email already registered"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect username or password"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "Could not validate credentials"},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodGet, "/")
		if err := writeError(c, tc.err); err != nil {
			t.Fatalf("%v: unexpected passthrough %v", tc.err, err)
		}
		if rec.Code != tc.code || !strings.Contains(rec.Body.String(), tc.detail) {
			t.Errorf("%v: got %d %s", tc.err, rec.Code, rec.Body.String())
		}
	}

	boom := errors.New("boom")
	c, _ := newContext(http.MethodGet, "/")
	if err := writeError(c, boom); !errors.Is(err, boom) {
		t.Fatalf("unknown errors must be returned, got %v", err)
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	h := ErrorHandler(e.Logger)

	c, rec := newContext(http.MethodGet, "/")
	h(errors.New("sql: connection refused"), c)
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "sql") {
		t.Fatalf("internal error leaked: %d %s", rec.Code, rec.Body.String())
	}

	c, rec = newContext(http.MethodGet, "/missing")
	h(echo.ErrNotFound, c)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail":"Not Found"`) {
		t.Fatalf("unexpected 404 body: %d %s", rec.Code, rec.Body.String())
	}
}

func TestParseIDRange(t *testing.T) {
	cases := map[string]bool{
		"1":                    true,
		"9223372036854775807":  true,
		"9223372036854775808":  false,
		"18446744073709551615": false,
		"0":                    false,
		"abc":                  false,
	}
	for raw, want := range cases {
		c, _ := newContext(http.MethodGet, "/tasks/"+raw)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if _, ok := parseID(c); ok != want {
			t.Errorf("parseID(%s) ok=%v, want %v", raw, ok, want)
		}
	}
}

func TestPaging(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/projects?skip=10&limit=5")
	skip, limit, ok := paging(c)
	if !ok || skip != 10 || limit != 5 {
		t.Fatalf("got %d %d %v", skip, limit, ok)
	}
	c, _ = newContext(http.MethodGet, "/projects")
	if skip, limit, ok = paging(c); !ok || skip != 0 || limit != service.DefaultLimit {
		t.Fatalf("defaults: got %d %d %v", skip, limit, ok)
	}
	c, _ = newContext(http.MethodGet, "/projects?skip=x")
	if _, _, ok = paging(c); ok {
		t.Fatal("expected bind failure")
	}
}

func TestWriteListingHeader(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/tasks")
	if err := writeListing(c, service.Listing{Body: []byte(`[]`), Cached: true}); err != nil {
		t.Fatal(err)
	}
	if rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != "[]" {
		t.Fatalf("got %q %s", rec.Header().Get("X-Cache"), rec.Body.String())
	}
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type downPinger struct{}

func (downPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestDetailedHealthCacheDownIsDegraded(t *testing.T) {
	mem := cache.NewMemory(nil)
	mem.SetUnavailable(true)
	h := NewHealthHandler(okPinger{}, mem)

	c, rec := newContext(http.MethodGet, "/health/detailed")
	if err := h.Detailed(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"degraded"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDetailedHealthStoreDownIs503(t *testing.T) {
	h := NewHealthHandler(downPinger{}, nil)
	c, rec := newContext(http.MethodGet, "/health/detailed")
	if err := h.Detailed(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable || strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
