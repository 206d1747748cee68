package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/middleware"
	"expensely/internal/models"
	"expensely/internal/profile"
	"expensely/internal/services"
	"expensely/internal/testutil"
	"expensely/internal/transactions"
)

const testOrigin = "http://localhost:5173"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// testApp is the full stack over an isolated in-memory SQLite database.
type testApp struct {
	db     *gorm.DB
	server *httptest.Server
	client *http.Client
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	profiles := profile.NewRegistry(kvstore.NewGormBackend(db), profile.Config{
		Latency:         transactions.NoLatency(),
		NotificationTTL: time.Minute,
	})
	t.Cleanup(profiles.Close)

	srv := httptest.NewServer(New(Deps{
		Users:       services.NewUserService(db, services.WithPasswordCost(bcrypt.MinCost)),
		Audit:       services.NewAuditService(db),
		Tokens:      middleware.NewTokenManager("server-test-secret", 15*time.Minute, time.Hour),
		Profiles:    profiles,
		CORSOrigins: []string{testOrigin},
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	testutil.AssertNoError(t, err)
	return &testApp{db: db, server: srv, client: &http.Client{Jar: jar}}
}

func (app *testApp) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, app.server.URL+path, r)
	testutil.AssertNoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.client.Do(req)
	testutil.AssertNoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	testutil.AssertNoError(t, err)
	return resp, data
}

func (app *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	resp, body := app.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"fullName":"Asha Rao","email":"`+email+`","password":"password123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.StatusCode, body)
	}
	resp, body = app.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"`+email+`","password":"password123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}
}

func (app *testApp) cookie(t *testing.T, name string) string {
	t.Helper()
	u, err := url.Parse(app.server.URL)
	testutil.AssertNoError(t, err)
	for _, c := range app.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %s not set", name)
	return ""
}

func decode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, data)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	resp, body := app.do(t, http.MethodGet, "/api/health", "")
	assertCode(t, resp, http.StatusOK)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("body = %s", body)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := setupApp(t)
	for _, path := range []string{"/api/v1/transactions", "/api/v1/theme", "/api/v1/auth/me", "/api/v1/summary"} {
		resp, body := app.do(t, http.MethodGet, path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, resp.StatusCode)
		}
		var e map[string]interface{}
		decode(t, body, &e)
		if e["statusCode"] != float64(http.StatusUnauthorized) || e["code"] != "UNAUTHORIZED" {
			t.Errorf("%s: envelope = %v", path, e)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, "asha@example.com")

	resp, body := app.do(t, http.MethodGet, "/api/v1/auth/me", "")
	assertCode(t, resp, http.StatusOK)
	var me map[string]interface{}
	decode(t, body, &me)
	if me["email"] != "asha@example.com" || me["fullName"] != "Asha Rao" {
		t.Errorf("me = %v", me)
	}

	resp, _ = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "")
	assertCode(t, resp, http.StatusOK)

	resp, _ = app.do(t, http.MethodPost, "/api/v1/auth/logout", "")
	assertCode(t, resp, http.StatusNoContent)

	resp, _ = app.do(t, http.MethodGet, "/api/v1/auth/me", "")
	assertCode(t, resp, http.StatusUnauthorized)

	var actions []string
	testutil.AssertNoError(t, app.db.Model(&models.AuditLog{}).Order("id").Pluck("action", &actions).Error)
	want := []string{"REGISTER", "LOGIN", "REFRESH", "LOGOUT"}
	if strings.Join(actions, ",") != strings.Join(want, ",") {
		t.Errorf("audit actions = %v, want %v", actions, want)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, "rotate@example.com")

	old := app.cookie(t, middleware.RefreshTokenCookie)
	resp, _ := app.do(t, http.MethodPost, "/api/v1/auth/refresh", "")
	assertCode(t, resp, http.StatusOK)
	if fresh := app.cookie(t, middleware.RefreshTokenCookie); fresh == old {
		t.Fatal("refresh must issue a new refresh token")
	}

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/auth/refresh", nil)
	testutil.AssertNoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: old})
	replay, err := http.DefaultClient.Do(req)
	testutil.AssertNoError(t, err)
	replay.Body.Close()
	assertCode(t, replay, http.StatusUnauthorized)
}

func TestDuplicateRegistration(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, "dup@example.com")

	resp, body := app.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"fullName":"Asha Rao","email":"dup@example.com","password":"password123"}`)
	assertCode(t, resp, http.StatusConflict)
	var e map[string]interface{}
	decode(t, body, &e)
	if e["code"] != "DUPLICATE_EMAIL" {
		t.Errorf("code = %v", e["code"])
	}
}

func TestGroceriesFlowPersistsAcrossRequests(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, "groceries@example.com")

	resp, body := app.do(t, http.MethodPost, "/api/v1/transactions",
		`{"amount":"42.50","category":"Groceries","date":"2024-03-01"}`)
	assertCode(t, resp, http.StatusCreated)
	var created transactions.Record
	decode(t, body, &created)

	resp, _ = app.do(t, http.MethodPatch, "/api/v1/transactions/"+created.ID, `{"notes":"weekly shop"}`)
	assertCode(t, resp, http.StatusOK)

	resp, body = app.do(t, http.MethodGet, "/api/v1/transactions", "")
	assertCode(t, resp, http.StatusOK)
	var page struct {
		Data       []transactions.Record `json:"data"`
		TotalItems int64                 `json:"total_items"`
	}
	decode(t, body, &page)
	if page.TotalItems != 1 || len(page.Data) != 1 {
		t.Fatalf("page = %+v", page)
	}
	got := page.Data[0]
	if got.Notes != "weekly shop" || got.Category != "Groceries" || got.Amount.String() != "42.5" {
		t.Errorf("record = %+v", got)
	}

	resp, _ = app.do(t, http.MethodDelete, "/api/v1/transactions/"+created.ID, "")
	assertCode(t, resp, http.StatusOK)

	_, body = app.do(t, http.MethodGet, "/api/v1/transactions", "")
	decode(t, body, &page)
	if page.TotalItems != 0 {
		t.Errorf("expected empty collection after delete, got %d", page.TotalItems)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, "first@example.com")
	resp, _ := app.do(t, http.MethodPut, "/api/v1/theme", `{"preference":"dark"}`)
	assertCode(t, resp, http.StatusOK)

	other := &testApp{server: app.server}
	jar, _ := cookiejar.New(nil)
	other.client = &http.Client{Jar: jar}
	other.signIn(t, "second@example.com")

	_, body := other.do(t, http.MethodGet, "/api/v1/theme", "")
	var th map[string]interface{}
	decode(t, body, &th)
	if th["preference"] != "light" {
		t.Errorf("second user theme = %v, want light", th["preference"])
	}
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	app := setupApp(t)

	req, err := http.NewRequest(http.MethodOptions, app.server.URL+"/api/v1/auth/login", nil)
	testutil.AssertNoError(t, err)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := app.client.Do(req)
	testutil.AssertNoError(t, err)
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Allow-Origin = %q, want %q", got, testOrigin)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := SplitOrigins(" http://a.test, ,http://b.test ")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("SplitOrigins = %v", got)
	}
}

func assertCode(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}
