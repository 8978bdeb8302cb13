package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"Resource-Library/internals/config"
	"Resource-Library/internals/database"
	"Resource-Library/internals/handlers/live"
	"Resource-Library/internals/logging"
	"Resource-Library/internals/metrics"
	"Resource-Library/internals/models"
	"Resource-Library/internals/services"
	"Resource-Library/internals/sessions"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type app struct {
	srv *httptest.Server
	db  *sql.DB
	hub *live.Hub
}

func testConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Database.SQLitePath = filepath.Join(dir, "library.db")
	cfg.Session.StorePath = filepath.Join(dir, "sessions.sqlite")
	cfg.Session.Secret = "test-secret"
	cfg.Session.CookieName = "sid"
	cfg.Session.MaxAge = time.Hour
	cfg.Session.CacheSize = 16
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

func newApp(t *testing.T, tweak ...func(*config.Config)) *app {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig(t.TempDir())
	for _, f := range tweak {
		f(cfg)
	}
	log := logging.Discard()

	db, err := database.Open(ctx, cfg.Database.SQLitePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, log))

	store, err := sessions.OpenStore(ctx, cfg.Session.StorePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	sm, err := sessions.NewManager(store, sessions.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     []byte(cfg.Session.Secret),
		MaxAge:     cfg.Session.MaxAge,
		CacheSize:  cfg.Session.CacheSize,
	}, log)
	require.NoError(t, err)

	auth, err := services.NewAuthService(db, cfg.Security.BcryptCost)
	require.NoError(t, err)
	m := metrics.New()
	hub := live.NewHub(log)
	t.Cleanup(hub.Close)

	handler, err := NewRouter(Deps{
		Config:   cfg,
		Log:      log,
		Auth:     auth,
		Accounts: services.NewAccountService(db, cfg.Security.BcryptCost),
		Catalog:  services.NewCatalogService(db, services.Fanout{hub, m}),
		Sessions: sm,
		Metrics:  m,
		Hub:      hub,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &app{srv: srv, db: db, hub: hub}
}

// browser returns a client that keeps cookies and does not follow redirects.
func (a *app) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *app) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *app) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (a *app) register(t *testing.T, c *http.Client, username, password string) {
	t.Helper()
	resp, _ := a.post(t, c, "/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (a *app) addResource(t *testing.T, c *http.Client, title string) string {
	t.Helper()
	resp, _ := a.post(t, c, "/add", url.Values{
		"title":       {title},
		"type":        {"article"},
		"description": {"about " + title},
		"link":        {"https://example.com/" + title},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/resource/"), loc)
	return loc
}

func TestRegister_SignsInAndRejectsDuplicates(t *testing.T) {
	a := newApp(t)
	alice := a.browser(t)

	resp, _ := a.post(t, alice, "/register", url.Values{
		"username": {"alice"}, "password": {"pw"}, "display_name": {"Alice"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, home := a.get(t, alice, "/")
	assert.Contains(t, home, "Signed in as alice")

	other := a.browser(t)
	resp, body := a.post(t, other, "/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", strings.TrimSpace(body))
	assert.Empty(t, resp.Cookies())

	var n int
	require.NoError(t, a.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRegister_MissingFields(t *testing.T) {
	a := newApp(t)
	resp, body := a.post(t, a.browser(t), "/register", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing", strings.TrimSpace(body))
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	a := newApp(t)
	a.register(t, a.browser(t), "alice", "right")

	wrongResp, wrongBody := a.post(t, a.browser(t), "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	unknownResp, unknownBody := a.post(t, a.browser(t), "/login", url.Values{"username": {"nobody"}, "password": {"x"}})

	assert.Equal(t, http.StatusBadRequest, wrongResp.StatusCode)
	assert.Equal(t, wrongResp.StatusCode, unknownResp.StatusCode)
	assert.Equal(t, "Invalid credentials", strings.TrimSpace(wrongBody))
	assert.Equal(t, wrongBody, unknownBody)
	assert.Empty(t, wrongResp.Cookies())
	assert.Empty(t, unknownResp.Cookies())

	c := a.browser(t)
	resp, _ := a.post(t, c, "/login", url.Values{"username": {"alice"}, "password": {"right"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, home := a.get(t, c, "/")
	assert.Contains(t, home, "Signed in as alice")
}

func TestLogout_ThenAddRedirectsToLogin(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "pw")

	resp, _ := a.get(t, c, "/add")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.get(t, c, "/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = a.get(t, c, "/add")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// logging out twice is harmless
	resp, _ = a.get(t, c, "/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)

	for _, path := range []string{"/add", "/account", "/resource/1/edit", "/resource/1/delete"} {
		resp, _ := a.get(t, c, path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
	resp, _ := a.post(t, c, "/add", url.Values{"title": {"x"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCreateThenFetch(t *testing.T) {
	a := newApp(t)
	alice := a.browser(t)
	a.register(t, alice, "alice", "pw")
	loc := a.addResource(t, alice, "gopher")

	resp, body := a.get(t, a.browser(t), loc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h2>gopher</h2>")
	assert.Contains(t, body, "Author: alice")
	assert.Contains(t, body, "about gopher")

	id := strings.TrimPrefix(loc, "/resource/")
	resp, body = a.get(t, a.browser(t), "/api/resources/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "gopher", got["title"])
	assert.Equal(t, "article", got["type"])
	assert.Equal(t, "about gopher", got["description"])
	assert.Equal(t, "https://example.com/gopher", got["link"])
	assert.Len(t, got, 5)
}

func TestAnyUserCanEditAndDelete(t *testing.T) {
	a := newApp(t)
	alice, bob := a.browser(t), a.browser(t)
	a.register(t, alice, "alice", "pw")
	a.register(t, bob, "bob", "pw")
	loc := a.addResource(t, alice, "mine")

	resp, body := a.get(t, bob, loc+"/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="mine"`)

	resp, _ = a.post(t, bob, loc+"/edit", url.Values{"title": {"bobs now"}, "type": {"video"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, loc, resp.Header.Get("Location"))

	_, body = a.get(t, bob, loc)
	assert.Contains(t, body, "bobs now")
	assert.Contains(t, body, "Author: alice")

	resp, _ = a.get(t, bob, loc+"/delete")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body = a.get(t, bob, loc)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", strings.TrimSpace(body))
}

func TestEditAndDeleteOfUnknownID(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "pw")

	resp, _ := a.get(t, c, "/resource/999/edit")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.post(t, c, "/resource/999/edit", url.Values{"title": {"x"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/resource/999", resp.Header.Get("Location"))

	resp, _ = a.get(t, c, "/resource/999/delete")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestSearch(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "pw")
	a.addResource(t, c, "golang")
	a.addResource(t, c, "rust")

	_, body := a.get(t, c, "/?q=gol")
	assert.Contains(t, body, ">golang</a>")
	assert.NotContains(t, body, ">rust</a>")

	_, body = a.get(t, c, "/?q=zzz-nothing")
	assert.NotContains(t, body, `class="resource"`)
}

func TestScriptInTitleIsEscaped(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "pw")
	loc := a.addResource(t, c, "<script>alert('x')</script>")

	for _, path := range []string{"/", loc, loc + "/edit", "/account"} {
		_, body := a.get(t, c, path)
		assert.NotContains(t, body, "<script>", path)
		assert.Contains(t, body, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;", path)
	}
}

func TestAPI(t *testing.T) {
	a := newApp(t)

	resp, body := a.get(t, a.browser(t), "/api/resources")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(body))

	for _, path := range []string{"/api/resources/42", "/api/resources/abc", "/api/resources/0"} {
		resp, body = a.get(t, a.browser(t), path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"), path)
		assert.JSONEq(t, `{"error":"not found"}`, body, path)
	}

	c := a.browser(t)
	a.register(t, c, "alice", "pw")
	a.addResource(t, c, "first")
	a.addResource(t, c, "second")

	_, body = a.get(t, c, "/api/resources")
	var items []models.Resource
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	assert.Equal(t, "first", items[1].Title)
}

func TestAPI_CORS(t *testing.T) {
	a := newApp(t)
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/api/resources", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://elsewhere.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAccount(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "old")

	_, body := a.get(t, c, "/account")
	assert.Contains(t, body, "None yet")

	resp, _ := a.post(t, c, "/account", url.Values{"display_name": {"Ally"}, "password": {"new"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/account", resp.Header.Get("Location"))

	a.addResource(t, c, "owned")
	_, body = a.get(t, c, "/account")
	assert.Contains(t, body, `value="Ally"`)
	assert.Contains(t, body, ">owned</a>")
	assert.NotContains(t, body, "None yet")

	resp, _ = a.post(t, a.browser(t), "/login", url.Values{"username": {"alice"}, "password": {"new"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAccount_DeletedUserIsSignedOut(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)
	a.register(t, c, "alice", "pw")

	_, err := a.db.Exec(`DELETE FROM users WHERE username = 'alice'`)
	require.NoError(t, err)

	resp, _ := a.get(t, c, "/account")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = a.get(t, c, "/add")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newApp(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 1
	})
	c := a.browser(t)
	form := url.Values{"username": {"x"}, "password": {"y"}}

	resp, _ := a.post(t, c, "/login", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := a.post(t, c, "/login", form)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", strings.TrimSpace(body))

	// browsing is not limited
	resp, _ = a.get(t, c, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRateLimitCanBeDisabled(t *testing.T) {
	a := newApp(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 1
		cfg.RateLimit.Disabled = true
	})
	c := a.browser(t)
	form := url.Values{"username": {"x"}, "password": {"y"}}

	for i := 0; i < 5; i++ {
		resp, _ := a.post(t, c, "/login", form)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestStoreFailures(t *testing.T) {
	a := newApp(t)
	_, err := a.db.Exec(`DROP TABLE resources`)
	require.NoError(t, err)
	c := a.browser(t)

	for _, path := range []string{"/", "/resource/1"} {
		resp, body := a.get(t, c, path)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.Equal(t, "DB error", strings.TrimSpace(body), path)
	}
	for _, path := range []string{"/api/resources", "/api/resources/1"} {
		resp, body := a.get(t, c, path)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"), path)
		assert.JSONEq(t, `{"error":"db"}`, body, path)
	}

	a.register(t, c, "alice", "pw")
	resp, body := a.post(t, c, "/add", url.Values{"title": {"t"}, "type": {"article"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "DB error", strings.TrimSpace(body))
}

func TestUnknownPathAndMetrics(t *testing.T) {
	a := newApp(t)
	c := a.browser(t)

	resp, body := a.get(t, c, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", strings.TrimSpace(body))

	a.get(t, c, "/")
	_, body = a.get(t, c, "/metrics")
	assert.Contains(t, body, `resource_library_http_requests_total{method="GET",route="/",status="200"}`)
}

func TestLiveFeed(t *testing.T) {
	a := newApp(t)
	wsURL := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/ws/resources"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return a.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	c := a.browser(t)
	a.register(t, c, "alice", "pw")
	loc := a.addResource(t, c, "live")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.ResourceEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventResourceCreated, ev.Type)
	assert.Equal(t, "live", ev.Title)
	assert.Equal(t, loc, "/resource/"+strconv.FormatInt(ev.ID, 10))
}
