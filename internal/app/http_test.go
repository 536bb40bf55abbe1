package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/blog"
	"ditroboticstw/internal/config"
	"ditroboticstw/internal/db"
	"ditroboticstw/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProvider logs in whoever the grant code names.
type fakeProvider struct{}

func (fakeProvider) Name() string { return "facebook" }

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://facebook.test/dialog/oauth?state=" + url.QueryEscape(state)
}

func (fakeProvider) ExchangeCode(_ context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "tok-" + code}, nil
}

func (fakeProvider) Me(_ context.Context, token *oauth2.Token) (*auth.Identity, error) {
	id := strings.TrimPrefix(token.AccessToken, "tok-")
	return &auth.Identity{ExternalID: id, DisplayName: "Member " + id}, nil
}

func testConfig() config.Config {
	return config.Config{
		Debug:          true,
		SecretKey:      "secret",
		PublicBaseURL:  "http://localhost:8080",
		Organization:   "DIT Robotics",
		StaffIDs:       []string{"42"},
		SessionTTL:     time.Hour,
		LoginRateLimit: 100,
		LoginRateBurst: 100,
	}
}

func newTestRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	d, err := db.Open(ctx, config.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(ctx, d))

	router, err := newRouter(deps{
		cfg:      cfg,
		provider: fakeProvider{},
		sessions: session.NewMemoryStore(),
		posts:    blog.NewSQLStore(d),
	})
	require.NoError(t, err)
	return router
}

type client struct {
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newClient(router *gin.Engine) *client {
	return &client{router: router, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil)
}

func (c *client) login(t *testing.T, externalID string) {
	t.Helper()

	rec := c.get("/login")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)

	rec = c.get("/authorized?code=" + externalID + "&state=" + url.QueryEscape(loc.Query().Get("state")))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_PublicPages(t *testing.T) {
	c := newClient(newTestRouter(t, testConfig()))

	rec := c.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	for _, path := range []string{"/", "/contests/", "/blog/"} {
		rec = c.get(path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `href="/login"`, path)
	}

	rec = c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "site_logouts_total")

	assert.Empty(t, c.cookies)
}

func TestRouter_AnonymousGates(t *testing.T) {
	c := newClient(newTestRouter(t, testConfig()))

	rec := c.get("/profile")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, c.get("/blog/editor/").Code)
}

func TestRouter_StaffLoginCanBlog(t *testing.T) {
	c := newClient(newTestRouter(t, testConfig()))
	c.login(t, "42")

	rec := c.get("/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Member 42")
	assert.Contains(t, rec.Body.String(), "blogger")

	rec = c.do(http.MethodPost, "/blog/editor/", url.Values{
		"title": {"Build log"},
		"text":  {"<p>Chassis done.</p>"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = c.get(rec.Header().Get("Location"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chassis done.")
	assert.Contains(t, rec.Body.String(), "DIT Robotics Staff #42")

	c.get("/logout")
	assert.Equal(t, http.StatusForbidden, c.get("/profile").Code)
	assert.Equal(t, http.StatusForbidden, c.get("/blog/editor/").Code)
}

func TestRouter_NonStaffCannotBlog(t *testing.T) {
	c := newClient(newTestRouter(t, testConfig()))
	c.login(t, "7")

	assert.Equal(t, http.StatusOK, c.get("/profile").Code)
	assert.Equal(t, http.StatusForbidden, c.get("/blog/editor/").Code)
}

func TestRouter_LoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = 0.001
	cfg.LoginRateBurst = 2
	c := newClient(newTestRouter(t, cfg))

	assert.Equal(t, http.StatusFound, c.get("/login").Code)
	assert.Equal(t, http.StatusFound, c.get("/login").Code)

	rec := c.get("/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other pages are not limited
	assert.Equal(t, http.StatusOK, c.get("/").Code)
}
