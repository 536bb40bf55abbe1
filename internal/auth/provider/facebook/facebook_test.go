package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"ditroboticstw/internal/auth/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeGraph struct {
	tokenStatus int
	tokenBody   string
	meStatus    int
	meBody      string
}

func (f *fakeGraph) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "app-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "app-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "grant-1", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "id,name", r.URL.Query().Get("fields"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.meStatus)
		_, _ = w.Write([]byte(f.meBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, f *fakeGraph) *Provider {
	t.Helper()
	srv := f.server(t)

	p, err := New("app-id", "app-secret", "http://localhost/authorized",
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/dialog/oauth",
			TokenURL:  srv.URL + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithGraphURL(srv.URL+"/"),
	)
	require.NoError(t, err)
	return p
}

func okGraph() *fakeGraph {
	return &fakeGraph{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`,
		meStatus:    http.StatusOK,
		meBody:      `{"id":"1000123","name":"Jane Doe"}`,
	}
}

func TestNew_RequiresFields(t *testing.T) {
	_, err := New("", "secret", "http://x/authorized")
	assert.Error(t, err)
	_, err = New("id", "", "http://x/authorized")
	assert.Error(t, err)
	_, err = New("id", "secret", "")
	assert.Error(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	p, err := New("app-id", "app-secret", "http://localhost/authorized")
	require.NoError(t, err)

	u, err := url.Parse(p.AuthCodeURL("st-1"))
	require.NoError(t, err)

	assert.Equal(t, "www.facebook.com", u.Host)
	q := u.Query()
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost/authorized", q.Get("redirect_uri"))
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "facebook", p.Name())
}

func TestExchangeAndMe(t *testing.T) {
	p := newTestProvider(t, okGraph())
	ctx := context.Background()

	token, err := p.ExchangeCode(ctx, "grant-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.AccessToken)

	id, err := p.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "1000123", id.ExternalID)
	assert.Equal(t, "Jane Doe", id.DisplayName)
}

func TestExchange_GraphErrorEnvelope(t *testing.T) {
	f := okGraph()
	f.tokenStatus = http.StatusBadRequest
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"message": "This authorization code has expired.",
			"type":    "OAuthException",
			"code":    100,
		},
	})
	f.tokenBody = string(body)
	p := newTestProvider(t, f)

	_, err := p.ExchangeCode(context.Background(), "grant-1")
	require.Error(t, err)

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "This authorization code has expired.", perr.Message)
	assert.Equal(t, "OAuthException", perr.Type)
	assert.Equal(t, 100, perr.Code)
}

func TestExchange_StandardOAuthError(t *testing.T) {
	f := okGraph()
	f.tokenStatus = http.StatusBadRequest
	f.tokenBody = `{"error":"invalid_grant","error_description":"bad code"}`
	p := newTestProvider(t, f)

	_, err := p.ExchangeCode(context.Background(), "grant-1")

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad code", perr.Message)
}

func TestExchange_TransportFailureIsNotProviderError(t *testing.T) {
	p, err := New("app-id", "app-secret", "http://localhost/authorized",
		WithEndpoint(oauth2.Endpoint{TokenURL: "http://127.0.0.1:1/token", AuthStyle: oauth2.AuthStyleInParams}),
	)
	require.NoError(t, err)

	_, err = p.ExchangeCode(context.Background(), "grant-1")
	require.Error(t, err)

	var perr *provider.Error
	assert.False(t, errors.As(err, &perr))
}

func TestMe_Error(t *testing.T) {
	f := okGraph()
	f.meStatus = http.StatusUnauthorized
	f.meBody = `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`
	p := newTestProvider(t, f)

	_, err := p.Me(context.Background(), &oauth2.Token{AccessToken: "tok-1"})

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 190, perr.Code)
}

func TestMe_MissingID(t *testing.T) {
	f := okGraph()
	f.meBody = `{"name":"No Id"}`
	p := newTestProvider(t, f)

	_, err := p.Me(context.Background(), &oauth2.Token{AccessToken: "tok-1"})
	require.Error(t, err)
}
