package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, NewCookieCodec("secret"), time.Hour, CookieOptions{}), store
}

func requestWith(cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestManager_LoadWithoutCookieIsFresh(t *testing.T) {
	m, store := newManager()

	s, err := m.Load(requestWith())
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.NotEmpty(t, s.ID)
	assert.Empty(t, s.Values)
	assert.Equal(t, 0, store.Len())
}

func TestManager_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	s, err := m.Load(requestWith())
	require.NoError(t, err)
	s.Set(KeyUsername, "Jane")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, rec, s))
	assert.False(t, s.IsNew())
	assert.Equal(t, 1, store.Len())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	loaded, err := m.Load(requestWith(cookies[0]))
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "Jane", loaded.Get(KeyUsername))

	// second save goes through Update
	loaded.Set(KeyUsername, "June")
	require.NoError(t, m.Save(ctx, httptest.NewRecorder(), loaded))
	again, err := m.Load(requestWith(cookies[0]))
	require.NoError(t, err)
	assert.Equal(t, "June", again.Get(KeyUsername))
}

func TestManager_ForgedCookieIsFresh(t *testing.T) {
	m, _ := newManager()

	s, err := m.Load(requestWith(&http.Cookie{Name: CookieName, Value: "forged"}))
	require.NoError(t, err)
	assert.True(t, s.IsNew())
}

func TestManager_UnknownSessionIsFresh(t *testing.T) {
	m, _ := newManager()

	value, err := m.codec.Encode("gone", time.Now().Add(time.Hour))
	require.NoError(t, err)

	s, err := m.Load(requestWith(&http.Cookie{Name: CookieName, Value: value}))
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.NotEqual(t, "gone", s.ID)
}

func TestManager_Destroy(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	s, _ := m.Load(requestWith())
	require.NoError(t, m.Save(ctx, httptest.NewRecorder(), s))

	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, rec, s))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New("a", time.Now())
	got, ok := FromContext(NewContext(context.Background(), s))
	assert.True(t, ok)
	assert.Same(t, s, got)
}
