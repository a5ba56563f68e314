package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acmefin/dashboard-core/internal/user/entity"
)

func testManager(ttl time.Duration) *Manager {
	return NewManager(Config{Secret: "test-secret", TTL: ttl})
}

func issueCookie(t *testing.T, m *Manager) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, &entity.User{ID: "u-1", Name: "Ada"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestIssueSetsHttpOnlyCookie(t *testing.T) {
	m := testManager(time.Hour)
	cookie := issueCookie(t, m)

	require.Equal(t, CookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
	require.NotEmpty(t, cookie.Value)
}

func TestVerifyRoundTripsClaims(t *testing.T) {
	m := testManager(time.Hour)
	cookie := issueCookie(t, m)

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)

	claims, err := m.Verify(r)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "Ada", claims.Name)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	cookie := issueCookie(t, m)

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)

	_, err := m.Verify(r)
	require.Error(t, err)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	cookie := issueCookie(t, NewManager(Config{Secret: "other-secret", TTL: time.Hour}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)

	_, err := testManager(time.Hour).Verify(r)
	require.Error(t, err)
}

func TestRequireRedirectsAnonymousToLogin(t *testing.T) {
	m := testManager(time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	rec := httptest.NewRecorder()
	m.Require(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequirePassesClaimsThroughContext(t *testing.T) {
	m := testManager(time.Hour)
	cookie := issueCookie(t, m)

	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		require.True(t, ok)
		gotID = claims.UserID
	})

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	m.Require(next).ServeHTTP(rec, r)

	require.Equal(t, "u-1", gotID)
}

func TestClearExpiresCookie(t *testing.T) {
	m := testManager(time.Hour)
	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Less(t, cookies[0].MaxAge, 0)
}
