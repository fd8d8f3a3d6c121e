package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognito-login/pkg/auth"
)

func newTestLoginPage(t *testing.T, p auth.Provider, cfg WidgetConfig) *LoginPage {
	t.Helper()
	log, _ := newLogBuffer()
	widget, err := NewWidget(cfg, &fakeAuthenticator{}, testCookies, log)
	require.NoError(t, err)
	return NewLoginPage(NewGate(p, testCookies, log), widget)
}

func TestLoginPage_AlreadySignedIn(t *testing.T) {
	p := &fakeProvider{user: signedInUser()}
	page := newTestLoginPage(t, p, DefaultWidgetConfig())

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, withSessionCookies(httptest.NewRequest(http.MethodGet, "/login", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, HomePath, rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), `id="sign-in"`)
	assert.Equal(t, 1, p.checks())
}

func TestLoginPage_RendersWidget(t *testing.T) {
	p := &fakeProvider{err: auth.ErrNoSession}
	page := newTestLoginPage(t, p, DefaultWidgetConfig())

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, body, `id="sign-in"`)
	assert.Contains(t, body, `data-mode="signIn"`)
	assert.Contains(t, body, `type="email"`)
	assert.Contains(t, body, "Create Account")
	assert.Contains(t, body, "Protected by AWS Cognito")
	assert.Equal(t, 1, p.checks())
}

func TestLoginPage_SignUpMode(t *testing.T) {
	page := newTestLoginPage(t, &fakeProvider{err: auth.ErrNoSession}, DefaultWidgetConfig())

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login?mode=signUp", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `id="sign-up"`)
	assert.Contains(t, body, `<label for="name">Name</label>`)
	assert.Contains(t, body, `action="/login/signup"`)
}

func TestLoginPage_SignUpDisabled(t *testing.T) {
	cfg := DefaultWidgetConfig()
	cfg.AllowSignUp = false
	page := newTestLoginPage(t, &fakeProvider{err: auth.ErrNoSession}, cfg)

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login?mode=signUp", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `id="sign-in"`)
	assert.NotContains(t, body, "Create Account")
}

func TestLoginPage_ProviderUnreachableShowsWidget(t *testing.T) {
	page := newTestLoginPage(t, &fakeProvider{err: auth.ErrUnreachable}, DefaultWidgetConfig())

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="sign-in"`)
}
