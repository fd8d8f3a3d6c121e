package web

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"cognito-login/pkg/auth"
	"cognito-login/pkg/logger"
)

// fakeProvider implements auth.Provider for testing.
type fakeProvider struct {
	mu       sync.Mutex
	user     *auth.User
	err      error
	sessions []*auth.Session

	// when block is set, CurrentUser signals started and waits for block to close
	block   chan struct{}
	started chan struct{}
	once    sync.Once

	signOuts   []*auth.Session
	signOutErr error
}

func (f *fakeProvider) CurrentUser(ctx context.Context, s *auth.Session) (*auth.User, error) {
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		f.once.Do(func() { close(f.started) })
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.user, f.err
}

func (f *fakeProvider) SignOut(_ context.Context, s *auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, s)
	return f.signOutErr
}

func (f *fakeProvider) checks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// fakeAuthenticator implements auth.Authenticator for testing.
type fakeAuthenticator struct {
	signInSession *auth.Session
	signInErr     error
	signInCalls   int

	signUpResult *auth.SignUpResult
	signUpErr    error
	signUpAttrs  map[string]string
	signUpUser   string

	confirmErr  error
	confirmUser string
	confirmCode string
}

func (f *fakeAuthenticator) SignIn(_ context.Context, username, password string) (*auth.Session, error) {
	f.signInCalls++
	return f.signInSession, f.signInErr
}

func (f *fakeAuthenticator) SignUp(_ context.Context, username, password string, attributes map[string]string) (*auth.SignUpResult, error) {
	f.signUpUser = username
	f.signUpAttrs = attributes
	return f.signUpResult, f.signUpErr
}

func (f *fakeAuthenticator) ConfirmSignUp(_ context.Context, username, code string) error {
	f.confirmUser = username
	f.confirmCode = code
	return f.confirmErr
}

var testCookies = SessionCookies{MaxAge: time.Hour}

func signedInUser() *auth.User {
	return &auth.User{
		Subject:  "sub-123",
		Username: "alice",
		Session:  &auth.Session{AccessToken: "access", RefreshToken: "refresh"},
	}
}

func newLogBuffer() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(&buf, "debug"), &buf
}

func withSessionCookies(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: accessCookie, Value: "access"})
	r.AddCookie(&http.Cookie{Name: refreshCookie, Value: "refresh"})
	return r
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
