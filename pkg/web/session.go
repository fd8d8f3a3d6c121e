package web

import (
	"net/http"
	"time"

	"cognito-login/pkg/auth"
)

const (
	accessCookie  = "session_access"
	refreshCookie = "session_refresh"
)

// SessionCookies stores the provider's session tokens in HTTP-only cookies.
type SessionCookies struct {
	Secure bool
	MaxAge time.Duration
}

// Read returns the session carried by r; it is empty when no cookies are set.
func (c SessionCookies) Read(r *http.Request) *auth.Session {
	s := &auth.Session{}
	if ck, err := r.Cookie(accessCookie); err == nil {
		s.AccessToken = ck.Value
	}
	if ck, err := r.Cookie(refreshCookie); err == nil {
		s.RefreshToken = ck.Value
	}
	return s
}

// Write persists s on the response.
func (c SessionCookies) Write(w http.ResponseWriter, s *auth.Session) {
	maxAge := int(c.MaxAge.Seconds())
	http.SetCookie(w, c.cookie(accessCookie, s.AccessToken, maxAge))
	if s.RefreshToken != "" {
		http.SetCookie(w, c.cookie(refreshCookie, s.RefreshToken, maxAge))
	}
}

// Clear expires both session cookies.
func (c SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(accessCookie, "", -1))
	http.SetCookie(w, c.cookie(refreshCookie, "", -1))
}

func (c SessionCookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
