package web

import (
	"log/slog"
	"net/http"

	"cognito-login/pkg/auth"
)

// Logout ends the session at the provider and sends the visitor to the login
// view. A failed sign-out is logged; the visitor is redirected either way and
// the local cookies are dropped.
type Logout struct {
	provider auth.Provider
	cookies  SessionCookies
	logger   *slog.Logger
}

func NewLogout(provider auth.Provider, cookies SessionCookies, logger *slog.Logger) *Logout {
	return &Logout{provider: provider, cookies: cookies, logger: logger}
}

func (l *Logout) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := l.provider.SignOut(r.Context(), l.cookies.Read(r)); err != nil {
		l.logger.ErrorContext(r.Context(), "error signing out", "error", err)
	}
	l.cookies.Clear(w)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
