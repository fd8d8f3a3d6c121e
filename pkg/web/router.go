package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"cognito-login/pkg/auth"
	"cognito-login/pkg/logger"
)

// LogoutPath is where the logout action is posted.
const LogoutPath = "/logout"

// Deps is everything the router needs.
type Deps struct {
	Provider      auth.Provider
	Authenticator auth.Authenticator
	Widget        WidgetConfig
	Cookies       SessionCookies
	Logger        *slog.Logger

	LoginRate  rate.Limit
	LoginBurst int
	// TrustProxy lets forwarding headers set the client address.
	TrustProxy bool
}

// NewRouter wires the views, the widget and the logout action. ctx bounds the
// router's background work.
func NewRouter(ctx context.Context, d Deps) (http.Handler, error) {
	widget, err := NewWidget(d.Widget, d.Authenticator, d.Cookies, d.Logger)
	if err != nil {
		return nil, err
	}
	gate := NewGate(d.Provider, d.Cookies, d.Logger)
	limiter := NewRateLimiter(ctx, d.LoginRate, d.LoginBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger.Std(d.Logger), NoColor: true}),
		middleware.Recoverer,
		SecurityHeaders,
		CSRF(d.Cookies.Secure, csrfFailure),
	)

	r.Method(http.MethodGet, HomePath, WithAuth(gate, HomeView, homeProps))
	r.Method(http.MethodGet, LoginPath, NewLoginPage(gate, widget))
	r.Method(http.MethodPost, LogoutPath, NewLogout(d.Provider, d.Cookies, d.Logger))

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post(SignInPath, widget.SignIn)
		if d.Widget.AllowSignUp {
			r.Post(SignUpPath, widget.SignUp)
		}
		r.Post(ConfirmPath, widget.Confirm)
	})

	return r, nil
}

// csrfFailure sends a stale logout form back to the home view, which renders a
// fresh token. Every other forged or stale post is refused.
func csrfFailure(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == LogoutPath {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	http.Error(w, "invalid CSRF token", http.StatusForbidden)
}
