package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"cognito-login/pkg/auth"
)

// Paths of the two views.
const (
	HomePath  = "/"
	LoginPath = "/login"
)

// State is where an auth check stands for one request.
type State int

const (
	StateChecking State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "checking"
	}
}

type userKey struct{}

// UserFromContext returns the user a gated handler was admitted with.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey{}).(*auth.User)
	return u, ok
}

// Gate decides whether a visitor is signed in. Every view that needs the answer
// asks the gate, so the provider is the only source of truth.
type Gate struct {
	provider auth.Provider
	cookies  SessionCookies
	logger   *slog.Logger
}

// NewGate returns a gate backed by provider.
func NewGate(provider auth.Provider, cookies SessionCookies, logger *slog.Logger) *Gate {
	return &Gate{provider: provider, cookies: cookies, logger: logger}
}

// Check asks the provider for the current user once. It returns StateChecking
// when the request went away before the answer arrived; the caller must then
// write nothing.
func (g *Gate) Check(w http.ResponseWriter, r *http.Request) (State, *auth.User) {
	ctx := r.Context()
	session := g.cookies.Read(r)

	user, err := g.provider.CurrentUser(ctx, session)
	if ctx.Err() != nil {
		g.logger.DebugContext(ctx, "request ended during auth check", "path", r.URL.Path)
		return StateChecking, nil
	}

	switch {
	case err == nil && user != nil:
		if user.Renewed && user.Session != nil {
			g.cookies.Write(w, user.Session)
		}
		return StateAuthenticated, user
	case err == nil, errors.Is(err, auth.ErrNoSession):
		g.logger.DebugContext(ctx, "no authenticated session", "path", r.URL.Path, "error", err)
		if !session.Empty() {
			g.cookies.Clear(w)
		}
	default:
		g.logger.WarnContext(ctx, "identity provider unreachable, treating visitor as signed out",
			"path", r.URL.Path,
			"error", err)
	}
	return StateUnauthenticated, nil
}

// Protect admits authenticated visitors to next and sends everyone else to the
// login view. next never runs before the check has resolved.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, user := g.Check(w, r)
		switch state {
		case StateAuthenticated:
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
		case StateUnauthenticated:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		}
	})
}

// WithAuth wraps view so it only renders for a signed-in visitor.
func WithAuth[P any](g *Gate, view View[P], props func(*http.Request) P) http.Handler {
	return g.Protect(Page(view, props, g.logger))
}
