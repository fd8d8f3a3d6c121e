package web

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const (
	csrfCookie = "csrf_token"
	csrfField  = "csrf_token"
)

type csrfKey struct{}

// CSRFToken returns the token forms on this request must echo back.
func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfKey{}).(string)
	return t
}

// CSRF issues a per-browser token cookie and requires unsafe requests to post
// the same token as a form field. Rejected requests go to onFailure, or get a
// 403 when it is nil.
func CSRF(secure bool, onFailure http.HandlerFunc) func(http.Handler) http.Handler {
	if onFailure == nil {
		onFailure = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if ck, err := r.Cookie(csrfCookie); err == nil && ck.Value != "" {
				token = ck.Value
			}

			if !isSafeMethod(r.Method) {
				sent := r.PostFormValue(csrfField)
				if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sent)) != 1 {
					onFailure(w, r)
					return
				}
			}

			if token == "" {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
