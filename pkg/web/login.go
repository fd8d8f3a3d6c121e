package web

import "net/http"

// LoginPage serves the login view: visitors who are already signed in go
// straight home, everyone else gets the widget.
type LoginPage struct {
	gate   *Gate
	widget *Widget
}

func NewLoginPage(gate *Gate, widget *Widget) *LoginPage {
	return &LoginPage{gate: gate, widget: widget}
}

func (p *LoginPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state, _ := p.gate.Check(w, r)
	switch state {
	case StateAuthenticated:
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	case StateUnauthenticated:
		p.widget.Render(w, r)
	}
}
