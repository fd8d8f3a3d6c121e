package web

import "net/http"

// HomeProps feeds the protected home page.
type HomeProps struct {
	CSRFToken  string
	LogoutPath string
}

// HomeView is the page behind the gate.
var HomeView = templateView[HomeProps]("home")

func homeProps(r *http.Request) HomeProps {
	return HomeProps{
		CSRFToken:  CSRFToken(r.Context()),
		LogoutPath: LogoutPath,
	}
}
