package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cognito-login/pkg/auth"
)

// Widget modes.
const (
	ModeSignIn  = "signIn"
	ModeSignUp  = "signUp"
	ModeConfirm = "confirmSignUp"
)

// Widget submission paths.
const (
	SignInPath  = "/login"
	SignUpPath  = "/login/signup"
	ConfirmPath = "/login/confirm"
)

// WidgetConfig configures the sign-in/sign-up form.
type WidgetConfig struct {
	AllowSignUp bool
	// Identifiers are the attributes a user may sign in with: email,
	// phone_number or username.
	Identifiers []string
	// SignUpFields are extra user attributes collected at sign-up.
	SignUpFields []string
}

// DefaultWidgetConfig signs users in by email and asks for a name at sign-up.
func DefaultWidgetConfig() WidgetConfig {
	return WidgetConfig{
		AllowSignUp:  true,
		Identifiers:  []string{"email"},
		SignUpFields: []string{"name"},
	}
}

var identifierInputs = map[string]struct{ label, typ, autocomplete string }{
	"email":        {"Email", "email", "email"},
	"phone_number": {"Phone Number", "tel", "tel"},
	"username":     {"Username", "text", "username"},
}

// Validate rejects identifiers the widget cannot render.
func (c WidgetConfig) Validate() error {
	if len(c.Identifiers) == 0 {
		return errors.New("widget needs at least one identifier")
	}
	for _, id := range c.Identifiers {
		if _, ok := identifierInputs[id]; !ok {
			return fmt.Errorf("unsupported identifier %q", id)
		}
	}
	return nil
}

type formField struct {
	Name         string
	Label        string
	Type         string
	Autocomplete string
}

type widgetProps struct {
	Mode         string
	Username     string
	Error        string
	Notice       string
	CSRFToken    string
	AllowSignUp  bool
	Identifier   formField
	SignUpFields []formField

	SignInPath  string
	SignUpPath  string
	ConfirmPath string
}

// Widget renders the sign-in/sign-up form and forwards its submissions to the
// identity provider. Field validation is left to the provider.
type Widget struct {
	cfg        WidgetConfig
	auth       auth.Authenticator
	cookies    SessionCookies
	logger     *slog.Logger
	view       View[widgetProps]
	identifier formField
	fields     []formField
}

// NewWidget builds a widget for cfg.
func NewWidget(cfg WidgetConfig, authenticator auth.Authenticator, cookies SessionCookies, logger *slog.Logger) (*Widget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Widget{
		cfg:     cfg,
		auth:    authenticator,
		cookies: cookies,
		logger:  logger,
		view:    templateView[widgetProps]("login"),
	}

	labels := make([]string, 0, len(cfg.Identifiers))
	for _, id := range cfg.Identifiers {
		labels = append(labels, identifierInputs[id].label)
	}
	w.identifier = formField{Name: "username", Label: strings.Join(labels, " or "), Type: "text", Autocomplete: "username"}
	if len(cfg.Identifiers) == 1 {
		in := identifierInputs[cfg.Identifiers[0]]
		w.identifier.Type = in.typ
		w.identifier.Autocomplete = in.autocomplete
	}

	title := cases.Title(language.English)
	for _, name := range cfg.SignUpFields {
		w.fields = append(w.fields, formField{
			Name:  name,
			Label: title.String(strings.ReplaceAll(name, "_", " ")),
			Type:  "text",
		})
	}
	return w, nil
}

func (wg *Widget) props(r *http.Request, mode string) widgetProps {
	return widgetProps{
		Mode:         mode,
		CSRFToken:    CSRFToken(r.Context()),
		AllowSignUp:  wg.cfg.AllowSignUp,
		Identifier:   wg.identifier,
		SignUpFields: wg.fields,
		SignInPath:   SignInPath,
		SignUpPath:   SignUpPath,
		ConfirmPath:  ConfirmPath,
	}
}

// Render shows the widget in sign-in mode.
func (wg *Widget) Render(w http.ResponseWriter, r *http.Request) {
	mode := ModeSignIn
	if wg.cfg.AllowSignUp && r.URL.Query().Get("mode") == ModeSignUp {
		mode = ModeSignUp
	}
	writeView(w, r, http.StatusOK, wg.view, wg.props(r, mode), wg.logger)
}

// SignIn handles the sign-in form.
func (wg *Widget) SignIn(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	session, err := wg.auth.SignIn(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		wg.fail(w, r, ModeSignIn, username, err)
		return
	}
	wg.signedIn(w, r, session)
}

// SignUp handles the create-account form.
func (wg *Widget) SignUp(w http.ResponseWriter, r *http.Request) {
	if !wg.cfg.AllowSignUp {
		http.NotFound(w, r)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	attrs := make(map[string]string, len(wg.fields)+1)
	for _, f := range wg.fields {
		attrs[f.Name] = r.PostFormValue(f.Name)
	}
	if len(wg.cfg.Identifiers) == 1 && wg.cfg.Identifiers[0] != "username" {
		attrs[wg.cfg.Identifiers[0]] = username
	}

	res, err := wg.auth.SignUp(r.Context(), username, password, attrs)
	if err != nil {
		wg.fail(w, r, ModeSignUp, username, err)
		return
	}
	wg.logger.InfoContext(r.Context(), "user signed up", "user_sub", res.UserSub, "confirmed", res.Confirmed)

	if res.Confirmed {
		session, err := wg.auth.SignIn(r.Context(), username, password)
		if err != nil {
			wg.fail(w, r, ModeSignIn, username, err)
			return
		}
		wg.signedIn(w, r, session)
		return
	}

	p := wg.props(r, ModeConfirm)
	p.Username = username
	p.Notice = "We sent a confirmation code. Enter it below to finish creating your account."
	if res.Destination != "" {
		p.Notice = fmt.Sprintf("We sent a confirmation code to %s. Enter it below to finish creating your account.", res.Destination)
	}
	writeView(w, r, http.StatusOK, wg.view, p, wg.logger)
}

// Confirm handles the confirmation-code form.
func (wg *Widget) Confirm(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	if err := wg.auth.ConfirmSignUp(r.Context(), username, r.PostFormValue("code")); err != nil {
		wg.fail(w, r, ModeConfirm, username, err)
		return
	}

	p := wg.props(r, ModeSignIn)
	p.Username = username
	p.Notice = "Your account is confirmed. Sign in to continue."
	writeView(w, r, http.StatusOK, wg.view, p, wg.logger)
}

func (wg *Widget) signedIn(w http.ResponseWriter, r *http.Request, session *auth.Session) {
	wg.cookies.Write(w, session)
	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}

// fail re-renders the widget with what the visitor needs to know about err.
func (wg *Widget) fail(w http.ResponseWriter, r *http.Request, mode, username string, err error) {
	p := wg.props(r, mode)
	p.Username = username
	status := http.StatusBadRequest

	var rej *auth.RejectedError
	switch {
	case errors.Is(err, auth.ErrConfirmationRequired):
		p.Mode = ModeConfirm
		p.Notice = "Your account is not confirmed yet. Enter the code we sent you."
		status = http.StatusOK
	case errors.As(err, &rej):
		p.Error = rej.Message
	case errors.Is(err, auth.ErrChallengeUnsupported):
		p.Error = "This account needs a sign-in step that is not available here."
		wg.logger.WarnContext(r.Context(), "unsupported sign-in challenge", "error", err)
	default:
		p.Error = "Something went wrong. Please try again."
		status = http.StatusServiceUnavailable
		wg.logger.ErrorContext(r.Context(), "identity provider request failed", "mode", mode, "error", err)
	}
	writeView(w, r, status, wg.view, p, wg.logger)
}
