package auth

import "context"

// Session is the pair of provider-issued tokens that identifies a signed-in
// visitor. Its contents are never inspected outside this package.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether s carries no tokens at all.
func (s *Session) Empty() bool {
	return s == nil || (s.AccessToken == "" && s.RefreshToken == "")
}

// User is the handle returned for an authenticated session.
type User struct {
	Subject  string
	Username string

	// Session is the session the user was resolved from. When Renewed is set it
	// holds freshly issued tokens that the caller must persist.
	Session *Session
	Renewed bool
}

// SignUpResult reports the outcome of a registration.
type SignUpResult struct {
	UserSub   string
	Confirmed bool
	// Destination is where the confirmation code was sent, masked by the provider.
	Destination string
}

// Provider is the session side of the identity provider.
type Provider interface {
	// CurrentUser resolves the user behind s. It fails with ErrNoSession when
	// there is no valid session and with ErrUnreachable when the provider could
	// not be asked.
	CurrentUser(ctx context.Context, s *Session) (*User, error)
	// SignOut invalidates s at the provider.
	SignOut(ctx context.Context, s *Session) error
}

// Authenticator is what the sign-in/sign-up widget submits to.
type Authenticator interface {
	SignIn(ctx context.Context, username, password string) (*Session, error)
	SignUp(ctx context.Context, username, password string, attributes map[string]string) (*SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
}
