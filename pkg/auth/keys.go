package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
)

// errTokenExpired marks a well-signed token whose lifetime is over.
var errTokenExpired = errors.New("access token expired")

const clockSkew = 30 * time.Second

// tokenVerifier checks an access token issued by the user pool.
type tokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (jwt.Token, error)
}

// jwksVerifier verifies access tokens against the pool's published keys. The
// key set is cached and refreshed in the background for as long as the context
// given to newJWKSVerifier lives.
type jwksVerifier struct {
	url      string
	issuer   string
	clientID string
	keys     *jwk.AutoRefresh
	now      func() time.Time
}

func newJWKSVerifier(ctx context.Context, opts Options, httpClient *http.Client) *jwksVerifier {
	return newJWKSVerifierAt(ctx, opts.JWKSURL(), opts.Issuer(), opts.AppClientID, httpClient)
}

func newJWKSVerifierAt(ctx context.Context, url, issuer, clientID string, httpClient *http.Client) *jwksVerifier {
	ar := jwk.NewAutoRefresh(ctx)
	ar.Configure(url,
		jwk.WithHTTPClient(httpClient),
		jwk.WithMinRefreshInterval(15*time.Minute),
	)
	return &jwksVerifier{
		url:      url,
		issuer:   issuer,
		clientID: clientID,
		keys:     ar,
		now:      time.Now,
	}
}

func (v *jwksVerifier) Verify(ctx context.Context, accessToken string) (jwt.Token, error) {
	set, err := v.keys.Fetch(ctx, v.url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch signing keys: %v", ErrUnreachable, err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithAcceptableSkew(clockSkew),
		jwt.WithIssuer(v.issuer),
		jwt.WithClaimValue("token_use", "access"),
		jwt.WithClaimValue("client_id", v.clientID),
	)
	if errors.Is(err, jwt.ErrTokenExpired()) {
		return nil, errTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return token, nil
}
