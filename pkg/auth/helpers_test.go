package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/stretchr/testify/require"
)

const (
	testPool   = "us-east-1_POOL1"
	testClient = "CLIENT1"
	testKeyID  = "test-key"
)

// testIssuer serves a JWKS document and mints access tokens signed with it.
type testIssuer struct {
	t       *testing.T
	key     jwk.Key
	server  *httptest.Server
	issuer  string
	fetches atomic.Int32
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv, err := jwk.New(raw)
	require.NoError(t, err)
	require.NoError(t, priv.Set(jwk.KeyIDKey, testKeyID))

	pub, err := jwk.PublicKeyOf(priv)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256))
	set := jwk.NewSet()
	set.Add(pub)

	ti := &testIssuer{t: t, key: priv}
	ti.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ti.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ti.server.Close)
	ti.issuer = "https://cognito-idp.us-east-1.amazonaws.com/" + testPool
	return ti
}

func (ti *testIssuer) verifier(ctx context.Context) *jwksVerifier {
	return newJWKSVerifierAt(ctx, ti.server.URL, ti.issuer, testClient, ti.server.Client())
}

// mint signs an access token; overrides replace or add claims.
func (ti *testIssuer) mint(exp time.Time, overrides map[string]interface{}) string {
	ti.t.Helper()

	tok := jwt.New()
	claims := map[string]interface{}{
		jwt.IssuerKey:   ti.issuer,
		jwt.SubjectKey:  "sub-123",
		jwt.IssuedAtKey: exp.Add(-time.Hour),
		"token_use":     "access",
		"client_id":     testClient,
		"username":      "alice",
	}
	for k, v := range overrides {
		claims[k] = v
	}
	for k, v := range claims {
		require.NoError(ti.t, tok.Set(k, v))
	}
	require.NoError(ti.t, tok.Set(jwt.ExpirationKey, exp))

	signed, err := jwt.Sign(tok, jwa.RS256, ti.key)
	require.NoError(ti.t, err)
	return string(signed)
}
