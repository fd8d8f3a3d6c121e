package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// Options identifies the user pool and app client the application belongs to.
type Options struct {
	UserPoolID  string
	AppClientID string
	// Region is optional; it defaults to the prefix of UserPoolID.
	Region string
}

// Validate fails when either identifier is missing.
func (o Options) Validate() error {
	var missing []string
	if strings.TrimSpace(o.UserPoolID) == "" {
		missing = append(missing, "user pool id")
	}
	if strings.TrimSpace(o.AppClientID) == "" {
		missing = append(missing, "app client id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, " and "))
	}
	return nil
}

// region returns the configured region or the one encoded in the pool id.
func (o Options) region() string {
	if o.Region != "" {
		return o.Region
	}
	if i := strings.Index(o.UserPoolID, "_"); i > 0 {
		return o.UserPoolID[:i]
	}
	return ""
}

// Issuer is the token issuer URL of the user pool.
func (o Options) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", o.region(), o.UserPoolID)
}

// JWKSURL is where the user pool publishes its signing keys.
func (o Options) JWKSURL() string {
	return o.Issuer() + "/.well-known/jwks.json"
}

// Init builds a Cognito-backed provider. The options are validated before the
// AWS configuration is touched.
func Init(ctx context.Context, opts Options) (*CognitoClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	var loadOpts []func(*config.LoadOptions) error
	if r := opts.region(); r != "" {
		loadOpts = append(loadOpts, config.WithRegion(r))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: cannot determine region for pool %q", ErrInvalidConfig, opts.UserPoolID)
	}
	opts.Region = cfg.Region

	httpClient := &http.Client{Timeout: 10 * time.Second}
	return newCognitoClient(
		opts,
		cip.NewFromConfig(cfg),
		newJWKSVerifier(ctx, opts, httpClient),
	), nil
}
