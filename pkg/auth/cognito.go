package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// cognitoAPI is the part of the Cognito user pools API the application uses.
type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
	RevokeToken(ctx context.Context, params *cip.RevokeTokenInput, optFns ...func(*cip.Options)) (*cip.RevokeTokenOutput, error)
}

// CognitoClient implements Provider and Authenticator on a Cognito user pool.
type CognitoClient struct {
	opts     Options
	api      cognitoAPI
	verifier tokenVerifier
}

var (
	_ Provider      = (*CognitoClient)(nil)
	_ Authenticator = (*CognitoClient)(nil)
)

func newCognitoClient(opts Options, api cognitoAPI, verifier tokenVerifier) *CognitoClient {
	return &CognitoClient{opts: opts, api: api, verifier: verifier}
}

// Options returns the options the client was built with.
func (c *CognitoClient) Options() Options {
	return c.opts
}

func (c *CognitoClient) ready() error {
	if c == nil || c.api == nil || c.verifier == nil {
		return ErrNotConfigured
	}
	return nil
}

// CurrentUser verifies the session's access token, renewing it with the refresh
// token when it has expired.
func (c *CognitoClient) CurrentUser(ctx context.Context, s *Session) (*User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if s.Empty() {
		return nil, ErrNoSession
	}

	if s.AccessToken != "" {
		user, err := c.userFromToken(ctx, s)
		if !errors.Is(err, errTokenExpired) {
			return user, err
		}
	}
	if s.RefreshToken == "" {
		return nil, fmt.Errorf("%w: access token expired", ErrNoSession)
	}

	renewed, err := c.refresh(ctx, s.RefreshToken)
	if err != nil {
		return nil, err
	}
	user, err := c.userFromToken(ctx, renewed)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			return nil, fmt.Errorf("%w: renewed token already expired", ErrNoSession)
		}
		return nil, err
	}
	user.Renewed = true
	return user, nil
}

func (c *CognitoClient) userFromToken(ctx context.Context, s *Session) (*User, error) {
	token, err := c.verifier.Verify(ctx, s.AccessToken)
	if err != nil {
		return nil, err
	}
	user := &User{Subject: token.Subject(), Session: s}
	if v, ok := token.Get("username"); ok {
		user.Username, _ = v.(string)
	}
	return user, nil
}

func (c *CognitoClient) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeRefreshTokenAuth,
		ClientId:       aws.String(c.opts.AppClientID),
		AuthParameters: map[string]string{"REFRESH_TOKEN": refreshToken},
	})
	if err != nil {
		err = classify("refresh session", err)
		if errors.Is(err, ErrRejected) {
			// revoked or expired refresh token
			return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
		}
		return nil, err
	}
	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return nil, fmt.Errorf("%w: refresh returned no tokens", ErrNoSession)
	}

	// Cognito does not rotate refresh tokens unless rotation is enabled on the client.
	s := &Session{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: refreshToken,
	}
	if rt := aws.ToString(out.AuthenticationResult.RefreshToken); rt != "" {
		s.RefreshToken = rt
	}
	return s, nil
}

// SignOut revokes every token issued for the session. When the access token is
// missing or no longer accepted, the refresh token is revoked instead so the
// session cannot be renewed.
func (c *CognitoClient) SignOut(ctx context.Context, s *Session) error {
	if err := c.ready(); err != nil {
		return err
	}
	if s.Empty() {
		return nil
	}

	if s.AccessToken != "" {
		_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
			AccessToken: aws.String(s.AccessToken),
		})
		err = classify("sign out", err)
		if err == nil || s.RefreshToken == "" || !errors.Is(err, ErrRejected) {
			return err
		}
	}

	_, err := c.api.RevokeToken(ctx, &cip.RevokeTokenInput{
		ClientId: aws.String(c.opts.AppClientID),
		Token:    aws.String(s.RefreshToken),
	})
	return classify("revoke refresh token", err)
}

// SignIn authenticates with username and password.
func (c *CognitoClient) SignIn(ctx context.Context, username, password string) (*Session, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.opts.AppClientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, classify("sign in", err)
	}
	if out.ChallengeName != "" {
		return nil, fmt.Errorf("sign in: %w: %s", ErrChallengeUnsupported, out.ChallengeName)
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("sign in: %w: no tokens returned", ErrRejected)
	}
	return &Session{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
	}, nil
}

// SignUp registers a new user with the given attributes.
func (c *CognitoClient) SignUp(ctx context.Context, username, password string, attributes map[string]string) (*SignUpResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.opts.AppClientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: userAttributes(attributes),
	})
	if err != nil {
		return nil, classify("sign up", err)
	}

	res := &SignUpResult{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}
	if d := out.CodeDeliveryDetails; d != nil {
		res.Destination = aws.ToString(d.Destination)
	}
	return res, nil
}

// ConfirmSignUp confirms a registration with the code the provider delivered.
func (c *CognitoClient) ConfirmSignUp(ctx context.Context, username, code string) error {
	if err := c.ready(); err != nil {
		return err
	}
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.opts.AppClientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	return classify("confirm sign up", err)
}

func userAttributes(attributes map[string]string) []types.AttributeType {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, types.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(attributes[name]),
		})
	}
	return attrs
}
