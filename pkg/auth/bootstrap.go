package auth

import (
	"context"
	"fmt"
	"sync"
)

// Bootstrap performs the one-time configuration of the identity provider. It is
// created once at process start and passed to whoever needs the provider.
type Bootstrap struct {
	mu        sync.Mutex
	opts      Options
	client    *CognitoClient
	newClient func(context.Context, Options) (*CognitoClient, error)
}

// NewBootstrap returns a Bootstrap that builds Cognito clients with Init.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{newClient: Init}
}

// Configure initializes the provider on the first call and returns the same
// provider on every later call with equal options. Options that differ from the
// configured ones are rejected rather than applied.
func (b *Bootstrap) Configure(ctx context.Context, opts Options) (*CognitoClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		if !b.sameOptions(opts) {
			return nil, fmt.Errorf("%w: pool %q client %q", ErrConflictingConfig, opts.UserPoolID, opts.AppClientID)
		}
		return b.client, nil
	}

	client, err := b.newClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("configure identity provider: %w", err)
	}
	b.opts = opts
	b.client = client
	return client, nil
}

// sameOptions compares against the options as given to Configure, so an empty
// region matches the region it was resolved to.
func (b *Bootstrap) sameOptions(opts Options) bool {
	return opts.UserPoolID == b.opts.UserPoolID &&
		opts.AppClientID == b.opts.AppClientID &&
		opts.region() == b.opts.region()
}

// Provider returns the configured client.
func (b *Bootstrap) Provider() (*CognitoClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil, ErrNotConfigured
	}
	return b.client, nil
}
