// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"fmt"
)

// PublicClientApplication is the entry point of native authentication for a
// public client.  It's safe for concurrent use and every flow it starts is
// independent of the others.
type PublicClientApplication struct {
	config     *Config
	controller Controller
}

// NewPublicClientApplication creates an application for the config.
//
// Supported options: WithController, WithApiClient
func NewPublicClientApplication(c *Config, opt ...Option) (*PublicClientApplication, error) {
	const op = "nativeauth.NewPublicClientApplication"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	opts := getApplicationOpts(opt...)
	controller := opts.withController
	if controller == nil {
		sc, err := NewStandardController(c, opt...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		controller = sc
	}
	return &PublicClientApplication{config: c, controller: controller}, nil
}

// Config returns the application's config.
func (a *PublicClientApplication) Config() *Config { return a.config }

// SignIn starts a sign-in.
func (a *PublicClientApplication) SignIn(ctx context.Context, inputs SignInInputs) SignInResult {
	return a.controller.SignIn(ctx, inputs)
}

// SignUp starts a sign-up.
func (a *PublicClientApplication) SignUp(ctx context.Context, inputs SignUpInputs) SignUpResult {
	return a.controller.SignUp(ctx, inputs)
}

// ResetPassword starts a password reset.
func (a *PublicClientApplication) ResetPassword(ctx context.Context, inputs ResetPasswordInputs) ResetPasswordResult {
	return a.controller.ResetPassword(ctx, inputs)
}

// GetCurrentAccount returns the most recently signed in account.
func (a *PublicClientApplication) GetCurrentAccount(ctx context.Context, inputs GetAccountInputs) GetAccountResult {
	return a.controller.GetCurrentAccount(ctx, inputs)
}
