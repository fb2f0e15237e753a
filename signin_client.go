// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"fmt"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/go-hclog"
)

// signInClient issues the sign-in calls.  Transport and server errors are
// returned as is; it's up to the caller to convert them.
type signInClient struct {
	api    api.SignInClient
	logger hclog.Logger
}

func newSignInClient(c api.SignInClient, logger hclog.Logger) *signInClient {
	return &signInClient{api: c, logger: logger}
}

// start initiates a sign-in and asks for the first challenge.
func (c *signInClient) start(ctx context.Context, p *startParams) (*actionResult, error) {
	const op = "nativeauth.(signInClient).start"
	c.logger.Debug("starting sign-in", "op", op, "correlation_id", p.correlationId)

	initiate, err := c.api.Initiate(ctx, &api.InitiateRequest{
		RequestBase:    p.base(),
		Username:       p.username,
		ChallengeTypes: p.challengeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := startOutcome(op, p.correlationId, initiate)
	if err != nil {
		return nil, err
	}
	return c.challenge(ctx, op, p.flowParams, token)
}

// resendCode asks for a new code.
func (c *signInClient) resendCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signInClient).resendCode"
	c.logger.Debug("resending sign-in code", "op", op, "correlation_id", p.correlationId)
	result, err := c.challenge(ctx, op, p.flowParams, p.continuationToken)
	if err != nil {
		return nil, err
	}
	if result.kind != actionCodeRequired {
		return nil, newError(KindUnknownApi, op, p.correlationId, "a code was not sent")
	}
	return result, nil
}

func (c *signInClient) challenge(ctx context.Context, op string, p flowParams, token string) (*actionResult, error) {
	resp, err := c.api.Challenge(ctx, &api.ChallengeRequest{
		RequestBase:       p.base(),
		ContinuationToken: token,
		ChallengeTypes:    p.challengeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return challengeOutcome(op, p.correlationId, resp)
}

// submitCode redeems the continuation token with a code.
func (c *signInClient) submitCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signInClient).submitCode"
	return c.token(ctx, op, p, &api.TokenRequest{
		GrantType: api.GrantTypeOOB,
		Oob:       p.code,
	})
}

// submitPassword redeems the continuation token with a password.
func (c *signInClient) submitPassword(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signInClient).submitPassword"
	return c.token(ctx, op, p, &api.TokenRequest{
		GrantType: api.GrantTypePassword,
		Password:  string(p.password),
	})
}

// signInWithContinuationToken redeems the continuation token of a completed
// sign-up or reset password flow.
func (c *signInClient) signInWithContinuationToken(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signInClient).signInWithContinuationToken"
	return c.token(ctx, op, p, &api.TokenRequest{
		GrantType: api.GrantTypeContinuationToken,
		Username:  p.username,
	})
}

func (c *signInClient) token(ctx context.Context, op string, p *continuationParams, req *api.TokenRequest) (*actionResult, error) {
	c.logger.Debug("requesting tokens", "op", op, "correlation_id", p.correlationId, "grant_type", req.GrantType)
	req.RequestBase = p.base()
	req.ContinuationToken = p.continuationToken
	req.Scopes = p.scopes
	resp, err := c.api.Token(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	auth, err := newAuthenticationResult(p.authority, p.correlationId, p.username, p.scopes, resp)
	if err != nil {
		return nil, err
	}
	return &actionResult{
		kind:          actionCompleted,
		correlationId: p.correlationId,
		auth:          auth,
	}, nil
}

// refresh redeems a refresh token.
func (c *signInClient) refresh(ctx context.Context, p *refreshParams) (*AuthenticationResult, error) {
	const op = "nativeauth.(signInClient).refresh"
	c.logger.Debug("refreshing tokens", "op", op, "correlation_id", p.correlationId)
	resp, err := c.api.Token(ctx, &api.TokenRequest{
		RequestBase:  p.base(),
		GrantType:    api.GrantTypeRefreshToken,
		RefreshToken: string(p.refreshToken),
		Scopes:       p.scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	auth, err := newAuthenticationResult(p.authority, p.correlationId, p.username, p.scopes, resp)
	if err != nil {
		return nil, err
	}
	if auth.RefreshToken == "" {
		auth.RefreshToken = p.refreshToken
	}
	return auth, nil
}
