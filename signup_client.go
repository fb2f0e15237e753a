// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/go-hclog"
)

// Server errors of the sign-up continue endpoint that don't end the flow.
const (
	errCodeCredentialRequired = "credential_required"
	errCodeAttributesRequired = "attributes_required"
)

// signUpClient issues the sign-up calls.
type signUpClient struct {
	api    api.SignUpClient
	logger hclog.Logger
}

func newSignUpClient(c api.SignUpClient, logger hclog.Logger) *signUpClient {
	return &signUpClient{api: c, logger: logger}
}

// start starts a sign-up and asks for the first challenge.
func (c *signUpClient) start(ctx context.Context, p *signUpStartParams) (*actionResult, error) {
	const op = "nativeauth.(signUpClient).start"
	c.logger.Debug("starting sign-up", "op", op, "correlation_id", p.correlationId)

	resp, err := c.api.SignUpStart(ctx, &api.SignUpStartRequest{
		RequestBase:    p.base(),
		Username:       p.username,
		Password:       string(p.password),
		Attributes:     p.attributes,
		ChallengeTypes: p.challengeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := startOutcome(op, p.correlationId, resp)
	if err != nil {
		return nil, err
	}
	return c.challenge(ctx, op, p.flowParams, token)
}

// resendCode asks for a new code.
func (c *signUpClient) resendCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signUpClient).resendCode"
	c.logger.Debug("resending sign-up code", "op", op, "correlation_id", p.correlationId)
	result, err := c.challenge(ctx, op, p.flowParams, p.continuationToken)
	if err != nil {
		return nil, err
	}
	if result.kind != actionCodeRequired {
		return nil, newError(KindUnknownApi, op, p.correlationId, "a code was not sent")
	}
	return result, nil
}

func (c *signUpClient) challenge(ctx context.Context, op string, p flowParams, token string) (*actionResult, error) {
	resp, err := c.api.SignUpChallenge(ctx, &api.ChallengeRequest{
		RequestBase:       p.base(),
		ContinuationToken: token,
		ChallengeTypes:    p.challengeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return challengeOutcome(op, p.correlationId, resp)
}

// submitCode continues the sign-up with the code.
func (c *signUpClient) submitCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signUpClient).submitCode"
	return c.continueFlow(ctx, op, p, &api.ContinueRequest{
		GrantType: api.GrantTypeOOB,
		Oob:       p.code,
	})
}

// submitPassword continues the sign-up with the password.
func (c *signUpClient) submitPassword(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signUpClient).submitPassword"
	return c.continueFlow(ctx, op, p, &api.ContinueRequest{
		GrantType: api.GrantTypePassword,
		Password:  string(p.password),
	})
}

// submitAttributes continues the sign-up with the user's attributes.
func (c *signUpClient) submitAttributes(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(signUpClient).submitAttributes"
	return c.continueFlow(ctx, op, p, &api.ContinueRequest{
		GrantType:  api.GrantTypeAttributes,
		Attributes: p.attributes,
	})
}

// continueFlow calls continue and interprets the outcome: a continuation
// token completes the sign-up, credential_required leads to a password
// challenge and attributes_required asks for attributes.
func (c *signUpClient) continueFlow(ctx context.Context, op string, p *continuationParams, req *api.ContinueRequest) (*actionResult, error) {
	c.logger.Debug("continuing sign-up", "op", op, "correlation_id", p.correlationId, "grant_type", req.GrantType)
	req.RequestBase = p.base()
	req.ContinuationToken = p.continuationToken
	resp, err := c.api.SignUpContinue(ctx, req)
	if err != nil {
		var errResp *api.ErrorResponse
		if !errors.As(err, &errResp) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch errResp.Code {
		case errCodeCredentialRequired:
			if errResp.ContinuationToken == "" {
				return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
			}
			c.logger.Debug("sign-up requires a credential", "op", op, "correlation_id", p.correlationId)
			return c.challenge(ctx, op, p.flowParams, errResp.ContinuationToken)
		case errCodeAttributesRequired:
			if errResp.ContinuationToken == "" {
				return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
			}
			c.logger.Debug("sign-up requires attributes", "op", op, "correlation_id", p.correlationId)
			return &actionResult{
				kind:               actionAttributesRequired,
				correlationId:      p.correlationId,
				continuationToken:  errResp.ContinuationToken,
				requiredAttributes: fromErrorResponse(op, p.correlationId, errResp).RequiredAttributes,
			}, nil
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if resp == nil {
		return nil, newError(KindUnknownApi, op, p.correlationId, "continue response is nil")
	}
	if resp.ContinuationToken == "" {
		return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
	}
	return &actionResult{
		kind:              actionContinuation,
		correlationId:     p.correlationId,
		continuationToken: resp.ContinuationToken,
	}, nil
}
