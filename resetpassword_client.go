// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
	"github.com/hashicorp/go-hclog"
)

// resetPasswordClient issues the reset password calls.
type resetPasswordClient struct {
	api    api.ResetPasswordClient
	logger hclog.Logger

	// pollInterval overrides the server's poll_interval when it's not zero.
	pollInterval    time.Duration
	maxPollAttempts int
}

func newResetPasswordClient(c api.ResetPasswordClient, logger hclog.Logger, pollInterval time.Duration, maxPollAttempts int) *resetPasswordClient {
	if maxPollAttempts <= 0 {
		maxPollAttempts = DefaultMaxPollAttempts
	}
	return &resetPasswordClient{
		api:             c,
		logger:          logger,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
	}
}

// start starts a reset password flow and asks for the code.
func (c *resetPasswordClient) start(ctx context.Context, p *startParams) (*actionResult, error) {
	const op = "nativeauth.(resetPasswordClient).start"
	c.logger.Debug("starting password reset", "op", op, "correlation_id", p.correlationId)

	resp, err := c.api.ResetPasswordStart(ctx, &api.InitiateRequest{
		RequestBase:    p.base(),
		Username:       p.username,
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
func (c *resetPasswordClient) resendCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(resetPasswordClient).resendCode"
	c.logger.Debug("resending password reset code", "op", op, "correlation_id", p.correlationId)
	return c.challenge(ctx, op, p.flowParams, p.continuationToken)
}

// challenge only accepts a code: a password can't prove who's resetting it.
func (c *resetPasswordClient) challenge(ctx context.Context, op string, p flowParams, token string) (*actionResult, error) {
	resp, err := c.api.ResetPasswordChallenge(ctx, &api.ChallengeRequest{
		RequestBase:       p.base(),
		ContinuationToken: token,
		ChallengeTypes:    p.challengeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := challengeOutcome(op, p.correlationId, resp)
	if err != nil {
		return nil, err
	}
	if result.kind != actionCodeRequired {
		return nil, newError(KindUnknownApi, op, p.correlationId, "a code was not sent")
	}
	return result, nil
}

// submitCode verifies the code; a new password is required next.
func (c *resetPasswordClient) submitCode(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(resetPasswordClient).submitCode"
	c.logger.Debug("submitting password reset code", "op", op, "correlation_id", p.correlationId)
	resp, err := c.api.ResetPasswordContinue(ctx, &api.ContinueRequest{
		RequestBase:       p.base(),
		ContinuationToken: p.continuationToken,
		GrantType:         api.GrantTypeOOB,
		Oob:               p.code,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil {
		return nil, newError(KindUnknownApi, op, p.correlationId, "continue response is nil")
	}
	if resp.ContinuationToken == "" {
		return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
	}
	return &actionResult{
		kind:              actionPasswordRequired,
		correlationId:     p.correlationId,
		continuationToken: resp.ContinuationToken,
		challengeType:     ChallengeTypePassword,
	}, nil
}

// submitPassword submits the new password and polls until the reset
// completes, fails or the attempts run out.
func (c *resetPasswordClient) submitPassword(ctx context.Context, p *continuationParams) (*actionResult, error) {
	const op = "nativeauth.(resetPasswordClient).submitPassword"
	c.logger.Debug("submitting new password", "op", op, "correlation_id", p.correlationId)
	resp, err := c.api.ResetPasswordSubmit(ctx, &api.SubmitRequest{
		RequestBase:       p.base(),
		ContinuationToken: p.continuationToken,
		NewPassword:       string(p.password),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil {
		return nil, newError(KindUnknownApi, op, p.correlationId, "submit response is nil")
	}
	if resp.ContinuationToken == "" {
		return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
	}

	interval := c.pollInterval
	if interval == 0 {
		interval = DefaultPollInterval
		if resp.PollInterval > 0 {
			interval = time.Duration(resp.PollInterval) * time.Second
		}
	}
	token := resp.ContinuationToken
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
		poll, err := c.api.ResetPasswordPollCompletion(ctx, &api.PollCompletionRequest{
			RequestBase:       p.base(),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if poll == nil {
			return nil, newError(KindUnknownApi, op, p.correlationId, "poll completion response is nil")
		}
		c.logger.Trace("polled password reset", "op", op, "correlation_id", p.correlationId, "attempt", attempt, "status", poll.Status)
		switch poll.Status {
		case api.PollStatusSucceeded:
			if poll.ContinuationToken == "" {
				return nil, newError(KindUnknownApi, op, p.correlationId, "continuation token is missing")
			}
			return &actionResult{
				kind:              actionContinuation,
				correlationId:     p.correlationId,
				continuationToken: poll.ContinuationToken,
			}, nil
		case api.PollStatusFailed:
			return nil, newError(KindPasswordResetFailed, op, p.correlationId, "password reset failed")
		case api.PollStatusInProgress, api.PollStatusNotStarted:
		default:
			return nil, newError(KindUnknownApi, op, p.correlationId, fmt.Sprintf("unknown poll status %q", poll.Status))
		}
		if poll.ContinuationToken != "" {
			token = poll.ContinuationToken
		}
		timer.Reset(interval)
	}
	return nil, newError(KindPasswordResetFailed, op, p.correlationId, fmt.Sprintf("password reset didn't complete after %d attempts", c.maxPollAttempts))
}
