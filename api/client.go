// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Endpoint paths, relative to the authority.
const (
	PathSignInInitiate          = "/oauth2/v2.0/initiate"
	PathSignInChallenge         = "/oauth2/v2.0/challenge"
	PathToken                   = "/oauth2/v2.0/token"
	PathSignUpStart             = "/signup/v1.0/start"
	PathSignUpChallenge         = "/signup/v1.0/challenge"
	PathSignUpContinue          = "/signup/v1.0/continue"
	PathResetPasswordStart      = "/resetpassword/v1.0/start"
	PathResetPasswordChallenge  = "/resetpassword/v1.0/challenge"
	PathResetPasswordContinue   = "/resetpassword/v1.0/continue"
	PathResetPasswordSubmit     = "/resetpassword/v1.0/submit"
	PathResetPasswordPoll       = "/resetpassword/v1.0/poll_completion"
	HeaderClientRequestId       = "client-request-id"
	HeaderReturnClientRequestId = "return-client-request-id"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 1 << 20

// SignInClient issues the sign-in calls.
type SignInClient interface {
	Initiate(context.Context, *InitiateRequest) (*ContinuationTokenResponse, error)
	Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	Token(context.Context, *TokenRequest) (*TokenResponse, error)
}

// SignUpClient issues the sign-up calls.
type SignUpClient interface {
	SignUpStart(context.Context, *SignUpStartRequest) (*ContinuationTokenResponse, error)
	SignUpChallenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	SignUpContinue(context.Context, *ContinueRequest) (*ContinuationTokenResponse, error)
}

// ResetPasswordClient issues the reset password calls.
type ResetPasswordClient interface {
	ResetPasswordStart(context.Context, *InitiateRequest) (*ContinuationTokenResponse, error)
	ResetPasswordChallenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	ResetPasswordContinue(context.Context, *ContinueRequest) (*ContinuationTokenResponse, error)
	ResetPasswordSubmit(context.Context, *SubmitRequest) (*ResetPasswordSubmitResponse, error)
	ResetPasswordPollCompletion(context.Context, *PollCompletionRequest) (*PollCompletionResponse, error)
}

// Client is every native authentication call.
type Client interface {
	SignInClient
	SignUpClient
	ResetPasswordClient
}

// HTTPClient implements Client over HTTPS. Every call is a single POST with
// a form encoded body; nothing is retried.
//
// A server error is returned as an error wrapping an *ErrorResponse, which
// callers can retrieve with errors.As.  Transport errors (including context
// cancellation) are wrapped unchanged.
type HTTPClient struct {
	client *http.Client
	logger hclog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates an HTTPClient.
//
// Supported options: WithHTTPClient, WithCACert, WithLogger
func NewClient(opt ...Option) (*HTTPClient, error) {
	const op = "api.NewClient"
	opts := getClientOpts(opt...)
	c := &HTTPClient{
		client: opts.withHTTPClient,
		logger: opts.withLogger,
	}
	if c.client == nil {
		var err error
		if c.client, err = NewHTTPClient(opts.withCACert); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return c, nil
}

// Initiate starts a sign-in flow.
func (c *HTTPClient) Initiate(ctx context.Context, r *InitiateRequest) (*ContinuationTokenResponse, error) {
	const op = "api.(HTTPClient).Initiate"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[ContinuationTokenResponse](ctx, c, op, PathSignInInitiate, r.RequestBase, r.form())
}

// Challenge requests the next sign-in challenge.
func (c *HTTPClient) Challenge(ctx context.Context, r *ChallengeRequest) (*ChallengeResponse, error) {
	const op = "api.(HTTPClient).Challenge"
	return c.challenge(ctx, op, PathSignInChallenge, r)
}

// Token redeems a continuation token or a refresh token.
func (c *HTTPClient) Token(ctx context.Context, r *TokenRequest) (*TokenResponse, error) {
	const op = "api.(HTTPClient).Token"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[TokenResponse](ctx, c, op, PathToken, r.RequestBase, r.form())
}

// SignUpStart starts a sign-up flow.
func (c *HTTPClient) SignUpStart(ctx context.Context, r *SignUpStartRequest) (*ContinuationTokenResponse, error) {
	const op = "api.(HTTPClient).SignUpStart"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	form, err := r.form()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[ContinuationTokenResponse](ctx, c, op, PathSignUpStart, r.RequestBase, form)
}

// SignUpChallenge requests the next sign-up challenge.
func (c *HTTPClient) SignUpChallenge(ctx context.Context, r *ChallengeRequest) (*ChallengeResponse, error) {
	const op = "api.(HTTPClient).SignUpChallenge"
	return c.challenge(ctx, op, PathSignUpChallenge, r)
}

// SignUpContinue continues a sign-up flow.
func (c *HTTPClient) SignUpContinue(ctx context.Context, r *ContinueRequest) (*ContinuationTokenResponse, error) {
	const op = "api.(HTTPClient).SignUpContinue"
	return c.continueFlow(ctx, op, PathSignUpContinue, r)
}

// ResetPasswordStart starts a reset password flow.
func (c *HTTPClient) ResetPasswordStart(ctx context.Context, r *InitiateRequest) (*ContinuationTokenResponse, error) {
	const op = "api.(HTTPClient).ResetPasswordStart"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[ContinuationTokenResponse](ctx, c, op, PathResetPasswordStart, r.RequestBase, r.form())
}

// ResetPasswordChallenge requests the reset password code.
func (c *HTTPClient) ResetPasswordChallenge(ctx context.Context, r *ChallengeRequest) (*ChallengeResponse, error) {
	const op = "api.(HTTPClient).ResetPasswordChallenge"
	return c.challenge(ctx, op, PathResetPasswordChallenge, r)
}

// ResetPasswordContinue submits the reset password code.
func (c *HTTPClient) ResetPasswordContinue(ctx context.Context, r *ContinueRequest) (*ContinuationTokenResponse, error) {
	const op = "api.(HTTPClient).ResetPasswordContinue"
	return c.continueFlow(ctx, op, PathResetPasswordContinue, r)
}

// ResetPasswordSubmit submits the new password.
func (c *HTTPClient) ResetPasswordSubmit(ctx context.Context, r *SubmitRequest) (*ResetPasswordSubmitResponse, error) {
	const op = "api.(HTTPClient).ResetPasswordSubmit"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[ResetPasswordSubmitResponse](ctx, c, op, PathResetPasswordSubmit, r.RequestBase, r.form())
}

// ResetPasswordPollCompletion polls for the outcome of a submitted password.
func (c *HTTPClient) ResetPasswordPollCompletion(ctx context.Context, r *PollCompletionRequest) (*PollCompletionResponse, error) {
	const op = "api.(HTTPClient).ResetPasswordPollCompletion"
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[PollCompletionResponse](ctx, c, op, PathResetPasswordPoll, r.RequestBase, r.form())
}

func (c *HTTPClient) challenge(ctx context.Context, op, path string, r *ChallengeRequest) (*ChallengeResponse, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := post[ChallengeResponse](ctx, c, op, path, r.RequestBase, r.form())
	if err != nil {
		return nil, err
	}
	resp.setKind()
	return resp, nil
}

func (c *HTTPClient) continueFlow(ctx context.Context, op, path string, r *ContinueRequest) (*ContinuationTokenResponse, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	form, err := r.form()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post[ContinuationTokenResponse](ctx, c, op, path, r.RequestBase, form)
}

func post[T any](ctx context.Context, c *HTTPClient, op, path string, base RequestBase, form url.Values) (*T, error) {
	endpoint, err := url.JoinPath(base.Authority, path)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid authority %q: %w", op, base.Authority, ErrInvalidParameter)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderClientRequestId, base.CorrelationId)
	req.Header.Set(HeaderReturnClientRequestId, "true")

	c.logger.Trace("sending request", "op", op, "path", path, "correlation_id", base.CorrelationId)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response: %w", op, err)
	}
	c.logger.Trace("received response", "op", op, "path", path, "correlation_id", base.CorrelationId, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		errResp := &ErrorResponse{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, errResp); err != nil || errResp.Code == "" {
			return nil, fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, ErrUnexpectedResponse)
		}
		c.logger.Debug("server returned an error", "op", op, "path", path, "correlation_id", base.CorrelationId, "error", errResp.Code, "suberror", errResp.SubError)
		return nil, fmt.Errorf("%s: %w", op, errResp)
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnexpectedResponse, err)
	}
	return &out, nil
}
