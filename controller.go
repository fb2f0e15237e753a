// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Controller starts the native authentication flows.
type Controller interface {
	SignIn(ctx context.Context, inputs SignInInputs) SignInResult
	SignUp(ctx context.Context, inputs SignUpInputs) SignUpResult
	ResetPassword(ctx context.Context, inputs ResetPasswordInputs) ResetPasswordResult
	GetCurrentAccount(ctx context.Context, inputs GetAccountInputs) GetAccountResult
}

// StandardController is the Controller used by PublicClientApplication.
// Every error, including local validation errors, is returned as a failed
// result.
type StandardController struct {
	config        *Config
	logger        hclog.Logger
	cache         AccountCache
	signIn        *signInClient
	signUp        *signUpClient
	resetPassword *resetPasswordClient
}

var _ Controller = (*StandardController)(nil)

// NewStandardController creates a controller for the config.  Requests are
// sent with an api.HTTPClient built from the config unless WithApiClient is
// provided.
//
// Supported options: WithApiClient
func NewStandardController(c *Config, opt ...Option) (*StandardController, error) {
	const op = "nativeauth.NewStandardController"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	opts := getControllerOpts(opt...)
	client := opts.withApiClient
	if client == nil {
		httpClient, err := c.newApiClient()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		client = httpClient
	}
	cache := c.AccountCache
	if cache == nil {
		cache = NewMemoryAccountCache()
	}
	logger := c.logger()
	return &StandardController{
		config:        c,
		logger:        logger,
		cache:         cache,
		signIn:        newSignInClient(client, logger.Named("signin")),
		signUp:        newSignUpClient(client, logger.Named("signup")),
		resetPassword: newResetPasswordClient(client, logger.Named("resetpassword"), c.PollInterval, c.maxPollAttempts()),
	}, nil
}

// SignIn starts a sign-in.  When the server asks for a password and the
// inputs have one, it's submitted right away.
func (c *StandardController) SignIn(ctx context.Context, inputs SignInInputs) SignInResult {
	const op = "nativeauth.(StandardController).SignIn"
	correlationId, err := resolveCorrelationId(inputs.CorrelationId)
	if err != nil {
		return failedResult[*AccountInfo, SignInHandler](c.fail(op, inputs.CorrelationId, err))
	}
	c.logger.Debug("sign-in", "op", op, "correlation_id", correlationId)
	if inputs.Username == "" {
		return failedResult[*AccountInfo, SignInHandler](c.fail(op, correlationId, invalidArgument(op, correlationId, "username")))
	}
	p, err := newStartParams(op, c.config, correlationId, inputs.Username, inputs.Password, inputs.Scopes)
	if err != nil {
		return failedResult[*AccountInfo, SignInHandler](c.fail(op, correlationId, err))
	}
	f := flowContext{
		controller:    c,
		correlationId: correlationId,
		username:      p.username,
		scopes:        p.scopes,
	}
	a, err := c.signIn.start(ctx, p)
	if err != nil {
		return c.signInResult(ctx, op, f, nil, err)
	}
	if a.kind == actionPasswordRequired && inputs.Password != "" {
		c.logger.Debug("submitting the provided password", "op", op, "correlation_id", correlationId)
		cp, err := f.next(a.continuationToken).params(op)
		if err == nil {
			cp, err = cp.withPassword(op, inputs.Password)
		}
		if err != nil {
			return c.signInResult(ctx, op, f, nil, err)
		}
		a, err = c.signIn.submitPassword(ctx, cp)
		return c.signInResult(ctx, op, f, a, err)
	}
	return c.signInResult(ctx, op, f, a, nil)
}

// SignUp starts a sign-up.
func (c *StandardController) SignUp(ctx context.Context, inputs SignUpInputs) SignUpResult {
	const op = "nativeauth.(StandardController).SignUp"
	correlationId, err := resolveCorrelationId(inputs.CorrelationId)
	if err != nil {
		return failedResult[*SignInContinuationHandler, SignUpHandler](c.fail(op, inputs.CorrelationId, err))
	}
	c.logger.Debug("sign-up", "op", op, "correlation_id", correlationId)
	if inputs.Username == "" {
		return failedResult[*SignInContinuationHandler, SignUpHandler](c.fail(op, correlationId, invalidArgument(op, correlationId, "username")))
	}
	p, err := newSignUpStartParams(op, c.config, correlationId, inputs.Username, inputs.Password, inputs.Attributes)
	if err != nil {
		return failedResult[*SignInContinuationHandler, SignUpHandler](c.fail(op, correlationId, err))
	}
	f := flowContext{
		controller:    c,
		correlationId: correlationId,
		username:      p.username,
	}
	a, err := c.signUp.start(ctx, p)
	return c.signUpResult(op, f, a, err)
}

// ResetPassword starts a password reset.
func (c *StandardController) ResetPassword(ctx context.Context, inputs ResetPasswordInputs) ResetPasswordResult {
	const op = "nativeauth.(StandardController).ResetPassword"
	correlationId, err := resolveCorrelationId(inputs.CorrelationId)
	if err != nil {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](c.fail(op, inputs.CorrelationId, err))
	}
	c.logger.Debug("reset password", "op", op, "correlation_id", correlationId)
	if inputs.Username == "" {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](c.fail(op, correlationId, invalidArgument(op, correlationId, "username")))
	}
	p, err := newStartParams(op, c.config, correlationId, inputs.Username, "", nil)
	if err != nil {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](c.fail(op, correlationId, err))
	}
	f := flowContext{
		controller:    c,
		correlationId: correlationId,
		username:      p.username,
	}
	a, err := c.resetPassword.start(ctx, p)
	return c.resetPasswordResult(op, f, a, err)
}

// GetCurrentAccount returns the most recently signed in account.
func (c *StandardController) GetCurrentAccount(ctx context.Context, inputs GetAccountInputs) GetAccountResult {
	const op = "nativeauth.(StandardController).GetCurrentAccount"
	correlationId, err := resolveCorrelationId(inputs.CorrelationId)
	if err != nil {
		return failedResult[*AccountInfo, struct{}](c.fail(op, inputs.CorrelationId, err))
	}
	cached, err := c.cache.Current(ctx)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return failedResult[*AccountInfo, struct{}](c.fail(op, correlationId, newError(KindNoCachedAccount, op, correlationId, "no account is signed in")))
	case err != nil:
		return failedResult[*AccountInfo, struct{}](c.fail(op, correlationId, err))
	}
	info, err := newAccountInfo(op, c, correlationId, cached.Account, cached.IdToken)
	if err != nil {
		return failedResult[*AccountInfo, struct{}](c.fail(op, correlationId, err))
	}
	return completedResult[*AccountInfo, struct{}](info)
}

// fail converts the error and logs it.
func (c *StandardController) fail(op, correlationId string, err error) *Error {
	e := toError(op, correlationId, err)
	switch e.Kind {
	case KindUnexpected, KindUnknownApi:
		c.logger.Error("flow failed", "op", op, "correlation_id", correlationId, "kind", e.Kind.String(), "error", e.Error())
	default:
		c.logger.Debug("flow failed", "op", op, "correlation_id", correlationId, "kind", e.Kind.String(), "error", e.Error())
	}
	return e
}

func (c *StandardController) signInResult(ctx context.Context, op string, f flowContext, a *actionResult, err error) SignInResult {
	fail := func(err error) SignInResult {
		return failedResult[*AccountInfo, SignInHandler](c.fail(op, f.correlationId, err))
	}
	if err != nil {
		return fail(err)
	}
	if a == nil {
		return fail(newError(KindUnexpected, op, f.correlationId, "sign-in outcome is nil"))
	}
	switch a.kind {
	case actionCodeRequired:
		h, err := newSignInCodeRequiredHandler(op, f.next(a.continuationToken), a)
		if err != nil {
			return fail(err)
		}
		return nextStepResult[*AccountInfo, SignInHandler](h)
	case actionPasswordRequired:
		h, err := newSignInPasswordRequiredHandler(op, f.next(a.continuationToken))
		if err != nil {
			return fail(err)
		}
		return nextStepResult[*AccountInfo, SignInHandler](h)
	case actionCompleted:
		if a.auth == nil {
			return fail(newError(KindUnexpected, op, f.correlationId, "authentication result is nil"))
		}
		if err := c.storeAccount(ctx, a.auth); err != nil {
			return fail(err)
		}
		info, err := newAccountInfo(op, c, f.correlationId, a.auth.Account, a.auth.IdToken)
		if err != nil {
			return fail(err)
		}
		c.logger.Debug("signed in", "op", op, "correlation_id", f.correlationId)
		return completedResult[*AccountInfo, SignInHandler](info)
	default:
		return fail(newError(KindUnexpected, op, f.correlationId, "unexpected sign-in outcome"))
	}
}

func (c *StandardController) signUpResult(op string, f flowContext, a *actionResult, err error) SignUpResult {
	fail := func(err error) SignUpResult {
		return failedResult[*SignInContinuationHandler, SignUpHandler](c.fail(op, f.correlationId, err))
	}
	if err != nil {
		return fail(err)
	}
	if a == nil {
		return fail(newError(KindUnexpected, op, f.correlationId, "sign-up outcome is nil"))
	}
	next := f.next(a.continuationToken)
	var (
		h    SignUpHandler
		herr error
	)
	switch a.kind {
	case actionCodeRequired:
		h, herr = newSignUpCodeRequiredHandler(op, next, a)
	case actionPasswordRequired:
		h, herr = newSignUpPasswordRequiredHandler(op, next)
	case actionAttributesRequired:
		h, herr = newSignUpAttributesRequiredHandler(op, next, a)
	case actionContinuation:
		sh, err := newSignInContinuationHandler(op, next)
		if err != nil {
			return fail(err)
		}
		c.logger.Debug("signed up", "op", op, "correlation_id", f.correlationId)
		return completedResult[*SignInContinuationHandler, SignUpHandler](sh)
	default:
		return fail(newError(KindUnexpected, op, f.correlationId, "unexpected sign-up outcome"))
	}
	if herr != nil {
		return fail(herr)
	}
	return nextStepResult[*SignInContinuationHandler](h)
}

func (c *StandardController) resetPasswordResult(op string, f flowContext, a *actionResult, err error) ResetPasswordResult {
	fail := func(err error) ResetPasswordResult {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](c.fail(op, f.correlationId, err))
	}
	if err != nil {
		return fail(err)
	}
	if a == nil {
		return fail(newError(KindUnexpected, op, f.correlationId, "reset password outcome is nil"))
	}
	next := f.next(a.continuationToken)
	switch a.kind {
	case actionCodeRequired:
		h, err := newResetPasswordCodeRequiredHandler(op, next, a)
		if err != nil {
			return fail(err)
		}
		return nextStepResult[*SignInContinuationHandler, ResetPasswordHandler](h)
	case actionPasswordRequired:
		h, err := newResetPasswordPasswordRequiredHandler(op, next)
		if err != nil {
			return fail(err)
		}
		return nextStepResult[*SignInContinuationHandler, ResetPasswordHandler](h)
	case actionContinuation:
		h, err := newSignInContinuationHandler(op, next)
		if err != nil {
			return fail(err)
		}
		c.logger.Debug("password reset", "op", op, "correlation_id", f.correlationId)
		return completedResult[*SignInContinuationHandler, ResetPasswordHandler](h)
	default:
		return fail(newError(KindUnexpected, op, f.correlationId, "unexpected reset password outcome"))
	}
}

// storeAccount caches the account and tokens of a completed sign-in.
func (c *StandardController) storeAccount(ctx context.Context, auth *AuthenticationResult) error {
	const op = "nativeauth.(StandardController).storeAccount"
	err := c.cache.Store(ctx, &CachedAccount{
		Account:     auth.Account,
		IdToken:     auth.IdToken,
		Token:       auth.Token(),
		Scopes:      slices.Clone(auth.Scopes),
		LastUpdated: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
