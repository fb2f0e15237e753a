// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
)

// SignInCodeRequiredHandler is the sign-in step where the user must enter
// the code that was sent to them.
type SignInCodeRequiredHandler struct {
	handlerBase
	codeDetails
}

var _ SignInHandler = (*SignInCodeRequiredHandler)(nil)

func newSignInCodeRequiredHandler(op string, f flowContext, a *actionResult) (*SignInCodeRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignInCodeRequiredHandler{
		handlerBase: handlerBase{flow: f},
		codeDetails: newCodeDetails(a),
	}, nil
}

// Step returns StepCodeRequired
func (h *SignInCodeRequiredHandler) Step() Step { return StepCodeRequired }

func (h *SignInCodeRequiredHandler) signInHandler() {}

// SubmitCode submits the code.  An incorrect code fails with
// KindIncorrectCode and the handler can be used again.
func (h *SignInCodeRequiredHandler) SubmitCode(ctx context.Context, code string) (result SignInResult) {
	const op = "nativeauth.(SignInCodeRequiredHandler).SubmitCode"
	if err := h.begin(op); err != nil {
		return failedResult[*AccountInfo, SignInHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withCode(op, code)
	}
	if err != nil {
		return c.signInResult(ctx, op, h.flow, nil, err)
	}
	a, err := c.signIn.submitCode(ctx, p)
	return c.signInResult(ctx, op, h.flow, a, err)
}

// ResendCode asks for a new code.  It consumes the handler and the returned
// result carries a new one bound to a new continuation token.
func (h *SignInCodeRequiredHandler) ResendCode(ctx context.Context) (result SignInResendCodeResult) {
	const op = "nativeauth.(SignInCodeRequiredHandler).ResendCode"
	if err := h.begin(op); err != nil {
		return failedResult[struct{}, *SignInCodeRequiredHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err != nil {
		return failedResult[struct{}, *SignInCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	a, err := c.signIn.resendCode(ctx, p)
	if err != nil {
		return failedResult[struct{}, *SignInCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	next, err := newSignInCodeRequiredHandler(op, h.flow.next(a.continuationToken), a)
	if err != nil {
		return failedResult[struct{}, *SignInCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	return nextStepResult[struct{}](next)
}

// SignInPasswordRequiredHandler is the sign-in step where the user must
// enter their password.
type SignInPasswordRequiredHandler struct {
	handlerBase
}

var _ SignInHandler = (*SignInPasswordRequiredHandler)(nil)

func newSignInPasswordRequiredHandler(op string, f flowContext) (*SignInPasswordRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignInPasswordRequiredHandler{handlerBase: handlerBase{flow: f}}, nil
}

// Step returns StepPasswordRequired
func (h *SignInPasswordRequiredHandler) Step() Step { return StepPasswordRequired }

func (h *SignInPasswordRequiredHandler) signInHandler() {}

// SubmitPassword submits the password.
func (h *SignInPasswordRequiredHandler) SubmitPassword(ctx context.Context, password Password) (result SignInResult) {
	const op = "nativeauth.(SignInPasswordRequiredHandler).SubmitPassword"
	if err := h.begin(op); err != nil {
		return failedResult[*AccountInfo, SignInHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withPassword(op, password)
	}
	if err != nil {
		return c.signInResult(ctx, op, h.flow, nil, err)
	}
	a, err := c.signIn.submitPassword(ctx, p)
	return c.signInResult(ctx, op, h.flow, a, err)
}

// SignInContinuationHandler signs in a user whose sign-up or password reset
// just completed, without asking for their credentials again.
type SignInContinuationHandler struct {
	handlerBase
}

func newSignInContinuationHandler(op string, f flowContext) (*SignInContinuationHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignInContinuationHandler{handlerBase: handlerBase{flow: f}}, nil
}

// Step returns StepSignInContinuation
func (h *SignInContinuationHandler) Step() Step { return StepSignInContinuation }

// Username returns the user that will be signed in.
func (h *SignInContinuationHandler) Username() string { return h.flow.username }

// SignIn signs the user in.  The config's scopes are requested when none are
// provided.
func (h *SignInContinuationHandler) SignIn(ctx context.Context, scopes ...string) (result SignInResult) {
	const op = "nativeauth.(SignInContinuationHandler).SignIn"
	if err := h.begin(op); err != nil {
		return failedResult[*AccountInfo, SignInHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withUsername(op, h.flow.username)
	}
	if err != nil {
		return c.signInResult(ctx, op, h.flow, nil, err)
	}
	p = p.withScopes(c.config, scopes)
	a, err := c.signIn.signInWithContinuationToken(ctx, p)
	return c.signInResult(ctx, op, h.flow, a, err)
}
