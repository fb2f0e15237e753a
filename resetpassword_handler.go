// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
)

// ResetPasswordCodeRequiredHandler is the password reset step where the user
// must enter the code that was sent to them.
type ResetPasswordCodeRequiredHandler struct {
	handlerBase
	codeDetails
}

var _ ResetPasswordHandler = (*ResetPasswordCodeRequiredHandler)(nil)

func newResetPasswordCodeRequiredHandler(op string, f flowContext, a *actionResult) (*ResetPasswordCodeRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &ResetPasswordCodeRequiredHandler{
		handlerBase: handlerBase{flow: f},
		codeDetails: newCodeDetails(a),
	}, nil
}

// Step returns StepCodeRequired
func (h *ResetPasswordCodeRequiredHandler) Step() Step { return StepCodeRequired }

func (h *ResetPasswordCodeRequiredHandler) resetPasswordHandler() {}

// SubmitCode submits the code.
func (h *ResetPasswordCodeRequiredHandler) SubmitCode(ctx context.Context, code string) (result ResetPasswordResult) {
	const op = "nativeauth.(ResetPasswordCodeRequiredHandler).SubmitCode"
	if err := h.begin(op); err != nil {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withCode(op, code)
	}
	if err != nil {
		return c.resetPasswordResult(op, h.flow, nil, err)
	}
	a, err := c.resetPassword.submitCode(ctx, p)
	return c.resetPasswordResult(op, h.flow, a, err)
}

// ResendCode asks for a new code.  It consumes the handler and the returned
// result carries a new one.
func (h *ResetPasswordCodeRequiredHandler) ResendCode(ctx context.Context) (result ResetPasswordResendCodeResult) {
	const op = "nativeauth.(ResetPasswordCodeRequiredHandler).ResendCode"
	if err := h.begin(op); err != nil {
		return failedResult[struct{}, *ResetPasswordCodeRequiredHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err != nil {
		return failedResult[struct{}, *ResetPasswordCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	a, err := c.resetPassword.resendCode(ctx, p)
	if err != nil {
		return failedResult[struct{}, *ResetPasswordCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	next, err := newResetPasswordCodeRequiredHandler(op, h.flow.next(a.continuationToken), a)
	if err != nil {
		return failedResult[struct{}, *ResetPasswordCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	return nextStepResult[struct{}](next)
}

// ResetPasswordPasswordRequiredHandler is the password reset step where the
// user must choose a new password.
type ResetPasswordPasswordRequiredHandler struct {
	handlerBase
}

var _ ResetPasswordHandler = (*ResetPasswordPasswordRequiredHandler)(nil)

func newResetPasswordPasswordRequiredHandler(op string, f flowContext) (*ResetPasswordPasswordRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &ResetPasswordPasswordRequiredHandler{handlerBase: handlerBase{flow: f}}, nil
}

// Step returns StepPasswordRequired
func (h *ResetPasswordPasswordRequiredHandler) Step() Step { return StepPasswordRequired }

func (h *ResetPasswordPasswordRequiredHandler) resetPasswordHandler() {}

// SubmitPassword submits the new password and waits for the reset to
// complete.  A reset the server reports as failed, or that doesn't complete
// in time, fails with KindPasswordResetFailed.
func (h *ResetPasswordPasswordRequiredHandler) SubmitPassword(ctx context.Context, password Password) (result ResetPasswordResult) {
	const op = "nativeauth.(ResetPasswordPasswordRequiredHandler).SubmitPassword"
	if err := h.begin(op); err != nil {
		return failedResult[*SignInContinuationHandler, ResetPasswordHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withPassword(op, password)
	}
	if err != nil {
		return c.resetPasswordResult(op, h.flow, nil, err)
	}
	a, err := c.resetPassword.submitPassword(ctx, p)
	return c.resetPasswordResult(op, h.flow, a, err)
}
