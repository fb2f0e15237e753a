// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"context"
	"slices"
)

// SignUpCodeRequiredHandler is the sign-up step where the user must enter
// the code sent to verify their email.
type SignUpCodeRequiredHandler struct {
	handlerBase
	codeDetails
}

var _ SignUpHandler = (*SignUpCodeRequiredHandler)(nil)

func newSignUpCodeRequiredHandler(op string, f flowContext, a *actionResult) (*SignUpCodeRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignUpCodeRequiredHandler{
		handlerBase: handlerBase{flow: f},
		codeDetails: newCodeDetails(a),
	}, nil
}

// Step returns StepCodeRequired
func (h *SignUpCodeRequiredHandler) Step() Step { return StepCodeRequired }

func (h *SignUpCodeRequiredHandler) signUpHandler() {}

// SubmitCode submits the code.
func (h *SignUpCodeRequiredHandler) SubmitCode(ctx context.Context, code string) (result SignUpResult) {
	const op = "nativeauth.(SignUpCodeRequiredHandler).SubmitCode"
	if err := h.begin(op); err != nil {
		return failedResult[*SignInContinuationHandler, SignUpHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withCode(op, code)
	}
	if err != nil {
		return c.signUpResult(op, h.flow, nil, err)
	}
	a, err := c.signUp.submitCode(ctx, p)
	return c.signUpResult(op, h.flow, a, err)
}

// ResendCode asks for a new code.  It consumes the handler and the returned
// result carries a new one.
func (h *SignUpCodeRequiredHandler) ResendCode(ctx context.Context) (result SignUpResendCodeResult) {
	const op = "nativeauth.(SignUpCodeRequiredHandler).ResendCode"
	if err := h.begin(op); err != nil {
		return failedResult[struct{}, *SignUpCodeRequiredHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err != nil {
		return failedResult[struct{}, *SignUpCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	a, err := c.signUp.resendCode(ctx, p)
	if err != nil {
		return failedResult[struct{}, *SignUpCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	next, err := newSignUpCodeRequiredHandler(op, h.flow.next(a.continuationToken), a)
	if err != nil {
		return failedResult[struct{}, *SignUpCodeRequiredHandler](c.fail(op, h.flow.correlationId, err))
	}
	return nextStepResult[struct{}](next)
}

// SignUpPasswordRequiredHandler is the sign-up step where the user must
// choose a password.
type SignUpPasswordRequiredHandler struct {
	handlerBase
}

var _ SignUpHandler = (*SignUpPasswordRequiredHandler)(nil)

func newSignUpPasswordRequiredHandler(op string, f flowContext) (*SignUpPasswordRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignUpPasswordRequiredHandler{handlerBase: handlerBase{flow: f}}, nil
}

// Step returns StepPasswordRequired
func (h *SignUpPasswordRequiredHandler) Step() Step { return StepPasswordRequired }

func (h *SignUpPasswordRequiredHandler) signUpHandler() {}

// SubmitPassword submits the new user's password.  A password the server
// doesn't accept fails with KindPasswordNotAccepted and the handler can be
// used again.
func (h *SignUpPasswordRequiredHandler) SubmitPassword(ctx context.Context, password Password) (result SignUpResult) {
	const op = "nativeauth.(SignUpPasswordRequiredHandler).SubmitPassword"
	if err := h.begin(op); err != nil {
		return failedResult[*SignInContinuationHandler, SignUpHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withPassword(op, password)
	}
	if err != nil {
		return c.signUpResult(op, h.flow, nil, err)
	}
	a, err := c.signUp.submitPassword(ctx, p)
	return c.signUpResult(op, h.flow, a, err)
}

// SignUpAttributesRequiredHandler is the sign-up step where the user must
// provide more attributes.
type SignUpAttributesRequiredHandler struct {
	handlerBase
	requiredAttributes []RequiredAttribute
}

var _ SignUpHandler = (*SignUpAttributesRequiredHandler)(nil)

func newSignUpAttributesRequiredHandler(op string, f flowContext, a *actionResult) (*SignUpAttributesRequiredHandler, error) {
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return &SignUpAttributesRequiredHandler{
		handlerBase:        handlerBase{flow: f},
		requiredAttributes: slices.Clone(a.requiredAttributes),
	}, nil
}

// Step returns StepAttributesRequired
func (h *SignUpAttributesRequiredHandler) Step() Step { return StepAttributesRequired }

func (h *SignUpAttributesRequiredHandler) signUpHandler() {}

// RequiredAttributes returns the attributes the server asked for.
func (h *SignUpAttributesRequiredHandler) RequiredAttributes() []RequiredAttribute {
	return slices.Clone(h.requiredAttributes)
}

// SubmitAttributes submits the attributes.
func (h *SignUpAttributesRequiredHandler) SubmitAttributes(ctx context.Context, attributes *UserAccountAttributes) (result SignUpResult) {
	const op = "nativeauth.(SignUpAttributesRequiredHandler).SubmitAttributes"
	if err := h.begin(op); err != nil {
		return failedResult[*SignInContinuationHandler, SignUpHandler](err)
	}
	defer func() { h.end(!result.IsFailed()) }()

	c := h.flow.controller
	p, err := h.flow.params(op)
	if err == nil {
		p, err = p.withAttributes(op, attributes)
	}
	if err != nil {
		return c.signUpResult(op, h.flow, nil, err)
	}
	a, err := c.signUp.submitAttributes(ctx, p)
	return c.signUpResult(op, h.flow, a, err)
}
