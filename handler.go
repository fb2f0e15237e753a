// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"sync/atomic"
)

// Step names the state a handler represents.
type Step int

const (
	StepUnknown Step = iota
	StepCodeRequired
	StepPasswordRequired
	StepAttributesRequired
	StepSignInContinuation
)

// String returns a name for the step.
func (s Step) String() string {
	switch s {
	case StepCodeRequired:
		return "code_required"
	case StepPasswordRequired:
		return "password_required"
	case StepAttributesRequired:
		return "attributes_required"
	case StepSignInContinuation:
		return "sign_in_continuation"
	default:
		return "unknown"
	}
}

// Handler is implemented by every flow handler.  Step is the discriminant to
// switch on before asserting the concrete handler.
type Handler interface {
	Step() Step
	CorrelationId() string
	ContinuationToken() string
}

// SignInHandler is the next step of a sign-in: a *SignInCodeRequiredHandler
// or a *SignInPasswordRequiredHandler.
type SignInHandler interface {
	Handler
	signInHandler()
}

// SignUpHandler is the next step of a sign-up: a *SignUpCodeRequiredHandler,
// a *SignUpPasswordRequiredHandler or a *SignUpAttributesRequiredHandler.
type SignUpHandler interface {
	Handler
	signUpHandler()
}

// ResetPasswordHandler is the next step of a password reset: a
// *ResetPasswordCodeRequiredHandler or a
// *ResetPasswordPasswordRequiredHandler.
type ResetPasswordHandler interface {
	Handler
	resetPasswordHandler()
}

// flowContext is what a handler is bound to.
type flowContext struct {
	controller        *StandardController
	correlationId     string
	continuationToken string
	username          string
	scopes            []string
}

func (f flowContext) validate(op string) error {
	switch {
	case f.controller == nil:
		return invalidArgument(op, f.correlationId, "controller")
	case f.controller.config == nil:
		return invalidArgument(op, f.correlationId, "config")
	case f.correlationId == "":
		return invalidArgument(op, f.correlationId, "correlation id")
	case f.continuationToken == "":
		return invalidArgument(op, f.correlationId, "continuation token")
	case f.username == "":
		return invalidArgument(op, f.correlationId, "username")
	}
	return nil
}

// next returns the context for the handler of the next step.
func (f flowContext) next(continuationToken string) flowContext {
	f.continuationToken = continuationToken
	return f
}

// params returns the continuation params of the flow.
func (f flowContext) params(op string) (*continuationParams, error) {
	p, err := newContinuationParams(op, f.controller.config, f.correlationId, f.continuationToken)
	if err != nil {
		return nil, err
	}
	p.username = f.username
	p.scopes = f.scopes
	return p, nil
}

const (
	handlerReady int32 = iota
	handlerBusy
	handlerConsumed
)

// handlerBase is embedded by every handler.  A handler is consumed by the
// first call that advances the flow; a failed call leaves it ready.
type handlerBase struct {
	flow  flowContext
	state atomic.Int32
}

// CorrelationId returns the correlation id of the flow.
func (h *handlerBase) CorrelationId() string { return h.flow.correlationId }

// ContinuationToken returns the continuation token the handler is bound to.
func (h *handlerBase) ContinuationToken() string { return h.flow.continuationToken }

// begin claims the handler for a call.
func (h *handlerBase) begin(op string) *Error {
	if h.state.CompareAndSwap(handlerReady, handlerBusy) {
		return nil
	}
	h.flow.controller.logger.Debug("handler can't be used", "op", op, "correlation_id", h.flow.correlationId)
	return newError(KindInvalidState, op, h.flow.correlationId, "handler is in use or already advanced the flow")
}

// end releases the handler, consuming it when the call advanced the flow.
func (h *handlerBase) end(advanced bool) {
	if advanced {
		h.state.Store(handlerConsumed)
		return
	}
	h.state.Store(handlerReady)
}

// Consumed reports whether the handler already advanced the flow.
func (h *handlerBase) Consumed() bool { return h.state.Load() == handlerConsumed }

// codeDetails describe where a code was sent.
type codeDetails struct {
	channel     string
	targetLabel string
	codeLength  int
	interval    int
}

func newCodeDetails(a *actionResult) codeDetails {
	return codeDetails{
		channel:     a.challengeChannel,
		targetLabel: a.challengeTargetLabel,
		codeLength:  a.codeLength,
		interval:    a.interval,
	}
}

// Channel returns the channel the code was sent through, for example: email
func (d codeDetails) Channel() string { return d.channel }

// TargetLabel returns the obfuscated address the code was sent to.
func (d codeDetails) TargetLabel() string { return d.targetLabel }

// CodeLength returns the length of the code.
func (d codeDetails) CodeLength() int { return d.codeLength }

// Interval returns the seconds to wait before asking for a new code.
func (d codeDetails) Interval() int { return d.interval }
