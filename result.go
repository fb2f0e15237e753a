// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

// ResultKind discriminates the outcome of a flow step.
type ResultKind int

const (
	// ResultInvalid is the zero value; a Result returned by this package is
	// never invalid.
	ResultInvalid ResultKind = iota

	// ResultFailed means the step failed: Err is set.
	ResultFailed

	// ResultCompleted means the flow completed: Data is set.
	ResultCompleted

	// ResultNextStep means the flow continues: Next is set.
	ResultNextStep
)

// String returns a name for the kind.
func (k ResultKind) String() string {
	switch k {
	case ResultFailed:
		return "failed"
	case ResultCompleted:
		return "completed"
	case ResultNextStep:
		return "next_step"
	default:
		return "invalid"
	}
}

// Result is the outcome of a flow step.  Exactly one of the error, the data
// or the next step handler is set, as told by Kind.
type Result[D any, H any] struct {
	kind ResultKind
	err  *Error
	data D
	next H
}

func failedResult[D any, H any](err *Error) Result[D, H] {
	return Result[D, H]{kind: ResultFailed, err: err}
}

func completedResult[D any, H any](data D) Result[D, H] {
	return Result[D, H]{kind: ResultCompleted, data: data}
}

func nextStepResult[D any, H any](next H) Result[D, H] {
	return Result[D, H]{kind: ResultNextStep, next: next}
}

// Kind returns the result's discriminant.
func (r Result[D, H]) Kind() ResultKind { return r.kind }

// Err returns the error of a failed result and nil otherwise.
func (r Result[D, H]) Err() *Error {
	if r.kind != ResultFailed {
		return nil
	}
	return r.err
}

// Data returns the data of a completed result.
func (r Result[D, H]) Data() (D, bool) {
	if r.kind != ResultCompleted {
		var zero D
		return zero, false
	}
	return r.data, true
}

// Next returns the handler of the next step.
func (r Result[D, H]) Next() (H, bool) {
	if r.kind != ResultNextStep {
		var zero H
		return zero, false
	}
	return r.next, true
}

// IsFailed reports whether the step failed.
func (r Result[D, H]) IsFailed() bool { return r.kind == ResultFailed }

// IsCompleted reports whether the flow completed.
func (r Result[D, H]) IsCompleted() bool { return r.kind == ResultCompleted }

// HasNext reports whether the flow continues with another step.
func (r Result[D, H]) HasNext() bool { return r.kind == ResultNextStep }

// The results of every flow step.
type (
	// SignInResult completes with an *AccountInfo or continues with a
	// SignInHandler.
	SignInResult = Result[*AccountInfo, SignInHandler]

	// SignInResendCodeResult continues with a new code required handler.
	SignInResendCodeResult = Result[struct{}, *SignInCodeRequiredHandler]

	// SignUpResult completes with a handler to sign the new user in or
	// continues with a SignUpHandler.
	SignUpResult = Result[*SignInContinuationHandler, SignUpHandler]

	// SignUpResendCodeResult continues with a new code required handler.
	SignUpResendCodeResult = Result[struct{}, *SignUpCodeRequiredHandler]

	// ResetPasswordResult completes with a handler to sign the user in or
	// continues with a ResetPasswordHandler.
	ResetPasswordResult = Result[*SignInContinuationHandler, ResetPasswordHandler]

	// ResetPasswordResendCodeResult continues with a new code required
	// handler.
	ResetPasswordResendCodeResult = Result[struct{}, *ResetPasswordCodeRequiredHandler]

	// GetAccountResult completes with the current account.
	GetAccountResult = Result[*AccountInfo, struct{}]

	// AccessTokenResult completes with an access token.
	AccessTokenResult = Result[*AuthenticationResult, struct{}]

	// SignOutResult completes when the account was removed.
	SignOutResult = Result[struct{}, struct{}]
)
