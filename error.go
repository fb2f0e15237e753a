// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/cap/nativeauth/api"
)

var (
	// ErrInvalidParameter is an invalid parameter error
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNilParameter is a nil parameter error
	ErrNilParameter = errors.New("nil parameter")

	// ErrInvalidCACert is an invalid CA certificate error
	ErrInvalidCACert = errors.New("invalid CA certificate")
)

// ErrorKind classifies every error returned in a flow result.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidArgument
	KindRedirect
	KindUnknownApi
	KindUserNotFound
	KindInvalidCredentials
	KindIncorrectCode
	KindUserAlreadyExists
	KindAttributeRequired
	KindInvalidAttributes
	KindPasswordNotAccepted
	KindEmailNotVerified
	KindExpiredToken
	KindPasswordResetFailed
	KindInvalidScopes
	KindNoCachedAccount
	KindInvalidState
	KindUnexpected
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindInvalidArgument:     "invalid argument",
	KindRedirect:            "redirect required",
	KindUnknownApi:          "unknown api response",
	KindUserNotFound:        "user not found",
	KindInvalidCredentials:  "invalid credentials",
	KindIncorrectCode:       "incorrect code",
	KindUserAlreadyExists:   "user already exists",
	KindAttributeRequired:   "attributes required",
	KindInvalidAttributes:   "invalid attributes",
	KindPasswordNotAccepted: "password not accepted",
	KindEmailNotVerified:    "email not verified",
	KindExpiredToken:        "expired token",
	KindPasswordResetFailed: "password reset failed",
	KindInvalidScopes:       "invalid scopes",
	KindNoCachedAccount:     "no cached account",
	KindInvalidState:        "invalid state",
	KindUnexpected:          "unexpected error",
}

// String returns a readable name for the kind.
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Sentinels for every ErrorKind.  errors.Is(err, ErrRedirect) is true for any
// *Error of kind KindRedirect.
var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrRedirect            = &Error{Kind: KindRedirect}
	ErrUnknownApi          = &Error{Kind: KindUnknownApi}
	ErrUserNotFound        = &Error{Kind: KindUserNotFound}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials}
	ErrIncorrectCode       = &Error{Kind: KindIncorrectCode}
	ErrUserAlreadyExists   = &Error{Kind: KindUserAlreadyExists}
	ErrAttributeRequired   = &Error{Kind: KindAttributeRequired}
	ErrInvalidAttributes   = &Error{Kind: KindInvalidAttributes}
	ErrPasswordNotAccepted = &Error{Kind: KindPasswordNotAccepted}
	ErrEmailNotVerified    = &Error{Kind: KindEmailNotVerified}
	ErrExpiredToken        = &Error{Kind: KindExpiredToken}
	ErrPasswordResetFailed = &Error{Kind: KindPasswordResetFailed}
	ErrInvalidScopes       = &Error{Kind: KindInvalidScopes}
	ErrNoCachedAccount     = &Error{Kind: KindNoCachedAccount}
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrUnexpected          = &Error{Kind: KindUnexpected}
)

// RequiredAttribute is a user attribute the server requires before a
// sign-up can complete.
type RequiredAttribute struct {
	Name     string
	Type     string
	Required bool
	Regex    string
}

// Error is the error carried by every failed flow result.  Errors returned
// by the server keep its error, suberror and codes so callers can do finer
// grained handling than the Kind allows.
type Error struct {
	// Kind classifies the error
	Kind ErrorKind

	// Op is the operation that failed
	Op string

	// Code is the server's error, for example: invalid_grant
	Code string

	// Description is either the server's error_description or a local
	// description of the failure.
	Description string

	CorrelationId string
	ErrorCodes    []int
	SubError      string
	TraceId       string

	// ContinuationToken is set by errors which allow the flow to continue,
	// for example: attributes_required
	ContinuationToken string

	// RequiredAttributes is set for KindAttributeRequired
	RequiredAttributes []RequiredAttribute

	// InvalidAttributes is set for KindInvalidAttributes
	InvalidAttributes []string

	// Wrapped is the underlying error, if any
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		fmt.Fprintf(&b, "%s: ", e.Op)
	}
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s", e.Code)
		if e.SubError != "" {
			fmt.Fprintf(&b, "/%s", e.SubError)
		}
		b.WriteString(")")
	}
	if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %s", e.Wrapped)
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, op, correlationId, description string) *Error {
	return &Error{
		Kind:          kind,
		Op:            op,
		CorrelationId: correlationId,
		Description:   description,
	}
}

// invalidArgument names the missing or invalid field.
func invalidArgument(op, correlationId, field string) *Error {
	e := newError(KindInvalidArgument, op, correlationId, fmt.Sprintf("%s is empty", field))
	e.Wrapped = ErrInvalidParameter
	return e
}

// toError converts any error crossing a flow boundary into an *Error.
// Server errors are classified, local api validation errors become
// KindInvalidArgument and everything else is KindUnexpected with the
// original error wrapped.
func toError(op, correlationId string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var errResp *api.ErrorResponse
	switch {
	case errors.As(err, &errResp):
		return fromErrorResponse(op, correlationId, errResp)
	case errors.Is(err, api.ErrInvalidParameter), errors.Is(err, api.ErrNilParameter):
		return &Error{Kind: KindInvalidArgument, Op: op, CorrelationId: correlationId, Wrapped: err}
	case errors.Is(err, api.ErrUnexpectedResponse):
		return &Error{Kind: KindUnknownApi, Op: op, CorrelationId: correlationId, Wrapped: err}
	default:
		return &Error{Kind: KindUnexpected, Op: op, CorrelationId: correlationId, Wrapped: err}
	}
}

// fromErrorResponse classifies a server error response.
func fromErrorResponse(op, correlationId string, r *api.ErrorResponse) *Error {
	e := &Error{
		Kind:              classify(r.Code, r.SubError),
		Op:                op,
		Code:              r.Code,
		Description:       r.Description,
		CorrelationId:     r.CorrelationId,
		ErrorCodes:        r.ErrorCodes,
		SubError:          r.SubError,
		TraceId:           r.TraceId,
		ContinuationToken: r.ContinuationToken,
		InvalidAttributes: r.InvalidAttributeNames(),
	}
	if e.CorrelationId == "" {
		e.CorrelationId = correlationId
	}
	for _, a := range r.RequiredAttributes {
		ra := RequiredAttribute{Name: a.Name, Type: a.Type, Required: a.Required}
		if a.Options != nil {
			ra.Regex = a.Options.Regex
		}
		e.RequiredAttributes = append(e.RequiredAttributes, ra)
	}
	return e
}

func classify(code, subError string) ErrorKind {
	switch code {
	case "user_not_found":
		return KindUserNotFound
	case "invalid_grant":
		switch {
		case subError == "invalid_oob_value":
			return KindIncorrectCode
		case strings.HasPrefix(subError, "password_"):
			return KindPasswordNotAccepted
		case subError == "attribute_validation_failed":
			return KindInvalidAttributes
		default:
			return KindInvalidCredentials
		}
	case "user_already_exists":
		return KindUserAlreadyExists
	case "attributes_required":
		return KindAttributeRequired
	case "verification_required":
		return KindEmailNotVerified
	case "expired_token":
		return KindExpiredToken
	case "redirect", "unsupported_challenge_type":
		return KindRedirect
	default:
		return KindUnknownApi
	}
}
