// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Challenge types understood by the native authentication endpoints.
const (
	ChallengeTypePassword = "password"
	ChallengeTypeOOB      = "oob"
	ChallengeTypeRedirect = "redirect"
)

// Grant types used by the token and continue endpoints.
const (
	GrantTypePassword          = "password"
	GrantTypeOOB               = "oob"
	GrantTypeContinuationToken = "continuation_token"
	GrantTypeAttributes        = "attributes"
	GrantTypeRefreshToken      = "refresh_token"
)

// RequestBase holds the fields every native authentication request carries.
type RequestBase struct {
	// Authority is the base URL every endpoint path is appended to.
	Authority string

	// ClientId is the public client's application id.
	ClientId string

	// CorrelationId is sent as the client-request-id header.
	CorrelationId string
}

func (r *RequestBase) validate(op string) error {
	if r.CorrelationId == "" {
		return fmt.Errorf("%s: correlation id is empty: %w", op, ErrInvalidParameter)
	}
	if r.Authority == "" {
		return fmt.Errorf("%s: authority is empty: %w", op, ErrInvalidParameter)
	}
	if r.ClientId == "" {
		return fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *RequestBase) form() url.Values {
	v := url.Values{}
	v.Set("client_id", r.ClientId)
	return v
}

// InitiateRequest starts a sign-in (oauth2/v2.0/initiate) or a reset
// password (resetpassword/v1.0/start) flow.
type InitiateRequest struct {
	RequestBase
	Username       string
	ChallengeTypes []string
}

// Validate the request.
func (r *InitiateRequest) Validate() error {
	const op = "api.(InitiateRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.Username == "" {
		return fmt.Errorf("%s: username is empty: %w", op, ErrInvalidParameter)
	}
	if len(r.ChallengeTypes) == 0 {
		return fmt.Errorf("%s: challenge types are empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *InitiateRequest) form() url.Values {
	v := r.RequestBase.form()
	v.Set("username", r.Username)
	v.Set("challenge_type", strings.Join(r.ChallengeTypes, " "))
	return v
}

// ChallengeRequest asks the server which challenge the flow identified by
// the ContinuationToken must satisfy next.  It's used by every flow family.
type ChallengeRequest struct {
	RequestBase
	ContinuationToken string
	ChallengeTypes    []string
}

// Validate the request.
func (r *ChallengeRequest) Validate() error {
	const op = "api.(ChallengeRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.ContinuationToken == "" {
		return fmt.Errorf("%s: continuation token is empty: %w", op, ErrInvalidParameter)
	}
	if len(r.ChallengeTypes) == 0 {
		return fmt.Errorf("%s: challenge types are empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *ChallengeRequest) form() url.Values {
	v := r.RequestBase.form()
	v.Set("continuation_token", r.ContinuationToken)
	v.Set("challenge_type", strings.Join(r.ChallengeTypes, " "))
	return v
}

// TokenRequest redeems a continuation token (or a refresh token) for tokens
// at oauth2/v2.0/token.  The fields required depend on the GrantType.
type TokenRequest struct {
	RequestBase
	GrantType         string
	ContinuationToken string
	Scopes            []string
	Username          string
	Password          string
	Oob               string
	RefreshToken      string
}

// Validate the request.
func (r *TokenRequest) Validate() error {
	const op = "api.(TokenRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.GrantType != GrantTypeRefreshToken && r.ContinuationToken == "" {
		return fmt.Errorf("%s: continuation token is empty: %w", op, ErrInvalidParameter)
	}
	switch r.GrantType {
	case GrantTypePassword:
		if r.Password == "" {
			return fmt.Errorf("%s: password is empty: %w", op, ErrInvalidParameter)
		}
	case GrantTypeOOB:
		if r.Oob == "" {
			return fmt.Errorf("%s: oob is empty: %w", op, ErrInvalidParameter)
		}
	case GrantTypeContinuationToken:
		if r.Username == "" {
			return fmt.Errorf("%s: username is empty: %w", op, ErrInvalidParameter)
		}
	case GrantTypeRefreshToken:
		if r.RefreshToken == "" {
			return fmt.Errorf("%s: refresh token is empty: %w", op, ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%s: unsupported grant type %q: %w", op, r.GrantType, ErrInvalidParameter)
	}
	return nil
}

func (r *TokenRequest) form() url.Values {
	v := r.RequestBase.form()
	v.Set("grant_type", r.GrantType)
	if len(r.Scopes) > 0 {
		v.Set("scope", strings.Join(r.Scopes, " "))
	}
	if r.ContinuationToken != "" {
		v.Set("continuation_token", r.ContinuationToken)
	}
	switch r.GrantType {
	case GrantTypePassword:
		v.Set("password", r.Password)
	case GrantTypeOOB:
		v.Set("oob", r.Oob)
	case GrantTypeContinuationToken:
		v.Set("username", r.Username)
	case GrantTypeRefreshToken:
		v.Set("refresh_token", r.RefreshToken)
	}
	return v
}

// SignUpStartRequest starts a sign-up flow at signup/v1.0/start.
type SignUpStartRequest struct {
	RequestBase
	Username       string
	Password       string
	Attributes     map[string]string
	ChallengeTypes []string
}

// Validate the request.
func (r *SignUpStartRequest) Validate() error {
	const op = "api.(SignUpStartRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.Username == "" {
		return fmt.Errorf("%s: username is empty: %w", op, ErrInvalidParameter)
	}
	if len(r.ChallengeTypes) == 0 {
		return fmt.Errorf("%s: challenge types are empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *SignUpStartRequest) form() (url.Values, error) {
	v := r.RequestBase.form()
	v.Set("username", r.Username)
	v.Set("challenge_type", strings.Join(r.ChallengeTypes, " "))
	if r.Password != "" {
		v.Set("password", r.Password)
	}
	if err := setAttributes(v, r.Attributes); err != nil {
		return nil, err
	}
	return v, nil
}

// ContinueRequest continues a sign-up (signup/v1.0/continue) or a reset
// password (resetpassword/v1.0/continue) flow with the proof required by the
// previous challenge.
type ContinueRequest struct {
	RequestBase
	ContinuationToken string
	GrantType         string
	Oob               string
	Password          string
	Attributes        map[string]string
}

// Validate the request.
func (r *ContinueRequest) Validate() error {
	const op = "api.(ContinueRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.ContinuationToken == "" {
		return fmt.Errorf("%s: continuation token is empty: %w", op, ErrInvalidParameter)
	}
	switch r.GrantType {
	case GrantTypeOOB:
		if r.Oob == "" {
			return fmt.Errorf("%s: oob is empty: %w", op, ErrInvalidParameter)
		}
	case GrantTypePassword:
		if r.Password == "" {
			return fmt.Errorf("%s: password is empty: %w", op, ErrInvalidParameter)
		}
	case GrantTypeAttributes:
		if len(r.Attributes) == 0 {
			return fmt.Errorf("%s: attributes are empty: %w", op, ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%s: unsupported grant type %q: %w", op, r.GrantType, ErrInvalidParameter)
	}
	return nil
}

func (r *ContinueRequest) form() (url.Values, error) {
	v := r.RequestBase.form()
	v.Set("continuation_token", r.ContinuationToken)
	v.Set("grant_type", r.GrantType)
	switch r.GrantType {
	case GrantTypeOOB:
		v.Set("oob", r.Oob)
	case GrantTypePassword:
		v.Set("password", r.Password)
	case GrantTypeAttributes:
		if err := setAttributes(v, r.Attributes); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// SubmitRequest submits the new password of a reset password flow at
// resetpassword/v1.0/submit.
type SubmitRequest struct {
	RequestBase
	ContinuationToken string
	NewPassword       string
}

// Validate the request.
func (r *SubmitRequest) Validate() error {
	const op = "api.(SubmitRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.ContinuationToken == "" {
		return fmt.Errorf("%s: continuation token is empty: %w", op, ErrInvalidParameter)
	}
	if r.NewPassword == "" {
		return fmt.Errorf("%s: new password is empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *SubmitRequest) form() url.Values {
	v := r.RequestBase.form()
	v.Set("continuation_token", r.ContinuationToken)
	v.Set("new_password", r.NewPassword)
	return v
}

// PollCompletionRequest polls resetpassword/v1.0/poll_completion.
type PollCompletionRequest struct {
	RequestBase
	ContinuationToken string
}

// Validate the request.
func (r *PollCompletionRequest) Validate() error {
	const op = "api.(PollCompletionRequest).Validate"
	if r == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if err := r.validate(op); err != nil {
		return err
	}
	if r.ContinuationToken == "" {
		return fmt.Errorf("%s: continuation token is empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

func (r *PollCompletionRequest) form() url.Values {
	v := r.RequestBase.form()
	v.Set("continuation_token", r.ContinuationToken)
	return v
}

// setAttributes encodes attributes as the JSON object the sign-up endpoints
// expect in the "attributes" form field.
func setAttributes(v url.Values, attributes map[string]string) error {
	const op = "api.setAttributes"
	if len(attributes) == 0 {
		return nil
	}
	b, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("%s: unable to encode attributes: %w", op, err)
	}
	v.Set("attributes", string(b))
	return nil
}
