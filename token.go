// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/cap/nativeauth/api"
	"golang.org/x/oauth2"
)

// Password is a user's password
type Password string

// RedactedPassword is the redacted string or json for a password
const RedactedPassword = "[REDACTED: password]"

// String will redact the password
func (p Password) String() string {
	return RedactedPassword
}

// MarshalJSON will redact the password
func (p Password) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedPassword)
}

// AccessToken is an oauth access_token
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// RefreshToken is an oauth refresh_token
type RefreshToken string

// RedactedRefreshToken is the redacted string or json for an oauth refresh_token
const RedactedRefreshToken = "[REDACTED: refresh_token]"

// String will redact the token
func (t RefreshToken) String() string {
	return RedactedRefreshToken
}

// MarshalJSON will redact the token
func (t RefreshToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedRefreshToken)
}

// IdToken is an oidc id_token
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token
func (t IdToken) String() string {
	return RedactedIdToken
}

// MarshalJSON will redact the token
func (t IdToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIdToken)
}

// Claims retrieves the IdToken claims.  The signature is not verified.
func (t IdToken) Claims(claims interface{}) error {
	const op = "nativeauth.(IdToken).Claims"
	if len(t) == 0 {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	return UnmarshalClaims(string(t), claims)
}

// AuthenticationResult is the outcome of a completed sign-in.
type AuthenticationResult struct {
	Account       Account
	IdToken       IdToken
	AccessToken   AccessToken
	RefreshToken  RefreshToken
	TokenType     string
	Scopes        []string
	ExpiresOn     time.Time
	CorrelationId string
}

// Token returns the result as an *oauth2.Token, with the id_token available
// through Extra("id_token").
func (r *AuthenticationResult) Token() *oauth2.Token {
	if r == nil {
		return nil
	}
	tk := &oauth2.Token{
		AccessToken:  string(r.AccessToken),
		TokenType:    r.TokenType,
		RefreshToken: string(r.RefreshToken),
		Expiry:       r.ExpiresOn,
	}
	if r.IdToken != "" {
		tk = tk.WithExtra(map[string]interface{}{"id_token": string(r.IdToken)})
	}
	return tk
}

// TokenSource returns a static oauth2.TokenSource for the result's token.
func (r *AuthenticationResult) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(r.Token())
}

// newAuthenticationResult converts a token response.  The username is used
// when the id_token doesn't carry a preferred_username.
func newAuthenticationResult(authority, correlationId, username string, requestedScopes []string, resp *api.TokenResponse) (*AuthenticationResult, error) {
	const op = "nativeauth.newAuthenticationResult"
	if resp == nil {
		return nil, newError(KindUnknownApi, op, correlationId, "token response is nil")
	}
	if resp.AccessToken == "" && resp.IdToken == "" {
		return nil, newError(KindUnknownApi, op, correlationId, "token response contains no tokens")
	}
	r := &AuthenticationResult{
		IdToken:       IdToken(resp.IdToken),
		AccessToken:   AccessToken(resp.AccessToken),
		RefreshToken:  RefreshToken(resp.RefreshToken),
		TokenType:     resp.TokenType,
		Scopes:        strings.Fields(resp.Scope),
		CorrelationId: correlationId,
	}
	if len(r.Scopes) == 0 {
		r.Scopes = requestedScopes
	}
	if resp.ExpiresIn > 0 {
		r.ExpiresOn = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	account, err := newAccount(authority, username, r.IdToken)
	if err != nil {
		return nil, &Error{Kind: KindUnknownApi, Op: op, CorrelationId: correlationId, Description: "id_token can't be parsed", Wrapped: err}
	}
	r.Account = *account
	return r, nil
}
