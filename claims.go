// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package nativeauth

import (
	"fmt"
	"net/url"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// supportedIdTokenAlgs are the signing algorithms accepted when parsing an
// id_token.
var supportedIdTokenAlgs = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}

// UnmarshalClaims will retrieve the claims from the provided raw JWT token
// without verifying its signature.
func UnmarshalClaims(rawToken string, claims interface{}) error {
	const op = "nativeauth.UnmarshalClaims"
	tk, err := jwt.ParseSigned(rawToken, supportedIdTokenAlgs)
	if err != nil {
		return fmt.Errorf("%s: malformed jwt: %w: %s", op, ErrInvalidParameter, err)
	}
	if err := tk.UnsafeClaimsWithoutVerification(claims); err != nil {
		return fmt.Errorf("%s: unable to decode claims: %w: %s", op, ErrInvalidParameter, err)
	}
	return nil
}

// idTokenClaims are the claims used to build an Account.
type idTokenClaims struct {
	Subject           string `json:"sub"`
	ObjectId          string `json:"oid"`
	TenantId          string `json:"tid"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
}

// Account is the identity of a signed in user.
type Account struct {
	// HomeAccountId uniquely identifies the account: "<oid>.<tid>"
	HomeAccountId string

	// Environment is the authority's host.
	Environment string

	TenantId       string
	LocalAccountId string
	Username       string
	Name           string

	// IdTokenClaims are every claim of the id_token, unverified.
	IdTokenClaims map[string]interface{}
}

func newAccount(authority, username string, idToken IdToken) (*Account, error) {
	const op = "nativeauth.newAccount"
	a := &Account{Username: username}
	if u, err := url.Parse(authority); err == nil {
		a.Environment = u.Host
	}
	if idToken == "" {
		a.HomeAccountId = username
		return a, nil
	}
	var c idTokenClaims
	if err := idToken.Claims(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	all := map[string]interface{}{}
	if err := idToken.Claims(&all); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.IdTokenClaims = all
	a.TenantId = c.TenantId
	a.Name = c.Name
	a.LocalAccountId = c.ObjectId
	if a.LocalAccountId == "" {
		a.LocalAccountId = c.Subject
	}
	if c.PreferredUsername != "" {
		a.Username = c.PreferredUsername
	}
	switch {
	case a.LocalAccountId != "" && a.TenantId != "":
		a.HomeAccountId = a.LocalAccountId + "." + a.TenantId
	case a.LocalAccountId != "":
		a.HomeAccountId = a.LocalAccountId
	default:
		a.HomeAccountId = a.Username
	}
	return a, nil
}
